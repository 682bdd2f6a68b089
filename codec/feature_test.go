package codec

import (
	"math"
	"testing"

	"github.com/go-spatial/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geobind/ember/engine"
)

func TestFeatureCodec_RoundTrip(t *testing.T) {
	in := engine.Feature{
		Geometry: geom.Polygon{{{0, 0}, {4, 0}, {4, 4}, {0, 4}}},
		Value:    engine.CellValue{Value: 7.25, CellType: engine.CellTypeInt32},
	}

	b, err := Feature{}.Encode(in)
	require.NoError(t, err)

	v, err := Feature{}.Decode(b)
	require.NoError(t, err)
	out, ok := v.(engine.Feature)
	require.True(t, ok)

	assert.Equal(t, in.Value, out.Value)
	wantWKB, err := EncodeGeometry(in.Geometry)
	require.NoError(t, err)
	gotWKB, err := EncodeGeometry(out.Geometry)
	require.NoError(t, err)
	assert.Equal(t, wantWKB, gotWKB)
}

func TestFeatureCodec_CanonicalizesCellType(t *testing.T) {
	in := engine.Feature{
		Geometry: geom.Point{1, 2},
		Value:    engine.CellValue{Value: 1, CellType: "INT8"},
	}

	b, err := Feature{}.Encode(in)
	require.NoError(t, err)

	v, err := Feature{}.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, engine.CellTypeInt8, v.(engine.Feature).Value.CellType)
}

func TestFeatureCodec_AcceptsPointer(t *testing.T) {
	f := &engine.Feature{
		Geometry: geom.Point{3, 4},
		Value:    engine.CellValue{Value: 2, CellType: engine.CellTypeFloat64},
	}
	b, err := Feature{}.Encode(f)
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}

func TestFeatureCodec_NegativeValueSurvives(t *testing.T) {
	in := engine.Feature{
		Geometry: geom.Point{0, 0},
		Value:    engine.CellValue{Value: -12.5, CellType: engine.CellTypeFloat64},
	}

	b, err := Feature{}.Encode(in)
	require.NoError(t, err)
	v, err := Feature{}.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, -12.5, v.(engine.Feature).Value.Value)
}

func TestFeatureCodec_EncodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		wantErr error
	}{
		{
			name:    "foreign value",
			in:      geom.Point{1, 2},
			wantErr: engine.ErrInvalidArgument,
		},
		{
			name: "missing geometry",
			in: engine.Feature{
				Value: engine.CellValue{Value: 1, CellType: engine.CellTypeInt8},
			},
			wantErr: engine.ErrInvalidArgument,
		},
		{
			name: "missing numeric value",
			in: engine.Feature{
				Geometry: geom.Point{1, 2},
				Value:    engine.CellValue{Value: math.NaN(), CellType: engine.CellTypeInt8},
			},
			wantErr: engine.ErrInvalidArgument,
		},
		{
			name: "unknown cell type",
			in: engine.Feature{
				Geometry: geom.Point{1, 2},
				Value:    engine.CellValue{Value: 1, CellType: "int128"},
			},
			wantErr: engine.ErrInvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Feature{}.Encode(tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFeatureCodec_DecodeErrors(t *testing.T) {
	valid, err := Feature{}.Encode(engine.Feature{
		Geometry: geom.Point{1, 2},
		Value:    engine.CellValue{Value: 1, CellType: engine.CellTypeUint16},
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   []byte
	}{
		{name: "truncated record", in: valid[:len(valid)-3]},
		{name: "garbage", in: []byte{0xff, 0xff, 0xff}},
		{name: "empty record", in: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Feature{}.Decode(tt.in)
			assert.ErrorIs(t, err, engine.ErrEncoding)
		})
	}
}
