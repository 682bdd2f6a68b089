package codec

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-spatial/geom"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geobind/ember/engine"
)

func TestEncodeGeometry(t *testing.T) {
	tests := []struct {
		name string
		g    geom.Geometry
	}{
		{name: "point", g: geom.Point{5.0, 52.0}},
		{name: "multipoint", g: geom.MultiPoint{{1, 2}, {3, 4}}},
		{name: "linestring", g: geom.LineString{{0, 0}, {10, 0}, {10, 10}}},
		{name: "multilinestring", g: geom.MultiLineString{{{0, 0}, {1, 1}}, {{2, 2}, {3, 3}}}},
		{name: "polygon", g: geom.Polygon{{{0, 0}, {4, 0}, {4, 4}, {0, 4}}}},
		{name: "polygon with hole", g: geom.Polygon{
			{{0, 0}, {8, 0}, {8, 8}, {0, 8}},
			{{2, 2}, {2, 4}, {4, 4}, {4, 2}},
		}},
		{name: "multipolygon", g: geom.MultiPolygon{
			{{{0, 0}, {4, 0}, {4, 4}, {0, 4}}},
			{{{10, 10}, {14, 10}, {14, 14}, {10, 14}}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := EncodeGeometry(tt.g)
			require.NoError(t, err)
			require.NotEmpty(t, first)

			// deterministic
			second, err := EncodeGeometry(tt.g)
			require.NoError(t, err)
			assert.Equal(t, first, second)

			// lossless: decoding and re-encoding reproduces the record
			decoded, err := DecodeGeometry(first)
			require.NoError(t, err)
			reencoded, err := EncodeGeometry(decoded)
			require.NoError(t, err)
			assert.Equal(t, first, reencoded)
		})
	}
}

func TestEncodeGeometry_KnownPointRecord(t *testing.T) {
	b, err := EncodeGeometry(geom.Point{1.0, 2.0})
	require.NoError(t, err)

	// WKB point, little endian: byte order marker, type 1, x, y
	want := []byte{0x01, 0x01, 0x00, 0x00, 0x00}
	want = binary.LittleEndian.AppendUint64(want, math.Float64bits(1.0))
	want = binary.LittleEndian.AppendUint64(want, math.Float64bits(2.0))
	assert.Equal(t, want, b)
}

func TestEncodeGeometry_NilFails(t *testing.T) {
	_, err := EncodeGeometry(nil)
	assert.ErrorIs(t, err, engine.ErrEncoding)
}

func TestDecodeGeometry_Garbage(t *testing.T) {
	_, err := DecodeGeometry([]byte{0xde, 0xad, 0xbe, 0xef})
	assert.ErrorIs(t, err, engine.ErrEncoding)
}

func TestGeometryCodec_RejectsForeignValues(t *testing.T) {
	_, err := Geometry{}.Encode("not a geometry")
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)
}

func TestEncodeGeometry_RoundTripProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	coord := gen.Float64Range(-180, 180)

	properties.Property("points are deterministic and lossless", prop.ForAll(
		func(x, y float64) bool {
			g := geom.Point{x, y}
			a, err := EncodeGeometry(g)
			if err != nil {
				return false
			}
			b, err := EncodeGeometry(g)
			if err != nil || string(a) != string(b) {
				return false
			}
			decoded, err := DecodeGeometry(a)
			if err != nil {
				return false
			}
			c, err := EncodeGeometry(decoded)
			return err == nil && string(a) == string(c)
		},
		coord, coord,
	))

	properties.Property("linestrings are lossless", prop.ForAll(
		func(coords [][2]float64) bool {
			if len(coords) < 2 {
				return true
			}
			g := geom.LineString(coords)
			a, err := EncodeGeometry(g)
			if err != nil {
				return false
			}
			decoded, err := DecodeGeometry(a)
			if err != nil {
				return false
			}
			b, err := EncodeGeometry(decoded)
			return err == nil && string(a) == string(b)
		},
		gen.SliceOf(gopter.CombineGens(coord, coord).Map(func(vs []interface{}) [2]float64 {
			return [2]float64{vs[0].(float64), vs[1].(float64)}
		})),
	))

	properties.TestingRun(t)
}
