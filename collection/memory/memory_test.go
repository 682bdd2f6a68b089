package memory

import (
	"errors"
	"testing"

	"github.com/go-spatial/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geobind/ember/codec"
	"github.com/geobind/ember/engine"
)

func testGeometries(n int) []geom.Geometry {
	geoms := make([]geom.Geometry, n)
	for i := range geoms {
		geoms[i] = geom.Point{float64(i), float64(i)}
	}
	return geoms
}

func TestNewGeometries_Partitioning(t *testing.T) {
	tests := []struct {
		name          string
		elems         int
		numPartitions int
		wantSizes     []int
	}{
		{name: "even split", elems: 6, numPartitions: 3, wantSizes: []int{2, 2, 2}},
		{name: "remainder goes to the first partitions", elems: 7, numPartitions: 3, wantSizes: []int{3, 2, 2}},
		{name: "more partitions than elements", elems: 2, numPartitions: 4, wantSizes: []int{1, 1, 0, 0}},
		{name: "zero partitions clamps to one", elems: 3, numPartitions: 0, wantSizes: []int{3}},
		{name: "empty collection", elems: 0, numPartitions: 2, wantSizes: []int{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewGeometries(testGeometries(tt.elems), tt.numPartitions)
			assert.Equal(t, len(tt.wantSizes), c.NumPartitions())

			enc, err := c.MapEncode(codec.EncodeGeometry)
			require.NoError(t, err)
			ref := enc.Ref()
			require.Len(t, ref.Partitions, len(tt.wantSizes))
			for i, want := range tt.wantSizes {
				assert.Len(t, ref.Partitions[i], want, "partition %d", i)
			}
		})
	}
}

func TestGeometries_MapEncodeKeepsOrder(t *testing.T) {
	geoms := testGeometries(5)
	c := NewGeometries(geoms, 2)

	enc, err := c.MapEncode(codec.EncodeGeometry)
	require.NoError(t, err)
	ref := enc.Ref()

	var records [][]byte
	for _, p := range ref.Partitions {
		records = append(records, p...)
	}
	require.Len(t, records, len(geoms))
	for i, g := range geoms {
		want, err := codec.EncodeGeometry(g)
		require.NoError(t, err)
		assert.Equal(t, want, records[i], "element %d", i)
	}
	assert.Equal(t, codec.Geometry{}.Name(), ref.Codec)
	assert.False(t, ref.Raw)
}

func TestGeometries_MapEncodePropagatesError(t *testing.T) {
	c := NewGeometries(testGeometries(3), 1)
	boom := errors.New("boom")
	_, err := c.MapEncode(func(geom.Geometry) ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestGeometries_Repartition(t *testing.T) {
	geoms := testGeometries(6)
	c := NewGeometries(geoms, 2)

	re, err := c.Repartition(3)
	require.NoError(t, err)
	assert.Equal(t, 3, re.NumPartitions())
	assert.Equal(t, 2, c.NumPartitions(), "source is unchanged")

	enc, err := re.MapEncode(codec.EncodeGeometry)
	require.NoError(t, err)
	var records [][]byte
	for _, p := range enc.Ref().Partitions {
		records = append(records, p...)
	}
	require.Len(t, records, len(geoms))
	for i, g := range geoms {
		want, err := codec.EncodeGeometry(g)
		require.NoError(t, err)
		assert.Equal(t, want, records[i], "element order survives repartitioning")
	}

	_, err = c.Repartition(0)
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)
}

func TestFeatures_Reserialize(t *testing.T) {
	features := []engine.Feature{
		{Geometry: geom.Point{0, 0}, Value: engine.CellValue{Value: 1, CellType: engine.CellTypeInt16}},
		{Geometry: geom.Point{1, 1}, Value: engine.CellValue{Value: 2, CellType: engine.CellTypeInt16}},
		{Geometry: geom.Point{2, 2}, Value: engine.CellValue{Value: 3, CellType: engine.CellTypeInt16}},
	}
	c := NewFeatures(features, 2)

	enc, err := c.Reserialize(codec.Feature{})
	require.NoError(t, err)
	ref := enc.Ref()

	assert.Equal(t, codec.Feature{}.Name(), ref.Codec)
	assert.False(t, ref.Raw)

	var records [][]byte
	for _, p := range ref.Partitions {
		records = append(records, p...)
	}
	require.Len(t, records, len(features))
	for i, f := range features {
		want, err := codec.Feature{}.Encode(f)
		require.NoError(t, err)
		assert.Equal(t, want, records[i], "record %d", i)
	}
}

func TestFeatures_ReserializeRefusesBadFeature(t *testing.T) {
	features := []engine.Feature{
		{Geometry: geom.Point{0, 0}, Value: engine.CellValue{Value: 1, CellType: "int128"}},
	}
	c := NewFeatures(features, 1)

	_, err := c.Reserialize(codec.Feature{})
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)
}

func TestFeatures_Repartition(t *testing.T) {
	c := NewFeatures([]engine.Feature{
		{Geometry: geom.Point{0, 0}, Value: engine.CellValue{Value: 1, CellType: engine.CellTypeInt8}},
		{Geometry: geom.Point{1, 1}, Value: engine.CellValue{Value: 2, CellType: engine.CellTypeInt8}},
	}, 1)

	re, err := c.Repartition(2)
	require.NoError(t, err)
	assert.Equal(t, 2, re.NumPartitions())

	_, err = c.Repartition(-1)
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)
}

func TestEncoded_MarkRaw(t *testing.T) {
	c := NewGeometries(testGeometries(2), 1)
	enc, err := c.MapEncode(codec.EncodeGeometry)
	require.NoError(t, err)

	require.False(t, enc.Raw())
	raw := enc.MarkRaw()
	assert.True(t, raw.Raw())
	assert.False(t, enc.Raw(), "marking returns a new view")

	assert.True(t, raw.Ref().Raw)
	assert.Equal(t, enc.Ref().Partitions, raw.Ref().Partitions)
}
