package raster

import (
	"fmt"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"github.com/geobind/ember/engine"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RasterizeParams are the scalar parameters of a Rasterize call.
type RasterizeParams struct {
	// CRS is the spatial reference of the input geometries, as a string
	// or an integer code.
	CRS any `validate:"required"`
	// Zoom is the resolution level of the output layer.
	Zoom int `validate:"gte=0"`
	// FillValue is burned into every pixel intersecting a geometry.
	FillValue float64
	// CellType is the cell data type of the output tiles.
	CellType engine.CellType `default:"float64"`
	// Options is the pixel-intersection policy, passed to the engine
	// unmodified.
	Options *engine.RasterizerOptions
	// NumPartitions repartitions the submitted collection when positive.
	// 0 leaves partitioning alone.
	NumPartitions int `validate:"gte=0"`
	// Partitioner distributes the output layer's tiles.
	Partitioner engine.Partitioner `default:"HashPartitioner"`
}

// FeatureParams are the scalar parameters of a RasterizeFeatures call.
type FeatureParams struct {
	CRS           any                       `validate:"required"`
	Zoom          int                       `validate:"gte=0"`
	CellType      engine.CellType           `default:"float64"`
	Options       *engine.RasterizerOptions
	NumPartitions int                       `validate:"gte=0"`
	// ZIndexCellType is the cell type used when computing the Z-index
	// ordering key, not the output type. Caveat: whether a precision too
	// low to distinguish closely spaced features at the target zoom
	// causes value collisions is an engine property, not observable from
	// this layer.
	ZIndexCellType engine.CellType    `default:"int8"`
	Partitioner    engine.Partitioner `default:"HashPartitioner"`
}

// normalized holds parameters after one-time boundary normalization.
type normalized struct {
	crs            string
	cellType       engine.CellType
	zindexCellType engine.CellType
	partitioner    engine.Partitioner
}

func normalizeCommon(crsIn any, cellType, partitioner any) (normalized, error) {
	var n normalized
	var err error
	if n.crs, err = engine.NormalizeCRS(crsIn); err != nil {
		return n, err
	}
	if n.cellType, err = engine.ParseCellType(cellType); err != nil {
		return n, err
	}
	if n.partitioner, err = engine.ParsePartitioner(partitioner); err != nil {
		return n, err
	}
	return n, nil
}

func (p RasterizeParams) normalize() (normalized, error) {
	if err := defaults.Set(&p); err != nil {
		return normalized{}, fmt.Errorf("defaults: %w", err)
	}
	if err := validate.Struct(p); err != nil {
		return normalized{}, fmt.Errorf("%w: %w", engine.ErrInvalidArgument, err)
	}
	return normalizeCommon(p.CRS, p.CellType, p.Partitioner)
}

func (p FeatureParams) normalize() (normalized, error) {
	if err := defaults.Set(&p); err != nil {
		return normalized{}, fmt.Errorf("defaults: %w", err)
	}
	if err := validate.Struct(p); err != nil {
		return normalized{}, fmt.Errorf("%w: %w", engine.ErrInvalidArgument, err)
	}
	n, err := normalizeCommon(p.CRS, p.CellType, p.Partitioner)
	if err != nil {
		return n, err
	}
	if n.zindexCellType, err = engine.ParseCellType(p.ZIndexCellType); err != nil {
		return n, err
	}
	return n, nil
}
