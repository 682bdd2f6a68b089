package engine

import (
	"fmt"
	"math"

	"github.com/go-spatial/geom"
)

// CellValue pairs the numeric value burned for a feature with the cell
// data type the engine should use for that value.
type CellValue struct {
	Value    float64
	CellType CellType
}

// Validate checks that the cell value is complete: a real numeric value
// and a recognized cell type tag.
func (cv CellValue) Validate() error {
	if math.IsNaN(cv.Value) {
		return fmt.Errorf("%w: cell value is missing its numeric value", ErrInvalidArgument)
	}
	if _, err := ParseCellType(cv.CellType); err != nil {
		return fmt.Errorf("cell value: %w", err)
	}
	return nil
}

// Feature is a geometry with an attached CellValue. The value payload must
// be a valid CellValue or encoding refuses the record.
type Feature struct {
	Geometry geom.Geometry
	Value    CellValue
}

func (f Feature) Validate() error {
	if f.Geometry == nil {
		return fmt.Errorf("%w: feature has no geometry", ErrInvalidArgument)
	}
	return f.Value.Validate()
}
