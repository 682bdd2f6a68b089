package engine

import (
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// CellType tags the per-pixel numeric representation of a layer (bit
// width, signedness, floating point). No-data variants are spelled as
// base type plus "ud" and the sentinel, e.g. "int16ud-1" or
// "float32ud-1.0", and resolve to themselves.
type CellType string

const (
	CellTypeBool    CellType = "bool"
	CellTypeInt8    CellType = "int8"
	CellTypeUint8   CellType = "uint8"
	CellTypeInt16   CellType = "int16"
	CellTypeUint16  CellType = "uint16"
	CellTypeInt32   CellType = "int32"
	CellTypeFloat32 CellType = "float32"
	CellTypeFloat64 CellType = "float64"
)

// Partitioner selects how the engine distributes the output layer's tiles
// across workers.
type Partitioner string

const (
	HashPartitioner  Partitioner = "HashPartitioner"
	RangePartitioner Partitioner = "RangePartitioner"
	SpacePartitioner Partitioner = "SpacePartitioner"
)

// LayerType tags how a layer's tiles are keyed.
type LayerType string

const (
	LayerTypeSpatial   LayerType = "spatial"
	LayerTypeSpacetime LayerType = "spacetime"
)

// enumTable is a closed lookup from accepted spellings (lowercased) to the
// canonical member. Insertion order is kept so error messages always list
// the members the same way.
type enumTable[T ~string] struct {
	name    string
	members *orderedmap.OrderedMap[string, T]
}

func newEnumTable[T ~string](name string, members ...T) *enumTable[T] {
	t := &enumTable[T]{name: name, members: orderedmap.New[string, T]()}
	for _, m := range members {
		t.members.Set(strings.ToLower(string(m)), m)
	}
	return t
}

func (t *enumTable[T]) alias(spelling string, member T) *enumTable[T] {
	t.members.Set(strings.ToLower(spelling), member)
	return t
}

// resolve coerces v, which must be a T or a string, to the canonical
// member. Unrecognized spellings and foreign types fail with
// ErrInvalidArgument.
func (t *enumTable[T]) resolve(v any) (T, error) {
	var zero T
	var s string
	switch x := v.(type) {
	case T:
		s = string(x)
	case string:
		s = x
	default:
		return zero, fmt.Errorf("%w: %s must be a %s or a string, got %T", ErrInvalidArgument, t.name, t.name, v)
	}
	member, ok := t.members.Get(strings.ToLower(s))
	if !ok {
		return zero, fmt.Errorf("%w: unknown %s %q, must be one of %s",
			ErrInvalidArgument, t.name, s, strings.Join(t.spellings(), ", "))
	}
	return member, nil
}

func (t *enumTable[T]) spellings() []string {
	l := make([]string, 0, t.members.Len())
	for p := t.members.Oldest(); p != nil; p = p.Next() {
		l = append(l, p.Key)
	}
	return l
}

var (
	cellTypes = newEnumTable("cell type",
		CellTypeBool, CellTypeInt8, CellTypeUint8, CellTypeInt16,
		CellTypeUint16, CellTypeInt32, CellTypeFloat32, CellTypeFloat64)

	partitioners = newEnumTable("partitioner",
		HashPartitioner, RangePartitioner, SpacePartitioner).
		alias("hash", HashPartitioner).
		alias("range", RangePartitioner).
		alias("space", SpacePartitioner)

	layerTypes = newEnumTable("layer type", LayerTypeSpatial, LayerTypeSpacetime)
)

// ParseCellType resolves v (CellType or string) to its canonical value.
// Besides the plain members, "<base>raw" and "<base>ud<sentinel>" no-data
// spellings are accepted for every non-bool base type.
func ParseCellType(v any) (CellType, error) {
	ct, err := cellTypes.resolve(v)
	if err == nil {
		return ct, nil
	}
	s, isStr := v.(string)
	if !isStr {
		if c, isCT := v.(CellType); isCT {
			s = string(c)
		} else {
			return "", err
		}
	}
	s = strings.ToLower(s)
	if base, ok := strings.CutSuffix(s, "raw"); ok {
		if bct, berr := cellTypes.resolve(base); berr == nil && bct != CellTypeBool {
			return CellType(s), nil
		}
	}
	if base, sentinel, ok := strings.Cut(s, "ud"); ok {
		bct, berr := cellTypes.resolve(base)
		if berr == nil && bct != CellTypeBool {
			if _, perr := strconv.ParseFloat(sentinel, 64); perr == nil {
				return CellType(s), nil
			}
		}
	}
	return "", err
}

// ParsePartitioner resolves v (Partitioner or string) to its canonical
// value. Short spellings like "hash" are accepted.
func ParsePartitioner(v any) (Partitioner, error) {
	return partitioners.resolve(v)
}

// ParseLayerType resolves v (LayerType or string) to its canonical value.
func ParseLayerType(v any) (LayerType, error) {
	return layerTypes.resolve(v)
}
