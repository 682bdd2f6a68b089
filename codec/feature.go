package codec

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/geobind/ember/engine"
)

// Wire field numbers of a feature/cell-value record.
const (
	featureGeometryField protowire.Number = 1 // bytes, WKB
	featureValueField    protowire.Number = 2 // double
	featureCellTypeField protowire.Number = 3 // string, canonical cell type
)

// Feature is the feature/cell-value Codec: each element is an
// engine.Feature and its record pairs the geometry's WKB bytes with the
// typed numeric value. The record layout mirrors what the engine's
// deserializer expects, which is why feature collections are re-tagged
// with this codec instead of the plain-geometry one.
type Feature struct{}

func (Feature) Name() string { return "feature-cellvalue" }

func (Feature) Encode(v any) ([]byte, error) {
	var f engine.Feature
	switch x := v.(type) {
	case engine.Feature:
		f = x
	case *engine.Feature:
		f = *x
	default:
		return nil, fmt.Errorf("%w: feature codec got %T, want engine.Feature", engine.ErrInvalidArgument, v)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	cellType, err := engine.ParseCellType(f.Value.CellType)
	if err != nil {
		return nil, err
	}
	wkbBytes, err := EncodeGeometry(f.Geometry)
	if err != nil {
		return nil, err
	}

	var b []byte
	b = protowire.AppendTag(b, featureGeometryField, protowire.BytesType)
	b = protowire.AppendBytes(b, wkbBytes)
	b = protowire.AppendTag(b, featureValueField, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(f.Value.Value))
	b = protowire.AppendTag(b, featureCellTypeField, protowire.BytesType)
	b = protowire.AppendString(b, string(cellType))
	return b, nil
}

func (Feature) Decode(b []byte) (any, error) {
	var f engine.Feature
	sawGeometry, sawValue, sawCellType := false, false, false
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: malformed feature record: %v", engine.ErrEncoding, protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == featureGeometryField && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed feature geometry: %v", engine.ErrEncoding, protowire.ParseError(n))
			}
			b = b[n:]
			g, err := DecodeGeometry(raw)
			if err != nil {
				return nil, err
			}
			f.Geometry = g
			sawGeometry = true
		case num == featureValueField && typ == protowire.Fixed64Type:
			bits, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed feature value: %v", engine.ErrEncoding, protowire.ParseError(n))
			}
			b = b[n:]
			f.Value.Value = math.Float64frombits(bits)
			sawValue = true
		case num == featureCellTypeField && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed feature cell type: %v", engine.ErrEncoding, protowire.ParseError(n))
			}
			b = b[n:]
			f.Value.CellType = engine.CellType(s)
			sawCellType = true
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed feature record: %v", engine.ErrEncoding, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	if !sawGeometry || !sawValue || !sawCellType {
		return nil, fmt.Errorf("%w: incomplete feature record", engine.ErrEncoding)
	}
	return f, nil
}
