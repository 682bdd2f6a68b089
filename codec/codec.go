// Package codec converts geometries and feature records to the wire forms
// the remote engine consumes. Plain geometries travel as well-known binary
// (WKB), one geometry per record. Feature records additionally carry the
// numeric cell value and its cell type tag and must always be routed
// through the feature codec, never the plain-geometry one.
package codec

import (
	"fmt"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/wkb"

	"github.com/geobind/ember/engine"
	"github.com/geobind/ember/geomhelp"
)

// Codec converts one collection element to and from its wire record. A
// distributed collection is re-tagged with a Codec just before its
// elements cross the runtime boundary.
type Codec interface {
	// Name identifies the codec, for diagnostics.
	Name() string
	Encode(v any) ([]byte, error)
	Decode(b []byte) (any, error)
}

// EncodeGeometry serializes a single geometry to WKB. A nil or unencodable
// geometry fails with ErrEncoding before anything is submitted.
func EncodeGeometry(g geom.Geometry) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil geometry", engine.ErrEncoding)
	}
	b, err := wkb.EncodeBytes(g)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", engine.ErrEncoding, geomhelp.WktTruncated(g, 80), err)
	}
	return b, nil
}

// DecodeGeometry is the inverse of EncodeGeometry.
func DecodeGeometry(b []byte) (geom.Geometry, error) {
	g, err := wkb.DecodeBytes(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrEncoding, err)
	}
	return g, nil
}

// Geometry is the plain-geometry Codec: each element is a geom.Geometry
// and its record is the bare WKB bytes.
type Geometry struct{}

func (Geometry) Name() string { return "geometry-wkb" }

func (Geometry) Encode(v any) ([]byte, error) {
	g, ok := v.(geom.Geometry)
	if !ok {
		return nil, fmt.Errorf("%w: geometry codec got %T", engine.ErrInvalidArgument, v)
	}
	return EncodeGeometry(g)
}

func (Geometry) Decode(b []byte) (any, error) {
	return DecodeGeometry(b)
}
