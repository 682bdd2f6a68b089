// Package memory is an in-process, partition-aware implementation of the
// collection interfaces. It stands in for the external distributed
// framework in tests and local tooling, the same way an embedded store
// stands in for a real one: partitioning, element order and the raw-form
// marker behave like the real thing, only the execution is local.
package memory

import (
	"fmt"

	"github.com/go-spatial/geom"
	"github.com/umpc/go-sortedmap"

	"github.com/geobind/ember/codec"
	"github.com/geobind/ember/collection"
	"github.com/geobind/ember/engine"
)

// partition is one ordered slice of elements. Partitions are kept in a
// sortedmap keyed and ordered by index so iteration is always in
// partition order.
type partition struct {
	index int
	elems []any
}

func lessByIndex(x, y interface{}) bool {
	return x.(*partition).index < y.(*partition).index
}

func newPartitions(elems []any, n int) *sortedmap.SortedMap {
	if n < 1 {
		n = 1
	}
	parts := sortedmap.New(n, lessByIndex)
	chunk := len(elems) / n
	rest := len(elems) % n
	from := 0
	for i := 0; i < n; i++ {
		to := from + chunk
		if i < rest {
			to++
		}
		parts.Insert(i, &partition{index: i, elems: elems[from:to]})
		from = to
	}
	return parts
}

func flatten(parts *sortedmap.SortedMap) []any {
	var elems []any
	m := parts.Map()
	for _, key := range parts.Keys() {
		elems = append(elems, m[key].(*partition).elems...)
	}
	return elems
}

// Geometries is an in-memory collection.Geometries.
type Geometries struct {
	parts *sortedmap.SortedMap
}

// NewGeometries spreads geoms over numPartitions partitions, in order.
func NewGeometries(geoms []geom.Geometry, numPartitions int) *Geometries {
	elems := make([]any, len(geoms))
	for i, g := range geoms {
		elems[i] = g
	}
	return &Geometries{parts: newPartitions(elems, numPartitions)}
}

func (c *Geometries) NumPartitions() int {
	return c.parts.Len()
}

func (c *Geometries) Repartition(n int) (collection.Geometries, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: cannot repartition to %d partitions", engine.ErrInvalidArgument, n)
	}
	return &Geometries{parts: newPartitions(flatten(c.parts), n)}, nil
}

func (c *Geometries) MapEncode(enc func(geom.Geometry) ([]byte, error)) (collection.Encoded, error) {
	out := sortedmap.New(c.parts.Len(), lessByIndex)
	m := c.parts.Map()
	for _, key := range c.parts.Keys() {
		p := m[key].(*partition)
		mapped := &partition{index: p.index, elems: make([]any, len(p.elems))}
		for i, e := range p.elems {
			g, _ := e.(geom.Geometry)
			b, err := enc(g)
			if err != nil {
				return nil, err
			}
			mapped.elems[i] = b
		}
		out.Insert(mapped.index, mapped)
	}
	return &Encoded{parts: out, codecName: codec.Geometry{}.Name()}, nil
}

// Features is an in-memory collection.Features.
type Features struct {
	parts *sortedmap.SortedMap
}

// NewFeatures spreads features over numPartitions partitions, in order.
func NewFeatures(features []engine.Feature, numPartitions int) *Features {
	elems := make([]any, len(features))
	for i, f := range features {
		elems[i] = f
	}
	return &Features{parts: newPartitions(elems, numPartitions)}
}

func (c *Features) NumPartitions() int {
	return c.parts.Len()
}

func (c *Features) Repartition(n int) (collection.Features, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: cannot repartition to %d partitions", engine.ErrInvalidArgument, n)
	}
	return &Features{parts: newPartitions(flatten(c.parts), n)}, nil
}

func (c *Features) Reserialize(cc codec.Codec) (collection.Encoded, error) {
	out := sortedmap.New(c.parts.Len(), lessByIndex)
	m := c.parts.Map()
	for _, key := range c.parts.Keys() {
		p := m[key].(*partition)
		encoded := &partition{index: p.index, elems: make([]any, len(p.elems))}
		for i, e := range p.elems {
			b, err := cc.Encode(e)
			if err != nil {
				return nil, err
			}
			encoded.elems[i] = b
		}
		out.Insert(encoded.index, encoded)
	}
	return &Encoded{parts: out, codecName: cc.Name()}, nil
}

// Encoded is an in-memory collection.Encoded.
type Encoded struct {
	parts     *sortedmap.SortedMap
	codecName string
	raw       bool
}

func (c *Encoded) NumPartitions() int {
	return c.parts.Len()
}

func (c *Encoded) MarkRaw() collection.Encoded {
	return &Encoded{parts: c.parts, codecName: c.codecName, raw: true}
}

func (c *Encoded) Raw() bool {
	return c.raw
}

func (c *Encoded) Ref() engine.CollectionRef {
	ref := engine.CollectionRef{
		Codec:      c.codecName,
		Raw:        c.raw,
		Partitions: make([][][]byte, 0, c.parts.Len()),
	}
	m := c.parts.Map()
	for _, key := range c.parts.Keys() {
		p := m[key].(*partition)
		records := make([][]byte, len(p.elems))
		for i, e := range p.elems {
			records[i] = e.([]byte)
		}
		ref.Partitions = append(ref.Partitions, records)
	}
	return ref
}
