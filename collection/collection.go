// Package collection defines the distributed-collection contract this
// binding configures. The execution model behind it (partition placement,
// scheduling, fault handling) belongs to the external framework; the
// binding only maps elements to wire records, re-tags serializers and
// forwards the resulting reference to the engine.
package collection

import (
	"github.com/go-spatial/geom"

	"github.com/geobind/ember/codec"
	"github.com/geobind/ember/engine"
)

// Geometries is a distributed, lazily partitioned collection of
// geometries.
type Geometries interface {
	NumPartitions() int

	// Repartition returns the same elements, in the same overall order,
	// spread over n partitions.
	Repartition(n int) (Geometries, error)

	// MapEncode applies enc to every element. It is a pure per-element
	// transform: element order, partition assignment and count are
	// preserved, and the first encode error aborts the whole mapping.
	MapEncode(enc func(geom.Geometry) ([]byte, error)) (Encoded, error)
}

// Features is a distributed collection of feature/cell-value records.
type Features interface {
	NumPartitions() int

	Repartition(n int) (Features, error)

	// Reserialize re-tags the collection with c, making it the
	// (de)serializer used when elements cross the runtime boundary.
	// Element order, partitioning and count stay untouched. Every element
	// is passed through c once, so an invalid element fails here, before
	// anything is submitted.
	Reserialize(c codec.Codec) (Encoded, error)
}

// Encoded is a collection whose elements are wire records.
type Encoded interface {
	NumPartitions() int

	// MarkRaw marks the records as already being in final wire form, so
	// the framework serializer does not wrap them again on the way out.
	// Submitting records that were not marked raw would have them
	// re-serialized into garbage; the marshaller applies MarkRaw exactly
	// once, immediately before submission.
	MarkRaw() Encoded

	// Raw reports whether MarkRaw has been applied.
	Raw() bool

	// Ref is the engine-facing reference to this collection.
	Ref() engine.CollectionRef
}
