// Package engine defines the contract of the remote geospatial processing
// engine: the call surface, the opaque handles it hands out and the
// enumerated vocabulary both sides of the runtime boundary must agree on.
// The engine itself (rasterization, Z-index assignment, partitioning) lives
// in a separate managed runtime and is reachable only through a Gateway.
package engine

import "context"

// SessionHandle identifies the active distributed-execution context on the
// engine side. Local (non-distributed) rasterization is seeded with it.
type SessionHandle string

// LayerHandle is an opaque reference to a tiled raster layer living
// engine-side. It carries no meaning locally.
type LayerHandle string

// CollectionRef identifies a distributed collection to the engine. Either
// ID refers to a collection the engine already owns, or Partitions carries
// the encoded records inline, one slice per partition in partition order.
// Codec names the record format and Raw reports that the records are
// already in final wire form, with no framework envelope around them.
type CollectionRef struct {
	ID         string
	Codec      string
	Raw        bool
	Partitions [][][]byte
}

// TileKey addresses a single tile in a layer by column and row.
type TileKey struct {
	Col int
	Row int
}

// Tile is one raster tile as returned by Lookup. Cells is row-major and
// Rows*Cols long. Cells equal to NoData carry no value.
type Tile struct {
	Cols   int
	Rows   int
	Cells  []float64
	NoData float64
}

// RasterizerOptions is the pixel-intersection policy bag. It is handed to
// the engine unmodified; this binding never interprets its contents.
type RasterizerOptions struct {
	IncludePartial bool
	SampleType     string
}

// RasterizeGeometriesRequest submits a finite, already encoded sequence of
// geometries for local (non-distributed) rasterization.
type RasterizeGeometriesRequest struct {
	Session       SessionHandle
	Geometries    [][]byte // WKB, one geometry per record
	CRS           string
	Zoom          int
	FillValue     float64
	CellType      CellType
	Options       *RasterizerOptions
	NumPartitions int // 0 leaves the partition count to the engine
	Partitioner   Partitioner
}

// RasterizeGeometryCollectionRequest submits a distributed collection of
// WKB records for distributed rasterization.
type RasterizeGeometryCollectionRequest struct {
	Collection    CollectionRef
	CRS           string
	Zoom          int
	FillValue     float64
	CellType      CellType
	Options       *RasterizerOptions
	NumPartitions int
	Partitioner   Partitioner
}

// RasterizeFeaturesRequest submits a distributed collection of encoded
// feature/cell-value records. Overlapping features are resolved by the
// engine with a Z-index tie-break: the highest Z-index wins per cell.
// That rule is the engine's contract, not reimplemented here.
type RasterizeFeaturesRequest struct {
	Collection     CollectionRef
	CRS            string
	Zoom           int
	CellType       CellType
	Options        *RasterizerOptions
	NumPartitions  int
	ZIndexCellType CellType
	Partitioner    Partitioner
}

// CostDistanceRequest computes a cost-distance layer over a friction layer
// from the given start geometries.
type CostDistanceRequest struct {
	Friction    LayerHandle
	Starts      [][]byte // WKB
	MaxDistance float64
}

// LookupRequest fetches a single tile from a layer.
type LookupRequest struct {
	Layer LayerHandle
	Key   TileKey
}

// Gateway is the cross-runtime bridge to the engine, one method per remote
// call. It is injected into the binding so a test double that records
// arguments and returns fixed handles can stand in for the real engine.
//
// Every call blocks until the engine has produced its result; there are no
// local retries or timeouts beyond what ctx imposes.
type Gateway interface {
	Session(ctx context.Context) (SessionHandle, error)
	RasterizeGeometries(ctx context.Context, req *RasterizeGeometriesRequest) (LayerHandle, error)
	RasterizeGeometryCollection(ctx context.Context, req *RasterizeGeometryCollectionRequest) (LayerHandle, error)
	RasterizeFeaturesWithZIndex(ctx context.Context, req *RasterizeFeaturesRequest) (LayerHandle, error)
	CostDistance(ctx context.Context, req *CostDistanceRequest) (LayerHandle, error)
	Lookup(ctx context.Context, req *LookupRequest) (*Tile, error)
}
