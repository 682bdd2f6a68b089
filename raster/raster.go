// Package raster is the binding core: it marshals geometries and
// feature/cell-value records into the wire forms the remote engine
// consumes, dispatches the rasterization calls through an injected
// gateway and wraps the returned handles as layer proxies.
//
// Control flow is single threaded: each operation normalizes its
// parameters, encodes the full payload, issues exactly one blocking
// gateway call and returns. Any normalization or encoding failure happens
// before the call, so there is no partial submission.
package raster

import (
	"context"
	"fmt"

	"github.com/go-spatial/geom"

	"github.com/geobind/ember/codec"
	"github.com/geobind/ember/collection"
	"github.com/geobind/ember/engine"
)

// Rasterizer submits rasterization work to a remote engine.
type Rasterizer struct {
	gw engine.Gateway
}

// New returns a Rasterizer dispatching through gw.
func New(gw engine.Gateway) *Rasterizer {
	return &Rasterizer{gw: gw}
}

// GeometrySource is the input of Rasterize: either a finite in-memory
// sequence (Geoms) or a distributed collection (Distributed).
type GeometrySource interface {
	isGeometrySource()
}

type localGeoms struct {
	geoms []geom.Geometry
}

func (localGeoms) isGeometrySource() {}

// Geoms submits a finite in-memory sequence. Every geometry is encoded
// synchronously and the engine rasterizes locally, seeded by the active
// execution context.
func Geoms(geoms ...geom.Geometry) GeometrySource {
	return localGeoms{geoms: geoms}
}

type distributedGeoms struct {
	col collection.Geometries
}

func (distributedGeoms) isGeometrySource() {}

// Distributed submits a distributed collection. Elements are mapped to
// their wire form in place, keeping order and partition assignment, and
// the engine rasterizes distributed.
func Distributed(col collection.Geometries) GeometrySource {
	return distributedGeoms{col: col}
}

// Rasterize burns params.FillValue into every pixel of a new tiled layer
// that intersects one of the source geometries.
func (r *Rasterizer) Rasterize(ctx context.Context, src GeometrySource, params RasterizeParams) (*TiledRasterLayer, error) {
	n, err := params.normalize()
	if err != nil {
		return nil, err
	}

	var handle engine.LayerHandle
	switch s := src.(type) {
	case localGeoms:
		wkbs := make([][]byte, len(s.geoms))
		for i, g := range s.geoms {
			if wkbs[i], err = codec.EncodeGeometry(g); err != nil {
				return nil, err
			}
		}
		session, err := r.gw.Session(ctx)
		if err != nil {
			return nil, fmt.Errorf("session: %w: %w", engine.ErrRemoteCall, err)
		}
		handle, err = r.gw.RasterizeGeometries(ctx, &engine.RasterizeGeometriesRequest{
			Session:       session,
			Geometries:    wkbs,
			CRS:           n.crs,
			Zoom:          params.Zoom,
			FillValue:     params.FillValue,
			CellType:      n.cellType,
			Options:       params.Options,
			NumPartitions: params.NumPartitions,
			Partitioner:   n.partitioner,
		})
		if err != nil {
			return nil, fmt.Errorf("rasterize geometries: %w: %w", engine.ErrRemoteCall, err)
		}
	case distributedGeoms:
		col := s.col
		if params.NumPartitions > 0 {
			if col, err = col.Repartition(params.NumPartitions); err != nil {
				return nil, err
			}
		}
		encoded, err := col.MapEncode(codec.EncodeGeometry)
		if err != nil {
			return nil, err
		}
		// The records are final wire form already. Without this the
		// framework serializer would wrap them again on the way to the
		// engine and the payload would arrive as garbage.
		encoded = encoded.MarkRaw()
		handle, err = r.gw.RasterizeGeometryCollection(ctx, &engine.RasterizeGeometryCollectionRequest{
			Collection:    encoded.Ref(),
			CRS:           n.crs,
			Zoom:          params.Zoom,
			FillValue:     params.FillValue,
			CellType:      n.cellType,
			Options:       params.Options,
			NumPartitions: params.NumPartitions,
			Partitioner:   n.partitioner,
		})
		if err != nil {
			return nil, fmt.Errorf("rasterize geometry collection: %w: %w", engine.ErrRemoteCall, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown geometry source %T", engine.ErrInvalidArgument, src)
	}

	return newLayer(r.gw, engine.LayerTypeSpatial, handle), nil
}

// RasterizeFeatures burns a distributed collection of feature/cell-value
// records into a new tiled layer. When several features hit the same cell
// the engine picks the one with the highest Z-index; that tie-break is the
// engine's documented contract. Features whose extent does not resolve to
// any cell at the requested zoom are simply absent from the output.
func (r *Rasterizer) RasterizeFeatures(ctx context.Context, features collection.Features, params FeatureParams) (*TiledRasterLayer, error) {
	if features == nil {
		return nil, fmt.Errorf("%w: nil feature collection", engine.ErrInvalidArgument)
	}
	n, err := params.normalize()
	if err != nil {
		return nil, err
	}

	if params.NumPartitions > 0 {
		if features, err = features.Repartition(params.NumPartitions); err != nil {
			return nil, err
		}
	}
	// Re-tag with the feature codec, never the plain-geometry one: each
	// record carries geometry bytes plus a typed numeric value. Invalid
	// payloads fail here, before the remote call.
	encoded, err := features.Reserialize(codec.Feature{})
	if err != nil {
		return nil, err
	}

	handle, err := r.gw.RasterizeFeaturesWithZIndex(ctx, &engine.RasterizeFeaturesRequest{
		Collection:     encoded.Ref(),
		CRS:            n.crs,
		Zoom:           params.Zoom,
		CellType:       n.cellType,
		Options:        params.Options,
		NumPartitions:  params.NumPartitions,
		ZIndexCellType: n.zindexCellType,
		Partitioner:    n.partitioner,
	})
	if err != nil {
		return nil, fmt.Errorf("rasterize features: %w: %w", engine.ErrRemoteCall, err)
	}
	return newLayer(r.gw, engine.LayerTypeSpatial, handle), nil
}

// CostDistance computes a cost-distance layer over the friction layer,
// starting from the given geometries. maxDistance caps the traversal, in
// the friction layer's units.
func (r *Rasterizer) CostDistance(ctx context.Context, friction *TiledRasterLayer, starts []geom.Geometry, maxDistance float64) (*TiledRasterLayer, error) {
	if friction == nil {
		return nil, fmt.Errorf("%w: nil friction layer", engine.ErrInvalidArgument)
	}
	if len(starts) == 0 {
		return nil, fmt.Errorf("%w: no start geometries", engine.ErrInvalidArgument)
	}
	if maxDistance <= 0 {
		return nil, fmt.Errorf("%w: max distance must be positive, got %v", engine.ErrInvalidArgument, maxDistance)
	}
	wkbs := make([][]byte, len(starts))
	var err error
	for i, g := range starts {
		if wkbs[i], err = codec.EncodeGeometry(g); err != nil {
			return nil, err
		}
	}
	handle, err := r.gw.CostDistance(ctx, &engine.CostDistanceRequest{
		Friction:    friction.Handle(),
		Starts:      wkbs,
		MaxDistance: maxDistance,
	})
	if err != nil {
		return nil, fmt.Errorf("cost distance: %w: %w", engine.ErrRemoteCall, err)
	}
	return newLayer(r.gw, friction.LayerType(), handle), nil
}
