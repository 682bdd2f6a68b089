package raster

import (
	"context"
	"fmt"

	"github.com/geobind/ember/engine"
)

// TiledRasterLayer is the local proxy for a tiled raster layer living
// engine-side. It exclusively owns its handle; nothing else references it.
type TiledRasterLayer struct {
	gw        engine.Gateway
	layerType engine.LayerType
	handle    engine.LayerHandle
}

func newLayer(gw engine.Gateway, layerType engine.LayerType, handle engine.LayerHandle) *TiledRasterLayer {
	return &TiledRasterLayer{gw: gw, layerType: layerType, handle: handle}
}

// LayerType reports how the layer's tiles are keyed.
func (l *TiledRasterLayer) LayerType() engine.LayerType {
	return l.layerType
}

// Handle is the engine-side reference to this layer.
func (l *TiledRasterLayer) Handle() engine.LayerHandle {
	return l.handle
}

// Lookup fetches the tile at the given column and row.
func (l *TiledRasterLayer) Lookup(ctx context.Context, col, row int) (*engine.Tile, error) {
	tile, err := l.gw.Lookup(ctx, &engine.LookupRequest{
		Layer: l.handle,
		Key:   engine.TileKey{Col: col, Row: row},
	})
	if err != nil {
		return nil, fmt.Errorf("lookup tile %d/%d: %w: %w", col, row, engine.ErrRemoteCall, err)
	}
	return tile, nil
}
