// Package grpcengine implements engine.Gateway over a gRPC connection to
// the engine's runtime. The engine publishes no generated stubs, only
// unary methods with protowire frame layouts, so calls go through
// grpc.ClientConn.Invoke with a raw byte codec.
package grpcengine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/geobind/ember/engine"
)

const (
	methodCreateSession               = "/geobind.engine.v1.Engine/CreateSession"
	methodRasterizeGeometries         = "/geobind.engine.v1.Engine/RasterizeGeometries"
	methodRasterizeGeometryCollection = "/geobind.engine.v1.Engine/RasterizeGeometryCollection"
	methodRasterizeFeaturesWithZIndex = "/geobind.engine.v1.Engine/RasterizeFeaturesWithZIndex"
	methodCostDistance                = "/geobind.engine.v1.Engine/CostDistance"
	methodLookup                      = "/geobind.engine.v1.Engine/Lookup"
)

// Gateway is a gRPC-backed engine.Gateway. It holds one connection and
// one engine session for its lifetime.
type Gateway struct {
	conn    *grpc.ClientConn
	cfg     Config
	log     zerolog.Logger
	session engine.SessionHandle
}

var _ engine.Gateway = (*Gateway)(nil)

// New connects to the engine at cfg.Endpoint and establishes the
// execution session local submissions are seeded with.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Gateway, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	conn, err := grpc.NewClient(cfg.Endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.ForceCodec(rawCodec{}),
			grpc.MaxCallRecvMsgSize(cfg.MaxMessageBytes),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to engine at %s: %w", cfg.Endpoint, err)
	}
	gw := &Gateway{conn: conn, cfg: cfg, log: log}
	session, err := gw.invokeSession(ctx)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	gw.session = session
	gw.log.Info().Str("endpoint", cfg.Endpoint).Str("session", string(session)).Msg("engine session established")
	return gw, nil
}

func (g *Gateway) Close() error {
	return g.conn.Close()
}

// Session returns the execution context handle established at connect
// time.
func (g *Gateway) Session(_ context.Context) (engine.SessionHandle, error) {
	return g.session, nil
}

func (g *Gateway) invokeSession(ctx context.Context) (engine.SessionHandle, error) {
	resp, err := g.invoke(ctx, methodCreateSession, nil)
	if err != nil {
		return "", err
	}
	return unmarshalSession(resp)
}

func (g *Gateway) RasterizeGeometries(ctx context.Context, req *engine.RasterizeGeometriesRequest) (engine.LayerHandle, error) {
	resp, err := g.invoke(ctx, methodRasterizeGeometries, marshalRasterizeGeometries(req))
	if err != nil {
		return "", err
	}
	return unmarshalLayerHandle(resp)
}

func (g *Gateway) RasterizeGeometryCollection(ctx context.Context, req *engine.RasterizeGeometryCollectionRequest) (engine.LayerHandle, error) {
	resp, err := g.invoke(ctx, methodRasterizeGeometryCollection, marshalRasterizeGeometryCollection(req))
	if err != nil {
		return "", err
	}
	return unmarshalLayerHandle(resp)
}

func (g *Gateway) RasterizeFeaturesWithZIndex(ctx context.Context, req *engine.RasterizeFeaturesRequest) (engine.LayerHandle, error) {
	resp, err := g.invoke(ctx, methodRasterizeFeaturesWithZIndex, marshalRasterizeFeatures(req))
	if err != nil {
		return "", err
	}
	return unmarshalLayerHandle(resp)
}

func (g *Gateway) CostDistance(ctx context.Context, req *engine.CostDistanceRequest) (engine.LayerHandle, error) {
	resp, err := g.invoke(ctx, methodCostDistance, marshalCostDistance(req))
	if err != nil {
		return "", err
	}
	return unmarshalLayerHandle(resp)
}

func (g *Gateway) Lookup(ctx context.Context, req *engine.LookupRequest) (*engine.Tile, error) {
	resp, err := g.invoke(ctx, methodLookup, marshalLookup(req))
	if err != nil {
		return nil, err
	}
	return unmarshalTile(resp)
}

func (g *Gateway) invoke(ctx context.Context, method string, req []byte) ([]byte, error) {
	if g.cfg.CallTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(g.cfg.CallTimeoutSeconds)*time.Second)
		defer cancel()
	}
	callID := uuid.NewString()
	start := time.Now()
	var resp []byte
	err := g.conn.Invoke(ctx, method, &req, &resp)
	g.log.Debug().
		Str("call_id", callID).
		Str("method", method).
		Int("request_bytes", len(req)).
		Int("response_bytes", len(resp)).
		Dur("took", time.Since(start)).
		Err(err).
		Msg("engine call")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return resp, nil
}
