package grpcengine

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/geobind/ember/engine"
)

// Frame layouts of the engine's call surface. Proto3 semantics: zero
// values are omitted on the wire and implied on decode.
//
//	CollectionRef:  1 id, 2 codec, 3 raw, 4 repeated partition{1 repeated record}
//	Options:        1 includePartial, 2 sampleType
//	LayerResponse:  1 handle
//	SessionResponse: 1 session
//	Tile:           1 cols, 2 rows, 3 packed cells (fixed64), 4 noData

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytesField(b []byte, num protowire.Number, raw []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, raw)
}

func appendIntField(b []byte, num protowire.Number, v int) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

func appendDoubleField(b []byte, num protowire.Number, v float64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendOptionsField(b []byte, num protowire.Number, o *engine.RasterizerOptions) []byte {
	if o == nil {
		return b
	}
	var msg []byte
	msg = appendBoolField(msg, 1, o.IncludePartial)
	msg = appendStringField(msg, 2, o.SampleType)
	return appendBytesField(b, num, msg)
}

func appendCollectionField(b []byte, num protowire.Number, ref engine.CollectionRef) []byte {
	var msg []byte
	msg = appendStringField(msg, 1, ref.ID)
	msg = appendStringField(msg, 2, ref.Codec)
	msg = appendBoolField(msg, 3, ref.Raw)
	for _, part := range ref.Partitions {
		var pmsg []byte
		for _, record := range part {
			pmsg = appendBytesField(pmsg, 1, record)
		}
		msg = appendBytesField(msg, 4, pmsg)
	}
	return appendBytesField(b, num, msg)
}

func marshalRasterizeGeometries(req *engine.RasterizeGeometriesRequest) []byte {
	var b []byte
	b = appendStringField(b, 1, string(req.Session))
	for _, wkb := range req.Geometries {
		b = appendBytesField(b, 2, wkb)
	}
	b = appendStringField(b, 3, req.CRS)
	b = appendIntField(b, 4, req.Zoom)
	b = appendDoubleField(b, 5, req.FillValue)
	b = appendStringField(b, 6, string(req.CellType))
	b = appendOptionsField(b, 7, req.Options)
	b = appendIntField(b, 8, req.NumPartitions)
	b = appendStringField(b, 9, string(req.Partitioner))
	return b
}

func marshalRasterizeGeometryCollection(req *engine.RasterizeGeometryCollectionRequest) []byte {
	var b []byte
	b = appendCollectionField(b, 1, req.Collection)
	b = appendStringField(b, 2, req.CRS)
	b = appendIntField(b, 3, req.Zoom)
	b = appendDoubleField(b, 4, req.FillValue)
	b = appendStringField(b, 5, string(req.CellType))
	b = appendOptionsField(b, 6, req.Options)
	b = appendIntField(b, 7, req.NumPartitions)
	b = appendStringField(b, 8, string(req.Partitioner))
	return b
}

func marshalRasterizeFeatures(req *engine.RasterizeFeaturesRequest) []byte {
	var b []byte
	b = appendCollectionField(b, 1, req.Collection)
	b = appendStringField(b, 2, req.CRS)
	b = appendIntField(b, 3, req.Zoom)
	b = appendStringField(b, 4, string(req.CellType))
	b = appendOptionsField(b, 5, req.Options)
	b = appendIntField(b, 6, req.NumPartitions)
	b = appendStringField(b, 7, string(req.ZIndexCellType))
	b = appendStringField(b, 8, string(req.Partitioner))
	return b
}

func marshalCostDistance(req *engine.CostDistanceRequest) []byte {
	var b []byte
	b = appendStringField(b, 1, string(req.Friction))
	for _, wkb := range req.Starts {
		b = appendBytesField(b, 2, wkb)
	}
	b = appendDoubleField(b, 3, req.MaxDistance)
	return b
}

func marshalLookup(req *engine.LookupRequest) []byte {
	var b []byte
	b = appendStringField(b, 1, string(req.Layer))
	b = appendIntField(b, 2, req.Key.Col)
	b = appendIntField(b, 3, req.Key.Row)
	return b
}

// unmarshalStringField reads the single string field num from a response
// frame, ignoring unknown fields.
func unmarshalStringField(b []byte, want protowire.Number) (string, error) {
	var s string
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", fmt.Errorf("malformed response: %v", protowire.ParseError(n))
		}
		b = b[n:]
		if num == want && typ == protowire.BytesType {
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return "", fmt.Errorf("malformed response: %v", protowire.ParseError(n))
			}
			b = b[n:]
			s = v
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return "", fmt.Errorf("malformed response: %v", protowire.ParseError(n))
		}
		b = b[n:]
	}
	return s, nil
}

func unmarshalLayerHandle(b []byte) (engine.LayerHandle, error) {
	s, err := unmarshalStringField(b, 1)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("engine returned no layer handle")
	}
	return engine.LayerHandle(s), nil
}

func unmarshalSession(b []byte) (engine.SessionHandle, error) {
	s, err := unmarshalStringField(b, 1)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("engine returned no session handle")
	}
	return engine.SessionHandle(s), nil
}

func unmarshalTile(b []byte) (*engine.Tile, error) {
	tile := &engine.Tile{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("malformed tile: %v", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("malformed tile cols: %v", protowire.ParseError(n))
			}
			b = b[n:]
			tile.Cols = int(v)
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("malformed tile rows: %v", protowire.ParseError(n))
			}
			b = b[n:]
			tile.Rows = int(v)
		case num == 3 && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("malformed tile cells: %v", protowire.ParseError(n))
			}
			b = b[n:]
			for len(packed) > 0 {
				bits, n := protowire.ConsumeFixed64(packed)
				if n < 0 {
					return nil, fmt.Errorf("malformed tile cell: %v", protowire.ParseError(n))
				}
				packed = packed[n:]
				tile.Cells = append(tile.Cells, math.Float64frombits(bits))
			}
		case num == 4 && typ == protowire.Fixed64Type:
			bits, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return nil, fmt.Errorf("malformed tile nodata: %v", protowire.ParseError(n))
			}
			b = b[n:]
			tile.NoData = math.Float64frombits(bits)
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("malformed tile: %v", protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	if tile.Cols*tile.Rows != len(tile.Cells) {
		return nil, fmt.Errorf("tile dimensions %dx%d do not match %d cells", tile.Cols, tile.Rows, len(tile.Cells))
	}
	return tile, nil
}
