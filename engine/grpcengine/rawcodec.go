package grpcengine

import "fmt"

// rawCodec passes request and response frames through untouched. The
// engine lives in a foreign runtime and publishes no stubs, only a frame
// layout, so the protowire marshalling in this package owns the bytes and
// gRPC must not re-encode them.
type rawCodec struct{}

func (rawCodec) Name() string { return "raw" }

func (rawCodec) Marshal(v any) ([]byte, error) {
	b, ok := v.(*[]byte)
	if !ok {
		return nil, fmt.Errorf("raw codec can only marshal *[]byte, got %T", v)
	}
	return *b, nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	b, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("raw codec can only unmarshal into *[]byte, got %T", v)
	}
	*b = data
	return nil
}
