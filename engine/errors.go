package engine

import "errors"

// Sentinel errors for the binding. All failures surface synchronously to
// the caller; nothing is retried or swallowed.
var (
	// ErrInvalidArgument indicates a malformed or unrecognized enum, CRS
	// or feature payload. Raised before any remote interaction.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEncoding indicates a geometry or feature payload could not be
	// converted to its wire form.
	ErrEncoding = errors.New("encoding failed")

	// ErrRemoteCall indicates the engine rejected the call or raised on
	// its side. The cause is propagated opaquely, never interpreted.
	ErrRemoteCall = errors.New("remote call failed")
)
