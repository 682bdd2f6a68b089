// Package geomhelp has small helpers for working with geom values.
package geomhelp

import (
	"fmt"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/wkt"
	"github.com/muesli/reflow/truncate"
)

// WktTruncated renders g as WKT capped at width characters, for use in
// error and log messages. A geometry that cannot be rendered becomes a
// placeholder instead of failing the message it is part of.
func WktTruncated(g geom.Geometry, width uint) string {
	s, err := wkt.EncodeString(g)
	if err != nil {
		return fmt.Sprintf("<unencodable %T>", g)
	}
	if uint(len(s)) <= width {
		return s
	}
	return truncate.StringWithTail(s, width, "...")
}
