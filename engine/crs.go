package engine

import (
	"fmt"
	"strconv"
)

// NormalizeCRS coerces a spatial reference given as a string or an integer
// code to its canonical string form. An integer is always rendered as its
// decimal string, so 4326 and "4326" normalize identically. Normalization
// happens exactly once, at the operation boundary, before any remote call.
func NormalizeCRS(v any) (string, error) {
	switch crs := v.(type) {
	case string:
		if crs == "" {
			return "", fmt.Errorf("%w: crs must not be empty", ErrInvalidArgument)
		}
		return crs, nil
	case int:
		return strconv.Itoa(crs), nil
	case int8:
		return strconv.FormatInt(int64(crs), 10), nil
	case int16:
		return strconv.FormatInt(int64(crs), 10), nil
	case int32:
		return strconv.FormatInt(int64(crs), 10), nil
	case int64:
		return strconv.FormatInt(crs, 10), nil
	case uint:
		return strconv.FormatUint(uint64(crs), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(crs), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(crs), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(crs), 10), nil
	case uint64:
		return strconv.FormatUint(crs, 10), nil
	default:
		return "", fmt.Errorf("%w: crs must be a string or an integer code, got %T", ErrInvalidArgument, v)
	}
}
