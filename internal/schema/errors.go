package schema

import "errors"

// ErrMalformedInput marks input that cannot be converted: missing keys,
// out-of-range indices, cycles, mismatched parallel arrays.
var ErrMalformedInput = errors.New("malformed input")
