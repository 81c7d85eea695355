package prober

import "errors"

// ErrInvalidEndpoint is returned when the endpoint is not an absolute
// http(s) URL.
var ErrInvalidEndpoint = errors.New("prober: invalid endpoint URL")
