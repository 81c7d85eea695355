package locator

import "errors"

// ErrInvalidBaseURL is returned when the base URL is not an absolute
// http(s) URL with a host.
var ErrInvalidBaseURL = errors.New("locator: invalid base URL")
