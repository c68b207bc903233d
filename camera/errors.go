package camera

import "errors"

// ErrUnsupported is returned when a firmware family cannot perform the
// requested operation, e.g. listing historical records on the query-API
// family. Host-scoped: the caller reports it and moves on.
var ErrUnsupported = errors.New("operation not supported by this firmware")
