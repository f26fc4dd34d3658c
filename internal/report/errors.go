package report

import "errors"

// ErrInvalidRange rejects requests whose date bounds are unparseable,
// one-sided, or inverted. No aggregation runs for such a request.
var ErrInvalidRange = errors.New("invalid date range")

// ErrStorageUnreachable marks a connection-level backend failure. It fails
// the whole report: returning zeroed KPIs from a dead backend would be
// indistinguishable from genuinely empty data.
var ErrStorageUnreachable = errors.New("storage unreachable")
