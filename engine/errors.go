package engine

import "errors"

// ============================================================================
// ERROR KINDS
// ============================================================================
// Every failure the engine reports wraps one of these sentinels.
// Callers test with errors.Is. The engine never retries and never panics.
// ============================================================================

var (
	// ErrInvalidArgument: bad row count, start after end, threshold out of bounds,
	// out-of-domain enum values at the ingestion boundary.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmptyResult marks a computation that needs at least one record.
	// An empty filtered dataset itself is a valid state, not an error.
	ErrEmptyResult = errors.New("empty result")

	// ErrUndefinedMetric: the metric has no value for this slice
	// (e.g. regression on a zero-variance column).
	ErrUndefinedMetric = errors.New("undefined metric")
)
