package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors without
// string matching.
//
// These represent factual states about stored records, not validation
// failures:
//   - ErrNotFound: record does not exist in the store
//   - ErrConflict: uniqueness or compare-and-swap violation (duplicate case
//     number, stage moved under a concurrent transition)
//   - ErrInvalidState: record is in the wrong state for the operation
//   - ErrUnavailable: backing resource temporarily unreachable
//
// For input validation use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
