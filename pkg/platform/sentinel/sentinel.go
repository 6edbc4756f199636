package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: no record at the requested address or id
// - ErrAlreadyUsed: a create targeted an address that is already occupied
// - ErrInvalidState: stored bytes cannot be interpreted as the expected record
// - ErrUnavailable: backend temporarily unavailable
//
// For validation errors (bad input, field limits), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
