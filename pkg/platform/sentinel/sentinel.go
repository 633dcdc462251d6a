package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Draft stores and the submission
// transport return these (optionally wrapped) so the form service can translate
// them into domain errors.
//
//   - ErrNotFound: no draft exists under the given id
//   - ErrExpired: the draft outlived its TTL
//   - ErrConflict: a concurrent writer changed the draft first
//   - ErrInvalidState: the draft is in the wrong state for the operation
//   - ErrUnavailable: a backing service is temporarily unavailable
//
// For field-level problems use internal/fielderr; for request problems use
// pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
