package domain

import "errors"

// Business errors surfaced by the service layer. Handlers map these to HTTP
// statuses; storage faults are wrapped with ErrStorageUnavailable and are
// never swallowed.
var (
	ErrInvalidPolygon     = errors.New("polygon must have at least 3 vertices and no self-intersections")
	ErrInvalidAlertType   = errors.New("unknown alert type")
	ErrActorRequired      = errors.New("exactly one of user or officer actor is required")
	ErrShareConflict      = errors.New("actor already has an active live-location share")
	ErrShareNotActive     = errors.New("live-location share is not active")
	ErrShareNotFound      = errors.New("share not found")
	ErrNoEligibleOfficer  = errors.New("organization has no active officers")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// WrapStorage marks err as a transient storage fault so callers can decide
// on retry. Returns nil for nil.
func WrapStorage(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrStorageUnavailable, err)
}
