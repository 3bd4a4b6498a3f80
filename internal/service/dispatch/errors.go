package dispatch

import "errors"

var (
	ErrMissingRequiredFields = errors.New("missing required fields")
	ErrInvalidRequestID      = errors.New("invalid request id")
	ErrInvalidRiderID        = errors.New("invalid rider id")
	ErrInvalidWaypoint       = errors.New("invalid waypoint")
	ErrEmptyDescription      = errors.New("empty item description")

	ErrNoRidersOnline         = errors.New("no riders online")
	ErrRequestNotFound        = errors.New("request not found")
	ErrAlreadyClaimed         = errors.New("request already claimed")
	ErrOrderAlreadyDispatched = errors.New("order already dispatched")
)
