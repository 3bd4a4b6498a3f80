package rider

import "errors"

var (
	ErrMissingRequiredFields = errors.New("missing required fields")
	ErrInvalidRiderID        = errors.New("invalid rider id")
	ErrInvalidPhone          = errors.New("invalid phone")
	ErrInvalidVehicleType    = errors.New("invalid vehicle type")
	ErrInvalidPresence       = errors.New("invalid presence")

	ErrRiderNotFound = errors.New("rider not found")
	ErrConflict      = errors.New("rider already registered")
)
