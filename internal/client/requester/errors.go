package requester

import "errors"

var (
	ErrWrongStage      = errors.New("operation not allowed in current stage")
	ErrNoActiveRequest = errors.New("no active request")
	ErrNotExpired      = errors.New("retry allowed only after confirmed expiry")
)
