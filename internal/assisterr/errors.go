package assisterr

import "errors"

var (
	ErrStorageUnavailable    = errors.New("storage unavailable")
	ErrAuthorizationRequired = errors.New("authorization required")
	ErrPlannerUnavailable    = errors.New("planner unavailable")
	ErrInvalidArguments      = errors.New("invalid arguments")
)
