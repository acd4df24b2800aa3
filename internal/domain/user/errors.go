package user

import "errors"

var (
	ErrInvalidRole             = errors.New("invalid role")
	ErrActorMissing            = errors.New("authenticated user is missing from the request")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
