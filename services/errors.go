package services

import "errors"

// Domain-expected outcomes. Handlers map these to 404s; anything else coming
// out of a service is treated as an unexpected store error.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrGroupNotFound  = errors.New("group not found")
	ErrPollNotFound   = errors.New("poll not found")
	ErrResultNotFound = errors.New("result not found")
	ErrUnknownSlot    = errors.New("unknown poll slot")
)
