package offers

import "errors"

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientValue = errors.New("insufficient value")
	ErrNotExpired        = errors.New("auction not expired")
	ErrConfigValidation  = errors.New("config validation failed")
)
