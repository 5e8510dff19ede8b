package config

import "errors"

var (
	ErrInvalidInterval = errors.New("sleep time must be a positive number of seconds")
	ErrMissingOutput   = errors.New("output destination is required")
	ErrUnexpectedArgs  = errors.New("unexpected positional arguments")
)
