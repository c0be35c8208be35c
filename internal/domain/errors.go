package domain

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrEmptyOrder  = errors.New("empty order")
	ErrValidation  = errors.New("validation failed")
	ErrInvalidPath = errors.New("invalid navigation path")
)
