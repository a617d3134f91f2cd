package domain

import "errors"

var (
	ErrMissingFields   = errors.New("location and review body are required")
	ErrInvalidLocation = errors.New("invalid location")
	ErrInvalidDate     = errors.New("invalid date")
)
