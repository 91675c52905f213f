package model

import "errors"

var (
	// ErrInvalidRequestWindow is returned when a month/year pair does not form a calendar date.
	ErrInvalidRequestWindow = errors.New("invalid month or year")

	// ErrUpstreamUnavailable is returned when none of the data sources could be read.
	ErrUpstreamUnavailable = errors.New("data sources unavailable")

	ErrInvalidBill = errors.New("invalid bill")
)
