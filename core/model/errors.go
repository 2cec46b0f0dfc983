package model

import "errors"

var (
	// ErrInvalidRequest marks a client error such as an unknown seat zone or item.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound marks a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrNoData is returned when no transactions exist for the requested date.
	ErrNoData = errors.New("no data available")
	// ErrReference wraps failures of the historical reference store.
	ErrReference = errors.New("reference data unavailable")
)
