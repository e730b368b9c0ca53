package report

import "errors"

// Sentinel errors. Handlers map them to status codes with errors.Is.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("report not found")
	ErrUpstream       = errors.New("generation service failed")
	ErrContract       = errors.New("generated report violates contract")
)
