package services

import "errors"

// Analysis service errors
var (
	// Input errors
	ErrNoSchemesTable = errors.New("no schemes table")
	ErrMissingUpload  = errors.New("missing upload")

	// General errors
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
