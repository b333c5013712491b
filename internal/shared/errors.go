package shared

import "fmt"

var (
	// Store errors
	ErrStore    = fmt.Errorf("store operation failed")
	ErrNotFound = fmt.Errorf("record not found")

	// Authentication errors
	ErrInvalidToken     = fmt.Errorf("invalid remember-me token")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrSessionInvalid   = fmt.Errorf("invalid session")

	// Provider and service errors
	ErrProvider     = fmt.Errorf("provider request failed")
	ErrLyricsLookup = fmt.Errorf("lyrics lookup failed")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Operation errors
	ErrTimeout = fmt.Errorf("operation timed out")
)
