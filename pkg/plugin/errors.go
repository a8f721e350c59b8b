package plugin

import "errors"

var (
	// ErrInitialization wraps every failure reported by Initialize other
	// than contract violations.
	ErrInitialization = errors.New("output plugin initialization failed")

	// ErrAlreadyInitialized is returned when Initialize is called for a
	// window that already has an instance.
	ErrAlreadyInitialized = errors.New("window already initialized")

	// ErrNotInitialized is returned when Finalize is called for a window
	// without an instance.
	ErrNotInitialized = errors.New("window not initialized")
)
