package models

import "errors"

// Application-wide standard errors
var (
	// Storage
	ErrNotFound = errors.New("resource not found")

	// Request validation
	ErrBadRequest   = errors.New("bad request")
	ErrInvalidInput = errors.New("invalid input data")

	// Backend calls made by the console
	ErrBackend = errors.New("configuration backend error")

	// Console page
	ErrNotModified    = errors.New("value was not modified")
	ErrDialogClosed   = errors.New("edit dialog is not open")
	ErrRecordNotFound = errors.New("configuration record not found")
)
