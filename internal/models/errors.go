package models

import "errors"

// Sentinel errors shared by services and consumers.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)
