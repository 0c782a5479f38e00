// Package common defines shared constants and sentinel errors used across
// the cache, store and façade layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrorNotFound = errors.New("not found")
	ErrClosed     = errors.New("store closed")

	// Validation errors.
	ErrInvalidStatus     = errors.New("invalid status")
	ErrEmptyDraft        = errors.New("empty draft")
	ErrUnknownCollection = errors.New("unknown collection")
)
