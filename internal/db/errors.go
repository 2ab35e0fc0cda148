package db

import "errors"

// Domain-level database error sentinels. Moderated content uses the
// lifecycle package's ErrNotFound and ErrStale instead.
var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")

	// Topic errors
	ErrTopicNotFound     = errors.New("topic not found")
	ErrTopicStateChanged = errors.New("topic status changed concurrently")

	// Event errors
	ErrEventNotFound = errors.New("event not found")
)
