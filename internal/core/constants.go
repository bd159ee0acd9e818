package core

import "time"

// Field limits enforced on create and update
const (
	MaxTitleLength = 200
	MaxURLLength   = 1000
	MaxTagsLength  = 300
)

// Listing defaults
const (
	DefaultPage    = 1
	DefaultPerPage = 100
	MaxPerPage     = 1000
)

// TimestampLayout is the fixed-width UTC layout used to persist timestamps.
// Fixed width keeps lexical order equal to chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Timeout defaults for PDF rendering
const (
	DefaultRenderTimeout = 30 * time.Second
)
