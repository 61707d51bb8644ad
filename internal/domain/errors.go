package domain

import "errors"

// Caller errors. Surfaced before any network I/O.
var (
	ErrURLRequired    = errors.New("url is required")
	ErrUnsupportedURL = errors.New("unsupported url")
)

// Upstream errors shared by every extractor.
var (
	ErrIslandNotFound = errors.New("data island not found")
	ErrInvalidJSON    = errors.New("invalid json")
	ErrItemNotFound   = errors.New("item not found")
	ErrSourceNotFound = errors.New("source not found")
)
