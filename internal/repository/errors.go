package repository

import "errors"

var (
	ErrNotFound         = errors.New("metadata not found")
	ErrCacheCorrupted   = errors.New("metadata cache is corrupted")
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrEmptyBody        = errors.New("empty response body")
	ErrFetchFailed      = errors.New("page fetch failed")
)
