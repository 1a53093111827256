package models

import "errors"

var (
	// ErrUpstreamUnavailable is a transient network or HTTP failure talking to the price API.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrUpstreamTimeout means a market's collection deadline was exceeded.
	ErrUpstreamTimeout = errors.New("upstream timeout")
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrPersistence     = errors.New("persistence failure")
	// ErrCollectionRunning is returned when a collection is requested while one is in progress.
	ErrCollectionRunning = errors.New("collection already running")
)
