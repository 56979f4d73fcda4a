package fipe

import "errors"

var (
	// ErrUpstreamUnavailable carries the only message callers ever see for
	// upstream failures. Status and body go to the log.
	ErrUpstreamUnavailable = errors.New("lookup service unavailable, retry later")
	ErrInvalidCategory     = errors.New("invalid vehicle category")
	ErrInvalidRequest      = errors.New("invalid lookup request")
	ErrDecodeFailure       = errors.New("unexpected response from lookup service")
)
