package session

import "errors"

// Sentinel kinds for session store errors.
var (
	ErrInvalidID = errors.New("invalid session id")
	ErrBackend   = errors.New("session backend failure")
)
