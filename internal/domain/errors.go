package domain

import "errors"

var (
	ErrStoreRead          = errors.New("transcript read failed")
	ErrStoreWrite         = errors.New("transcript write failed")
	ErrGeneration         = errors.New("generation failed")
	ErrEmptyMessage       = errors.New("message is empty")
	ErrInvalidRole        = errors.New("invalid message role")
	ErrRateLimited        = errors.New("rate limited by provider")
	ErrServiceUnavailable = errors.New("provider unavailable")
	ErrEmptyCompletion    = errors.New("provider returned no completion")
	ErrSessionBusy        = errors.New("session busy")
)
