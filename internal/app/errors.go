package service

import "errors"

// Sentinel error kinds returned by the service.
var (
	ErrNotStarted         = errors.New("service not started")
	ErrStopped            = errors.New("service stopped")
	ErrMissingOffer       = errors.New("offer price missing or invalid")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrBackpressure       = errors.New("backpressure")
)
