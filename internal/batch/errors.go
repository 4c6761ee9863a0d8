package batch

import "errors"

// Sentinel error kinds for this package.
var (
	ErrNoOffers    = errors.New("no offers in input")
	ErrReadInput   = errors.New("read input failed")
	ErrUnhealthy   = errors.New("service health check failed")
	ErrWriteReport = errors.New("write report failed")
)
