package repository

import "errors"

// Sentinel kinds for ledger errors.
var (
	ErrDuplicate         = errors.New("transaction already recorded")
	ErrInvalidTx         = errors.New("invalid transaction")
	ErrUnsupportedDriver = errors.New("unsupported ledger driver")
)
