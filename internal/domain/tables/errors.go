package tables

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidTables = errors.New("invalid rate tables")
	ErrLoadTables    = errors.New("load rate tables failed")
)
