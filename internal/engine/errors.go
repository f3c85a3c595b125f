package engine

import "errors"

// Errors returned by Session operations.
var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrSentinelTarget  = errors.New("rules cannot target the unclassified category")
	ErrRowNotFound     = errors.New("transaction not found")
	ErrNothingStaged   = errors.New("no statement files are staged")
	ErrUnknownColumn   = errors.New("column not found in staged files")
)
