package services

import "errors"

var (
	// ErrPersist wraps every failed blob store write. The in-memory view has
	// already been restored when it is returned.
	ErrPersist = errors.New("persist failed")

	ErrCrossGroupMove  = errors.New("records belong to different date groups")
	ErrInvalidBackup   = errors.New("invalid backup")
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrInvalidTheme    = errors.New("invalid theme")
	ErrUnknownLanguage = errors.New("unknown language")
)
