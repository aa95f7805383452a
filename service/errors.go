package service

import "errors"

var (
	// ErrInvalidAmount is returned when an operation is given a non-positive
	// amount (or a negative amount for SetBalance).
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds is returned when a debit exceeds the user's balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAlreadyRunning is returned when starting a file watcher that is
	// already running.
	ErrAlreadyRunning = errors.New("file watcher is already running")

	// ErrNotRunning is returned when stopping a file watcher that is not
	// running.
	ErrNotRunning = errors.New("file watcher is not running")
)
