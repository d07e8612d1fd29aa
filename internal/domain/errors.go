package domain

import "errors"

var (
	// Parsing errors
	ErrUnreadableInput = errors.New("input is not a readable spreadsheet")

	// Ledger errors
	ErrUnknownSource    = errors.New("unknown movement source")
	ErrMovementNotFound = errors.New("movement not found")

	// Query errors
	ErrInvalidDateRange = errors.New("invalid date range")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)
