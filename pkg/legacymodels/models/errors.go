package models

import "errors"

var (
	// login errors
	ErrUserBanned   = errors.New("user has been banned")
	ErrInvalidLogin = errors.New("invalid login")
	ErrUserExists   = errors.New("username already exists")

	// ticket errors
	ErrNoTicket     = errors.New("no ticket")
	ErrTicketDecode = errors.New("ticket decode failed")

	// password reset errors
	ErrResetNotFound = errors.New("reset key not found")

	// startup errors
	ErrMissingAppSecret = errors.New("application secret is not configured")
)
