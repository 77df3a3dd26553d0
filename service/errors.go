package service

import "errors"

var (
	// ErrInvalidInput is returned when a required field is missing or out of range
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownGameType is returned for a game type that is not configured
	ErrUnknownGameType = errors.New("unknown game type")

	// ErrAmbiguousIdentity is returned when a result names neither or both of a player and a guest
	ErrAmbiguousIdentity = errors.New("exactly one of playerId or guestId is required")
)
