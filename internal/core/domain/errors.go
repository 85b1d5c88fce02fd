package domain

import "errors"

var (
	// ErrUnknownWord is thrown when a known word is not part of the BIP39
	// english wordlist. It surfaces before any session is created.
	ErrUnknownWord = errors.New("word is not in the BIP39 wordlist")
	// ErrInvalidWordPosition is thrown when a known word is mapped to a
	// position outside the [0, 11] range.
	ErrInvalidWordPosition = errors.New("word position must be in range [0, 11]")
	// ErrInvalidMaxCombinations ...
	ErrInvalidMaxCombinations = errors.New("max combinations must be a positive number")
	// ErrSessionNotFound is thrown when requesting an unknown session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionAlreadyExisting ...
	ErrSessionAlreadyExisting = errors.New("session already existing")
	// ErrInvalidStatusTransition is thrown when trying to move a session out
	// of a terminal status.
	ErrInvalidStatusTransition = errors.New("session status cannot regress from a terminal state")
	// ErrSessionNotPending is thrown when starting the loop of a session that
	// already left the pending status.
	ErrSessionNotPending = errors.New("session must be in pending status to be started")
	// ErrMaxCombinationsReached is thrown when incrementing the progress
	// counter beyond the session limit.
	ErrMaxCombinationsReached = errors.New("combinations checked cannot exceed max combinations")
)
