package domain

import "context"

// ResultRepository is the interface for storing and retrieving found wallets.
type ResultRepository interface {
	// AddResult appends a new found wallet.
	AddResult(ctx context.Context, result *Result) error
	// GetResultsForSession returns the results of a session ordered by
	// discovery (FoundAt ascending).
	GetResultsForSession(ctx context.Context, sessionID string) ([]*Result, error)
}
