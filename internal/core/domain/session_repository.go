package domain

import "context"

// SessionRepository is the interface for storing and retrieving sessions.
type SessionRepository interface {
	// AddSession stores a new session, failing if the id already exists.
	AddSession(ctx context.Context, session *Session) error
	// GetSession returns the session identified by id, or ErrSessionNotFound.
	GetSession(ctx context.Context, id string) (*Session, error)
	// UpdateSession atomically applies updateFn to the stored session.
	UpdateSession(
		ctx context.Context,
		id string,
		updateFn func(session *Session) (*Session, error),
	) error
}
