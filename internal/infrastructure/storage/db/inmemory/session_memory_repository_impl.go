package inmemory

import (
	"context"
	"sync"

	"github.com/seedrescue/recoveryd/internal/core/domain"
)

type sessionInmemoryStore struct {
	sessions map[string]*domain.Session
	locker   *sync.Mutex
}

type sessionRepositoryImpl struct {
	store *sessionInmemoryStore
}

// NewSessionRepositoryImpl returns a new inmemory SessionRepository
// implementation.
func NewSessionRepositoryImpl() domain.SessionRepository {
	return &sessionRepositoryImpl{
		store: &sessionInmemoryStore{
			sessions: map[string]*domain.Session{},
			locker:   &sync.Mutex{},
		},
	}
}

func (r sessionRepositoryImpl) AddSession(
	_ context.Context, session *domain.Session,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.sessions[session.ID]; ok {
		return domain.ErrSessionAlreadyExisting
	}
	r.store.sessions[session.ID] = session
	return nil
}

func (r sessionRepositoryImpl) GetSession(
	_ context.Context, id string,
) (*domain.Session, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	session, ok := r.store.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	copied := *session
	copied.Logs = append([]domain.LogEntry{}, session.Logs...)
	return &copied, nil
}

func (r sessionRepositoryImpl) UpdateSession(
	_ context.Context,
	id string,
	updateFn func(session *domain.Session) (*domain.Session, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	session, ok := r.store.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}

	updated, err := updateFn(session)
	if err != nil {
		return err
	}

	r.store.sessions[id] = updated
	return nil
}
