package inmemory

import (
	"context"
	"sync"

	"github.com/seedrescue/recoveryd/internal/core/domain"
)

type resultInmemoryStore struct {
	results map[string][]*domain.Result
	locker  *sync.Mutex
}

type resultRepositoryImpl struct {
	store *resultInmemoryStore
}

// NewResultRepositoryImpl returns a new inmemory ResultRepository
// implementation.
func NewResultRepositoryImpl() domain.ResultRepository {
	return &resultRepositoryImpl{
		store: &resultInmemoryStore{
			results: map[string][]*domain.Result{},
			locker:  &sync.Mutex{},
		},
	}
}

func (r resultRepositoryImpl) AddResult(
	_ context.Context, result *domain.Result,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	// results are appended in discovery order, FoundAt is strictly
	// increasing within a session.
	r.store.results[result.SessionID] = append(
		r.store.results[result.SessionID], result,
	)
	return nil
}

func (r resultRepositoryImpl) GetResultsForSession(
	_ context.Context, sessionID string,
) ([]*domain.Result, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	results := make([]*domain.Result, 0, len(r.store.results[sessionID]))
	for _, result := range r.store.results[sessionID] {
		copied := *result
		results = append(results, &copied)
	}
	return results, nil
}
