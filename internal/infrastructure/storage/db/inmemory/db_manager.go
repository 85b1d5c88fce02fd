package inmemory

import (
	"github.com/seedrescue/recoveryd/internal/core/domain"
)

// RepoManager gathers the process-scoped inmemory repositories. Sessions and
// results are ephemeral on purpose, nothing survives a restart.
type RepoManager struct {
	sessionRepository domain.SessionRepository
	resultRepository  domain.ResultRepository
}

func NewRepoManager() *RepoManager {
	return &RepoManager{
		sessionRepository: NewSessionRepositoryImpl(),
		resultRepository:  NewResultRepositoryImpl(),
	}
}

func (d *RepoManager) SessionRepository() domain.SessionRepository {
	return d.sessionRepository
}

func (d *RepoManager) ResultRepository() domain.ResultRepository {
	return d.resultRepository
}
