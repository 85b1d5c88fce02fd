package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedrescue/recoveryd/internal/core/domain"
)

func newTestSession(t *testing.T) *domain.Session {
	t.Helper()
	session, err := domain.NewSession(
		map[int]string{0: "abandon"}, 10, decimal.Zero,
	)
	require.NoError(t, err)
	return session
}

func TestNewSession(t *testing.T) {
	session := newTestSession(t)

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, domain.SessionStatusPending, session.Status)
	assert.Zero(t, session.CombinationsChecked)
	assert.Zero(t, session.FoundWallets)
	assert.Empty(t, session.Logs)
}

func TestFailingNewSession(t *testing.T) {
	tests := []struct {
		name            string
		knownWords      map[int]string
		maxCombinations int
		err             error
	}{
		{
			name:            "zero max combinations",
			knownWords:      nil,
			maxCombinations: 0,
			err:             domain.ErrInvalidMaxCombinations,
		},
		{
			name:            "position out of range",
			knownWords:      map[int]string{12: "abandon"},
			maxCombinations: 10,
			err:             domain.ErrInvalidWordPosition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewSession(tt.knownWords, tt.maxCombinations, decimal.Zero)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestSessionStatusTransitions(t *testing.T) {
	session := newTestSession(t)

	require.NoError(t, session.Start())
	assert.Equal(t, domain.SessionStatusRunning, session.Status)

	// a running session cannot be started twice.
	assert.ErrorIs(t, session.Start(), domain.ErrSessionNotPending)

	require.NoError(t, session.Complete())
	assert.Equal(t, domain.SessionStatusCompleted, session.Status)
	assert.True(t, session.Status.IsTerminal())

	// terminal statuses admit no further transition.
	assert.ErrorIs(t, session.Complete(), domain.ErrInvalidStatusTransition)
	assert.ErrorIs(t, session.Fail(), domain.ErrInvalidStatusTransition)
}

func TestSessionCancelIsIdempotent(t *testing.T) {
	session := newTestSession(t)
	require.NoError(t, session.Start())

	require.NoError(t, session.Cancel())
	assert.Equal(t, domain.SessionStatusCancelled, session.Status)

	require.NoError(t, session.Cancel())
	assert.Equal(t, domain.SessionStatusCancelled, session.Status)

	// cancelling a completed session leaves it completed.
	completed := newTestSession(t)
	require.NoError(t, completed.Start())
	require.NoError(t, completed.Complete())
	require.NoError(t, completed.Cancel())
	assert.Equal(t, domain.SessionStatusCompleted, completed.Status)
}

func TestIncrementCheckedHonorsMaxCombinations(t *testing.T) {
	session := newTestSession(t)

	for i := 0; i < session.MaxCombinations; i++ {
		require.NoError(t, session.IncrementChecked())
	}
	assert.Equal(t, session.MaxCombinations, session.CombinationsChecked)
	assert.ErrorIs(t, session.IncrementChecked(), domain.ErrMaxCombinationsReached)
	assert.Equal(t, session.MaxCombinations, session.CombinationsChecked)
}

func TestAppendLog(t *testing.T) {
	session := newTestSession(t)

	session.AppendLog("first")
	session.AppendLog("second")

	require.Len(t, session.Logs, 2)
	assert.Equal(t, "first", session.Logs[0].Message)
	assert.False(t, session.Logs[1].Timestamp.Before(session.Logs[0].Timestamp))
	assert.Contains(t, session.Logs[0].Format(), "] first")
}
