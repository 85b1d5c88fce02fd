package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// SessionStatusPending is the status of a session that has been created
	// but whose search loop has not started yet.
	SessionStatusPending = SessionStatus(iota)
	// SessionStatusRunning is the status of a session whose search loop is
	// checking candidates.
	SessionStatusRunning
	// SessionStatusCompleted is the terminal status of a session that checked
	// the whole candidate space or reached its combinations limit.
	SessionStatusCompleted
	// SessionStatusError is the terminal status of a session stopped by an
	// unrecoverable failure.
	SessionStatusError
	// SessionStatusCancelled is the terminal status of a session stopped by
	// an external stop request.
	SessionStatusCancelled
)

// SessionStatus represents the state of a recovery session. Transitions are
// one-directional: pending -> running -> {completed, error, cancelled}.
type SessionStatus int

func (s SessionStatus) String() string {
	switch s {
	case SessionStatusPending:
		return "pending"
	case SessionStatusRunning:
		return "running"
	case SessionStatusCompleted:
		return "completed"
	case SessionStatusError:
		return "error"
	case SessionStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsTerminal returns whether the status admits no further transition.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted ||
		s == SessionStatusError ||
		s == SessionStatusCancelled
}

// LogEntry is a single line of the session activity log.
type LogEntry struct {
	Timestamp time.Time
	Message   string
}

// Format returns the entry as shown to the end user.
func (l LogEntry) Format() string {
	return fmt.Sprintf("[%s] %s", l.Timestamp.Format("15:04:05"), l.Message)
}

// Session is a recovery search over the mnemonic space constrained by the
// known words. It is mutated only by its own controller loop and by an
// external stop request, and becomes immutable once the status is terminal.
type Session struct {
	ID                  string
	KnownWords          map[int]string
	MaxCombinations     int
	MinBalance          decimal.Decimal
	Status              SessionStatus
	CombinationsChecked int
	FoundWallets        int
	CreatedAt           time.Time
	Logs                []LogEntry
}

// NewSession returns a pending session with the given word constraints.
func NewSession(
	knownWords map[int]string,
	maxCombinations int,
	minBalance decimal.Decimal,
) (*Session, error) {
	if maxCombinations <= 0 {
		return nil, ErrInvalidMaxCombinations
	}
	for position := range knownWords {
		if position < 0 || position >= MnemonicLength {
			return nil, ErrInvalidWordPosition
		}
	}

	words := make(map[int]string)
	for position, word := range knownWords {
		words[position] = word
	}

	return &Session{
		ID:              uuid.New().String(),
		KnownWords:      words,
		MaxCombinations: maxCombinations,
		MinBalance:      minBalance,
		Status:          SessionStatusPending,
		CreatedAt:       time.Now(),
		Logs:            make([]LogEntry, 0),
	}, nil
}

// Start transitions the session from pending to running.
func (s *Session) Start() error {
	if s.Status != SessionStatusPending {
		return ErrSessionNotPending
	}
	s.Status = SessionStatusRunning
	return nil
}

// Complete transitions the session to the completed terminal status.
func (s *Session) Complete() error {
	return s.transitionTo(SessionStatusCompleted)
}

// Fail transitions the session to the error terminal status.
func (s *Session) Fail() error {
	return s.transitionTo(SessionStatusError)
}

// Cancel transitions the session to the cancelled terminal status. Cancelling
// an already terminal session is a no-op so that stop requests stay
// idempotent.
func (s *Session) Cancel() error {
	if s.Status.IsTerminal() {
		return nil
	}
	s.Status = SessionStatusCancelled
	return nil
}

func (s *Session) transitionTo(status SessionStatus) error {
	if s.Status.IsTerminal() {
		return ErrInvalidStatusTransition
	}
	s.Status = status
	return nil
}

// IncrementChecked advances the progress counter by one candidate. The
// counter is monotonic and never exceeds MaxCombinations.
func (s *Session) IncrementChecked() error {
	if s.CombinationsChecked >= s.MaxCombinations {
		return ErrMaxCombinationsReached
	}
	s.CombinationsChecked++
	return nil
}

// IncrementFound increases the number of found wallets.
func (s *Session) IncrementFound() {
	s.FoundWallets++
}

// AppendLog adds a timestamped message to the session activity log.
func (s *Session) AppendLog(message string) {
	s.Logs = append(s.Logs, LogEntry{
		Timestamp: time.Now(),
		Message:   message,
	})
}
