package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/seedrescue/recoveryd/internal/core/domain"
	"github.com/seedrescue/recoveryd/pkg/generator"
	"github.com/seedrescue/recoveryd/pkg/oracle"
	"github.com/seedrescue/recoveryd/pkg/wallet"
)

const defaultMaxCombinations = 100000

// StartSessionRequest holds the parameters of a new recovery session.
type StartSessionRequest struct {
	// KnownWords maps mnemonic positions (0-11) to their fixed word.
	KnownWords map[int]string
	// MaxCombinations caps the number of candidates checked.
	MaxCombinations int
	// MinBalance is the threshold above which a candidate is recorded as a
	// found wallet. Zero means any positive balance.
	MinBalance decimal.Decimal
	// Seed seeds the candidate sampling, zero means time-based. Fixing it
	// makes a session reproducible.
	Seed int64
}

// SessionStatus is the progress snapshot of a session.
type SessionStatus struct {
	Status              string
	CombinationsChecked int
	FoundWallets        int
}

// RecoveryService is the interface of the search-and-verify engine consumed
// by the transport layer.
type RecoveryService interface {
	// StartSession validates the known words, creates a session and starts
	// its search loop in background, returning the session id immediately.
	StartSession(ctx context.Context, req StartSessionRequest) (string, error)
	// GetStatus returns the progress snapshot of a session.
	GetStatus(ctx context.Context, sessionID string) (SessionStatus, error)
	// GetResults returns the found wallets of a session in discovery order.
	GetResults(ctx context.Context, sessionID string) ([]*domain.Result, error)
	// GetLogs returns the session activity log in emission order.
	GetLogs(ctx context.Context, sessionID string) ([]domain.LogEntry, error)
	// StopSession requests cooperative cancellation of a session. It is
	// idempotent on already terminal sessions.
	StopSession(ctx context.Context, sessionID string) error
	// ValidateWord returns whether the word belongs to the BIP39 wordlist.
	ValidateWord(word string) bool
	// WordList returns up to limit words of the BIP39 wordlist.
	WordList(limit int) []string
}

// Opts defines the parameters needed for creating a recovery service with
// the NewRecoveryService method.
type Opts struct {
	SessionRepository      domain.SessionRepository
	ResultRepository       domain.ResultRepository
	OracleService          oracle.Service
	DefaultMaxCombinations int
}

func (o Opts) validate() error {
	if o.SessionRepository == nil {
		return fmt.Errorf("session repository must not be null")
	}
	if o.ResultRepository == nil {
		return fmt.Errorf("result repository must not be null")
	}
	if o.OracleService == nil {
		return fmt.Errorf("oracle service must not be null")
	}
	return nil
}

type recoveryService struct {
	sessionRepository      domain.SessionRepository
	resultRepository       domain.ResultRepository
	oracleSvc              oracle.Service
	defaultMaxCombinations int

	lock        *sync.Mutex
	stopSignals map[string]chan struct{}
}

// NewRecoveryService returns a RecoveryService backed by the given
// repositories and balance oracle.
func NewRecoveryService(opts Opts) (RecoveryService, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	maxCombinations := opts.DefaultMaxCombinations
	if maxCombinations <= 0 {
		maxCombinations = defaultMaxCombinations
	}

	return &recoveryService{
		sessionRepository:      opts.SessionRepository,
		resultRepository:       opts.ResultRepository,
		oracleSvc:              opts.OracleService,
		defaultMaxCombinations: maxCombinations,
		lock:                   &sync.Mutex{},
		stopSignals:            map[string]chan struct{}{},
	}, nil
}

func (s *recoveryService) StartSession(
	ctx context.Context, req StartSessionRequest,
) (string, error) {
	for position, word := range req.KnownWords {
		if position < 0 || position >= domain.MnemonicLength {
			return "", domain.ErrInvalidWordPosition
		}
		if !generator.IsWord(word) {
			return "", fmt.Errorf("%w: %s", domain.ErrUnknownWord, word)
		}
	}

	maxCombinations := req.MaxCombinations
	if maxCombinations <= 0 {
		maxCombinations = s.defaultMaxCombinations
	}

	session, err := domain.NewSession(req.KnownWords, maxCombinations, req.MinBalance)
	if err != nil {
		return "", err
	}

	candidates, err := generator.New(generator.Opts{
		KnownWords:      session.KnownWords,
		MaxCombinations: session.MaxCombinations,
		Seed:            req.Seed,
	})
	if err != nil {
		return "", err
	}

	if err := session.Start(); err != nil {
		return "", err
	}
	session.AppendLog(fmt.Sprintf(
		"session started: %d known words, checking up to %d combinations",
		len(session.KnownWords), session.MaxCombinations,
	))

	// the stop signal must exist before the session is visible, a stop
	// request landing right after AddSession has to find it.
	stopSignal := make(chan struct{})
	s.lock.Lock()
	s.stopSignals[session.ID] = stopSignal
	s.lock.Unlock()

	if err := s.sessionRepository.AddSession(ctx, session); err != nil {
		s.unregisterStopSignal(session.ID)
		return "", err
	}

	go s.runLoop(session.ID, candidates, session.MinBalance, stopSignal)

	return session.ID, nil
}

func (s *recoveryService) GetStatus(
	ctx context.Context, sessionID string,
) (SessionStatus, error) {
	session, err := s.sessionRepository.GetSession(ctx, sessionID)
	if err != nil {
		return SessionStatus{}, err
	}
	return SessionStatus{
		Status:              session.Status.String(),
		CombinationsChecked: session.CombinationsChecked,
		FoundWallets:        session.FoundWallets,
	}, nil
}

func (s *recoveryService) GetResults(
	ctx context.Context, sessionID string,
) ([]*domain.Result, error) {
	if _, err := s.sessionRepository.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.resultRepository.GetResultsForSession(ctx, sessionID)
}

func (s *recoveryService) GetLogs(
	ctx context.Context, sessionID string,
) ([]domain.LogEntry, error) {
	session, err := s.sessionRepository.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Logs, nil
}

func (s *recoveryService) StopSession(
	ctx context.Context, sessionID string,
) error {
	if _, err := s.sessionRepository.GetSession(ctx, sessionID); err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if stopSignal, ok := s.stopSignals[sessionID]; ok {
		select {
		case <-stopSignal:
		default:
			close(stopSignal)
		}
	}
	return nil
}

func (s *recoveryService) ValidateWord(word string) bool {
	return generator.IsWord(word)
}

func (s *recoveryService) WordList(limit int) []string {
	words := generator.WordList()
	if limit <= 0 || limit > len(words) {
		limit = len(words)
	}
	return words[:limit]
}

// runLoop drives the generate -> derive -> verify loop of one session. One
// candidate fully settles, derivation plus all three balance resolves, before
// the next begins. The stop signal is checked once per candidate boundary.
func (s *recoveryService) runLoop(
	sessionID string,
	candidates *generator.Generator,
	minBalance decimal.Decimal,
	stopSignal chan struct{},
) {
	ctx := context.Background()
	logger := log.WithField("session_id", sessionID)
	defer s.unregisterStopSignal(sessionID)

	for {
		select {
		case <-stopSignal:
			s.finishSession(ctx, sessionID, (*domain.Session).Cancel,
				"session cancelled by stop request")
			logger.Info("session cancelled")
			return
		default:
		}

		mnemonic, ok := candidates.Next()
		if !ok {
			s.finishSession(ctx, sessionID, (*domain.Session).Complete,
				"search completed: candidate space exhausted")
			logger.Info("session completed")
			return
		}

		if err := s.checkCandidate(ctx, sessionID, mnemonic, minBalance); err != nil {
			s.finishSession(ctx, sessionID, (*domain.Session).Fail,
				fmt.Sprintf("session aborted: %v", err))
			logger.WithError(err).Error("session failed")
			return
		}
	}
}

// checkCandidate derives the candidate's addresses, resolves their balances
// concurrently and records the candidate as found when the summed balance
// exceeds the session minimum.
func (s *recoveryService) checkCandidate(
	ctx context.Context,
	sessionID, mnemonic string,
	minBalance decimal.Decimal,
) error {
	candidateWallet, err := wallet.NewWalletFromMnemonic(
		wallet.NewWalletFromMnemonicOpts{Mnemonic: mnemonic},
	)
	if err != nil {
		// Sampled candidates are checksum-filtered at generation, only a
		// fully-specified phrase can reach derivation with an invalid
		// checksum. Such a phrase is a legitimate candidate that simply
		// cannot hold funds, it is counted and skipped, not a failure.
		if errors.Is(err, wallet.ErrInvalidMnemonic) {
			return s.skipCandidate(ctx, sessionID,
				"candidate has an invalid checksum, skipped")
		}
		return fmt.Errorf("derivation: %w", err)
	}

	addresses, err := candidateWallet.DeriveAddressSet()
	if err != nil {
		return fmt.Errorf("derivation: %w", err)
	}
	privateKey, err := candidateWallet.PrivateKeyHex()
	if err != nil {
		return fmt.Errorf("derivation: %w", err)
	}

	// The three resolves run concurrently, they are independent lookups.
	// The oracle bounds each one with its own per-source timeouts, so the
	// candidate settles within a bounded delay even on dead sources.
	addressByType := map[string]string{
		domain.AddressTypeLegacy:       addresses.Legacy,
		domain.AddressTypeSegwit:       addresses.Segwit,
		domain.AddressTypeNativeSegwit: addresses.NativeSegwit,
	}
	records := make(map[string]oracle.Record)
	recordsLock := &sync.Mutex{}

	g, gctx := errgroup.WithContext(ctx)
	for addressType, address := range addressByType {
		addressType, address := addressType, address
		g.Go(func() error {
			record, err := s.oracleSvc.Resolve(gctx, address)
			if err != nil {
				return err
			}
			recordsLock.Lock()
			records[addressType] = record
			recordsLock.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("balance resolution: %w", err)
	}

	balances := make(map[string]decimal.Decimal)
	totalBalance := decimal.Zero
	cacheHits := make([]string, 0, len(records))
	for addressType, record := range records {
		balances[addressType] = record.Balance
		totalBalance = totalBalance.Add(record.Balance)
		if record.Cached {
			cacheHits = append(cacheHits, record.Address)
		}
	}

	found := totalBalance.GreaterThan(minBalance)

	return s.sessionRepository.UpdateSession(
		ctx, sessionID,
		func(session *domain.Session) (*domain.Session, error) {
			for _, address := range cacheHits {
				session.AppendLog(fmt.Sprintf("cache hit for %s", address))
			}

			if found {
				result := &domain.Result{
					SessionID:    sessionID,
					Mnemonic:     mnemonic,
					PrivateKey:   privateKey,
					Addresses:    domain.AddressSet(addresses),
					Balances:     balances,
					TotalBalance: totalBalance,
					FoundAt:      session.CombinationsChecked + 1,
					CreatedAt:    time.Now(),
				}
				if err := s.resultRepository.AddResult(ctx, result); err != nil {
					return nil, err
				}
				session.IncrementFound()
				session.AppendLog(fmt.Sprintf(
					"found wallet with %s BTC: %s", totalBalance, mnemonic,
				))
			}

			if err := session.IncrementChecked(); err != nil {
				return nil, err
			}
			session.AppendLog(fmt.Sprintf(
				"checked %d/%d combinations, %d wallets found",
				session.CombinationsChecked, session.MaxCombinations,
				session.FoundWallets,
			))
			return session, nil
		},
	)
}

// skipCandidate counts a candidate that could not be verified without
// treating it as a session failure.
func (s *recoveryService) skipCandidate(
	ctx context.Context, sessionID, message string,
) error {
	return s.sessionRepository.UpdateSession(
		ctx, sessionID,
		func(session *domain.Session) (*domain.Session, error) {
			session.AppendLog(message)
			if err := session.IncrementChecked(); err != nil {
				return nil, err
			}
			session.AppendLog(fmt.Sprintf(
				"checked %d/%d combinations, %d wallets found",
				session.CombinationsChecked, session.MaxCombinations,
				session.FoundWallets,
			))
			return session, nil
		},
	)
}

func (s *recoveryService) finishSession(
	ctx context.Context,
	sessionID string,
	transition func(*domain.Session) error,
	message string,
) {
	if err := s.sessionRepository.UpdateSession(
		ctx, sessionID,
		func(session *domain.Session) (*domain.Session, error) {
			if err := transition(session); err != nil {
				return nil, err
			}
			session.AppendLog(message)
			return session, nil
		},
	); err != nil {
		log.WithError(err).WithField("session_id", sessionID).
			Warn("could not finalize session")
	}
}

func (s *recoveryService) unregisterStopSignal(sessionID string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.stopSignals, sessionID)
}
