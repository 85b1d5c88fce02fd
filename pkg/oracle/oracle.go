// Package oracle resolves Bitcoin addresses to balances by racing multiple
// independent data sources with caching and failover.
package oracle

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/seedrescue/recoveryd/pkg/circuitbreaker"
	"github.com/seedrescue/recoveryd/pkg/explorer"
)

var (
	// ErrNullSources ...
	ErrNullSources = errors.New("at least one balance source must be provided")
)

const (
	defaultCacheTTL            = 5 * time.Minute
	defaultSourceInterval      = 500 * time.Millisecond
	defaultMaxOutboundRequests = 16
)

// Record is a cached balance observation for one address.
type Record struct {
	Address    string
	Balance    decimal.Decimal
	Source     string
	ObservedAt time.Time
	// Cached reports whether the record was served from the cache instead of
	// a fresh source race.
	Cached bool
}

// Service is the interface of the balance oracle.
type Service interface {
	// Resolve returns the balance of the address. A fresh cached record is
	// returned without any outbound request. Otherwise all sources are raced
	// and the first parseable response wins. When every source fails the
	// resolved balance is zero and no error is returned; the zero is NOT
	// cached so a later resolve may succeed once a source recovers.
	Resolve(ctx context.Context, address string) (Record, error)
}

// Opts defines the parameters needed for creating an oracle service with the
// NewService method.
type Opts struct {
	// Sources are the data sources raced on each cache miss.
	Sources []explorer.Source
	// CacheTTL is the freshness window of cached records.
	CacheTTL time.Duration
	// SourceInterval is the minimum spacing between successive requests to
	// the same source. Spacing is per-source, a throttled source does not
	// slow down the others.
	SourceInterval time.Duration
	// MaxOutboundRequests caps concurrent outbound requests across all
	// sessions.
	MaxOutboundRequests int64
}

func (o Opts) validate() error {
	if len(o.Sources) == 0 {
		return ErrNullSources
	}
	return nil
}

type sourceHandler struct {
	source  explorer.Source
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

type service struct {
	handlers []*sourceHandler
	cache    *balanceCache
	group    singleflight.Group
	sem      *semaphore.Weighted
}

// NewService returns an oracle racing the given sources.
func NewService(opts Opts) (Service, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	cacheTTL := opts.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	sourceInterval := opts.SourceInterval
	if sourceInterval <= 0 {
		sourceInterval = defaultSourceInterval
	}
	maxOutbound := opts.MaxOutboundRequests
	if maxOutbound <= 0 {
		maxOutbound = defaultMaxOutboundRequests
	}

	handlers := make([]*sourceHandler, 0, len(opts.Sources))
	for _, source := range opts.Sources {
		handlers = append(handlers, &sourceHandler{
			source:  source,
			limiter: rate.NewLimiter(rate.Every(sourceInterval), 1),
			breaker: circuitbreaker.NewCircuitBreaker(source.Name()),
		})
	}

	return &service{
		handlers: handlers,
		cache:    newBalanceCache(cacheTTL),
		sem:      semaphore.NewWeighted(maxOutbound),
	}, nil
}

func (s *service) Resolve(ctx context.Context, address string) (Record, error) {
	if record, ok := s.cache.get(address); ok {
		record.Cached = true
		log.WithField("address", address).Debugf(
			"balance cache hit from %s", record.Source,
		)
		return record, nil
	}

	// Concurrent resolves of the same address share one in-flight race.
	value, err, _ := s.group.Do(address, func() (interface{}, error) {
		return s.race(ctx, address)
	})
	if err != nil {
		return Record{}, err
	}
	return value.(Record), nil
}

type fetchResult struct {
	record Record
	err    error
}

// race issues one request per source concurrently and returns the first
// parseable response. Losing requests keep running until their own timeout
// but their results are ignored and never cached over the winner.
func (s *service) race(ctx context.Context, address string) (Record, error) {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan fetchResult, len(s.handlers))
	for _, handler := range s.handlers {
		go func(h *sourceHandler) {
			results <- s.fetchFromSource(raceCtx, h, address)
		}(handler)
	}

	for i := 0; i < len(s.handlers); i++ {
		select {
		case <-ctx.Done():
			return Record{}, ctx.Err()
		case result := <-results:
			if result.err != nil {
				continue
			}
			s.cache.put(result.record)
			return result.record, nil
		}
	}

	log.WithField("address", address).Warn(
		"all balance sources failed, assuming zero balance",
	)
	return Record{
		Address:    address,
		Balance:    decimal.Zero,
		ObservedAt: time.Now(),
	}, nil
}

func (s *service) fetchFromSource(
	ctx context.Context, handler *sourceHandler, address string,
) fetchResult {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return fetchResult{err: err}
	}
	defer s.sem.Release(1)

	if err := handler.limiter.Wait(ctx); err != nil {
		return fetchResult{err: err}
	}

	balance, err := handler.breaker.Execute(func() (interface{}, error) {
		return handler.source.FetchBalance(ctx, address)
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.WithError(err).WithField("address", address).Warnf(
				"source %s failed", handler.source.Name(),
			)
		}
		return fetchResult{err: err}
	}

	record := Record{
		Address:    address,
		Balance:    balance.(decimal.Decimal),
		Source:     handler.source.Name(),
		ObservedAt: time.Now(),
	}
	log.WithField("address", address).Infof(
		"balance %s BTC resolved by %s", record.Balance, record.Source,
	)
	return fetchResult{record: record}
}
