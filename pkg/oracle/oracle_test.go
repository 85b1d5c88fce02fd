package oracle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedrescue/recoveryd/pkg/explorer"
)

const testAddress = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"

type fakeSource struct {
	name    string
	balance decimal.Decimal
	err     error
	delay   time.Duration
	calls   int64
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchBalance(
	ctx context.Context, _ string,
) (decimal.Decimal, error) {
	atomic.AddInt64(&f.calls, 1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return decimal.Zero, ctx.Err()
		}
	}
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.balance, nil
}

func (f *fakeSource) callCount() int64 {
	return atomic.LoadInt64(&f.calls)
}

func newTestService(t *testing.T, sources ...explorer.Source) Service {
	t.Helper()
	svc, err := NewService(Opts{Sources: sources})
	require.NoError(t, err)
	return svc
}

func TestResolveFirstSuccessWins(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	winner := &fakeSource{
		name:    "winner",
		balance: decimal.RequireFromString("0.5"),
		delay:   50 * time.Millisecond,
	}
	failing := []explorer.Source{
		&fakeSource{name: "timeout-1", err: context.DeadlineExceeded},
		&fakeSource{name: "timeout-2", err: context.DeadlineExceeded},
		&fakeSource{name: "timeout-3", err: context.DeadlineExceeded},
	}

	svc := newTestService(t, append(failing, winner)...)

	record, err := svc.Resolve(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, "winner", record.Source)
	assert.True(t, decimal.RequireFromString("0.5").Equal(record.Balance))
	assert.False(t, record.Cached)

	var warnings, successes int
	for _, entry := range hook.AllEntries() {
		switch entry.Level {
		case log.WarnLevel:
			warnings++
		case log.InfoLevel:
			successes++
		}
	}
	assert.Equal(t, 3, warnings)
	assert.Equal(t, 1, successes)
}

func TestResolveAllSourcesFailed(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	sources := []*fakeSource{
		{name: "s1", err: errors.New("rate limited")},
		{name: "s2", err: errors.New("timeout")},
		{name: "s3", err: errors.New("malformed payload")},
	}
	svc := newTestService(t, sources[0], sources[1], sources[2])

	record, err := svc.Resolve(context.Background(), testAddress)
	require.NoError(t, err)
	assert.True(t, record.Balance.IsZero())
	assert.Empty(t, record.Source)

	found := false
	for _, entry := range hook.AllEntries() {
		if entry.Level == log.WarnLevel &&
			entry.Message == "all balance sources failed, assuming zero balance" {
			found = true
		}
	}
	assert.True(t, found)

	// the zero result must not be cached: a second resolve hits the sources
	// again.
	_, err = svc.Resolve(context.Background(), testAddress)
	require.NoError(t, err)
	for _, source := range sources {
		assert.Equal(t, int64(2), source.callCount())
	}
}

func TestResolveCacheHit(t *testing.T) {
	source := &fakeSource{
		name:    "only",
		balance: decimal.RequireFromString("1.23456789"),
	}
	svc := newTestService(t, source)

	first, err := svc.Resolve(context.Background(), testAddress)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := svc.Resolve(context.Background(), testAddress)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Source, second.Source)
	assert.True(t, first.Balance.Equal(second.Balance))

	// the cached resolve must not issue any outbound request.
	assert.Equal(t, int64(1), source.callCount())
}

func TestResolveCacheHitIsLogged(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	prevLevel := log.GetLevel()
	log.SetLevel(log.DebugLevel)
	defer log.SetLevel(prevLevel)

	source := &fakeSource{name: "only", balance: decimal.NewFromInt(1)}
	svc := newTestService(t, source)

	_, err := svc.Resolve(context.Background(), testAddress)
	require.NoError(t, err)
	_, err = svc.Resolve(context.Background(), testAddress)
	require.NoError(t, err)

	logged := false
	for _, entry := range hook.AllEntries() {
		if entry.Level == log.DebugLevel &&
			entry.Message == "balance cache hit from only" {
			logged = true
		}
	}
	assert.True(t, logged)
}

func TestResolveRefetchesAfterCacheExpiry(t *testing.T) {
	source := &fakeSource{name: "only", balance: decimal.NewFromInt(1)}
	svc, err := NewService(Opts{
		Sources:        []explorer.Source{source},
		CacheTTL:       30 * time.Millisecond,
		SourceInterval: time.Millisecond,
	})
	require.NoError(t, err)

	first, err := svc.Resolve(context.Background(), testAddress)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	time.Sleep(60 * time.Millisecond)

	// the record expired, the resolve must go back to the sources.
	second, err := svc.Resolve(context.Background(), testAddress)
	require.NoError(t, err)
	assert.False(t, second.Cached)
	assert.Equal(t, int64(2), source.callCount())
}

func TestResolveSpacesRequestsToSameSource(t *testing.T) {
	interval := 100 * time.Millisecond
	source := &fakeSource{name: "spaced", balance: decimal.NewFromInt(1)}
	svc, err := NewService(Opts{
		Sources:        []explorer.Source{source},
		SourceInterval: interval,
	})
	require.NoError(t, err)

	otherAddress := "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"

	start := time.Now()
	_, err = svc.Resolve(context.Background(), testAddress)
	require.NoError(t, err)
	_, err = svc.Resolve(context.Background(), otherAddress)
	require.NoError(t, err)

	// the second request to the same source waits out the spacing interval.
	assert.GreaterOrEqual(t, time.Since(start), interval)
	assert.Equal(t, int64(2), source.callCount())
}

func TestResolveSingleFlight(t *testing.T) {
	source := &fakeSource{
		name:    "slow",
		balance: decimal.NewFromInt(1),
		delay:   100 * time.Millisecond,
	}
	svc := newTestService(t, source)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record, err := svc.Resolve(context.Background(), testAddress)
			assert.NoError(t, err)
			assert.True(t, decimal.NewFromInt(1).Equal(record.Balance))
		}()
	}
	wg.Wait()

	// concurrent resolves of the same address share a single in-flight race.
	assert.Equal(t, int64(1), source.callCount())
}

func TestResolveHonorsContextCancellation(t *testing.T) {
	source := &fakeSource{
		name:    "very-slow",
		balance: decimal.NewFromInt(1),
		delay:   2 * time.Second,
	}
	svc := newTestService(t, source)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := svc.Resolve(ctx, testAddress)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFailingNewService(t *testing.T) {
	_, err := NewService(Opts{})
	assert.ErrorIs(t, err, ErrNullSources)
}
