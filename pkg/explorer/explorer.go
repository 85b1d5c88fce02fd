// Package explorer provides balance lookups against public blockchain data
// sources. A source is an endpoint template paired with a response parser,
// everything else (racing, caching, failover) lives in the oracle.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seedrescue/recoveryd/pkg/httputil"
)

var (
	// ErrRateLimited is thrown when a source answers with 429.
	ErrRateLimited = errors.New("source is rate limiting requests")
	// ErrMalformedResponse is thrown when a source payload cannot be parsed.
	ErrMalformedResponse = errors.New("source returned a malformed response")
)

const defaultRequestTimeout = 4 * time.Second

// Source resolves the confirmed balance of a Bitcoin address, normalized to
// BTC with 8 decimal digits.
type Source interface {
	Name() string
	FetchBalance(ctx context.Context, address string) (decimal.Decimal, error)
}

// ParseFunc turns the raw payload of a source into a BTC balance.
type ParseFunc func(body []byte, address string) (decimal.Decimal, error)

// SourceOpts is the struct given to the NewSource method.
type SourceOpts struct {
	// Name identifies the source in logs and balance records.
	Name string
	// URLTemplate is the balance endpoint with one %s placeholder for the
	// address.
	URLTemplate string
	// Timeout is the per-request timeout of this source.
	Timeout time.Duration
	// Client issues the outbound requests.
	Client *httputil.Client
	// Parse decodes the response payload.
	Parse ParseFunc
}

func (o SourceOpts) validate() error {
	if o.Name == "" {
		return errors.New("source name must not be null")
	}
	if o.URLTemplate == "" {
		return errors.New("source url template must not be null")
	}
	if o.Client == nil {
		return errors.New("source http client must not be null")
	}
	if o.Parse == nil {
		return errors.New("source parser must not be null")
	}
	return nil
}

type source struct {
	name        string
	urlTemplate string
	timeout     time.Duration
	client      *httputil.Client
	parse       ParseFunc
}

// NewSource returns a balance source from an endpoint template and a parser.
// Adding a data source to the oracle only requires a new template+parser
// pair.
func NewSource(opts SourceOpts) (Source, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &source{
		name:        opts.Name,
		urlTemplate: opts.URLTemplate,
		timeout:     timeout,
		client:      opts.Client,
		parse:       opts.Parse,
	}, nil
}

func (s *source) Name() string {
	return s.name
}

func (s *source) FetchBalance(
	ctx context.Context, address string,
) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	url := fmt.Sprintf(s.urlTemplate, address)
	status, body, err := s.client.Get(ctx, url)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", s.name, err)
	}
	if status == http.StatusTooManyRequests {
		return decimal.Zero, fmt.Errorf("%s: %w", s.name, ErrRateLimited)
	}
	if status != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%s: unexpected status %d", s.name, status)
	}

	balance, err := s.parse(body, address)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w: %s", s.name, ErrMalformedResponse, err)
	}
	return balance.Truncate(btcPrecision), nil
}

const btcPrecision = 8

// btcFromSatoshi normalizes an amount in satoshi to BTC with 8 decimal
// digits.
func btcFromSatoshi(satoshi int64) decimal.Decimal {
	return decimal.New(satoshi, -btcPrecision)
}
