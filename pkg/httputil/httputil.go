// Package httputil wraps the outbound HTTP calls of the balance sources with
// a shared client and a process-wide pacing of requests.
package httputil

import (
	"context"
	"io/ioutil"
	"net/http"
	"time"

	"go.uber.org/ratelimit"
)

const defaultTimeout = 30 * time.Second

// Client issues paced GET requests. The pacer is process-wide so that the
// whole daemon, not a single session, stays below the providers' tolerance.
type Client struct {
	httpClient *http.Client
	pacer      ratelimit.Limiter
}

// NewClient returns a client pacing outbound requests at requestsPerSecond.
// A non-positive rate disables pacing.
func NewClient(requestsPerSecond int) *Client {
	pacer := ratelimit.NewUnlimited()
	if requestsPerSecond > 0 {
		pacer = ratelimit.New(requestsPerSecond)
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		pacer:      pacer,
	}
}

// Get performs a GET request honoring the context deadline and returns the
// status code with the raw response body.
func (c *Client) Get(ctx context.Context, url string) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	// Take blocks without looking at the context, so the context is checked
	// again once the pacing slot is acquired.
	c.pacer.Take()
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}

	rs, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer rs.Body.Close()

	body, err := ioutil.ReadAll(rs.Body)
	if err != nil {
		return 0, nil, err
	}

	return rs.StatusCode, body, nil
}
