package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("pong"))
		},
	))
	t.Cleanup(server.Close)

	client := NewClient(0)
	status, body, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pong", string(body))
}

func TestGetWithCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request must be issued for a cancelled context")
		},
	))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// the pacer must not hold a cancelled caller for a pacing slot.
	client := NewClient(1)
	_, _, err := client.Get(ctx, server.URL)
	assert.ErrorIs(t, err, context.Canceled)
}
