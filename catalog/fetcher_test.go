package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/planner/pkg/limiter"
)

const remoteYAML = `
exercises:
  - name: Rowing
    type: cardio
    calories_per_minute: 9
`

func fastGuard() *limiter.Guard {
	retry := limiter.DefaultRetryConfig()
	retry.MaxRetries = 2
	retry.BaseDelay = time.Millisecond
	retry.Jitter = false
	return limiter.NewGuard(retry, limiter.DefaultCircuitBreakerConfig(), nil)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(remoteYAML))
	}))
	defer srv.Close()

	c, err := NewFetcher(srv.URL, srv.Client(), fastGuard()).Fetch(context.Background())
	require.NoError(t, err)

	_, ok := c.Get("Rowing")
	assert.True(t, ok)
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(remoteYAML))
	}))
	defer srv.Close()

	_, err := NewFetcher(srv.URL, srv.Client(), fastGuard()).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewFetcher(srv.URL, srv.Client(), fastGuard()).Fetch(context.Background())
	require.Error(t, err)

	var httpErr *limiter.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchRejectsBadDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("exercises: []"))
	}))
	defer srv.Close()

	_, err := NewFetcher(srv.URL, srv.Client(), fastGuard()).Fetch(context.Background())
	assert.Error(t, err)
}
