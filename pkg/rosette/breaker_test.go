package rosette

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerTrips(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`))
	}))
	defer srv.Close()

	client := testClient(srv, WithCircuitBreaker(BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		ReadyToTripRatio: 0.5,
	}))
	ctx := context.Background()

	// Three failing calls satisfy the trip condition.
	for i := 0; i < 3; i++ {
		_, err := client.Sentiment(ctx, "text")
		require.Error(t, err)
		assert.True(t, errors.Is(err, &APIError{Status: "500"}))
	}
	served := calls.Load()

	// The breaker is now open: calls fail fast without reaching the server.
	_, err := client.Sentiment(ctx, "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, served, calls.Load())
}

func TestCircuitBreakerPassesSuccessThrough(t *testing.T) {
	srv, _ := analysisServer(t)
	client := testClient(srv, WithCircuitBreaker(DefaultBreakerConfig()))

	result, err := client.Sentiment(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, true, result["ok"])
}

func TestClientWithoutBreakerHasNone(t *testing.T) {
	srv, _ := analysisServer(t)
	client := testClient(srv)
	assert.Nil(t, client.transport.breaker)
}
