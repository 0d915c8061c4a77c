package imagery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWithRetriesRecoversFromTransientFailures(t *testing.T) {
	retryDelay = time.Millisecond
	defer func() { retryDelay = 5 * time.Second }()

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("tiff bytes"))
	}))
	defer server.Close()

	body, err := fetchWithRetries(context.Background(), server.Client(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, []byte("tiff bytes"), body)
	assert.Equal(t, 3, attempts)
}

func TestFetchWithRetriesGivesUpAfterLastAttempt(t *testing.T) {
	retryDelay = time.Millisecond
	defer func() { retryDelay = 5 * time.Second }()

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	start := time.Now()
	_, err := fetchWithRetries(context.Background(), server.Client(), server.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 5 attempts")
	assert.Equal(t, downloadRetries, attempts)
	// only the four gaps between attempts are waited out, not a fifth
	assert.Less(t, time.Since(start), 5*retryDelay+time.Second)
}

func TestFetchWithRetriesStopsOnCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := fetchWithRetries(ctx, server.Client(), server.URL)

	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second, "canceled context must not wait out the retry delay")
}