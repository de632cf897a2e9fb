// internal/enrichment/client_test.go
package enrichment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaign-query/internal/common/config"
	"campaign-query/internal/common/logger"
)

// ==========================
// Test Helpers
// ==========================

func createTestClient(t *testing.T, baseURL string) *Client {
	return NewClient(config.EnrichmentConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: 2000,
	}, logger.NewTestLogger(t))
}

// ==========================
// Score
// ==========================

func TestScore(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"relevance": 0.91}`))
	}))
	defer ts.Close()

	c := createTestClient(t, ts.URL)
	score, err := c.Score(context.Background(), "donors in Lansing", "donor_geographic", "Lansing")

	require.NoError(t, err)
	assert.InDelta(t, 0.91, score, 1e-9)
	assert.Equal(t, "/api/relevance", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "donors in Lansing", gotBody["query"])
	assert.Equal(t, "donor_geographic", gotBody["intent"])
	assert.Equal(t, "Lansing", gotBody["jurisdiction"])
}

func TestScore_NoAPIKeyOmitsAuthHeader(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"relevance": 0.5}`))
	}))
	defer ts.Close()

	c := NewClient(config.EnrichmentConfig{BaseURL: ts.URL, Timeout: 2000}, logger.NewTestLogger(t))
	_, err := c.Score(context.Background(), "q", "unknown", "")

	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

// ==========================
// Failure Modes
// ==========================

func TestScore_Non200Status(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := createTestClient(t, ts.URL)
	_, err := c.Score(context.Background(), "q", "unknown", "")

	assert.ErrorIs(t, err, ErrScoringFailed)
}

func TestScore_MalformedResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"relevance": `))
	}))
	defer ts.Close()

	c := createTestClient(t, ts.URL)
	_, err := c.Score(context.Background(), "q", "unknown", "")

	assert.ErrorIs(t, err, ErrScoringFailed)
}

func TestScore_ConnectionRefused(t *testing.T) {
	c := createTestClient(t, "http://127.0.0.1:1")
	_, err := c.Score(context.Background(), "q", "unknown", "")

	assert.Error(t, err)
}

func TestScore_ContextTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"relevance": 0.5}`))
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := createTestClient(t, ts.URL)
	_, err := c.Score(ctx, "q", "unknown", "")

	assert.ErrorIs(t, err, ErrScoringTimeout)
}
