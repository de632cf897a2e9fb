// Package enrichment calls the optional relevance collaborator. Scores feed
// logging and telemetry only and never alter routing.
package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"campaign-query/internal/common/config"
	"campaign-query/internal/common/logger"
)

var (
	ErrScoringFailed = errors.New("ENRICHMENT_SCORING_FAILED")
	ErrScoringTimeout = errors.New("ENRICHMENT_TIMEOUT")
)

// Scorer rates a classified query for relevance telemetry.
type Scorer interface {
	Score(ctx context.Context, query, intent, jurisdiction string) (float64, error)
}

// Client is the HTTP implementation of Scorer.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  logger.Logger
}

func NewClient(cfg config.EnrichmentConfig, log logger.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Millisecond,
		},
		logger: log.WithFields(map[string]interface{}{"component": "enrichment"}),
	}
}

func (c *Client) Score(ctx context.Context, query, intent, jurisdiction string) (float64, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"query":        query,
		"intent":       intent,
		"jurisdiction": jurisdiction,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/relevance", bytes.NewBuffer(body))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrScoringFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return 0, ErrScoringTimeout
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrScoringFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ErrScoringFailed, resp.StatusCode)
	}

	var apiResponse struct {
		Relevance float64 `json:"relevance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return 0, fmt.Errorf("%w: decode error: %v", ErrScoringFailed, err)
	}

	return apiResponse.Relevance, nil
}
