// internal/handlers/issues/handler_test.go
package issues

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"campaign-query/internal/common/logger"
	"campaign-query/internal/dataaccess"
	"campaign-query/internal/query"
)

// ==========================
// Test Helpers
// ==========================

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(dataaccess.NewStatic(), logger.NewTestLogger(t))
}

func createParsed(intent query.QueryIntent, entities query.EntityBag) *query.ParsedQuery {
	return &query.ParsedQuery{
		OriginalQuery: "test query",
		Intent:        intent,
		Entities:      entities,
		Confidence:    0.8,
	}
}

type failingService struct {
	dataaccess.Service
}

func (f *failingService) PrecinctScores(context.Context, string) ([]dataaccess.PrecinctScore, error) {
	return nil, errors.New("connection refused")
}

// ==========================
// Issue Analysis
// ==========================

func TestHandle_Analysis(t *testing.T) {
	h := createTestHandler(t)

	result := h.Handle(context.Background(), createParsed(query.IntentIssueAnalysis,
		query.EntityBag{IssueKeywords: []string{"healthcare"}}))

	assert.True(t, result.Success)
	assert.Contains(t, result.Response, "Precincts most engaged on healthcare")
	assert.Contains(t, result.Response, "Lansing Precinct 12 (0.87)")
	if assert.Len(t, result.MapCommands, 1) {
		assert.Equal(t, "highlight", result.MapCommands[0].Type)
		assert.Equal(t, "precinct", result.MapCommands[0].Payload["boundaryType"])
	}
}

func TestHandle_AnalysisNoIssueNamed(t *testing.T) {
	h := createTestHandler(t)

	result := h.Handle(context.Background(), createParsed(query.IntentIssueAnalysis, query.EntityBag{}))

	assert.False(t, result.Success)
	assert.Contains(t, result.Response, "Which issue?")
}

func TestHandle_AnalysisUnscoredIssue(t *testing.T) {
	h := createTestHandler(t)

	// taxes is canonical but has no score rows in the fixture data.
	result := h.Handle(context.Background(), createParsed(query.IntentIssueAnalysis,
		query.EntityBag{IssueKeywords: []string{"taxes"}}))

	assert.False(t, result.Success)
	assert.Contains(t, result.Response, "don't have relevance scores for taxes")
}

// Display text drops the canonical underscore form.
func TestDisplayIssue(t *testing.T) {
	assert.Equal(t, "public safety", displayIssue("public_safety"))
	assert.Equal(t, "housing", displayIssue("housing"))
}

// ==========================
// Issue By Geography
// ==========================

func TestHandle_ByGeography(t *testing.T) {
	h := createTestHandler(t)

	result := h.Handle(context.Background(), createParsed(query.IntentIssueByGeography,
		query.EntityBag{IssueKeywords: []string{"education"}}))

	assert.True(t, result.Success)
	assert.Contains(t, result.Response, "education salience by area")
	// East Lansing's only education precinct scores 0.91, putting it first.
	assert.Contains(t, result.Response, "East Lansing 0.91")
}

// ==========================
// Issue Ranking
// ==========================

func TestHandle_RankingCountywide(t *testing.T) {
	h := createTestHandler(t)

	result := h.Handle(context.Background(), createParsed(query.IntentIssueRanking, query.EntityBag{}))

	assert.True(t, result.Success)
	assert.Contains(t, result.Response, "Top issues countywide")
	assert.Contains(t, result.Response, "1. environment")
}

func TestHandle_RankingByJurisdiction(t *testing.T) {
	h := createTestHandler(t)

	result := h.Handle(context.Background(), createParsed(query.IntentIssueRanking,
		query.EntityBag{Jurisdictions: []string{"Lansing"}}))

	assert.True(t, result.Success)
	assert.Contains(t, result.Response, "Top issues in Lansing")
	// Only Lansing precinct rows count toward the averages.
	assert.Contains(t, result.Response, "1. healthcare (0.87)")
}

// ==========================
// Failure Modes
// ==========================

func TestHandle_CollaboratorFailure(t *testing.T) {
	h := NewHandler(&failingService{}, logger.NewTestLogger(t))

	for _, intent := range []query.QueryIntent{
		query.IntentIssueByGeography,
		query.IntentIssueRanking,
	} {
		t.Run(string(intent), func(t *testing.T) {
			result := h.Handle(context.Background(), createParsed(intent,
				query.EntityBag{IssueKeywords: []string{"healthcare"}}))
			assert.False(t, result.Success)
			assert.Contains(t, result.Response, "try again")
		})
	}
}
