// internal/handlers/elections/handler_test.go
package elections

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

// failingService errors on every call.
type failingService struct {
	dataaccess.Service
}

func (f *failingService) ElectionHistory(context.Context, string, int) ([]dataaccess.ElectionResult, error) {
	return nil, errors.New("connection refused")
}

// emptyService returns no rows for every call.
type emptyService struct {
	dataaccess.Service
}

func (e *emptyService) ElectionHistory(context.Context, string, int) ([]dataaccess.ElectionResult, error) {
	return nil, nil
}

// ==========================
// Routing
// ==========================

func TestCanHandle(t *testing.T) {
	h := createTestHandler(t)

	tests := []struct {
		intent   query.QueryIntent
		expected bool
	}{
		{query.IntentElectionResults, true},
		{query.IntentElectionCandidateResults, true},
		{query.IntentElectionTurnout, true},
		{query.IntentElectionHistory, true},
		{query.IntentDonorTrends, false},
		{query.IntentUnknown, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			parsed := createParsed(tt.intent, query.EntityBag{})
			assert.Equal(t, tt.expected, h.CanHandle(parsed))
		})
	}
}

func TestOwnedIntents(t *testing.T) {
	h := createTestHandler(t)
	assert.Len(t, h.OwnedIntents(), 4)
	for _, intent := range h.OwnedIntents() {
		assert.True(t, intent.Valid())
	}
}

// ==========================
// Election Results
// ==========================

func TestHandle_Results2020(t *testing.T) {
	h := createTestHandler(t)

	result := h.Handle(context.Background(), createParsed(query.IntentElectionResults, query.EntityBag{Year: 2020}))

	assert.True(t, result.Success)
	assert.Contains(t, result.Response, "2020")
	assert.Contains(t, result.Response, "Election Results")
	assert.Contains(t, result.Response, "Biden won with 60.6%")
	assert.Equal(t, HandlerName, result.Metadata.HandlerName)
	assert.NotEmpty(t, result.SuggestedActions)
}

func TestHandle_ResultsDefaultsTo2020(t *testing.T) {
	h := createTestHandler(t)

	// No year extracted: the 2020 default applies.
	result := h.Handle(context.Background(), createParsed(query.IntentElectionResults, query.EntityBag{}))

	assert.True(t, result.Success)
	assert.Contains(t, result.Response, "2020")
	assert.Equal(t, 2020, result.Data["year"])
}

func TestHandle_Results2022(t *testing.T) {
	h := createTestHandler(t)

	result := h.Handle(context.Background(), createParsed(query.IntentElectionResults, query.EntityBag{Year: 2022}))

	assert.True(t, result.Success)
	assert.Contains(t, result.Response, "Whitmer won with 63.2%")
}

func TestHandle_ResultsUnsupportedYear(t *testing.T) {
	h := NewHandler(&emptyService{}, logger.NewTestLogger(t))

	result := h.Handle(context.Background(), createParsed(query.IntentElectionResults, query.EntityBag{Year: 2020}))

	assert.False(t, result.Success)
	assert.Contains(t, result.Response, "Supported cycles")
	assert.NotEmpty(t, result.SuggestedActions)
}

// ==========================
// Turnout
// ==========================

func TestHandle_Turnout(t *testing.T) {
	h := createTestHandler(t)

	result := h.Handle(context.Background(), createParsed(query.IntentElectionTurnout, query.EntityBag{Year: 2020}))

	assert.True(t, result.Success)
	assert.Contains(t, result.Response, "71.4%")
	assert.Equal(t, 71.4, result.Data["turnoutPct"])
}

// ==========================
// Candidate Results
// ==========================

func TestHandle_CandidateResults(t *testing.T) {
	h := createTestHandler(t)

	tests := []struct {
		name       string
		entities   query.EntityBag
		substrings []string
	}{
		{
			name:       "named candidate",
			entities:   query.EntityBag{Year: 2020, CandidateNames: []string{"Trump"}},
			substrings: []string{"Trump", "37.1%"},
		},
		{
			name:       "no candidate named reports the leader",
			entities:   query.EntityBag{Year: 2020},
			substrings: []string{"Biden", "60.6%"},
		},
		{
			name:       "candidate matched across default year",
			entities:   query.EntityBag{CandidateNames: []string{"Biden"}},
			substrings: []string{"Biden", "94212"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := h.Handle(context.Background(), createParsed(query.IntentElectionCandidateResults, tt.entities))
			assert.True(t, result.Success)
			for _, sub := range tt.substrings {
				assert.Contains(t, result.Response, sub)
			}
		})
	}
}

// ==========================
// History
// ==========================

func TestHandle_History(t *testing.T) {
	h := createTestHandler(t)

	result := h.Handle(context.Background(), createParsed(query.IntentElectionHistory, query.EntityBag{}))

	assert.True(t, result.Success)
	assert.Contains(t, result.Response, "Election history")
	// Winner per cycle, in chronological order.
	assert.Contains(t, result.Response, "2016: Clinton")
	assert.Contains(t, result.Response, "2020: Biden")
	assert.Contains(t, result.Response, "2024: Harris")
}

// ==========================
// Failure Modes
// ==========================

func TestHandle_CollaboratorFailure(t *testing.T) {
	h := NewHandler(&failingService{}, logger.NewTestLogger(t))

	for _, intent := range []query.QueryIntent{
		query.IntentElectionResults,
		query.IntentElectionTurnout,
		query.IntentElectionCandidateResults,
		query.IntentElectionHistory,
	} {
		t.Run(string(intent), func(t *testing.T) {
			result := h.Handle(context.Background(), createParsed(intent, query.EntityBag{}))
			assert.False(t, result.Success)
			assert.Contains(t, result.Response, "try again")
			assert.NotEmpty(t, result.SuggestedActions)
		})
	}
}
