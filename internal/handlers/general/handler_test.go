// internal/handlers/general/handler_test.go
package general

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"campaign-query/internal/common/logger"
	"campaign-query/internal/query"
)

// ==========================
// Test Helpers
// ==========================

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(logger.NewTestLogger(t))
}

// ==========================
// Routing
// ==========================

func TestCanHandle(t *testing.T) {
	h := createTestHandler(t)

	assert.True(t, h.CanHandle(&query.ParsedQuery{Intent: query.IntentGeneralQuestion}))
	assert.True(t, h.CanHandle(&query.ParsedQuery{Intent: query.IntentUnknown}))
	assert.False(t, h.CanHandle(&query.ParsedQuery{Intent: query.IntentElectionResults}))
}

// ==========================
// Responses
// ==========================

func TestHandle_GeneralQuestion(t *testing.T) {
	h := createTestHandler(t)

	result := h.Handle(context.Background(), &query.ParsedQuery{
		OriginalQuery: "tell me about this tool",
		Intent:        query.IntentGeneralQuestion,
		Confidence:    0.3,
	})

	assert.True(t, result.Success)
	assert.NotEmpty(t, result.Response)
	assert.Len(t, result.SuggestedActions, 4)
	assert.Equal(t, HandlerName, result.Metadata.HandlerName)
}

func TestHandle_Unknown(t *testing.T) {
	h := createTestHandler(t)

	result := h.Handle(context.Background(), &query.ParsedQuery{
		OriginalQuery: "asdfghjkl",
		Intent:        query.IntentUnknown,
		Confidence:    0,
	})

	assert.False(t, result.Success)
	assert.Contains(t, result.Response, "I couldn't understand that")
	assert.Len(t, result.SuggestedActions, 4)
}

// Unknown results still carry actionable chips: recovery is a click, not a
// retype.
func TestHandle_UnknownSuggestionsAreActionable(t *testing.T) {
	h := createTestHandler(t)

	result := h.Handle(context.Background(), &query.ParsedQuery{Intent: query.IntentUnknown})

	seen := map[string]bool{}
	for _, a := range result.SuggestedActions {
		assert.NotEmpty(t, a.ID)
		assert.NotEmpty(t, a.Label)
		assert.NotEmpty(t, a.Action)
		assert.False(t, seen[a.ID], "duplicate action id %q", a.ID)
		seen[a.ID] = true
	}
}
