// internal/handlers/navigation/handler_test.go
package navigation

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

func createParsed(intent query.QueryIntent, text string) *query.ParsedQuery {
	return &query.ParsedQuery{
		OriginalQuery: text,
		Intent:        intent,
		Confidence:    0.7,
	}
}

// ==========================
// Routing
// ==========================

func TestCanHandle(t *testing.T) {
	h := createTestHandler(t)

	assert.True(t, h.CanHandle(createParsed(query.IntentNavigateTool, "")))
	assert.True(t, h.CanHandle(createParsed(query.IntentNavigateSettings, "")))
	assert.True(t, h.CanHandle(createParsed(query.IntentShowHelp, "")))
	assert.False(t, h.CanHandle(createParsed(query.IntentElectionResults, "")))
	assert.False(t, h.CanHandle(createParsed(query.IntentUnknown, "")))
}

// ==========================
// Destination Resolution
// ==========================

func TestHandle_Navigate(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		destination string
		path        string
	}{
		{
			name:        "segments page",
			text:        "Go to segments page",
			destination: "segments",
			path:        "/segments",
		},
		{
			name:        "donor synonym",
			text:        "take me to fundraising",
			destination: "donors",
			path:        "/donors",
		},
		{
			name:        "canvass synonym",
			text:        "open the door knocking tool",
			destination: "canvass",
			path:        "/canvass",
		},
		{
			name:        "knowledge graph beats bare graph",
			text:        "go to the knowledge graph",
			destination: "graph",
			path:        "/knowledge-graph",
		},
		{
			name:        "dashboard",
			text:        "take me to the dashboard",
			destination: "main",
			path:        "/political-ai",
		},
	}

	h := createTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := h.Handle(context.Background(), createParsed(query.IntentNavigateTool, tt.text))

			assert.True(t, result.Success)
			assert.Equal(t, tt.destination, result.Data["destination"])
			assert.Equal(t, tt.path, result.Data["path"])
			assert.Equal(t, tt.destination, result.Metadata.Destination)
			assert.NotEmpty(t, result.SuggestedActions)
		})
	}
}

func TestHandle_SettingsIntentDefaultsDestination(t *testing.T) {
	h := createTestHandler(t)

	// No tool mention in the text: the intent alone picks the page.
	result := h.Handle(context.Background(), createParsed(query.IntentNavigateSettings, "open my preferences please"))

	assert.True(t, result.Success)
	assert.Equal(t, "settings", result.Data["destination"])
}

func TestHandle_UnknownDestination(t *testing.T) {
	h := createTestHandler(t)

	result := h.Handle(context.Background(), createParsed(query.IntentNavigateTool, "go to the moon"))

	assert.False(t, result.Success)
	assert.Contains(t, result.Response, "Available pages")
	// One chip per known page, so the user can recover with a click.
	assert.Len(t, result.SuggestedActions, len(destinations))
}

func TestHandle_Help(t *testing.T) {
	h := createTestHandler(t)

	result := h.Handle(context.Background(), createParsed(query.IntentShowHelp, "what can you do"))

	assert.True(t, result.Success)
	assert.NotEmpty(t, result.Response)
	assert.NotEmpty(t, result.SuggestedActions)
}

// ==========================
// Entity Extraction
// ==========================

func TestExtractEntities(t *testing.T) {
	h := createTestHandler(t)

	tests := []struct {
		text        string
		destination string
	}{
		{"go to segments", "segments"},
		{"open the segment builder", "segments"},
		{"take me to fundraising", "donors"},
		{"show canvassing", "canvass"},
		{"knowledge graph please", "graph"},
		{"home", "main"},
		{"nothing to see", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			bag := h.ExtractEntities(tt.text)
			assert.Equal(t, tt.destination, bag.Destination)
		})
	}
}
