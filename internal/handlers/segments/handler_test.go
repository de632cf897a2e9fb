// internal/handlers/segments/handler_test.go
package segments

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

func (f *failingService) Segments(context.Context, string) ([]dataaccess.Segment, error) {
	return nil, errors.New("connection refused")
}

type emptyService struct {
	dataaccess.Service
}

func (e *emptyService) Segments(context.Context, string) ([]dataaccess.Segment, error) {
	return nil, nil
}

// ==========================
// List Segments
// ==========================

func TestHandle_ListSegments(t *testing.T) {
	h := createTestHandler(t)

	result := h.Handle(context.Background(), createParsed(query.IntentListSegments, query.EntityBag{}))

	assert.True(t, result.Success)
	assert.Contains(t, result.Response, "You have 3 segments")
	assert.Contains(t, result.Response, "High-propensity Democrats (23411 voters)")
	assert.NotEmpty(t, result.SuggestedActions)
}

func TestHandle_ListSegmentsEmpty(t *testing.T) {
	h := NewHandler(&emptyService{}, logger.NewTestLogger(t))

	result := h.Handle(context.Background(), createParsed(query.IntentListSegments, query.EntityBag{}))

	assert.False(t, result.Success)
	assert.Contains(t, result.Response, "don't have any saved segments")
	// Recovery chip leads to segment creation.
	assert.Equal(t, "create-segment", result.SuggestedActions[0].ID)
}

// ==========================
// Create Segment
// ==========================

func TestHandle_CreateSegment(t *testing.T) {
	tests := []struct {
		name     string
		entities query.EntityBag
		contains string
	}{
		{
			name:     "no criteria",
			entities: query.EntityBag{},
			contains: "Opening the segment builder.",
		},
		{
			name:     "issue criteria prefilled",
			entities: query.EntityBag{IssueKeywords: []string{"healthcare"}},
			contains: "issue: healthcare",
		},
		{
			name:     "district criteria prefilled",
			entities: query.EntityBag{DistrictID: "HD-73"},
			contains: "district: HD-73",
		},
		{
			name:     "area criteria prefilled",
			entities: query.EntityBag{Jurisdictions: []string{"Lansing", "Okemos"}},
			contains: "area: Lansing, Okemos",
		},
	}

	h := createTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := h.Handle(context.Background(), createParsed(query.IntentCreateSegment, tt.entities))

			assert.True(t, result.Success)
			assert.Contains(t, result.Response, tt.contains)
			assert.Equal(t, "/segments", result.Data["path"])
		})
	}
}

// ==========================
// Segment Analysis
// ==========================

func TestHandle_SegmentAnalysis(t *testing.T) {
	h := createTestHandler(t)

	result := h.Handle(context.Background(), createParsed(query.IntentSegmentAnalysis, query.EntityBag{}))

	assert.True(t, result.Success)
	assert.Contains(t, result.Response, "3 segments covering 39353 voters")
	assert.Contains(t, result.Response, `"High-propensity Democrats" with 23411 voters`)
}

// ==========================
// Segments By District
// ==========================

func TestHandle_SegmentByDistrict(t *testing.T) {
	h := createTestHandler(t)

	result := h.Handle(context.Background(), createParsed(query.IntentSegmentByDistrict,
		query.EntityBag{DistrictID: "HD-73"}))

	assert.True(t, result.Success)
	assert.Contains(t, result.Response, "HD-73: 34233 voters")
	if assert.Len(t, result.MapCommands, 1) {
		assert.Equal(t, "highlight", result.MapCommands[0].Type)
	}
}

func TestHandle_SegmentByDistrictUnknownDistrict(t *testing.T) {
	h := createTestHandler(t)

	result := h.Handle(context.Background(), createParsed(query.IntentSegmentByDistrict,
		query.EntityBag{DistrictID: "HD-99"}))

	assert.False(t, result.Success)
	assert.Contains(t, result.Response, "No segments found for HD-99")
}

// ==========================
// Failure Modes
// ==========================

func TestHandle_CollaboratorFailure(t *testing.T) {
	h := NewHandler(&failingService{}, logger.NewTestLogger(t))

	for _, intent := range []query.QueryIntent{
		query.IntentListSegments,
		query.IntentSegmentAnalysis,
		query.IntentSegmentByDistrict,
	} {
		t.Run(string(intent), func(t *testing.T) {
			result := h.Handle(context.Background(), createParsed(intent, query.EntityBag{}))
			assert.False(t, result.Success)
			assert.Contains(t, result.Response, "try again")
		})
	}
}
