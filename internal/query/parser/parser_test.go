// internal/query/parser/parser_test.go
package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"campaign-query/internal/common/logger"
	"campaign-query/internal/query"
)

// ==========================
// Test Helpers
// ==========================

func createTestParser(t *testing.T, opts ...Option) *Parser {
	return New(logger.NewTestLogger(t), opts...)
}

// ==========================
// Classification
// ==========================

func TestParse_Classification(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		intent query.QueryIntent
	}{
		{
			name:   "navigation to tool page",
			text:   "Go to segments page",
			intent: query.IntentNavigateTool,
		},
		{
			name:   "navigation to settings",
			text:   "Open settings",
			intent: query.IntentNavigateSettings,
		},
		{
			name:   "election results with year",
			text:   "What were the 2020 results?",
			intent: query.IntentElectionResults,
		},
		{
			name:   "export segments over list segments",
			text:   "Export all my segments",
			intent: query.IntentExportSegments,
		},
		{
			name:   "list segments",
			text:   "Show me my segments",
			intent: query.IntentListSegments,
		},
		{
			name:   "retry",
			text:   "Try again",
			intent: query.IntentRetryOperation,
		},
		{
			name:   "district designator beats graph phrasing",
			text:   "Show me State House District 73",
			intent: query.IntentDistrictAnalysis,
		},
		{
			name:   "candidate results",
			text:   "How did Whitmer do in East Lansing?",
			intent: query.IntentElectionCandidateResults,
		},
		{
			name:   "donor concentration",
			text:   "Where are my donors concentrated?",
			intent: query.IntentDonorConcentration,
		},
		{
			name:   "donor trends",
			text:   "Show donor trends in Lansing",
			intent: query.IntentDonorTrends,
		},
		{
			name:   "donation phrasing routes to donor trends",
			text:   "How have donations changed over time?",
			intent: query.IntentDonorTrends,
		},
		{
			name:   "turnout trends excluded from plain turnout",
			text:   "How has turnout changed over time?",
			intent: query.IntentTurnoutTrends,
		},
		{
			name:   "plain turnout",
			text:   "What was turnout in Meridian?",
			intent: query.IntentElectionTurnout,
		},
		{
			name:   "issue by geography",
			text:   "Which precincts care about healthcare?",
			intent: query.IntentIssueByGeography,
		},
		{
			name:   "walk list",
			text:   "Build me a walk list for Okemos",
			intent: query.IntentWalkList,
		},
		{
			name:   "zoom",
			text:   "Zoom to East Lansing",
			intent: query.IntentZoomToLocation,
		},
		{
			name:   "knowledge graph",
			text:   "Open the knowledge graph",
			intent: query.IntentGraphExplore,
		},
		{
			name:   "gibberish is unknown",
			text:   "asdfghjkl",
			intent: query.IntentUnknown,
		},
		{
			name:   "empty input is unknown",
			text:   "",
			intent: query.IntentUnknown,
		},
		{
			name:   "whitespace only is unknown",
			text:   "   \t  ",
			intent: query.IntentUnknown,
		},
	}

	p := createTestParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := p.Parse(tt.text)
			assert.NotNil(t, parsed)
			assert.Equal(t, tt.intent, parsed.Intent, "query: %q", tt.text)
		})
	}
}

// ==========================
// Confidence
// ==========================

func TestParse_ConfidenceBounds(t *testing.T) {
	p := createTestParser(t)

	for _, text := range []string{
		"What were the 2020 results?",
		"Export all my segments",
		"asdfghjkl",
		"",
		"compare compare compare results results donors turnout",
	} {
		parsed := p.Parse(text)
		assert.GreaterOrEqual(t, parsed.Confidence, 0.0, "query: %q", text)
		assert.LessOrEqual(t, parsed.Confidence, 1.0, "query: %q", text)
	}
}

func TestParse_ConfidenceFloorForcesUnknown(t *testing.T) {
	p := createTestParser(t)

	// A bare interrogative scores below the default floor.
	parsed := p.Parse("what")
	assert.Equal(t, query.IntentUnknown, parsed.Intent)
	assert.Less(t, parsed.Confidence, DefaultConfidenceFloor)
}

func TestParse_CustomConfidenceFloor(t *testing.T) {
	p := createTestParser(t, WithConfidenceFloor(0.05))

	// With a lowered floor the same weak match survives classification.
	parsed := p.Parse("what")
	assert.Equal(t, query.IntentGeneralQuestion, parsed.Intent)
	assert.GreaterOrEqual(t, parsed.Confidence, 0.05)
}

func TestParse_UnknownHasZeroConfidence(t *testing.T) {
	p := createTestParser(t)

	parsed := p.Parse("qwerty zxcvb")
	assert.Equal(t, query.IntentUnknown, parsed.Intent)
	assert.Zero(t, parsed.Confidence)
}

// ==========================
// Determinism / Totality
// ==========================

func TestParse_Deterministic(t *testing.T) {
	p := createTestParser(t)

	for _, text := range []string{
		"What were the 2020 results?",
		"Show donor trends in Lansing",
		"asdfghjkl",
	} {
		first := p.Parse(text)
		for i := 0; i < 5; i++ {
			again := p.Parse(text)
			assert.Equal(t, first.Intent, again.Intent)
			assert.Equal(t, first.Confidence, again.Confidence)
		}
	}
}

func TestParse_TotalOverArbitraryInput(t *testing.T) {
	p := createTestParser(t)

	inputs := []string{
		"",
		" ",
		"?????",
		"DROP TABLE voters;--",
		"\x00\x01\x02",
		"日本語のクエリ",
		"a very long query " + string(make([]byte, 4096)),
	}
	for _, text := range inputs {
		parsed := p.Parse(text)
		assert.NotNil(t, parsed)
		assert.Equal(t, text, parsed.OriginalQuery)
	}
}

// ==========================
// Entity Wiring
// ==========================

func TestParse_ExtractsEntities(t *testing.T) {
	p := createTestParser(t)

	parsed := p.Parse("How did Whitmer do in East Lansing in 2022?")
	assert.Equal(t, query.IntentElectionCandidateResults, parsed.Intent)
	assert.Equal(t, []string{"Whitmer"}, parsed.Entities.CandidateNames)
	assert.Equal(t, []string{"East Lansing"}, parsed.Entities.Jurisdictions)
	assert.Equal(t, 2022, parsed.Entities.Year)
}

func TestParse_PreservesOriginalQuery(t *testing.T) {
	p := createTestParser(t)

	text := "  Export ALL my segments  "
	parsed := p.Parse(text)
	assert.Equal(t, text, parsed.OriginalQuery)
	assert.Equal(t, query.IntentExportSegments, parsed.Intent)
}

// ==========================
// Exclusions
// ==========================

func TestParse_Exclusions(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		not     query.QueryIntent
		instead query.QueryIntent
	}{
		{
			name:    "export excludes list segments",
			text:    "Export all my segments",
			not:     query.IntentListSegments,
			instead: query.IntentExportSegments,
		},
		{
			name:    "donor vocabulary excludes election trends",
			text:    "Show donor trends over time",
			not:     query.IntentElectionTrends,
			instead: query.IntentDonorTrends,
		},
		{
			name:    "district designator excludes graph relationships",
			text:    "How is State House District 73 connected to turnout?",
			not:     query.IntentGraphRelationships,
			instead: query.IntentDistrictAnalysis,
		},
	}

	p := createTestParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := p.Parse(tt.text)
			assert.NotEqual(t, tt.not, parsed.Intent)
			assert.Equal(t, tt.instead, parsed.Intent)
		})
	}
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkParse(b *testing.B) {
	p := New(logger.NewNoOpLogger())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Parse("What were the 2020 election results in East Lansing?")
	}
}
