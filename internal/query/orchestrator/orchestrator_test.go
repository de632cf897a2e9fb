// internal/query/orchestrator/orchestrator_test.go
package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"campaign-query/internal/common/logger"
	"campaign-query/internal/query"
	"campaign-query/internal/query/parser"
)

// ==========================
// Test Helpers
// ==========================

type stubHandler struct {
	name    string
	intents []query.QueryIntent
	accepts func(*query.ParsedQuery) bool
	handle  func(context.Context, *query.ParsedQuery) *query.HandlerResult
}

func (s *stubHandler) Name() string                      { return s.name }
func (s *stubHandler) OwnedIntents() []query.QueryIntent { return s.intents }

func (s *stubHandler) CanHandle(parsed *query.ParsedQuery) bool {
	if s.accepts != nil {
		return s.accepts(parsed)
	}
	return true
}

func (s *stubHandler) Handle(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	if s.handle != nil {
		return s.handle(ctx, parsed)
	}
	return &query.HandlerResult{Success: true, Response: "ok from " + s.name}
}

func (s *stubHandler) ExtractEntities(string) query.EntityBag { return query.EntityBag{} }

type stubScorer struct {
	score float64
	err   error
}

func (s *stubScorer) Score(_ context.Context, _, _, _ string) (float64, error) {
	return s.score, s.err
}

func createTestOrchestrator(t *testing.T, opts ...Option) *Orchestrator {
	log := logger.NewTestLogger(t)
	return New(parser.New(log), log, opts...)
}

// ==========================
// Envelope Invariants
// ==========================

func TestProcessQuery_EnvelopeAlwaysStamped(t *testing.T) {
	o := createTestOrchestrator(t)
	o.Register(&stubHandler{
		name: "minimal",
		handle: func(context.Context, *query.ParsedQuery) *query.HandlerResult {
			// Deliberately sparse: orchestrator must fill the rest.
			return &query.HandlerResult{Success: true, Response: "done"}
		},
	})

	result := o.ProcessQuery(context.Background(), "What were the 2020 results?")

	assert.NotNil(t, result)
	assert.Equal(t, "minimal", result.Metadata.HandlerName)
	assert.Equal(t, query.IntentElectionResults, result.Metadata.MatchedIntent)
	assert.Greater(t, result.Metadata.Confidence, 0.0)
	assert.GreaterOrEqual(t, result.Metadata.ProcessingTimeMs, int64(0))
	assert.NotNil(t, result.MapCommands)
	assert.NotNil(t, result.SuggestedActions)
}

func TestProcessQuery_HandlerNamePreservedWhenSet(t *testing.T) {
	o := createTestOrchestrator(t)
	o.Register(&stubHandler{
		name: "outer",
		handle: func(context.Context, *query.ParsedQuery) *query.HandlerResult {
			return &query.HandlerResult{
				Success:  true,
				Response: "done",
				Metadata: query.ResultMetadata{HandlerName: "inner"},
			}
		},
	})

	result := o.ProcessQuery(context.Background(), "anything")
	assert.Equal(t, "inner", result.Metadata.HandlerName)
}

func TestProcessQuery_NilHandlerResultBecomesFailure(t *testing.T) {
	o := createTestOrchestrator(t)
	o.Register(&stubHandler{
		name: "broken",
		handle: func(context.Context, *query.ParsedQuery) *query.HandlerResult {
			return nil
		},
	})

	result := o.ProcessQuery(context.Background(), "anything")

	assert.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, "broken", result.Metadata.HandlerName)
	assert.NotEmpty(t, result.Metadata.ErrorCode)
	assert.NotNil(t, result.MapCommands)
	assert.NotNil(t, result.SuggestedActions)
}

func TestProcessQuery_PanicRecoveredIntoFailure(t *testing.T) {
	o := createTestOrchestrator(t)
	o.Register(&stubHandler{
		name: "panicky",
		handle: func(context.Context, *query.ParsedQuery) *query.HandlerResult {
			panic("boom")
		},
	})

	result := o.ProcessQuery(context.Background(), "anything")

	assert.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, "panicky", result.Metadata.HandlerName)
	assert.NotEmpty(t, result.Metadata.ErrorCode)
	assert.NotEmpty(t, result.Response)
}

func TestProcessQuery_EmptyRegistry(t *testing.T) {
	o := createTestOrchestrator(t)

	result := o.ProcessQuery(context.Background(), "anything")

	assert.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, "none", result.Metadata.HandlerName)
	assert.NotNil(t, result.MapCommands)
	assert.NotNil(t, result.SuggestedActions)
}

// ==========================
// Dispatch Order
// ==========================

func TestProcessQuery_FirstAcceptingHandlerWins(t *testing.T) {
	o := createTestOrchestrator(t)

	o.Register(&stubHandler{
		name:    "refuser",
		accepts: func(*query.ParsedQuery) bool { return false },
	})
	o.Register(&stubHandler{name: "first"})
	o.Register(&stubHandler{name: "second"})

	result := o.ProcessQuery(context.Background(), "anything")
	assert.Equal(t, "first", result.Metadata.HandlerName)
}

func TestProcessQuery_CrossCuttingIntentRouting(t *testing.T) {
	// donor_trends routes by geography: the earlier handler claims it only
	// when a place is named; otherwise it falls through.
	geographic := &stubHandler{
		name: "geographic",
		accepts: func(p *query.ParsedQuery) bool {
			return p.Intent == query.IntentDonorTrends && p.Entities.HasGeography()
		},
	}
	countywide := &stubHandler{
		name: "countywide",
		accepts: func(p *query.ParsedQuery) bool {
			return p.Intent == query.IntentDonorTrends
		},
	}

	o := createTestOrchestrator(t)
	o.Register(geographic)
	o.Register(countywide)

	withPlace := o.ProcessQuery(context.Background(), "Show donor trends in Lansing")
	assert.Equal(t, "geographic", withPlace.Metadata.HandlerName)

	withoutPlace := o.ProcessQuery(context.Background(), "Show donor trends")
	assert.Equal(t, "countywide", withoutPlace.Metadata.HandlerName)
}

func TestCanHandleQuery(t *testing.T) {
	o := createTestOrchestrator(t)
	assert.False(t, o.CanHandleQuery("anything"))

	o.Register(&stubHandler{
		name: "elections",
		accepts: func(p *query.ParsedQuery) bool {
			return p.Intent == query.IntentElectionResults
		},
	})
	assert.True(t, o.CanHandleQuery("What were the 2020 results?"))
	assert.False(t, o.CanHandleQuery("asdfghjkl"))
}

func TestRegister_Order(t *testing.T) {
	o := createTestOrchestrator(t)
	o.Register(&stubHandler{name: "a"})
	o.Register(&stubHandler{name: "b"})

	handlers := o.Handlers()
	assert.Len(t, handlers, 2)
	assert.Equal(t, "a", handlers[0].Name())
	assert.Equal(t, "b", handlers[1].Name())
}

// ==========================
// Handler Timeout
// ==========================

func TestProcessQuery_HandlerTimeoutApplied(t *testing.T) {
	o := createTestOrchestrator(t, WithHandlerTimeout(50*time.Millisecond))

	var hadDeadline bool
	o.Register(&stubHandler{
		name: "deadline-check",
		handle: func(ctx context.Context, _ *query.ParsedQuery) *query.HandlerResult {
			_, hadDeadline = ctx.Deadline()
			return &query.HandlerResult{Success: true, Response: "ok"}
		},
	})

	o.ProcessQuery(context.Background(), "anything")
	assert.True(t, hadDeadline)
}

func TestProcessQuery_NoTimeoutByDefault(t *testing.T) {
	o := createTestOrchestrator(t)

	var hadDeadline bool
	o.Register(&stubHandler{
		name: "deadline-check",
		handle: func(ctx context.Context, _ *query.ParsedQuery) *query.HandlerResult {
			_, hadDeadline = ctx.Deadline()
			return &query.HandlerResult{Success: true, Response: "ok"}
		},
	})

	o.ProcessQuery(context.Background(), "anything")
	assert.False(t, hadDeadline)
}

// ==========================
// Enrichment
// ==========================

func TestProcessQuery_EnrichmentRecordsRelevance(t *testing.T) {
	o := createTestOrchestrator(t, WithEnrichment(&stubScorer{score: 0.87}))
	o.Register(&stubHandler{name: "any"})

	result := o.ProcessQuery(context.Background(), "donors in Lansing")

	if assert.NotNil(t, result.Metadata.Relevance) {
		assert.InDelta(t, 0.87, *result.Metadata.Relevance, 1e-9)
	}
}

func TestProcessQuery_EnrichmentFailureIsSwallowed(t *testing.T) {
	o := createTestOrchestrator(t, WithEnrichment(&stubScorer{err: errors.New("upstream down")}))
	o.Register(&stubHandler{name: "any"})

	result := o.ProcessQuery(context.Background(), "donors in Lansing")

	assert.True(t, result.Success)
	assert.Nil(t, result.Metadata.Relevance)
}

func TestProcessQuery_NoScorerNoRelevance(t *testing.T) {
	o := createTestOrchestrator(t)
	o.Register(&stubHandler{name: "any"})

	result := o.ProcessQuery(context.Background(), "donors in Lansing")
	assert.Nil(t, result.Metadata.Relevance)
}
