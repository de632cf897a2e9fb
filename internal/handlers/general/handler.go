// Package general is the fallback at the end of the registry. It owns
// general_question and unknown, always accepts them, and turns an
// unparseable query into a polite explanation with starter suggestions
// instead of an error.
package general

import (
	"context"

	"campaign-query/internal/common/logger"
	"campaign-query/internal/query"
	"campaign-query/internal/query/entities"
)

const HandlerName = "GeneralHandler"

type Handler struct {
	logger logger.Logger
}

func NewHandler(log logger.Logger) *Handler {
	return &Handler{
		logger: log.WithFields(map[string]interface{}{"handler": HandlerName}),
	}
}

func (h *Handler) Name() string { return HandlerName }

func (h *Handler) OwnedIntents() []query.QueryIntent {
	return []query.QueryIntent{
		query.IntentGeneralQuestion,
		query.IntentUnknown,
	}
}

// CanHandle always accepts unknown so no query can fall off the end of
// the registry.
func (h *Handler) CanHandle(parsed *query.ParsedQuery) bool {
	return parsed.Intent == query.IntentGeneralQuestion ||
		parsed.Intent == query.IntentUnknown
}

func (h *Handler) ExtractEntities(text string) query.EntityBag {
	return entities.Extract(text)
}

func (h *Handler) Handle(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	if parsed.Intent == query.IntentGeneralQuestion {
		return h.generalQuestion()
	}
	return h.unknown(parsed)
}

func (h *Handler) generalQuestion() *query.HandlerResult {
	return &query.HandlerResult{
		Success: true,
		Response: "I can answer questions about election results, donors, voter segments, " +
			"districts, and field planning for Ingham County. Ask me something like " +
			"\"What were the 2020 results?\" or \"Where are my donors concentrated?\"",
		SuggestedActions: starterActions(),
		Metadata:         query.ResultMetadata{HandlerName: HandlerName, QueryType: "general_question"},
	}
}

func (h *Handler) unknown(parsed *query.ParsedQuery) *query.HandlerResult {
	h.logger.Info("unhandled query", map[string]interface{}{
		"query":      parsed.OriginalQuery,
		"confidence": parsed.Confidence,
	})
	return &query.HandlerResult{
		Success: false,
		Response: "I couldn't understand that. I can help with election results, donors, " +
			"segments, districts, and canvassing — try one of the suggestions below.",
		SuggestedActions: starterActions(),
		Metadata:         query.ResultMetadata{HandlerName: HandlerName, QueryType: "unknown"},
	}
}

func starterActions() []query.SuggestedAction {
	return []query.SuggestedAction{
		{ID: "election-results", Label: "2020 election results", Action: "query:What were the 2020 results?"},
		{ID: "donor-concentration", Label: "Donor concentration", Action: "query:Where are my donors concentrated?"},
		{ID: "list-segments", Label: "My segments", Action: "query:Show my segments"},
		{ID: "show-help", Label: "What can you do?", Action: "show-help"},
	}
}
