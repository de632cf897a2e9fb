// Package system owns conversation control intents: retrying the previous
// operation and clearing the conversation.
package system

import (
	"context"

	"campaign-query/internal/common/logger"
	"campaign-query/internal/query"
)

const HandlerName = "SystemHandler"

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
		query.IntentRetryOperation,
		query.IntentClearConversation,
	}
}

func (h *Handler) CanHandle(parsed *query.ParsedQuery) bool {
	switch parsed.Intent {
	case query.IntentRetryOperation, query.IntentClearConversation:
		return true
	}
	return false
}

func (h *Handler) ExtractEntities(string) query.EntityBag {
	return query.EntityBag{}
}

func (h *Handler) Handle(_ context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	switch parsed.Intent {
	case query.IntentClearConversation:
		return &query.HandlerResult{
			Success:  true,
			Response: "Conversation cleared. What would you like to look at next?",
			Data:     map[string]interface{}{"action": "clear"},
			SuggestedActions: []query.SuggestedAction{
				{ID: "show-help", Label: "What can I ask?", Action: "show-help"},
			},
			Metadata: query.ResultMetadata{HandlerName: HandlerName},
		}
	default:
		return &query.HandlerResult{
			Success:  true,
			Response: "Retrying your last operation.",
			Data:     map[string]interface{}{"action": "retry"},
			SuggestedActions: []query.SuggestedAction{
				{ID: "clear-conversation", Label: "Start over instead", Action: "clear-conversation"},
			},
			Metadata: query.ResultMetadata{HandlerName: HandlerName},
		}
	}
}
