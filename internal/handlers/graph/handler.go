// Package graph fronts the knowledge-graph view: opening an exploration
// centered on an entity, or surfacing relationships between entities.
package graph

import (
	"context"
	"fmt"
	"strings"

	"campaign-query/internal/common/logger"
	"campaign-query/internal/query"
	"campaign-query/internal/query/entities"
)

const HandlerName = "GraphHandler"

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
		query.IntentGraphExplore,
		query.IntentGraphRelationships,
	}
}

func (h *Handler) CanHandle(parsed *query.ParsedQuery) bool {
	return parsed.Intent == query.IntentGraphExplore ||
		parsed.Intent == query.IntentGraphRelationships
}

func (h *Handler) ExtractEntities(text string) query.EntityBag {
	return query.EntityBag{
		CandidateNames: entities.Candidates(text),
		Jurisdictions:  entities.Jurisdictions(text),
		IssueKeywords:  entities.Issues(text),
	}
}

func (h *Handler) Handle(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	if parsed.Intent == query.IntentGraphRelationships {
		return h.relationships(parsed)
	}
	return h.explore(parsed)
}

// focus picks the entity the graph view should center on.
func focus(parsed *query.ParsedQuery) (kind, name string) {
	if len(parsed.Entities.CandidateNames) > 0 {
		return "candidate", parsed.Entities.CandidateNames[0]
	}
	if len(parsed.Entities.Jurisdictions) > 0 {
		return "jurisdiction", parsed.Entities.Jurisdictions[0]
	}
	if len(parsed.Entities.IssueKeywords) > 0 {
		return "issue", parsed.Entities.IssueKeywords[0]
	}
	return "", ""
}

func (h *Handler) explore(parsed *query.ParsedQuery) *query.HandlerResult {
	kind, name := focus(parsed)
	if name == "" {
		return &query.HandlerResult{
			Success:  true,
			Response: "Opening the knowledge graph. Pick a candidate, area, or issue to explore its connections.",
			Data: map[string]interface{}{
				"destination": "graph",
				"path":        "/knowledge-graph",
			},
			SuggestedActions: []query.SuggestedAction{
				{ID: "graph-whitmer", Label: "Explore Whitmer", Action: "graph:candidate:Whitmer"},
				{ID: "graph-lansing", Label: "Explore Lansing", Action: "graph:jurisdiction:Lansing"},
			},
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "graph_explore"},
		}
	}

	return &query.HandlerResult{
		Success:  true,
		Response: fmt.Sprintf("Opening the knowledge graph centered on %s.", name),
		Data: map[string]interface{}{
			"destination": "graph",
			"path":        "/knowledge-graph",
			"focusKind":   kind,
			"focusName":   name,
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "graph-relationships", Label: "Show relationships", Action: "graph-relationships"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "graph_explore"},
	}
}

func (h *Handler) relationships(parsed *query.ParsedQuery) *query.HandlerResult {
	kind, name := focus(parsed)
	if name == "" {
		return &query.HandlerResult{
			Success:  false,
			Response: "Relationships between what? Name a candidate, area, or issue.",
			SuggestedActions: []query.SuggestedAction{
				{ID: "graph-explore", Label: "Open the knowledge graph", Action: "graph-explore"},
			},
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "graph_relationships"},
		}
	}

	others := make([]string, 0, 2)
	for _, n := range parsed.Entities.CandidateNames {
		if !strings.EqualFold(n, name) {
			others = append(others, n)
		}
	}
	for _, n := range parsed.Entities.Jurisdictions {
		if !strings.EqualFold(n, name) {
			others = append(others, n)
		}
	}

	response := fmt.Sprintf("Mapping relationships around %s in the knowledge graph.", name)
	if len(others) > 0 {
		response = fmt.Sprintf("Mapping relationships between %s and %s.", name, strings.Join(others, ", "))
	}
	return &query.HandlerResult{
		Success:  true,
		Response: response,
		Data: map[string]interface{}{
			"destination": "graph",
			"path":        "/knowledge-graph",
			"focusKind":   kind,
			"focusName":   name,
			"related":     others,
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "graph_relationships"},
	}
}
