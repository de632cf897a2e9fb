// Package canvass turns precinct scores and election margins into field
// plans: canvass targets, walk lists, and high-level canvass planning.
package canvass

import (
	"context"
	"fmt"
	"strings"

	"campaign-query/internal/common/logger"
	"campaign-query/internal/dataaccess"
	"campaign-query/internal/query"
	"campaign-query/internal/query/entities"
)

const HandlerName = "CanvassHandler"

// defaultTargetIssue drives target selection when the query names no issue.
const defaultTargetIssue = "economy"

type Handler struct {
	data   dataaccess.Service
	logger logger.Logger
}

func NewHandler(data dataaccess.Service, log logger.Logger) *Handler {
	return &Handler{
		data:   data,
		logger: log.WithFields(map[string]interface{}{"handler": HandlerName}),
	}
}

func (h *Handler) Name() string { return HandlerName }

func (h *Handler) OwnedIntents() []query.QueryIntent {
	return []query.QueryIntent{
		query.IntentCanvassPlan,
		query.IntentCanvassTargets,
		query.IntentWalkList,
	}
}

func (h *Handler) CanHandle(parsed *query.ParsedQuery) bool {
	switch parsed.Intent {
	case query.IntentCanvassPlan, query.IntentCanvassTargets, query.IntentWalkList:
		return true
	}
	return false
}

func (h *Handler) ExtractEntities(text string) query.EntityBag {
	return query.EntityBag{
		Jurisdictions: entities.Jurisdictions(text),
		Precincts:     entities.Precincts(text),
		IssueKeywords: entities.Issues(text),
	}
}

func (h *Handler) Handle(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	switch parsed.Intent {
	case query.IntentCanvassTargets:
		return h.targets(ctx, parsed)
	case query.IntentWalkList:
		return h.walkList(ctx, parsed)
	default:
		return h.plan(ctx, parsed)
	}
}

func (h *Handler) targetPrecincts(ctx context.Context, parsed *query.ParsedQuery, limit int) ([]dataaccess.PrecinctScore, string, error) {
	issue := defaultTargetIssue
	if len(parsed.Entities.IssueKeywords) > 0 {
		issue = parsed.Entities.IssueKeywords[0]
	}
	scores, err := h.data.PrecinctScores(ctx, issue)
	if err != nil {
		return nil, issue, err
	}

	jurisdiction := firstOrEmpty(parsed.Entities.Jurisdictions)
	out := make([]dataaccess.PrecinctScore, 0, limit)
	for _, s := range scores {
		if jurisdiction != "" && !strings.EqualFold(s.Jurisdiction, jurisdiction) {
			continue
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out, issue, nil
}

func (h *Handler) plan(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	targets, issue, err := h.targetPrecincts(ctx, parsed, 3)
	if err != nil {
		h.logger.Error("precinct scores failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	if len(targets) == 0 {
		return h.noTargets("canvass_plan")
	}

	names := precinctNames(targets)
	return &query.HandlerResult{
		Success: true,
		Response: fmt.Sprintf(
			"Canvass plan: start with %s, leading on %s. Prioritize weekend shifts and pair each precinct with a walk list.",
			strings.Join(names, ", "), strings.ReplaceAll(issue, "_", " "),
		),
		Data: map[string]interface{}{"targets": targets, "issue": issue},
		MapCommands: []query.MapCommand{
			query.HighlightCommand("precinct", names),
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "walk-list", Label: "Generate walk lists", Action: "walk-list"},
			{ID: "canvass-targets", Label: "See all targets", Action: "canvass-targets"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "canvass_plan"},
	}
}

func (h *Handler) targets(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	targets, issue, err := h.targetPrecincts(ctx, parsed, 10)
	if err != nil {
		h.logger.Error("precinct scores failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	if len(targets) == 0 {
		return h.noTargets("canvass_targets")
	}

	lines := make([]string, 0, len(targets))
	for i, t := range targets {
		lines = append(lines, fmt.Sprintf("%d. %s (%.2f)", i+1, t.Precinct, t.Score))
	}
	return &query.HandlerResult{
		Success: true,
		Response: fmt.Sprintf(
			"Top canvass targets by %s engagement: %s.",
			strings.ReplaceAll(issue, "_", " "), strings.Join(lines, "; "),
		),
		Data: map[string]interface{}{"targets": targets, "issue": issue},
		MapCommands: []query.MapCommand{
			query.HighlightCommand("precinct", precinctNames(targets)),
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "walk-list", Label: "Generate walk lists", Action: "walk-list"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "canvass_targets"},
	}
}

func (h *Handler) walkList(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	precinct := firstOrEmpty(parsed.Entities.Precincts)
	if precinct == "" {
		targets, _, err := h.targetPrecincts(ctx, parsed, 1)
		if err != nil {
			h.logger.Error("precinct scores failed", map[string]interface{}{"error": err.Error()})
			return h.collaboratorFailure()
		}
		if len(targets) == 0 {
			return h.noTargets("walk_list")
		}
		precinct = targets[0].Precinct
	}

	return &query.HandlerResult{
		Success:  true,
		Response: fmt.Sprintf("Generating a walk list for %s. It will appear under Canvass Mode once ready.", precinct),
		Data: map[string]interface{}{
			"precinct": precinct,
			"format":   "pdf",
		},
		MapCommands: []query.MapCommand{
			query.ZoomToCommand(precinct),
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "go-canvass", Label: "Open Canvass Mode", Action: "navigate:canvass"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "walk_list"},
	}
}

func (h *Handler) noTargets(queryType string) *query.HandlerResult {
	return &query.HandlerResult{
		Success:  false,
		Response: "No canvass targets match that area yet.",
		SuggestedActions: []query.SuggestedAction{
			{ID: "issue-ranking", Label: "See what voters care about", Action: "issue-ranking"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: queryType},
	}
}

func (h *Handler) collaboratorFailure() *query.HandlerResult {
	return &query.HandlerResult{
		Success:  false,
		Response: "I couldn't reach the scoring service. Please try again in a moment.",
		SuggestedActions: []query.SuggestedAction{
			{ID: "retry", Label: "Try again", Action: "retry-operation"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName},
	}
}

func precinctNames(scores []dataaccess.PrecinctScore) []string {
	names := make([]string, 0, len(scores))
	for _, s := range scores {
		names = append(names, s.Precinct)
	}
	return names
}

func firstOrEmpty(list []string) string {
	if len(list) > 0 {
		return list[0]
	}
	return ""
}
