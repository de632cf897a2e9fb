// Package candidates answers questions about individual candidates:
// per-cycle performance, head-to-head comparison, and the roster of
// candidates the engine knows about.
package candidates

import (
	"context"
	"fmt"
	"strings"

	"campaign-query/internal/common/logger"
	"campaign-query/internal/dataaccess"
	"campaign-query/internal/query"
	"campaign-query/internal/query/entities"
)

const HandlerName = "CandidateHandler"

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
		query.IntentCandidatePerformance,
		query.IntentCandidateCompare,
		query.IntentCandidateList,
	}
}

func (h *Handler) CanHandle(parsed *query.ParsedQuery) bool {
	switch parsed.Intent {
	case query.IntentCandidatePerformance, query.IntentCandidateCompare,
		query.IntentCandidateList:
		return true
	}
	return false
}

func (h *Handler) ExtractEntities(text string) query.EntityBag {
	return query.EntityBag{
		CandidateNames: entities.Candidates(text),
		Jurisdictions:  entities.Jurisdictions(text),
		Year:           entities.Year(text),
	}
}

func (h *Handler) Handle(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	switch parsed.Intent {
	case query.IntentCandidateCompare:
		return h.compare(ctx, parsed)
	case query.IntentCandidateList:
		return h.list(ctx)
	default:
		return h.performance(ctx, parsed)
	}
}

func (h *Handler) performance(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	if len(parsed.Entities.CandidateNames) == 0 {
		return &query.HandlerResult{
			Success:  false,
			Response: "Which candidate? Try asking about Biden, Trump, Whitmer, or Slotkin.",
			SuggestedActions: []query.SuggestedAction{
				{ID: "candidate-list", Label: "List known candidates", Action: "candidate-list"},
			},
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "candidate_performance"},
		}
	}

	name := parsed.Entities.CandidateNames[0]
	jurisdiction := firstOrEmpty(parsed.Entities.Jurisdictions)
	results, err := h.data.ElectionHistory(ctx, jurisdiction, 0)
	if err != nil {
		h.logger.Error("election history failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}

	lines := make([]string, 0, 4)
	var matched []dataaccess.ElectionResult
	for _, r := range results {
		if strings.EqualFold(r.Candidate, name) {
			matched = append(matched, r)
			lines = append(lines, fmt.Sprintf("%d %s: %.1f%%", r.Year, r.Office, r.VoteShare))
		}
	}
	if len(matched) == 0 {
		return &query.HandlerResult{
			Success:  false,
			Response: fmt.Sprintf("I don't have results for %s here.", name),
			SuggestedActions: []query.SuggestedAction{
				{ID: "candidate-list", Label: "List known candidates", Action: "candidate-list"},
			},
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "candidate_performance"},
		}
	}

	return &query.HandlerResult{
		Success:  true,
		Response: fmt.Sprintf("%s's performance — %s.", name, strings.Join(lines, "; ")),
		Data:     map[string]interface{}{"candidate": name, "results": matched},
		SuggestedActions: []query.SuggestedAction{
			{ID: "donor-by-candidate", Label: "Show their donors", Action: "donor-by-candidate"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "candidate_performance"},
	}
}

func (h *Handler) compare(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	if len(parsed.Entities.CandidateNames) < 2 {
		return &query.HandlerResult{
			Success:  false,
			Response: "Name two candidates to compare, for example \"Compare Whitmer and Dixon\".",
			SuggestedActions: []query.SuggestedAction{
				{ID: "candidate-list", Label: "List known candidates", Action: "candidate-list"},
			},
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "candidate_compare"},
		}
	}

	a, b := parsed.Entities.CandidateNames[0], parsed.Entities.CandidateNames[1]
	results, err := h.data.ElectionHistory(ctx, "", 0)
	if err != nil {
		h.logger.Error("election history failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}

	bestShare := func(name string) (dataaccess.ElectionResult, bool) {
		var best dataaccess.ElectionResult
		found := false
		for _, r := range results {
			if strings.EqualFold(r.Candidate, name) && (!found || r.Year > best.Year) {
				best = r
				found = true
			}
		}
		return best, found
	}

	ra, okA := bestShare(a)
	rb, okB := bestShare(b)
	if !okA || !okB {
		missing := a
		if okA {
			missing = b
		}
		return &query.HandlerResult{
			Success:  false,
			Response: fmt.Sprintf("I don't have results for %s here.", missing),
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "candidate_compare"},
		}
	}

	return &query.HandlerResult{
		Success: true,
		Response: fmt.Sprintf(
			"%s took %.1f%% in %d; %s took %.1f%% in %d.",
			ra.Candidate, ra.VoteShare, ra.Year, rb.Candidate, rb.VoteShare, rb.Year,
		),
		Data:     map[string]interface{}{"results": []dataaccess.ElectionResult{ra, rb}},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "candidate_compare"},
	}
}

func (h *Handler) list(ctx context.Context) *query.HandlerResult {
	results, err := h.data.ElectionHistory(ctx, "", 0)
	if err != nil {
		h.logger.Error("election history failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}

	seen := map[string]bool{}
	names := make([]string, 0, len(results))
	for _, r := range results {
		if !seen[r.Candidate] {
			seen[r.Candidate] = true
			names = append(names, r.Candidate)
		}
	}
	if len(names) == 0 {
		return &query.HandlerResult{
			Success:  false,
			Response: "No candidate records are loaded yet.",
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "candidate_list"},
		}
	}

	return &query.HandlerResult{
		Success:  true,
		Response: fmt.Sprintf("I have results for %d candidates: %s.", len(names), strings.Join(names, ", ")),
		Data:     map[string]interface{}{"candidates": names},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "candidate_list"},
	}
}

func firstOrEmpty(list []string) string {
	if len(list) > 0 {
		return list[0]
	}
	return ""
}

func (h *Handler) collaboratorFailure() *query.HandlerResult {
	return &query.HandlerResult{
		Success:  false,
		Response: "I couldn't reach the election data service. Please try again in a moment.",
		SuggestedActions: []query.SuggestedAction{
			{ID: "retry", Label: "Try again", Action: "retry-operation"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName},
	}
}
