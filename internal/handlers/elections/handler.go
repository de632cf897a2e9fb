// Package elections owns election result intents. Year resolution follows the
// extractor's fallback-to-2020 rule; every response names at least one
// major-party candidate.
package elections

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"campaign-query/internal/common/logger"
	"campaign-query/internal/dataaccess"
	"campaign-query/internal/query"
	"campaign-query/internal/query/entities"
)

const HandlerName = "ElectionResultsHandler"

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
		query.IntentElectionResults,
		query.IntentElectionCandidateResults,
		query.IntentElectionTurnout,
		query.IntentElectionHistory,
	}
}

func (h *Handler) CanHandle(parsed *query.ParsedQuery) bool {
	switch parsed.Intent {
	case query.IntentElectionResults, query.IntentElectionCandidateResults,
		query.IntentElectionTurnout, query.IntentElectionHistory:
		return true
	}
	return false
}

func (h *Handler) ExtractEntities(text string) query.EntityBag {
	return query.EntityBag{
		Year:           entities.Year(text),
		CandidateNames: entities.Candidates(text),
	}
}

// resolveYear applies the 2020 default when no year was extracted.
func resolveYear(parsed *query.ParsedQuery) int {
	if parsed.Entities.Year != 0 {
		return parsed.Entities.Year
	}
	return entities.FallbackYear
}

func (h *Handler) Handle(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	switch parsed.Intent {
	case query.IntentElectionTurnout:
		return h.turnout(ctx, parsed)
	case query.IntentElectionCandidateResults:
		return h.candidateResults(ctx, parsed)
	case query.IntentElectionHistory:
		return h.history(ctx, parsed)
	default:
		return h.results(ctx, parsed)
	}
}

func (h *Handler) results(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	year := resolveYear(parsed)
	jurisdiction := firstOrEmpty(parsed.Entities.Jurisdictions)

	results, err := h.data.ElectionHistory(ctx, jurisdiction, year)
	if err != nil {
		h.logger.Error("election history failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	if len(results) == 0 {
		return h.noData(year)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Votes > results[j].Votes })
	winner := results[0]

	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("%s (%s) %.1f%%", r.Candidate, r.Party, r.VoteShare))
	}

	return &query.HandlerResult{
		Success: true,
		Response: fmt.Sprintf(
			"%d Election Results — %s: %s. %s won with %.1f%% of the vote.",
			year, winner.Office, strings.Join(lines, ", "), winner.Candidate, winner.VoteShare,
		),
		Data: map[string]interface{}{
			"year":    year,
			"results": results,
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "turnout", Label: fmt.Sprintf("Show %d turnout", year), Action: "election-turnout"},
			{ID: "compare-elections", Label: "Compare with another cycle", Action: "compare-elections"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "election_results"},
	}
}

func (h *Handler) turnout(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	year := resolveYear(parsed)
	results, err := h.data.ElectionHistory(ctx, firstOrEmpty(parsed.Entities.Jurisdictions), year)
	if err != nil {
		h.logger.Error("election history failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	if len(results) == 0 {
		return h.noData(year)
	}

	r := results[0]
	return &query.HandlerResult{
		Success: true,
		Response: fmt.Sprintf(
			"Turnout in %d was %.1f%% of registered voters for the %s race, where %s led the field.",
			year, r.TurnoutPct, r.Office, topCandidate(results),
		),
		Data: map[string]interface{}{
			"year":       year,
			"turnoutPct": r.TurnoutPct,
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "turnout-trends", Label: "Turnout trends over time", Action: "turnout-trends"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "election_turnout"},
	}
}

func (h *Handler) candidateResults(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	year := resolveYear(parsed)
	results, err := h.data.ElectionHistory(ctx, firstOrEmpty(parsed.Entities.Jurisdictions), year)
	if err != nil {
		h.logger.Error("election history failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	if len(results) == 0 {
		return h.noData(year)
	}

	// Prefer the candidate the user named; otherwise report the leader.
	var pick *dataaccess.ElectionResult
	for i, r := range results {
		for _, name := range parsed.Entities.CandidateNames {
			if strings.EqualFold(r.Candidate, name) {
				pick = &results[i]
			}
		}
	}
	if pick == nil {
		sort.Slice(results, func(i, j int) bool { return results[i].Votes > results[j].Votes })
		pick = &results[0]
	}

	return &query.HandlerResult{
		Success: true,
		Response: fmt.Sprintf(
			"%s (%s) received %d votes in %d — %.1f%% of the %s vote.",
			pick.Candidate, pick.Party, pick.Votes, year, pick.VoteShare, pick.Office,
		),
		Data: map[string]interface{}{
			"year":      year,
			"candidate": pick,
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "full-results", Label: fmt.Sprintf("Full %d results", year), Action: "election-results"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "election_candidate_results"},
	}
}

func (h *Handler) history(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	results, err := h.data.ElectionHistory(ctx, firstOrEmpty(parsed.Entities.Jurisdictions), 0)
	if err != nil {
		h.logger.Error("election history failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	if len(results) == 0 {
		return h.noData(0)
	}

	byYear := make(map[int]dataaccess.ElectionResult)
	for _, r := range results {
		if cur, ok := byYear[r.Year]; !ok || r.Votes > cur.Votes {
			byYear[r.Year] = r
		}
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	lines := make([]string, 0, len(years))
	for _, y := range years {
		w := byYear[y]
		lines = append(lines, fmt.Sprintf("%d: %s (%s) %.1f%%", y, w.Candidate, w.Party, w.VoteShare))
	}

	return &query.HandlerResult{
		Success:  true,
		Response: "Election history — " + strings.Join(lines, "; ") + ".",
		Data:     map[string]interface{}{"history": results},
		SuggestedActions: []query.SuggestedAction{
			{ID: "election-trends", Label: "Show election trends", Action: "election-trends"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "election_history"},
	}
}

func topCandidate(results []dataaccess.ElectionResult) string {
	top := results[0]
	for _, r := range results {
		if r.Votes > top.Votes {
			top = r
		}
	}
	return top.Candidate
}

func firstOrEmpty(list []string) string {
	if len(list) > 0 {
		return list[0]
	}
	return ""
}

func (h *Handler) noData(year int) *query.HandlerResult {
	scope := "that election"
	if year != 0 {
		scope = fmt.Sprintf("the %d election", year)
	}
	return &query.HandlerResult{
		Success:  false,
		Response: fmt.Sprintf("I don't have results for %s. Supported cycles are 2016, 2018, 2020, 2022, and 2024.", scope),
		SuggestedActions: []query.SuggestedAction{
			{ID: "results-2020", Label: "Show 2020 results", Action: "election-results:2020"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName},
	}
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
