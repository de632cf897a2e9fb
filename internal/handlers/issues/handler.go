// Package issues maps policy-issue questions onto per-precinct relevance
// scores: which precincts care about an issue, how issues rank in an
// area, and issue salience by geography.
package issues

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

const HandlerName = "IssueHandler"

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
		query.IntentIssueAnalysis,
		query.IntentIssueByGeography,
		query.IntentIssueRanking,
	}
}

func (h *Handler) CanHandle(parsed *query.ParsedQuery) bool {
	switch parsed.Intent {
	case query.IntentIssueAnalysis, query.IntentIssueByGeography,
		query.IntentIssueRanking:
		return true
	}
	return false
}

func (h *Handler) ExtractEntities(text string) query.EntityBag {
	return query.EntityBag{
		IssueKeywords: entities.Issues(text),
		Jurisdictions: entities.Jurisdictions(text),
		Precincts:     entities.Precincts(text),
	}
}

func (h *Handler) Handle(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	switch parsed.Intent {
	case query.IntentIssueByGeography:
		return h.byGeography(ctx, parsed)
	case query.IntentIssueRanking:
		return h.ranking(ctx, parsed)
	default:
		return h.analysis(ctx, parsed)
	}
}

// analysis answers "which precincts care about X": the top-scoring
// precincts for one canonical issue.
func (h *Handler) analysis(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	if len(parsed.Entities.IssueKeywords) == 0 {
		return h.whichIssue("issue_analysis")
	}

	issue := parsed.Entities.IssueKeywords[0]
	scores, err := h.data.PrecinctScores(ctx, issue)
	if err != nil {
		h.logger.Error("precinct scores failed", map[string]interface{}{"error": err.Error(), "issue": issue})
		return h.collaboratorFailure()
	}
	if len(scores) == 0 {
		return h.noScores(issue, "issue_analysis")
	}

	top := scores
	if len(top) > 5 {
		top = top[:5]
	}
	names := make([]string, 0, len(top))
	for _, s := range top {
		names = append(names, fmt.Sprintf("%s (%.2f)", s.Precinct, s.Score))
	}

	return &query.HandlerResult{
		Success: true,
		Response: fmt.Sprintf(
			"Precincts most engaged on %s: %s.",
			displayIssue(issue), strings.Join(names, ", "),
		),
		Data: map[string]interface{}{"issue": issue, "scores": top},
		MapCommands: []query.MapCommand{
			query.HighlightCommand("precinct", precinctNames(top)),
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "create-segment", Label: "Build a segment from these precincts", Action: "create-segment"},
			{ID: "canvass-targets", Label: "Target them for canvassing", Action: "canvass-targets"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "issue_analysis"},
	}
}

func (h *Handler) byGeography(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	if len(parsed.Entities.IssueKeywords) == 0 {
		return h.whichIssue("issue_by_geography")
	}

	issue := parsed.Entities.IssueKeywords[0]
	scores, err := h.data.PrecinctScores(ctx, issue)
	if err != nil {
		h.logger.Error("precinct scores failed", map[string]interface{}{"error": err.Error(), "issue": issue})
		return h.collaboratorFailure()
	}

	// Roll precinct scores up to their jurisdictions.
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, s := range scores {
		sums[s.Jurisdiction] += s.Score
		counts[s.Jurisdiction]++
	}
	if len(sums) == 0 {
		return h.noScores(issue, "issue_by_geography")
	}

	type areaScore struct {
		Area  string  `json:"area"`
		Score float64 `json:"score"`
	}
	areas := make([]areaScore, 0, len(sums))
	for area, sum := range sums {
		areas = append(areas, areaScore{Area: area, Score: sum / float64(counts[area])})
	}
	sort.Slice(areas, func(i, j int) bool { return areas[i].Score > areas[j].Score })

	lines := make([]string, 0, len(areas))
	names := make([]string, 0, len(areas))
	for _, a := range areas {
		lines = append(lines, fmt.Sprintf("%s %.2f", a.Area, a.Score))
		names = append(names, a.Area)
	}

	return &query.HandlerResult{
		Success: true,
		Response: fmt.Sprintf(
			"%s salience by area — %s.",
			displayIssue(issue), strings.Join(lines, "; "),
		),
		Data: map[string]interface{}{"issue": issue, "areas": areas},
		MapCommands: []query.MapCommand{
			query.HighlightCommand("municipality", names),
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "issue_by_geography"},
	}
}

func (h *Handler) ranking(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	jurisdiction := firstOrEmpty(parsed.Entities.Jurisdictions)

	type issueScore struct {
		Issue string  `json:"issue"`
		Score float64 `json:"score"`
	}
	ranked := make([]issueScore, 0, len(entities.CanonicalIssues()))
	for _, issue := range entities.CanonicalIssues() {
		scores, err := h.data.PrecinctScores(ctx, issue)
		if err != nil {
			h.logger.Error("precinct scores failed", map[string]interface{}{"error": err.Error(), "issue": issue})
			return h.collaboratorFailure()
		}
		var sum float64
		var n int
		for _, s := range scores {
			if jurisdiction != "" && !strings.EqualFold(s.Jurisdiction, jurisdiction) {
				continue
			}
			sum += s.Score
			n++
		}
		if n > 0 {
			ranked = append(ranked, issueScore{Issue: issue, Score: sum / float64(n)})
		}
	}
	if len(ranked) == 0 {
		return h.noScores("any issue", "issue_ranking")
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	lines := make([]string, 0, len(ranked))
	for i, r := range ranked {
		lines = append(lines, fmt.Sprintf("%d. %s (%.2f)", i+1, displayIssue(r.Issue), r.Score))
	}

	scope := "countywide"
	if jurisdiction != "" {
		scope = "in " + jurisdiction
	}
	return &query.HandlerResult{
		Success:  true,
		Response: fmt.Sprintf("Top issues %s: %s.", scope, strings.Join(lines, "; ")),
		Data:     map[string]interface{}{"ranking": ranked},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "issue_ranking"},
	}
}

func (h *Handler) whichIssue(queryType string) *query.HandlerResult {
	return &query.HandlerResult{
		Success:  false,
		Response: "Which issue? Try healthcare, education, housing, or the economy.",
		SuggestedActions: []query.SuggestedAction{
			{ID: "issue-ranking", Label: "Rank all issues", Action: "issue-ranking"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: queryType},
	}
}

func (h *Handler) noScores(issue, queryType string) *query.HandlerResult {
	return &query.HandlerResult{
		Success:  false,
		Response: fmt.Sprintf("I don't have relevance scores for %s yet.", displayIssue(issue)),
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

// displayIssue turns a canonical issue key into display text.
func displayIssue(issue string) string {
	return strings.ReplaceAll(issue, "_", " ")
}

func firstOrEmpty(list []string) string {
	if len(list) > 0 {
		return list[0]
	}
	return ""
}
