// Package trends answers multi-cycle time-series questions over the
// election history: swings, turnout direction, partisan lean, flip risk,
// and cycle-over-cycle comparisons. It also takes donor_trends queries
// the donor handler declined for lack of a geographic entity.
package trends

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

const HandlerName = "TrendHandler"

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
		query.IntentElectionTrends,
		query.IntentTurnoutTrends,
		query.IntentPartisanTrends,
		query.IntentFlipRisk,
		query.IntentDemographicTrends,
		query.IntentDonorTrends,
		query.IntentCompareElections,
	}
}

func (h *Handler) CanHandle(parsed *query.ParsedQuery) bool {
	switch parsed.Intent {
	case query.IntentElectionTrends, query.IntentTurnoutTrends,
		query.IntentPartisanTrends, query.IntentFlipRisk,
		query.IntentDemographicTrends, query.IntentDonorTrends,
		query.IntentCompareElections:
		return true
	}
	return false
}

func (h *Handler) ExtractEntities(text string) query.EntityBag {
	return query.EntityBag{
		Jurisdictions: entities.Jurisdictions(text),
		Year:          entities.Year(text),
	}
}

func (h *Handler) Handle(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	switch parsed.Intent {
	case query.IntentTurnoutTrends:
		return h.turnoutTrends(ctx, parsed)
	case query.IntentPartisanTrends:
		return h.partisanTrends(ctx, parsed)
	case query.IntentFlipRisk:
		return h.flipRisk(ctx, parsed)
	case query.IntentDemographicTrends:
		return h.demographicTrends(ctx, parsed)
	case query.IntentDonorTrends:
		return h.donorTrends(ctx)
	case query.IntentCompareElections:
		return h.compareElections(ctx, parsed)
	default:
		return h.electionTrends(ctx, parsed)
	}
}

// cycleSummary is one presidential-or-gubernatorial cycle condensed to
// the demographic share and turnout the trend math needs.
type cycleSummary struct {
	Year       int
	DemShare   float64
	RepShare   float64
	TurnoutPct float64
	Winner     string
}

func (h *Handler) cycles(ctx context.Context, jurisdiction string) ([]cycleSummary, error) {
	results, err := h.data.ElectionHistory(ctx, jurisdiction, 0)
	if err != nil {
		return nil, err
	}

	byYear := map[int]*cycleSummary{}
	winners := map[int]dataaccess.ElectionResult{}
	for _, r := range results {
		c := byYear[r.Year]
		if c == nil {
			c = &cycleSummary{Year: r.Year}
			byYear[r.Year] = c
		}
		switch r.Party {
		case "DEM":
			c.DemShare = r.VoteShare
		case "REP":
			c.RepShare = r.VoteShare
		}
		if r.TurnoutPct > 0 {
			c.TurnoutPct = r.TurnoutPct
		}
		if r.VoteShare > winners[r.Year].VoteShare {
			winners[r.Year] = r
		}
	}

	out := make([]cycleSummary, 0, len(byYear))
	for year, c := range byYear {
		c.Winner = winners[year].Candidate
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

func (h *Handler) electionTrends(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	jurisdiction := firstOrEmpty(parsed.Entities.Jurisdictions)
	cycles, err := h.cycles(ctx, jurisdiction)
	if err != nil {
		h.logger.Error("election history failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	if len(cycles) < 2 {
		return h.noData("election_trends")
	}

	first, last := cycles[0], cycles[len(cycles)-1]
	swing := (last.DemShare - last.RepShare) - (first.DemShare - first.RepShare)
	direction := "toward Democrats"
	if swing < 0 {
		direction = "toward Republicans"
		swing = -swing
	}

	scope := "Countywide"
	if jurisdiction != "" {
		scope = jurisdiction
	}
	return &query.HandlerResult{
		Success: true,
		Response: fmt.Sprintf(
			"%s has shifted %.1f points %s between %d and %d. Latest margin: D %.1f%% / R %.1f%%.",
			scope, swing, direction, first.Year, last.Year, last.DemShare, last.RepShare,
		),
		Data: map[string]interface{}{"cycles": cycles},
		SuggestedActions: []query.SuggestedAction{
			{ID: "turnout-trends", Label: "Show turnout trends", Action: "turnout-trends"},
			{ID: "flip-risk", Label: "Assess flip risk", Action: "flip-risk"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "election_trends"},
	}
}

func (h *Handler) turnoutTrends(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	jurisdiction := firstOrEmpty(parsed.Entities.Jurisdictions)
	cycles, err := h.cycles(ctx, jurisdiction)
	if err != nil {
		h.logger.Error("election history failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	if len(cycles) < 2 {
		return h.noData("turnout_trends")
	}

	points := make([]string, 0, len(cycles))
	for _, c := range cycles {
		points = append(points, fmt.Sprintf("%d: %.1f%%", c.Year, c.TurnoutPct))
	}
	first, last := cycles[0], cycles[len(cycles)-1]
	delta := last.TurnoutPct - first.TurnoutPct
	word := "up"
	if delta < 0 {
		word = "down"
		delta = -delta
	}

	return &query.HandlerResult{
		Success: true,
		Response: fmt.Sprintf(
			"Turnout is %s %.1f points since %d. By cycle — %s.",
			word, delta, first.Year, strings.Join(points, "; "),
		),
		Data:     map[string]interface{}{"cycles": cycles},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "turnout_trends"},
	}
}

func (h *Handler) partisanTrends(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	jurisdiction := firstOrEmpty(parsed.Entities.Jurisdictions)
	cycles, err := h.cycles(ctx, jurisdiction)
	if err != nil {
		h.logger.Error("election history failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	if len(cycles) == 0 {
		return h.noData("partisan_trends")
	}

	lines := make([]string, 0, len(cycles))
	for _, c := range cycles {
		lines = append(lines, fmt.Sprintf("%d: D+%.1f", c.Year, c.DemShare-c.RepShare))
	}
	return &query.HandlerResult{
		Success:  true,
		Response: "Partisan lean by cycle — " + strings.Join(lines, "; ") + ".",
		Data:     map[string]interface{}{"cycles": cycles},
		SuggestedActions: []query.SuggestedAction{
			{ID: "flip-risk", Label: "Assess flip risk", Action: "flip-risk"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "partisan_trends"},
	}
}

func (h *Handler) flipRisk(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	jurisdiction := firstOrEmpty(parsed.Entities.Jurisdictions)
	cycles, err := h.cycles(ctx, jurisdiction)
	if err != nil {
		h.logger.Error("election history failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	if len(cycles) < 2 {
		return h.noData("flip_risk")
	}

	last := cycles[len(cycles)-1]
	prev := cycles[len(cycles)-2]
	margin := last.DemShare - last.RepShare
	trend := margin - (prev.DemShare - prev.RepShare)

	level := "low"
	switch {
	case margin > 0 && margin < 5 && trend < 0:
		level = "high"
	case margin < 10 && trend < 0:
		level = "moderate"
	case margin < 5:
		level = "moderate"
	}

	return &query.HandlerResult{
		Success: true,
		Response: fmt.Sprintf(
			"Flip risk is %s: the current margin is D+%.1f and moved %+.1f points last cycle.",
			level, margin, trend,
		),
		Data: map[string]interface{}{
			"risk":   level,
			"margin": margin,
			"trend":  trend,
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "canvass-plan", Label: "Build a canvass plan", Action: "canvass-plan"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "flip_risk"},
	}
}

func (h *Handler) demographicTrends(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	name := firstOrEmpty(parsed.Entities.Jurisdictions)
	if name == "" {
		name = "Ingham County"
	}
	demo, err := h.data.Demographics(ctx, name)
	if err != nil {
		h.logger.Error("demographics failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	if demo == nil {
		return h.noData("demographic_trends")
	}

	return &query.HandlerResult{
		Success: true,
		Response: fmt.Sprintf(
			"%s: population %d, median age %.1f, median household income $%d. Year-over-year demographic deltas are not tracked yet.",
			demo.Name, demo.Population, demo.MedianAge, demo.MedianIncome,
		),
		Data:     map[string]interface{}{"demographics": demo},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "demographic_trends"},
	}
}

// donorTrends takes the non-geographic framing of donor trend questions:
// a countywide time-series view rather than a per-area breakdown.
func (h *Handler) donorTrends(ctx context.Context) *query.HandlerResult {
	aggs, err := h.data.DonorAggregates(ctx, "municipality")
	if err != nil {
		h.logger.Error("donor aggregates failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	if len(aggs) == 0 {
		return h.noData("donor_trends")
	}

	var total float64
	var count int
	for _, a := range aggs {
		total += a.TotalAmount
		count += a.DonorCount
	}
	return &query.HandlerResult{
		Success: true,
		Response: fmt.Sprintf(
			"Countywide donor trend: %d active donors and $%.0f raised this cycle, averaging $%.2f per gift.",
			count, total, total/float64(count),
		),
		Data: map[string]interface{}{"aggregates": aggs},
		SuggestedActions: []query.SuggestedAction{
			{ID: "donor-geographic", Label: "Break down by area", Action: "donor-geographic"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "donor_trends"},
	}
}

func (h *Handler) compareElections(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	jurisdiction := firstOrEmpty(parsed.Entities.Jurisdictions)
	cycles, err := h.cycles(ctx, jurisdiction)
	if err != nil {
		h.logger.Error("election history failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	if len(cycles) < 2 {
		return h.noData("compare_elections")
	}

	a, b := cycles[len(cycles)-2], cycles[len(cycles)-1]
	if parsed.Entities.Year != 0 {
		for _, c := range cycles {
			if c.Year == parsed.Entities.Year {
				b = c
			}
		}
	}

	return &query.HandlerResult{
		Success: true,
		Response: fmt.Sprintf(
			"%d vs %d: Democratic share moved from %.1f%% to %.1f%%, turnout from %.1f%% to %.1f%%.",
			a.Year, b.Year, a.DemShare, b.DemShare, a.TurnoutPct, b.TurnoutPct,
		),
		Data:     map[string]interface{}{"cycles": []cycleSummary{a, b}},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "compare_elections"},
	}
}

func firstOrEmpty(list []string) string {
	if len(list) > 0 {
		return list[0]
	}
	return ""
}

func (h *Handler) noData(queryType string) *query.HandlerResult {
	return &query.HandlerResult{
		Success:  false,
		Response: "I don't have enough historical data to chart that trend.",
		SuggestedActions: []query.SuggestedAction{
			{ID: "election-history", Label: "Show election history", Action: "election-history"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: queryType},
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
