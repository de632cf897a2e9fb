// Package donors owns donor analytics intents. donor_trends is cross-cutting
// with the trends handler: this handler claims it only when the query carries
// a geographic entity, otherwise it falls through to the trend handler's
// time-series treatment.
package donors

import (
	"context"
	"fmt"
	"strings"

	"campaign-query/internal/common/logger"
	"campaign-query/internal/dataaccess"
	"campaign-query/internal/query"
	"campaign-query/internal/query/entities"
)

const HandlerName = "DonorHandler"

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
		query.IntentDonorConcentration,
		query.IntentDonorProspects,
		query.IntentDonorTrends,
		query.IntentDonorExport,
		query.IntentDonorGeographic,
		query.IntentDonorByCandidate,
		query.IntentDonorComparison,
	}
}

func (h *Handler) CanHandle(parsed *query.ParsedQuery) bool {
	switch parsed.Intent {
	case query.IntentDonorConcentration, query.IntentDonorProspects,
		query.IntentDonorExport, query.IntentDonorGeographic,
		query.IntentDonorByCandidate, query.IntentDonorComparison:
		return true
	case query.IntentDonorTrends:
		// Geographic framing belongs here; pure time-series framing
		// belongs to the trend handler registered after us.
		return parsed.Entities.HasGeography()
	}
	return false
}

func (h *Handler) ExtractEntities(text string) query.EntityBag {
	return query.EntityBag{
		ZipCodes:       entities.ZipCodes(text),
		Jurisdictions:  entities.Jurisdictions(text),
		CandidateNames: entities.Candidates(text),
	}
}

func (h *Handler) Handle(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	switch parsed.Intent {
	case query.IntentDonorConcentration:
		return h.concentration(ctx)
	case query.IntentDonorProspects:
		return h.prospects(ctx)
	case query.IntentDonorExport:
		return h.export(ctx)
	case query.IntentDonorByCandidate:
		return h.byCandidate(ctx, parsed)
	case query.IntentDonorComparison:
		return h.comparison(ctx)
	case query.IntentDonorTrends:
		return h.geographicTrends(ctx, parsed)
	default:
		return h.geographic(ctx, parsed)
	}
}

func (h *Handler) concentration(ctx context.Context) *query.HandlerResult {
	aggs, err := h.data.DonorAggregates(ctx, "zip")
	if err != nil {
		h.logger.Error("donor aggregates failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	if len(aggs) == 0 {
		return h.noDonors("donor_concentration")
	}

	top := aggs[0]
	zips := make([]string, 0, len(aggs))
	for _, a := range aggs {
		zips = append(zips, a.Area)
	}

	return &query.HandlerResult{
		Success: true,
		Response: fmt.Sprintf(
			"Donor concentration is highest in ZIP %s with %d donors and $%.0f raised. Top ZIPs: %s.",
			top.Area, top.DonorCount, top.TotalAmount, strings.Join(zips, ", "),
		),
		Data: map[string]interface{}{"aggregates": aggs},
		MapCommands: []query.MapCommand{
			query.HighlightCommand("zip", zips),
			query.ZoomToCommand(top.Area),
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "donor-prospects", Label: "Find donor prospects", Action: "donor-prospects"},
			{ID: "donor-export", Label: "Export donor list", Action: "donor-export"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "donor_concentration"},
	}
}

func (h *Handler) prospects(ctx context.Context) *query.HandlerResult {
	aggs, err := h.data.DonorAggregates(ctx, "municipality")
	if err != nil {
		h.logger.Error("donor aggregates failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	if len(aggs) == 0 {
		return h.noDonors("donor_prospects")
	}

	// Prospecting heuristic: high average gift marks under-solicited wealth.
	best := aggs[0]
	for _, a := range aggs {
		if a.AverageGift > best.AverageGift {
			best = a
		}
	}

	return &query.HandlerResult{
		Success: true,
		Response: fmt.Sprintf(
			"Best prospecting area: %s, where the average gift is $%.2f across %d donors.",
			best.Area, best.AverageGift, best.DonorCount,
		),
		Data: map[string]interface{}{"best": best, "aggregates": aggs},
		SuggestedActions: []query.SuggestedAction{
			{ID: "donor-concentration", Label: "Show donor concentration", Action: "donor-concentration"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "donor_prospects"},
	}
}

func (h *Handler) export(ctx context.Context) *query.HandlerResult {
	aggs, err := h.data.DonorAggregates(ctx, "municipality")
	if err != nil {
		h.logger.Error("donor aggregates failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}

	total := 0
	for _, a := range aggs {
		total += a.DonorCount
	}
	if total == 0 {
		// No qualifying donors: explain rather than emit an empty file.
		return &query.HandlerResult{
			Success:  false,
			Response: "There are no qualifying donors to export. Adjust your criteria and try again.",
			SuggestedActions: []query.SuggestedAction{
				{ID: "donor-concentration", Label: "Show donor concentration", Action: "donor-concentration"},
			},
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "donor_export"},
		}
	}

	return &query.HandlerResult{
		Success:  true,
		Response: fmt.Sprintf("Preparing a CSV export of %d donors. The download will start shortly.", total),
		Data: map[string]interface{}{
			"format":     "csv",
			"donorCount": total,
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "export-report", Label: "Generate a PDF report instead", Action: "export-report"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "donor_export"},
	}
}

func (h *Handler) byCandidate(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	aggs, err := h.data.DonorAggregates(ctx, "candidate")
	if err != nil {
		h.logger.Error("donor aggregates failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	if len(aggs) == 0 {
		return h.noDonors("donor_by_candidate")
	}

	if len(parsed.Entities.CandidateNames) > 0 {
		want := parsed.Entities.CandidateNames[0]
		for _, a := range aggs {
			if strings.EqualFold(a.Candidate, want) {
				return &query.HandlerResult{
					Success: true,
					Response: fmt.Sprintf(
						"%s has %d donors totaling $%.0f (average gift $%.2f).",
						a.Candidate, a.DonorCount, a.TotalAmount, a.AverageGift,
					),
					Data:     map[string]interface{}{"aggregate": a},
					Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "donor_by_candidate"},
				}
			}
		}
		return &query.HandlerResult{
			Success:  false,
			Response: fmt.Sprintf("I don't have donor data for %s.", want),
			SuggestedActions: []query.SuggestedAction{
				{ID: "donor-by-candidate", Label: "Show all candidates", Action: "donor-by-candidate"},
			},
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "donor_by_candidate"},
		}
	}

	lines := make([]string, 0, len(aggs))
	for _, a := range aggs {
		lines = append(lines, fmt.Sprintf("%s: %d donors, $%.0f", a.Candidate, a.DonorCount, a.TotalAmount))
	}
	return &query.HandlerResult{
		Success:  true,
		Response: "Donors by candidate — " + strings.Join(lines, "; ") + ".",
		Data:     map[string]interface{}{"aggregates": aggs},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "donor_by_candidate"},
	}
}

func (h *Handler) comparison(ctx context.Context) *query.HandlerResult {
	aggs, err := h.data.DonorAggregates(ctx, "municipality")
	if err != nil {
		h.logger.Error("donor aggregates failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	if len(aggs) < 2 {
		return h.noDonors("donor_comparison")
	}

	a, b := aggs[0], aggs[1]
	return &query.HandlerResult{
		Success: true,
		Response: fmt.Sprintf(
			"Donor comparison: %s ($%.0f from %d donors) versus %s ($%.0f from %d donors).",
			a.Area, a.TotalAmount, a.DonorCount, b.Area, b.TotalAmount, b.DonorCount,
		),
		Data: map[string]interface{}{"aggregates": aggs},
		SuggestedActions: []query.SuggestedAction{
			{ID: "donor-concentration", Label: "Show the full concentration map", Action: "donor-concentration"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "donor_comparison"},
	}
}

func (h *Handler) geographic(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	groupBy := "municipality"
	if len(parsed.Entities.ZipCodes) > 0 {
		groupBy = "zip"
	}

	aggs, err := h.data.DonorAggregates(ctx, groupBy)
	if err != nil {
		h.logger.Error("donor aggregates failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	if len(aggs) == 0 {
		return h.noDonors("donor_geographic")
	}

	areas := make([]string, 0, len(aggs))
	lines := make([]string, 0, len(aggs))
	for _, a := range aggs {
		areas = append(areas, a.Area)
		lines = append(lines, fmt.Sprintf("%s: %d donors", a.Area, a.DonorCount))
	}

	return &query.HandlerResult{
		Success:  true,
		Response: "Donors by area — " + strings.Join(lines, "; ") + ".",
		Data:     map[string]interface{}{"aggregates": aggs, "groupBy": groupBy},
		MapCommands: []query.MapCommand{
			query.HighlightCommand(groupBy, areas),
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "donor-concentration", Label: "Show donor concentration", Action: "donor-concentration"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "donor_geographic"},
	}
}

func (h *Handler) geographicTrends(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	area := firstOrEmpty(parsed.Entities.Jurisdictions)
	if area == "" {
		area = firstOrEmpty(parsed.Entities.ZipCodes)
	}

	aggs, err := h.data.DonorAggregates(ctx, "municipality")
	if err != nil {
		h.logger.Error("donor aggregates failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}

	for _, a := range aggs {
		if strings.EqualFold(a.Area, area) {
			return &query.HandlerResult{
				Success: true,
				Response: fmt.Sprintf(
					"Donor trends in %s: %d active donors, $%.0f raised to date, averaging $%.2f per gift.",
					a.Area, a.DonorCount, a.TotalAmount, a.AverageGift,
				),
				Data: map[string]interface{}{"aggregate": a},
				MapCommands: []query.MapCommand{
					query.ZoomToCommand(a.Area),
				},
				SuggestedActions: []query.SuggestedAction{
					{ID: "donor-concentration", Label: "Countywide concentration", Action: "donor-concentration"},
				},
				Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "donor_trends"},
			}
		}
	}

	return &query.HandlerResult{
		Success:  false,
		Response: fmt.Sprintf("I don't have donor trend data for %q.", area),
		SuggestedActions: []query.SuggestedAction{
			{ID: "donor-geographic", Label: "Show donors by area", Action: "donor-geographic"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "donor_trends"},
	}
}

func firstOrEmpty(list []string) string {
	if len(list) > 0 {
		return list[0]
	}
	return ""
}

func (h *Handler) noDonors(queryType string) *query.HandlerResult {
	return &query.HandlerResult{
		Success:  false,
		Response: "I don't have donor data for that yet.",
		SuggestedActions: []query.SuggestedAction{
			{ID: "go-donors", Label: "Go to Donor Analytics", Action: "navigate:donors"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: queryType},
	}
}

func (h *Handler) collaboratorFailure() *query.HandlerResult {
	return &query.HandlerResult{
		Success:  false,
		Response: "I couldn't reach the donor data service. Please try again in a moment.",
		SuggestedActions: []query.SuggestedAction{
			{ID: "retry", Label: "Try again", Action: "retry-operation"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName},
	}
}
