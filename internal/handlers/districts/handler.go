// Package districts owns legislative district intents.
package districts

import (
	"context"
	"fmt"

	"campaign-query/internal/common/logger"
	"campaign-query/internal/dataaccess"
	"campaign-query/internal/query"
	"campaign-query/internal/query/entities"
)

const HandlerName = "DistrictHandler"

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
		query.IntentDistrictAnalysis,
		query.IntentDistrictCompare,
	}
}

func (h *Handler) CanHandle(parsed *query.ParsedQuery) bool {
	switch parsed.Intent {
	case query.IntentDistrictAnalysis, query.IntentDistrictCompare:
		return true
	}
	return false
}

// ExtractEntities re-runs district extraction for callers that bypass the
// generic parser.
func (h *Handler) ExtractEntities(text string) query.EntityBag {
	return query.EntityBag{DistrictID: entities.DistrictID(text)}
}

func (h *Handler) Handle(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	if parsed.Intent == query.IntentDistrictCompare {
		return h.compare(ctx)
	}
	return h.analyze(ctx, parsed)
}

func (h *Handler) analyze(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	districtID := parsed.Entities.DistrictID
	if districtID == "" {
		districtID = entities.DistrictID(parsed.OriginalQuery)
	}
	if districtID == "" {
		known, err := h.data.ReferenceList(ctx, dataaccess.BoundaryDistrict)
		if err != nil {
			h.logger.Error("reference list failed", map[string]interface{}{"error": err.Error()})
			known = nil
		}
		actions := make([]query.SuggestedAction, 0, len(known))
		for _, d := range known {
			actions = append(actions, query.SuggestedAction{
				ID:     "district-" + d,
				Label:  "Analyze " + d,
				Action: "district-analysis:" + d,
			})
		}
		return &query.HandlerResult{
			Success:          false,
			Response:         "Which district? Try \"State House District 73\" or \"SD-21\".",
			SuggestedActions: actions,
			Metadata:         query.ResultMetadata{HandlerName: HandlerName, QueryType: "district_analysis"},
		}
	}

	aggs, err := h.data.DonorAggregates(ctx, "district")
	if err != nil {
		h.logger.Error("donor aggregates failed", map[string]interface{}{"error": err.Error()})
		aggs = nil
	}
	segs, err := h.data.Segments(ctx, districtID)
	if err != nil {
		h.logger.Error("segments failed", map[string]interface{}{"error": err.Error()})
		segs = nil
	}

	response := fmt.Sprintf("District analysis for %s:", districtID)
	data := map[string]interface{}{"districtId": districtID}

	for _, a := range aggs {
		if a.Area == districtID {
			response += fmt.Sprintf(" %d donors have given $%.0f to date.", a.DonorCount, a.TotalAmount)
			data["donors"] = a
			break
		}
	}
	if len(segs) > 0 {
		response += fmt.Sprintf(" %d voter segments target this district.", len(segs))
		data["segmentCount"] = len(segs)
	}
	if data["donors"] == nil && len(segs) == 0 {
		response += " I have no donor or segment data for this district yet."
	}

	return &query.HandlerResult{
		Success:  true,
		Response: response,
		Data:     data,
		MapCommands: []query.MapCommand{
			query.HighlightCommand("district", []string{districtID}),
			query.ZoomToCommand(districtID),
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "compare-districts", Label: "Compare districts", Action: "district-compare"},
			{ID: "segment-by-district", Label: "Segments by district", Action: "segment-by-district"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "district_analysis"},
	}
}

func (h *Handler) compare(ctx context.Context) *query.HandlerResult {
	aggs, err := h.data.DonorAggregates(ctx, "district")
	if err != nil {
		h.logger.Error("donor aggregates failed", map[string]interface{}{"error": err.Error()})
		return &query.HandlerResult{
			Success:  false,
			Response: "I couldn't load district data right now. Please try again in a moment.",
			SuggestedActions: []query.SuggestedAction{
				{ID: "retry", Label: "Try again", Action: "retry-operation"},
			},
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "district_compare"},
		}
	}
	if len(aggs) < 2 {
		return &query.HandlerResult{
			Success:  false,
			Response: "I need data for at least two districts to compare, and I don't have it yet.",
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "district_compare"},
		}
	}

	top, second := aggs[0], aggs[1]
	names := make([]string, 0, len(aggs))
	for _, a := range aggs {
		names = append(names, a.Area)
	}

	return &query.HandlerResult{
		Success: true,
		Response: fmt.Sprintf(
			"District comparison: %s leads with $%.0f from %d donors, ahead of %s ($%.0f from %d donors).",
			top.Area, top.TotalAmount, top.DonorCount,
			second.Area, second.TotalAmount, second.DonorCount,
		),
		Data: map[string]interface{}{"districts": aggs},
		MapCommands: []query.MapCommand{
			query.HighlightCommand("district", names),
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "district-analysis", Label: "Drill into " + top.Area, Action: "district-analysis:" + top.Area},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "district_compare"},
	}
}
