// Package county answers countywide overview questions and precinct
// lookups against the boundary reference data.
package county

import (
	"context"
	"fmt"
	"strings"

	"campaign-query/internal/common/logger"
	"campaign-query/internal/dataaccess"
	"campaign-query/internal/query"
	"campaign-query/internal/query/entities"
)

const HandlerName = "CountyHandler"

const countyName = "Ingham County"

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
		query.IntentCountyOverview,
		query.IntentPrecinctLookup,
	}
}

func (h *Handler) CanHandle(parsed *query.ParsedQuery) bool {
	return parsed.Intent == query.IntentCountyOverview ||
		parsed.Intent == query.IntentPrecinctLookup
}

func (h *Handler) ExtractEntities(text string) query.EntityBag {
	return query.EntityBag{
		Jurisdictions: entities.Jurisdictions(text),
		Precincts:     entities.Precincts(text),
	}
}

func (h *Handler) Handle(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	if parsed.Intent == query.IntentPrecinctLookup {
		return h.precinctLookup(ctx, parsed)
	}
	return h.overview(ctx)
}

func (h *Handler) overview(ctx context.Context) *query.HandlerResult {
	demo, err := h.data.Demographics(ctx, countyName)
	if err != nil {
		h.logger.Error("demographics failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	municipalities, err := h.data.ReferenceList(ctx, dataaccess.BoundaryMunicipality)
	if err != nil {
		h.logger.Error("reference list failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	results, err := h.data.ElectionHistory(ctx, "", entities.FallbackYear)
	if err != nil {
		h.logger.Error("election history failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}

	response := fmt.Sprintf("%s spans %d municipalities", countyName, len(municipalities))
	if demo != nil {
		response += fmt.Sprintf(" with a population of %d", demo.Population)
	}
	if top := topResult(results); top != nil {
		response += fmt.Sprintf(". In %d, %s carried the county with %.1f%%", top.Year, top.Candidate, top.VoteShare)
	}
	response += "."

	return &query.HandlerResult{
		Success: true,
		Response: response,
		Data: map[string]interface{}{
			"county":         countyName,
			"municipalities": municipalities,
			"demographics":   demo,
		},
		MapCommands: []query.MapCommand{
			query.ZoomToCommand(countyName),
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "election-trends", Label: "Show county trends", Action: "election-trends"},
			{ID: "issue-ranking", Label: "What do voters care about?", Action: "issue-ranking"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "county_overview"},
	}
}

func (h *Handler) precinctLookup(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	if precinct := firstOrEmpty(parsed.Entities.Precincts); precinct != "" {
		demo, err := h.data.Demographics(ctx, precinct)
		if err != nil {
			h.logger.Error("demographics failed", map[string]interface{}{"error": err.Error()})
			return h.collaboratorFailure()
		}
		response := fmt.Sprintf("%s is an active precinct.", precinct)
		if demo != nil {
			response = fmt.Sprintf("%s: population %d, median age %.1f.", demo.Name, demo.Population, demo.MedianAge)
		}
		return &query.HandlerResult{
			Success:  true,
			Response: response,
			Data:     map[string]interface{}{"precinct": precinct, "demographics": demo},
			MapCommands: []query.MapCommand{
				query.ZoomToCommand(precinct),
			},
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "precinct_lookup"},
		}
	}

	precincts, err := h.data.ReferenceList(ctx, dataaccess.BoundaryPrecinct)
	if err != nil {
		h.logger.Error("reference list failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}

	jurisdiction := firstOrEmpty(parsed.Entities.Jurisdictions)
	if jurisdiction != "" {
		matched := make([]string, 0, len(precincts))
		for _, p := range precincts {
			if strings.HasPrefix(strings.ToLower(p), strings.ToLower(jurisdiction)) {
				matched = append(matched, p)
			}
		}
		if len(matched) == 0 {
			return &query.HandlerResult{
				Success:  false,
				Response: fmt.Sprintf("I don't have precinct records for %s.", jurisdiction),
				Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "precinct_lookup"},
			}
		}
		return &query.HandlerResult{
			Success:  true,
			Response: fmt.Sprintf("%s has %d precincts: %s.", jurisdiction, len(matched), strings.Join(matched, ", ")),
			Data:     map[string]interface{}{"precincts": matched},
			MapCommands: []query.MapCommand{
				query.HighlightCommand("precinct", matched),
			},
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "precinct_lookup"},
		}
	}

	return &query.HandlerResult{
		Success:  true,
		Response: fmt.Sprintf("There are %d precincts on file. Name a city to narrow it down.", len(precincts)),
		Data:     map[string]interface{}{"precincts": precincts},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "precinct_lookup"},
	}
}

func topResult(results []dataaccess.ElectionResult) *dataaccess.ElectionResult {
	var top *dataaccess.ElectionResult
	for i := range results {
		if top == nil || results[i].VoteShare > top.VoteShare {
			top = &results[i]
		}
	}
	return top
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
		Response: "I couldn't reach the county data service. Please try again in a moment.",
		SuggestedActions: []query.SuggestedAction{
			{ID: "retry", Label: "Try again", Action: "retry-operation"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName},
	}
}
