// Package comparison answers side-by-side questions over two precincts
// or two jurisdictions, joining demographics with election results.
package comparison

import (
	"context"
	"fmt"

	"campaign-query/internal/common/logger"
	"campaign-query/internal/dataaccess"
	"campaign-query/internal/query"
	"campaign-query/internal/query/entities"
)

const HandlerName = "ComparisonHandler"

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
		query.IntentComparePrecincts,
		query.IntentCompareJurisdictions,
	}
}

func (h *Handler) CanHandle(parsed *query.ParsedQuery) bool {
	return parsed.Intent == query.IntentComparePrecincts ||
		parsed.Intent == query.IntentCompareJurisdictions
}

func (h *Handler) ExtractEntities(text string) query.EntityBag {
	return query.EntityBag{
		Jurisdictions: entities.Jurisdictions(text),
		Precincts:     entities.Precincts(text),
		Year:          entities.Year(text),
	}
}

func (h *Handler) Handle(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	if parsed.Intent == query.IntentComparePrecincts {
		return h.comparePrecincts(ctx, parsed)
	}
	return h.compareJurisdictions(ctx, parsed)
}

func (h *Handler) comparePrecincts(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	if len(parsed.Entities.Precincts) < 2 {
		return &query.HandlerResult{
			Success:  false,
			Response: "Name two precincts to compare, for example \"Compare Lansing Precinct 3 and East Lansing Precinct 1\".",
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "compare_precincts"},
		}
	}

	a, b := parsed.Entities.Precincts[0], parsed.Entities.Precincts[1]
	da, err := h.data.Demographics(ctx, a)
	if err != nil {
		h.logger.Error("demographics failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	db, err := h.data.Demographics(ctx, b)
	if err != nil {
		h.logger.Error("demographics failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	if da == nil || db == nil {
		missing := a
		if da != nil {
			missing = b
		}
		return &query.HandlerResult{
			Success:  false,
			Response: fmt.Sprintf("I don't have data for %s.", missing),
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "compare_precincts"},
		}
	}

	return &query.HandlerResult{
		Success: true,
		Response: fmt.Sprintf(
			"%s: population %d, median income $%d. %s: population %d, median income $%d.",
			da.Name, da.Population, da.MedianIncome,
			db.Name, db.Population, db.MedianIncome,
		),
		Data: map[string]interface{}{"left": da, "right": db},
		MapCommands: []query.MapCommand{
			query.HighlightCommand("precinct", []string{a, b}),
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "compare_precincts"},
	}
}

func (h *Handler) compareJurisdictions(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	if len(parsed.Entities.Jurisdictions) < 2 {
		return &query.HandlerResult{
			Success:  false,
			Response: "Name two areas to compare, for example \"Compare Lansing and East Lansing\".",
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "compare_jurisdictions"},
		}
	}

	a, b := parsed.Entities.Jurisdictions[0], parsed.Entities.Jurisdictions[1]
	year := parsed.Entities.Year
	if year == 0 {
		year = entities.FallbackYear
	}

	side := func(name string) (*dataaccess.Demographics, []dataaccess.ElectionResult, error) {
		demo, err := h.data.Demographics(ctx, name)
		if err != nil {
			return nil, nil, err
		}
		results, err := h.data.ElectionHistory(ctx, name, year)
		if err != nil {
			return nil, nil, err
		}
		return demo, results, nil
	}

	da, ra, err := side(a)
	if err != nil {
		h.logger.Error("comparison fetch failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	db, rb, err := side(b)
	if err != nil {
		h.logger.Error("comparison fetch failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}

	describe := func(name string, demo *dataaccess.Demographics, results []dataaccess.ElectionResult) string {
		if demo == nil {
			return name + ": no data"
		}
		s := fmt.Sprintf("%s: population %d, median income $%d", demo.Name, demo.Population, demo.MedianIncome)
		if top := topResult(results); top != nil {
			s += fmt.Sprintf(", %d winner %s (%.1f%%)", top.Year, top.Candidate, top.VoteShare)
		}
		return s
	}

	return &query.HandlerResult{
		Success:  true,
		Response: describe(a, da, ra) + ". " + describe(b, db, rb) + ".",
		Data: map[string]interface{}{
			"left":  map[string]interface{}{"demographics": da, "results": ra},
			"right": map[string]interface{}{"demographics": db, "results": rb},
		},
		MapCommands: []query.MapCommand{
			query.HighlightCommand("municipality", []string{a, b}),
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "compare-trends", Label: "Compare their trends", Action: "election-trends"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "compare_jurisdictions"},
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

func (h *Handler) collaboratorFailure() *query.HandlerResult {
	return &query.HandlerResult{
		Success:  false,
		Response: "I couldn't reach the data service. Please try again in a moment.",
		SuggestedActions: []query.SuggestedAction{
			{ID: "retry", Label: "Try again", Action: "retry-operation"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName},
	}
}
