// Package spatial drives the map: zooming to locations, toggling layers,
// and free-form "show me on the map" requests.
package spatial

import (
	"context"
	"fmt"
	"strings"

	"campaign-query/internal/common/logger"
	"campaign-query/internal/dataaccess"
	"campaign-query/internal/query"
	"campaign-query/internal/query/entities"
)

const HandlerName = "SpatialHandler"

// knownLayers maps layer vocabulary to canonical map layer keys.
var knownLayers = map[string]string{
	"precinct":      "precincts",
	"precincts":     "precincts",
	"district":      "districts",
	"districts":     "districts",
	"donor":         "donors",
	"donors":        "donors",
	"heat map":      "heatmap",
	"heatmap":       "heatmap",
	"turnout":       "turnout",
	"demographics":  "demographics",
	"demographic":   "demographics",
	"boundaries":    "boundaries",
	"boundary":      "boundaries",
	"municipal":     "municipalities",
	"municipality":  "municipalities",
	"municipalities": "municipalities",
}

// layerOrder fixes matching order, longest phrases first.
var layerOrder = []string{
	"municipalities", "demographics", "demographic", "municipality",
	"boundaries", "precincts", "districts", "boundary", "heat map",
	"precinct", "district", "heatmap", "turnout", "municipal",
	"donors", "donor",
}

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
		query.IntentSpatialQuery,
		query.IntentLayerToggle,
		query.IntentZoomToLocation,
	}
}

func (h *Handler) CanHandle(parsed *query.ParsedQuery) bool {
	switch parsed.Intent {
	case query.IntentSpatialQuery, query.IntentLayerToggle, query.IntentZoomToLocation:
		return true
	}
	return false
}

func (h *Handler) ExtractEntities(text string) query.EntityBag {
	return query.EntityBag{
		Jurisdictions: entities.Jurisdictions(text),
		Precincts:     entities.Precincts(text),
		ZipCodes:      entities.ZipCodes(text),
	}
}

func (h *Handler) Handle(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	switch parsed.Intent {
	case query.IntentLayerToggle:
		return h.layerToggle(parsed)
	case query.IntentZoomToLocation:
		return h.zoom(parsed)
	default:
		return h.spatialQuery(ctx, parsed)
	}
}

func (h *Handler) zoom(parsed *query.ParsedQuery) *query.HandlerResult {
	target := firstOrEmpty(parsed.Entities.Precincts)
	if target == "" {
		target = firstOrEmpty(parsed.Entities.Jurisdictions)
	}
	if target == "" {
		target = firstOrEmpty(parsed.Entities.ZipCodes)
	}
	if target == "" {
		return &query.HandlerResult{
			Success:  false,
			Response: "Where should I zoom? Name a city, precinct, or ZIP code.",
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "zoom_to_location"},
		}
	}

	return &query.HandlerResult{
		Success:  true,
		Response: fmt.Sprintf("Zooming the map to %s.", target),
		MapCommands: []query.MapCommand{
			query.ZoomToCommand(target),
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "zoom_to_location"},
	}
}

func (h *Handler) layerToggle(parsed *query.ParsedQuery) *query.HandlerResult {
	lower := strings.ToLower(parsed.OriginalQuery)
	visible := !strings.Contains(lower, "hide") && !strings.Contains(lower, "turn off") &&
		!strings.Contains(lower, "remove")

	layer := ""
	for _, key := range layerOrder {
		if strings.Contains(lower, key) {
			layer = knownLayers[key]
			break
		}
	}
	if layer == "" {
		return &query.HandlerResult{
			Success:  false,
			Response: "Which layer? I can toggle precincts, districts, donors, turnout, demographics, or the heatmap.",
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "layer_toggle"},
		}
	}

	verb := "Showing"
	if !visible {
		verb = "Hiding"
	}
	return &query.HandlerResult{
		Success:  true,
		Response: fmt.Sprintf("%s the %s layer.", verb, layer),
		MapCommands: []query.MapCommand{
			query.LayerCommand(layer, visible),
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "layer_toggle"},
	}
}

func (h *Handler) spatialQuery(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	if len(parsed.Entities.Precincts) > 0 {
		return &query.HandlerResult{
			Success:  true,
			Response: fmt.Sprintf("Highlighting %s on the map.", strings.Join(parsed.Entities.Precincts, ", ")),
			MapCommands: []query.MapCommand{
				query.HighlightCommand("precinct", parsed.Entities.Precincts),
				query.ZoomToCommand(parsed.Entities.Precincts[0]),
			},
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "spatial_query"},
		}
	}
	if len(parsed.Entities.Jurisdictions) > 0 {
		return &query.HandlerResult{
			Success:  true,
			Response: fmt.Sprintf("Highlighting %s on the map.", strings.Join(parsed.Entities.Jurisdictions, ", ")),
			MapCommands: []query.MapCommand{
				query.HighlightCommand("municipality", parsed.Entities.Jurisdictions),
				query.ZoomToCommand(parsed.Entities.Jurisdictions[0]),
			},
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "spatial_query"},
		}
	}

	// No entity to anchor on: offer the known municipalities.
	names, err := h.data.ReferenceList(ctx, dataaccess.BoundaryMunicipality)
	if err != nil {
		h.logger.Error("reference list failed", map[string]interface{}{"error": err.Error()})
		return &query.HandlerResult{
			Success:  false,
			Response: "I couldn't reach the map reference data. Please try again in a moment.",
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "spatial_query"},
		}
	}

	actions := make([]query.SuggestedAction, 0, 3)
	for i, n := range names {
		if i == 3 {
			break
		}
		actions = append(actions, query.SuggestedAction{
			ID: "zoom-" + strings.ToLower(strings.ReplaceAll(n, " ", "-")), Label: "Zoom to " + n, Action: "zoom:" + n,
		})
	}
	return &query.HandlerResult{
		Success:          false,
		Response:         "What should I show on the map? Name a city, precinct, or ZIP code.",
		SuggestedActions: actions,
		Metadata:         query.ResultMetadata{HandlerName: HandlerName, QueryType: "spatial_query"},
	}
}

func firstOrEmpty(list []string) string {
	if len(list) > 0 {
		return list[0]
	}
	return ""
}
