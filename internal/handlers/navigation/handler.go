// Package navigation routes "take me to X" queries to a closed destination
// table.
package navigation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"campaign-query/internal/common/logger"
	"campaign-query/internal/query"
)

const HandlerName = "NavigationHandler"

// destination is one entry in the closed navigation table.
type destination struct {
	Key     string
	Path    string
	Label   string
	Actions []query.SuggestedAction
}

var destinations = map[string]destination{
	"segments": {
		Key:   "segments",
		Path:  "/segments",
		Label: "Segmentation",
		Actions: []query.SuggestedAction{
			{ID: "create-segment", Label: "Create a new segment", Action: "create-segment"},
			{ID: "list-segments", Label: "View saved segments", Action: "list-segments"},
		},
	},
	"donors": {
		Key:   "donors",
		Path:  "/donors",
		Label: "Donor Analytics",
		Actions: []query.SuggestedAction{
			{ID: "donor-map", Label: "Show donor concentration map", Action: "donor-concentration"},
			{ID: "donor-prospects", Label: "Find donor prospects", Action: "donor-prospects"},
		},
	},
	"canvass": {
		Key:   "canvass",
		Path:  "/canvass",
		Label: "Canvassing",
		Actions: []query.SuggestedAction{
			{ID: "canvass-plan", Label: "Build a canvass plan", Action: "canvass-plan"},
			{ID: "walk-list", Label: "Generate a walk list", Action: "walk-list"},
		},
	},
	"compare": {
		Key:   "compare",
		Path:  "/compare",
		Label: "Comparison",
		Actions: []query.SuggestedAction{
			{ID: "compare-precincts", Label: "Compare precincts", Action: "compare-precincts"},
			{ID: "compare-elections", Label: "Compare election cycles", Action: "compare-elections"},
		},
	},
	"graph": {
		Key:   "graph",
		Path:  "/knowledge-graph",
		Label: "Knowledge Graph",
		Actions: []query.SuggestedAction{
			{ID: "graph-explore", Label: "Explore the knowledge graph", Action: "graph-explore"},
		},
	},
	"main": {
		Key:   "main",
		Path:  "/political-ai",
		Label: "Political AI",
		Actions: []query.SuggestedAction{
			{ID: "show-help", Label: "What can I ask?", Action: "show-help"},
		},
	},
	"settings": {
		Key:   "settings",
		Path:  "/settings",
		Label: "Settings",
		Actions: []query.SuggestedAction{
			{ID: "open-settings", Label: "Open settings", Action: "navigate-settings"},
		},
	},
}

// toolSynonyms maps free-text tool mentions to destination keys. First match
// in synonymOrder wins; all phrases are matched case-insensitively.
var toolSynonyms = map[string]string{
	"segmentation":    "segments",
	"segments":        "segments",
	"segment builder": "segments",
	"donors":          "donors",
	"donor":           "donors",
	"fundraising":     "donors",
	"canvass":         "canvass",
	"canvassing":      "canvass",
	"door knocking":   "canvass",
	"compare":         "compare",
	"comparison":      "compare",
	"knowledge graph": "graph",
	"graph":           "graph",
	"political ai":    "main",
	"main":            "main",
	"home":            "main",
	"dashboard":       "main",
	"settings":        "settings",
	"preferences":     "settings",
}

var synonymOrder = []string{
	"segment builder", "segmentation", "segments",
	"fundraising", "donors", "donor",
	"door knocking", "canvassing", "canvass",
	"comparison", "compare",
	"knowledge graph", "graph",
	"political ai", "dashboard", "home", "main",
	"preferences", "settings",
}

type Handler struct {
	logger logger.Logger
}

func NewHandler(log logger.Logger) *Handler {
	return &Handler{
		logger: log.WithFields(map[string]interface{}{"handler": HandlerName}),
	}
}

func (h *Handler) Name() string { return HandlerName }

func (h *Handler) OwnedIntents() []query.QueryIntent {
	return []query.QueryIntent{
		query.IntentNavigateTool,
		query.IntentNavigateSettings,
		query.IntentShowHelp,
	}
}

func (h *Handler) CanHandle(parsed *query.ParsedQuery) bool {
	switch parsed.Intent {
	case query.IntentNavigateTool, query.IntentNavigateSettings, query.IntentShowHelp:
		return true
	}
	return false
}

func (h *Handler) ExtractEntities(text string) query.EntityBag {
	lower := strings.ToLower(text)
	for _, phrase := range synonymOrder {
		if strings.Contains(lower, phrase) {
			key := toolSynonyms[phrase]
			return query.EntityBag{Destination: key, ToolName: phrase}
		}
	}
	return query.EntityBag{}
}

func (h *Handler) Handle(_ context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	if parsed.Intent == query.IntentShowHelp {
		return h.helpResult()
	}

	bag := parsed.Entities
	if bag.Destination == "" {
		bag = bag.Merge(h.ExtractEntities(parsed.OriginalQuery))
	}
	if parsed.Intent == query.IntentNavigateSettings && bag.Destination == "" {
		bag.Destination = "settings"
	}

	dest, ok := destinations[bag.Destination]
	if !ok {
		return h.unknownDestination(bag.Destination)
	}

	return &query.HandlerResult{
		Success:  true,
		Response: fmt.Sprintf("Taking you to %s.", dest.Label),
		Data: map[string]interface{}{
			"destination": dest.Key,
			"path":        dest.Path,
		},
		SuggestedActions: dest.Actions,
		Metadata: query.ResultMetadata{
			HandlerName: HandlerName,
			Destination: dest.Key,
		},
	}
}

func (h *Handler) unknownDestination(mention string) *query.HandlerResult {
	keys := make([]string, 0, len(destinations))
	for k := range destinations {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	actions := make([]query.SuggestedAction, 0, len(keys))
	for _, k := range keys {
		d := destinations[k]
		actions = append(actions, query.SuggestedAction{
			ID:     "go-" + d.Key,
			Label:  "Go to " + d.Label,
			Action: "navigate:" + d.Key,
		})
	}

	response := fmt.Sprintf(
		"I couldn't find that page. Available pages: %s.",
		strings.Join(keys, ", "),
	)
	if mention != "" {
		response = fmt.Sprintf(
			"I don't know a page called %q. Available pages: %s.",
			mention, strings.Join(keys, ", "),
		)
	}

	return &query.HandlerResult{
		Success:          false,
		Response:         response,
		SuggestedActions: actions,
		Metadata:         query.ResultMetadata{HandlerName: HandlerName},
	}
}

func (h *Handler) helpResult() *query.HandlerResult {
	return &query.HandlerResult{
		Success: true,
		Response: "I can answer questions about elections, donors, districts, issues, " +
			"and canvassing, or take you to any page. Try \"What were the 2020 results?\" " +
			"or \"Go to segments page\".",
		SuggestedActions: []query.SuggestedAction{
			{ID: "example-results", Label: "What were the 2020 results?", Action: "ask:2020-results"},
			{ID: "example-donors", Label: "Where are donors concentrated?", Action: "ask:donor-concentration"},
			{ID: "example-segments", Label: "Go to segments page", Action: "navigate:segments"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName},
	}
}
