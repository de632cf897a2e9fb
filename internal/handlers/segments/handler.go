// Package segments owns voter segment intents: creation, listing, analysis,
// and district breakdowns.
package segments

import (
	"context"
	"fmt"
	"strings"

	"campaign-query/internal/common/logger"
	"campaign-query/internal/dataaccess"
	"campaign-query/internal/query"
)

const HandlerName = "SegmentHandler"

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
		query.IntentCreateSegment,
		query.IntentListSegments,
		query.IntentSegmentAnalysis,
		query.IntentSegmentByDistrict,
	}
}

func (h *Handler) CanHandle(parsed *query.ParsedQuery) bool {
	switch parsed.Intent {
	case query.IntentCreateSegment, query.IntentListSegments,
		query.IntentSegmentAnalysis, query.IntentSegmentByDistrict:
		return true
	}
	return false
}

func (h *Handler) ExtractEntities(string) query.EntityBag {
	return query.EntityBag{}
}

func (h *Handler) Handle(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	switch parsed.Intent {
	case query.IntentCreateSegment:
		return h.createSegment(parsed)
	case query.IntentSegmentByDistrict:
		return h.segmentByDistrict(ctx, parsed)
	case query.IntentSegmentAnalysis:
		return h.segmentAnalysis(ctx)
	default:
		return h.listSegments(ctx)
	}
}

func (h *Handler) createSegment(parsed *query.ParsedQuery) *query.HandlerResult {
	criteria := []string{}
	if len(parsed.Entities.IssueKeywords) > 0 {
		criteria = append(criteria, "issue: "+strings.Join(parsed.Entities.IssueKeywords, ", "))
	}
	if len(parsed.Entities.Jurisdictions) > 0 {
		criteria = append(criteria, "area: "+strings.Join(parsed.Entities.Jurisdictions, ", "))
	}
	if parsed.Entities.DistrictID != "" {
		criteria = append(criteria, "district: "+parsed.Entities.DistrictID)
	}

	response := "Opening the segment builder."
	if len(criteria) > 0 {
		response = fmt.Sprintf("Opening the segment builder with %s pre-filled.", strings.Join(criteria, "; "))
	}

	return &query.HandlerResult{
		Success:  true,
		Response: response,
		Data: map[string]interface{}{
			"destination": "segments",
			"path":        "/segments",
			"criteria":    criteria,
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "list-segments", Label: "View existing segments", Action: "list-segments"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "create_segment"},
	}
}

func (h *Handler) listSegments(ctx context.Context) *query.HandlerResult {
	segments, err := h.data.Segments(ctx, "")
	if err != nil {
		h.logger.Error("segment load failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	if len(segments) == 0 {
		return &query.HandlerResult{
			Success:  false,
			Response: "You don't have any saved segments yet.",
			SuggestedActions: []query.SuggestedAction{
				{ID: "create-segment", Label: "Create your first segment", Action: "create-segment"},
			},
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "list_segments"},
		}
	}

	names := make([]string, 0, len(segments))
	for _, s := range segments {
		names = append(names, fmt.Sprintf("%s (%d voters)", s.Name, s.VoterCount))
	}

	return &query.HandlerResult{
		Success:  true,
		Response: fmt.Sprintf("You have %d segments: %s.", len(segments), strings.Join(names, "; ")),
		Data:     map[string]interface{}{"segments": segments},
		SuggestedActions: []query.SuggestedAction{
			{ID: "export-segments", Label: "Export segments to CSV", Action: "export-segments"},
			{ID: "create-segment", Label: "Create another segment", Action: "create-segment"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "list_segments"},
	}
}

func (h *Handler) segmentAnalysis(ctx context.Context) *query.HandlerResult {
	segments, err := h.data.Segments(ctx, "")
	if err != nil {
		h.logger.Error("segment load failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}
	if len(segments) == 0 {
		return &query.HandlerResult{
			Success:  false,
			Response: "There are no segments to analyze yet.",
			SuggestedActions: []query.SuggestedAction{
				{ID: "create-segment", Label: "Create a segment", Action: "create-segment"},
			},
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "segment_analysis"},
		}
	}

	largest := segments[0]
	total := 0
	for _, s := range segments {
		total += s.VoterCount
		if s.VoterCount > largest.VoterCount {
			largest = s
		}
	}

	return &query.HandlerResult{
		Success: true,
		Response: fmt.Sprintf(
			"Segment analysis: %d segments covering %d voters. The largest is %q with %d voters.",
			len(segments), total, largest.Name, largest.VoterCount,
		),
		Data: map[string]interface{}{
			"segmentCount": len(segments),
			"voterCount":   total,
			"largest":      largest,
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "segment-by-district", Label: "Break segments down by district", Action: "segment-by-district"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "segment_analysis"},
	}
}

func (h *Handler) segmentByDistrict(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	districtID := parsed.Entities.DistrictID

	segments, err := h.data.Segments(ctx, districtID)
	if err != nil {
		h.logger.Error("segment load failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure()
	}

	byDistrict := make(map[string]int)
	for _, s := range segments {
		key := s.DistrictID
		if key == "" {
			key = "unassigned"
		}
		byDistrict[key] += s.VoterCount
	}

	if len(segments) == 0 {
		scope := "any district"
		if districtID != "" {
			scope = districtID
		}
		return &query.HandlerResult{
			Success:  false,
			Response: fmt.Sprintf("No segments found for %s.", scope),
			SuggestedActions: []query.SuggestedAction{
				{ID: "create-segment", Label: "Create a segment", Action: "create-segment"},
			},
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "segment_by_district"},
		}
	}

	parts := make([]string, 0, len(byDistrict))
	for d, count := range byDistrict {
		parts = append(parts, fmt.Sprintf("%s: %d voters", d, count))
	}

	return &query.HandlerResult{
		Success:  true,
		Response: fmt.Sprintf("Segments by district — %s.", strings.Join(parts, "; ")),
		Data:     map[string]interface{}{"byDistrict": byDistrict},
		MapCommands: []query.MapCommand{
			query.HighlightCommand("district", districtKeys(byDistrict)),
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "district-analysis", Label: "Analyze a district", Action: "district-analysis"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "segment_by_district"},
	}
}

func districtKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		if k != "unassigned" {
			out = append(out, k)
		}
	}
	return out
}

func (h *Handler) collaboratorFailure() *query.HandlerResult {
	return &query.HandlerResult{
		Success:  false,
		Response: "I couldn't load segment data right now. Please try again in a moment.",
		SuggestedActions: []query.SuggestedAction{
			{ID: "retry", Label: "Try again", Action: "retry-operation"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName},
	}
}
