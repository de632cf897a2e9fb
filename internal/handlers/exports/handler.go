// Package exports owns data export intents. Exports with nothing qualifying
// return an explanation, never an empty file.
package exports

import (
	"context"
	"fmt"

	"campaign-query/internal/common/logger"
	"campaign-query/internal/dataaccess"
	"campaign-query/internal/query"
)

const HandlerName = "DataExportHandler"

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
		query.IntentExportSegments,
		query.IntentExportData,
		query.IntentExportReport,
	}
}

func (h *Handler) CanHandle(parsed *query.ParsedQuery) bool {
	switch parsed.Intent {
	case query.IntentExportSegments, query.IntentExportData, query.IntentExportReport:
		return true
	}
	return false
}

func (h *Handler) ExtractEntities(string) query.EntityBag {
	return query.EntityBag{}
}

func (h *Handler) Handle(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	switch parsed.Intent {
	case query.IntentExportSegments:
		return h.exportSegments(ctx, parsed)
	case query.IntentExportReport:
		return h.exportReport(parsed)
	default:
		return h.exportData(parsed)
	}
}

func (h *Handler) exportSegments(ctx context.Context, parsed *query.ParsedQuery) *query.HandlerResult {
	segments, err := h.data.Segments(ctx, parsed.Entities.DistrictID)
	if err != nil {
		h.logger.Error("segment load failed", map[string]interface{}{"error": err.Error()})
		return h.collaboratorFailure("I couldn't load your segments right now. Please try again in a moment.")
	}
	if len(segments) == 0 {
		return &query.HandlerResult{
			Success:  false,
			Response: "You don't have any segments to export yet. Create a segment first, then export it.",
			SuggestedActions: []query.SuggestedAction{
				{ID: "create-segment", Label: "Create a segment", Action: "create-segment"},
				{ID: "go-segments", Label: "Go to Segmentation", Action: "navigate:segments"},
			},
			Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "export_segments"},
		}
	}

	total := 0
	for _, s := range segments {
		total += s.VoterCount
	}

	return &query.HandlerResult{
		Success: true,
		Response: fmt.Sprintf(
			"Export Segments: preparing a CSV with %d segments covering %d voters. The download will start shortly.",
			len(segments), total,
		),
		Data: map[string]interface{}{
			"format":       "csv",
			"segmentCount": len(segments),
			"voterCount":   total,
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "export-report", Label: "Export as PDF report instead", Action: "export-report"},
			{ID: "go-segments", Label: "Go to Segmentation", Action: "navigate:segments"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "export_segments"},
	}
}

func (h *Handler) exportReport(parsed *query.ParsedQuery) *query.HandlerResult {
	scope := "countywide"
	if len(parsed.Entities.Jurisdictions) > 0 {
		scope = parsed.Entities.Jurisdictions[0]
	} else if parsed.Entities.DistrictID != "" {
		scope = parsed.Entities.DistrictID
	}

	return &query.HandlerResult{
		Success:  true,
		Response: fmt.Sprintf("Generating a PDF report for %s. It will appear in your downloads when ready.", scope),
		Data: map[string]interface{}{
			"format": "pdf",
			"scope":  scope,
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "export-data", Label: "Export raw data as CSV", Action: "export-data"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "export_report"},
	}
}

func (h *Handler) exportData(parsed *query.ParsedQuery) *query.HandlerResult {
	scope := "all campaign data"
	if len(parsed.Entities.Jurisdictions) > 0 {
		scope = parsed.Entities.Jurisdictions[0]
	}

	return &query.HandlerResult{
		Success:  true,
		Response: fmt.Sprintf("Preparing a CSV export of %s. The download will start shortly.", scope),
		Data: map[string]interface{}{
			"format": "csv",
			"scope":  scope,
		},
		SuggestedActions: []query.SuggestedAction{
			{ID: "export-report", Label: "Generate a PDF report instead", Action: "export-report"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName, QueryType: "export_data"},
	}
}

func (h *Handler) collaboratorFailure(msg string) *query.HandlerResult {
	return &query.HandlerResult{
		Success:  false,
		Response: msg,
		SuggestedActions: []query.SuggestedAction{
			{ID: "retry", Label: "Try again", Action: "retry-operation"},
		},
		Metadata: query.ResultMetadata{HandlerName: HandlerName},
	}
}
