// Package query defines the core types of the intent classification and
// dispatch engine: the closed intent vocabulary, the parsed-query shape,
// the handler contract, and the uniform result envelope.
package query

import (
	"context"
)

// QueryIntent is a closed, versioned string enumeration. Adding a value is a
// breaking-adjacent change and requires an owning handler; no intent may be
// claimed by zero handlers.
type QueryIntent string

const (
	// Navigation
	IntentNavigateTool     QueryIntent = "navigate_tool"
	IntentNavigateSettings QueryIntent = "navigate_settings"
	IntentShowHelp         QueryIntent = "show_help"

	// System
	IntentRetryOperation    QueryIntent = "retry_operation"
	IntentClearConversation QueryIntent = "clear_conversation"

	// Exports
	IntentExportSegments QueryIntent = "export_segments"
	IntentExportData     QueryIntent = "export_data"
	IntentExportReport   QueryIntent = "export_report"

	// Segments
	IntentCreateSegment     QueryIntent = "create_segment"
	IntentListSegments      QueryIntent = "list_segments"
	IntentSegmentAnalysis   QueryIntent = "segment_analysis"
	IntentSegmentByDistrict QueryIntent = "segment_by_district"

	// Districts
	IntentDistrictAnalysis QueryIntent = "district_analysis"
	IntentDistrictCompare  QueryIntent = "district_compare"

	// Elections
	IntentElectionResults          QueryIntent = "election_results"
	IntentElectionCandidateResults QueryIntent = "election_candidate_results"
	IntentElectionTurnout          QueryIntent = "election_turnout"
	IntentElectionHistory          QueryIntent = "election_history"

	// Donors
	IntentDonorConcentration QueryIntent = "donor_concentration"
	IntentDonorProspects     QueryIntent = "donor_prospects"
	IntentDonorTrends        QueryIntent = "donor_trends"
	IntentDonorExport        QueryIntent = "donor_export"
	IntentDonorGeographic    QueryIntent = "donor_geographic"
	IntentDonorByCandidate   QueryIntent = "donor_by_candidate"
	IntentDonorComparison    QueryIntent = "donor_comparison"

	// Trends
	IntentElectionTrends    QueryIntent = "election_trends"
	IntentTurnoutTrends     QueryIntent = "turnout_trends"
	IntentPartisanTrends    QueryIntent = "partisan_trends"
	IntentFlipRisk          QueryIntent = "flip_risk"
	IntentDemographicTrends QueryIntent = "demographic_trends"
	IntentCompareElections  QueryIntent = "compare_elections"

	// Candidates
	IntentCandidatePerformance QueryIntent = "candidate_performance"
	IntentCandidateCompare     QueryIntent = "candidate_compare"
	IntentCandidateList        QueryIntent = "candidate_list"

	// Issues
	IntentIssueAnalysis    QueryIntent = "issue_analysis"
	IntentIssueByGeography QueryIntent = "issue_by_geography"
	IntentIssueRanking     QueryIntent = "issue_ranking"

	// Comparison
	IntentComparePrecincts     QueryIntent = "compare_precincts"
	IntentCompareJurisdictions QueryIntent = "compare_jurisdictions"

	// Canvassing
	IntentCanvassPlan    QueryIntent = "canvass_plan"
	IntentCanvassTargets QueryIntent = "canvass_targets"
	IntentWalkList       QueryIntent = "walk_list"

	// Spatial / map
	IntentSpatialQuery   QueryIntent = "spatial_query"
	IntentLayerToggle    QueryIntent = "layer_toggle"
	IntentZoomToLocation QueryIntent = "zoom_to_location"

	// Knowledge graph
	IntentGraphExplore       QueryIntent = "graph_explore"
	IntentGraphRelationships QueryIntent = "graph_relationships"

	// County / precinct reference
	IntentCountyOverview QueryIntent = "county_overview"
	IntentPrecinctLookup QueryIntent = "precinct_lookup"

	// General / fallback
	IntentGeneralQuestion QueryIntent = "general_question"
	IntentUnknown         QueryIntent = "unknown"
)

// AllIntents enumerates every member of the closed intent vocabulary.
var AllIntents = []QueryIntent{
	IntentNavigateTool, IntentNavigateSettings, IntentShowHelp,
	IntentRetryOperation, IntentClearConversation,
	IntentExportSegments, IntentExportData, IntentExportReport,
	IntentCreateSegment, IntentListSegments, IntentSegmentAnalysis, IntentSegmentByDistrict,
	IntentDistrictAnalysis, IntentDistrictCompare,
	IntentElectionResults, IntentElectionCandidateResults, IntentElectionTurnout, IntentElectionHistory,
	IntentDonorConcentration, IntentDonorProspects, IntentDonorTrends, IntentDonorExport,
	IntentDonorGeographic, IntentDonorByCandidate, IntentDonorComparison,
	IntentElectionTrends, IntentTurnoutTrends, IntentPartisanTrends, IntentFlipRisk,
	IntentDemographicTrends, IntentCompareElections,
	IntentCandidatePerformance, IntentCandidateCompare, IntentCandidateList,
	IntentIssueAnalysis, IntentIssueByGeography, IntentIssueRanking,
	IntentComparePrecincts, IntentCompareJurisdictions,
	IntentCanvassPlan, IntentCanvassTargets, IntentWalkList,
	IntentSpatialQuery, IntentLayerToggle, IntentZoomToLocation,
	IntentGraphExplore, IntentGraphRelationships,
	IntentCountyOverview, IntentPrecinctLookup,
	IntentGeneralQuestion, IntentUnknown,
}

var intentSet = func() map[QueryIntent]bool {
	m := make(map[QueryIntent]bool, len(AllIntents))
	for _, i := range AllIntents {
		m[i] = true
	}
	return m
}()

// Valid reports whether the intent is a member of the closed vocabulary.
func (i QueryIntent) Valid() bool {
	return intentSet[i]
}

// EntityBag is a sparse mapping of typed entity fields extracted from free
// text. Absence of a field is meaningful: handlers supply defaults instead of
// failing. The zero value means "nothing extracted".
type EntityBag struct {
	Jurisdictions  []string `json:"jurisdictions,omitempty"`
	Precincts      []string `json:"precincts,omitempty"`
	ZipCodes       []string `json:"zipCodes,omitempty"`
	Year           int      `json:"year,omitempty"`
	DistrictID     string   `json:"districtId,omitempty"`
	CandidateNames []string `json:"candidateNames,omitempty"`
	IssueKeywords  []string `json:"issueKeywords,omitempty"`
	Destination    string   `json:"destination,omitempty"`
	ToolName       string   `json:"toolName,omitempty"`
}

// Merge returns a bag combining b with other. Scalar fields in b win when set;
// list fields are concatenated without de-duplication.
func (b EntityBag) Merge(other EntityBag) EntityBag {
	out := b
	out.Jurisdictions = append(out.Jurisdictions, other.Jurisdictions...)
	out.Precincts = append(out.Precincts, other.Precincts...)
	out.ZipCodes = append(out.ZipCodes, other.ZipCodes...)
	out.CandidateNames = append(out.CandidateNames, other.CandidateNames...)
	out.IssueKeywords = append(out.IssueKeywords, other.IssueKeywords...)
	if out.Year == 0 {
		out.Year = other.Year
	}
	if out.DistrictID == "" {
		out.DistrictID = other.DistrictID
	}
	if out.Destination == "" {
		out.Destination = other.Destination
	}
	if out.ToolName == "" {
		out.ToolName = other.ToolName
	}
	return out
}

// HasGeography reports whether any geographic entity was extracted.
func (b EntityBag) HasGeography() bool {
	return len(b.Jurisdictions) > 0 || len(b.Precincts) > 0 || len(b.ZipCodes) > 0
}

// ParsedQuery is the immutable output of the parser, created fresh per request.
type ParsedQuery struct {
	OriginalQuery string      `json:"originalQuery"`
	Intent        QueryIntent `json:"intent"`
	Entities      EntityBag   `json:"entities"`
	Confidence    float64     `json:"confidence"`
}

// SuggestedAction is a clickable follow-up chip. No two actions in one result
// may share an ID.
type SuggestedAction struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Action string `json:"action"`
}

// MapCommand is an opaque instruction for the mapping collaborator. The core
// only produces it, never interprets it.
type MapCommand struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// ZoomToCommand builds a map zoom instruction for a named location.
func ZoomToCommand(location string) MapCommand {
	return MapCommand{Type: "zoom", Payload: map[string]interface{}{"location": location}}
}

// HighlightCommand builds a precinct/jurisdiction highlight instruction.
func HighlightCommand(boundaryType string, names []string) MapCommand {
	return MapCommand{Type: "highlight", Payload: map[string]interface{}{
		"boundaryType": boundaryType,
		"names":        names,
	}}
}

// LayerCommand builds a layer visibility toggle.
func LayerCommand(layer string, visible bool) MapCommand {
	return MapCommand{Type: "layer", Payload: map[string]interface{}{
		"layer":   layer,
		"visible": visible,
	}}
}

// ResultMetadata describes how a result was produced. HandlerName and
// MatchedIntent are always populated by the orchestrator, even when the
// handler itself forgot.
type ResultMetadata struct {
	HandlerName      string      `json:"handlerName"`
	MatchedIntent    QueryIntent `json:"matchedIntent,omitempty"`
	QueryType        string      `json:"queryType,omitempty"`
	ProcessingTimeMs int64       `json:"processingTimeMs"`
	Confidence       float64     `json:"confidence,omitempty"`
	Destination      string      `json:"destination,omitempty"`
	RequestID        string      `json:"requestId,omitempty"`
	ErrorCode        string      `json:"errorCode,omitempty"`
	Relevance        *float64    `json:"relevance,omitempty"`
}

// HandlerResult is the sole object crossing the system boundary.
type HandlerResult struct {
	Success          bool                   `json:"success"`
	Response         string                 `json:"response"`
	MapCommands      []MapCommand           `json:"mapCommands"`
	SuggestedActions []SuggestedAction      `json:"suggestedActions"`
	Data             map[string]interface{} `json:"data,omitempty"`
	Metadata         ResultMetadata         `json:"metadata"`
}

// Handler is a stateless capability module owning a disjoint-by-convention
// slice of the intent space. Instantiated once at startup, registered into the
// orchestrator, never mutated afterwards.
type Handler interface {
	// Name identifies the handler in metadata and logs.
	Name() string

	// OwnedIntents lists the intents this handler claims. Ownership is the
	// registry's documentation; CanHandle remains authoritative for dispatch.
	OwnedIntents() []QueryIntent

	// CanHandle reports whether this handler accepts the parsed query.
	// Typically intent membership, but cross-cutting intents may also
	// inspect entities.
	CanHandle(parsed *ParsedQuery) bool

	// Handle produces the final result. It must never panic past its own
	// frame and never returns an error: internal faults become
	// success:false results with recovery suggestions.
	Handle(ctx context.Context, parsed *ParsedQuery) *HandlerResult

	// ExtractEntities is a handler-local refinement for entities the
	// generic parser does not extract.
	ExtractEntities(text string) EntityBag
}
