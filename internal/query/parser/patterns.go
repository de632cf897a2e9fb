package parser

import (
	"regexp"

	"campaign-query/internal/query"
)

// pattern is one scoring rule. Exactly one of phrase, re, or keywords is set.
// A phrase or regex contributes its weight once; keywords contribute the
// weight per matched keyword. Longer phrase and regex patterns carry higher
// weights than single keywords so specific phrasing outranks shared
// vocabulary.
type pattern struct {
	phrase   string
	re       *regexp.Regexp
	keywords []string
	weight   float64
}

// intentDef binds an intent to its pattern set, its precedence, and its
// exclusion rules. Definition order in the table below mirrors handler
// registration order; ties resolve to the earlier definition.
type intentDef struct {
	intent     query.QueryIntent
	patterns   []pattern
	exclusions []*regexp.Regexp
}

// districtDesignator matches explicit district/chamber designators. Used as
// an exclusion on graph intents: a query naming a chamber or district must
// never resolve to graph exploration, however relational its phrasing.
var districtDesignator = regexp.MustCompile(`(?i)\b(?:hd|sd)[\s-]?\d+\b|\bstate\s+(?:house|senate)\b|\b(?:house|senate)\s+district\b`)

// intentDefs is the ordered pattern library. The order is a first-class
// design decision: narrow, explicit intents come first, broad ones later,
// and the fallback pair last.
var intentDefs = []intentDef{
	// --- Navigation ---
	{
		intent: query.IntentNavigateTool,
		patterns: []pattern{
			{phrase: "take me to", weight: 4},
			{phrase: "go to", weight: 3},
			{phrase: "open the", weight: 3},
			{re: regexp.MustCompile(`(?i)\bnavigate\s+to\b`), weight: 4},
			{keywords: []string{"page"}, weight: 2},
		},
		exclusions: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bsettings\b`),
		},
	},
	{
		intent: query.IntentNavigateSettings,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\b(?:go to|open|take me to|show)\b.*\bsettings\b`), weight: 5},
			{keywords: []string{"settings", "preferences"}, weight: 2},
		},
	},
	{
		intent: query.IntentShowHelp,
		patterns: []pattern{
			{phrase: "what can you do", weight: 5},
			{phrase: "how do i use", weight: 4},
			{keywords: []string{"help"}, weight: 3},
		},
	},

	// --- System ---
	{
		intent: query.IntentRetryOperation,
		patterns: []pattern{
			{phrase: "try again", weight: 4},
			{phrase: "try that again", weight: 4},
			{keywords: []string{"retry"}, weight: 3},
		},
	},
	{
		intent: query.IntentClearConversation,
		patterns: []pattern{
			{phrase: "clear the chat", weight: 5},
			{phrase: "clear conversation", weight: 5},
			{phrase: "start over", weight: 4},
			{keywords: []string{"reset"}, weight: 2},
		},
	},

	// --- Exports ---
	{
		intent: query.IntentExportSegments,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\bexport\b.*\bsegments?\b`), weight: 5},
			{phrase: "download my segments", weight: 5},
		},
	},
	{
		intent: query.IntentExportReport,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\b(?:generate|export|create|build)\b.*\breport\b`), weight: 5},
			{keywords: []string{"pdf"}, weight: 2},
		},
	},
	{
		intent: query.IntentExportData,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\b(?:export|download)\b.*\b(?:data|csv|spreadsheet)\b`), weight: 4},
			{keywords: []string{"export", "download"}, weight: 2},
		},
		exclusions: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bsegments?\b`),
			regexp.MustCompile(`(?i)\bdonors?\b`),
			regexp.MustCompile(`(?i)\breport\b`),
		},
	},

	// --- Segments ---
	{
		intent: query.IntentSegmentByDistrict,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\bsegments?\s+by\s+district\b`), weight: 6},
			{re: regexp.MustCompile(`(?i)\b(?:break|split|segment)\b.*\bby\s+district\b`), weight: 5},
		},
	},
	{
		intent: query.IntentCreateSegment,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\b(?:create|build|make|new)\b.*\bsegment\b`), weight: 5},
		},
	},
	{
		intent: query.IntentSegmentAnalysis,
		patterns: []pattern{
			{phrase: "segment analysis", weight: 5},
			{re: regexp.MustCompile(`(?i)\b(?:analyze|who is in)\b.*\bsegment\b`), weight: 4},
		},
	},
	{
		intent: query.IntentListSegments,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\b(?:list|show|view)\b.*\bsegments\b`), weight: 3},
			{keywords: []string{"segments"}, weight: 1},
		},
		exclusions: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bexport\b`),
		},
	},

	// --- Districts ---
	{
		intent: query.IntentDistrictCompare,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\bcompare\b.*\bdistricts?\b`), weight: 5},
			{re: regexp.MustCompile(`(?i)\bdistricts?\b.*\b(?:versus|vs)\b`), weight: 5},
		},
	},
	{
		intent: query.IntentDistrictAnalysis,
		patterns: []pattern{
			{re: districtDesignator, weight: 4},
			{keywords: []string{"district"}, weight: 2},
			{keywords: []string{"analysis", "breakdown"}, weight: 1},
		},
		exclusions: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bsegments?\b`),
			regexp.MustCompile(`(?i)\bcompare\b`),
		},
	},

	// --- Elections ---
	{
		intent: query.IntentElectionTurnout,
		patterns: []pattern{
			{keywords: []string{"turnout"}, weight: 3},
			{re: regexp.MustCompile(`(?i)\bhow\s+many\s+(?:people\s+)?voted\b`), weight: 5},
		},
		exclusions: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\btrends?\b|\bover\s+time\b`),
		},
	},
	{
		intent: query.IntentElectionCandidateResults,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\bhow\s+did\s+\w+\s+(?:do|perform|fare)\b`), weight: 5},
			{phrase: "candidate results", weight: 4},
		},
	},
	{
		intent: query.IntentElectionHistory,
		patterns: []pattern{
			{phrase: "election history", weight: 5},
			{phrase: "past elections", weight: 4},
			{phrase: "historical results", weight: 4},
		},
	},
	{
		intent: query.IntentElectionResults,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\b(?:19|20)\d{2}\b.*\bresults?\b`), weight: 4},
			{phrase: "election results", weight: 4},
			{phrase: "who won", weight: 4},
			{keywords: []string{"results"}, weight: 2},
		},
		exclusions: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bcompare\b`),
		},
	},

	// --- Donors ---
	{
		intent: query.IntentDonorExport,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\b(?:export|download)\b.*\bdonors?\b`), weight: 6},
			{re: regexp.MustCompile(`(?i)\bdonor\s+(?:export|list)\b`), weight: 5},
		},
	},
	{
		intent: query.IntentDonorComparison,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\bcompare\b.*\bdonors?\b`), weight: 5},
			{re: regexp.MustCompile(`(?i)\bdonors?\b.*\b(?:versus|vs)\b`), weight: 5},
		},
	},
	{
		intent: query.IntentDonorByCandidate,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\bdonors?\b.*\b(?:to|for|gave to|supporting)\b.*\b(?:biden|trump|harris|whitmer|dixon|slotkin|barrett|stabenow|candidate)\b`), weight: 6},
			{re: regexp.MustCompile(`(?i)\bwho\s+(?:donated|gave)\s+to\b`), weight: 5},
		},
	},
	{
		intent: query.IntentDonorConcentration,
		patterns: []pattern{
			{phrase: "donor concentration", weight: 5},
			{re: regexp.MustCompile(`(?i)\bwhere\b.*\bdonors?\b`), weight: 4},
			{re: regexp.MustCompile(`(?i)\bdonors?\b.*\bconcentrated\b`), weight: 5},
		},
	},
	{
		intent: query.IntentDonorProspects,
		patterns: []pattern{
			{phrase: "donor prospects", weight: 5},
			{phrase: "potential donors", weight: 5},
			{re: regexp.MustCompile(`(?i)\bprospect(?:s|ing)?\b`), weight: 3},
		},
	},
	{
		intent: query.IntentDonorTrends,
		patterns: []pattern{
			{phrase: "donor trends", weight: 5},
			{phrase: "donation trends", weight: 5},
			{re: regexp.MustCompile(`(?i)\bdonations?\b.*\bover\s+time\b`), weight: 5},
		},
	},
	{
		intent: query.IntentDonorGeographic,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\bdonors?\s+(?:in|by|near|around)\b`), weight: 4},
			{re: regexp.MustCompile(`(?i)\bdonors?\b.*\b(?:zip|map)\b`), weight: 4},
			{keywords: []string{"donor", "donors", "donations"}, weight: 1},
		},
	},

	// --- Trends ---
	{
		intent: query.IntentCompareElections,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\bcompare\b.*\b20(?:16|18|20|22|24)\b`), weight: 5},
			{re: regexp.MustCompile(`(?i)\bcompare\b.*\belections?\b`), weight: 5},
			{re: regexp.MustCompile(`(?i)\b20(?:16|18|20|22|24)\b.*\b(?:versus|vs)\b.*\b20(?:16|18|20|22|24)\b`), weight: 6},
		},
	},
	{
		intent: query.IntentTurnoutTrends,
		patterns: []pattern{
			{phrase: "turnout trends", weight: 5},
			{re: regexp.MustCompile(`(?i)\bturnout\b.*\b(?:over\s+time|trend|changed)\b`), weight: 5},
		},
	},
	{
		intent: query.IntentPartisanTrends,
		patterns: []pattern{
			{phrase: "partisan trends", weight: 5},
			{re: regexp.MustCompile(`(?i)\b(?:more|less)\s+(?:democratic|republican)\b`), weight: 5},
			{re: regexp.MustCompile(`(?i)\bpartisan\s+(?:shift|lean|drift)\b`), weight: 5},
		},
	},
	{
		intent: query.IntentFlipRisk,
		patterns: []pattern{
			{phrase: "flip risk", weight: 6},
			{re: regexp.MustCompile(`(?i)\b(?:could|might|at risk of)\s+flip(?:ping)?\b`), weight: 5},
			{keywords: []string{"flip"}, weight: 3},
		},
	},
	{
		intent: query.IntentDemographicTrends,
		patterns: []pattern{
			{phrase: "demographic trends", weight: 5},
			{re: regexp.MustCompile(`(?i)\b(?:population|demographics?)\b.*\b(?:chang|shift|trend)`), weight: 5},
		},
	},
	{
		intent: query.IntentElectionTrends,
		patterns: []pattern{
			{phrase: "election trends", weight: 5},
			{re: regexp.MustCompile(`(?i)\b(?:elections?|results?|voting)\b.*\bover\s+time\b`), weight: 4},
			{keywords: []string{"trend", "trends"}, weight: 2},
		},
		exclusions: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bdonors?\b|\bdonations?\b`),
			regexp.MustCompile(`(?i)\bturnout\b`),
			regexp.MustCompile(`(?i)\bdemographics?\b`),
		},
	},

	// --- Candidates ---
	{
		intent: query.IntentCandidateCompare,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\bcompare\b.*\b(?:candidates?|biden|trump|harris|whitmer|dixon|slotkin|barrett)\b`), weight: 5},
		},
	},
	{
		intent: query.IntentCandidateList,
		patterns: []pattern{
			{phrase: "who is running", weight: 5},
			{phrase: "who ran", weight: 4},
			{phrase: "list of candidates", weight: 5},
		},
	},
	{
		intent: query.IntentCandidatePerformance,
		patterns: []pattern{
			{phrase: "candidate performance", weight: 5},
			{re: regexp.MustCompile(`(?i)\bhow\s+(?:is|was)\s+\w+\s+(?:doing|performing)\b`), weight: 5},
			{re: regexp.MustCompile(`(?i)\b(?:biden|trump|harris|whitmer|dixon|slotkin|barrett|stabenow)\b.*\b(?:performance|strength|support)\b`), weight: 4},
		},
	},

	// --- Issues ---
	{
		intent: query.IntentIssueRanking,
		patterns: []pattern{
			{phrase: "top issues", weight: 5},
			{phrase: "most important issues", weight: 5},
			{re: regexp.MustCompile(`(?i)\brank\b.*\bissues\b`), weight: 5},
		},
	},
	{
		intent: query.IntentIssueByGeography,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\b(?:which|what)\s+(?:precincts?|areas?|neighborhoods?|jurisdictions?|zip\s+codes?)\b.*\b(?:care|think|feel|support|prioritize)\b`), weight: 6},
			{re: regexp.MustCompile(`(?i)\bcare(?:s)?\s+about\b`), weight: 3},
			{re: regexp.MustCompile(`(?i)\bwhere\b.*\b(?:healthcare|education|housing|economy|environment)\b`), weight: 4},
		},
	},
	{
		intent: query.IntentIssueAnalysis,
		patterns: []pattern{
			{keywords: []string{"healthcare", "education", "economy", "environment", "housing", "infrastructure", "taxes", "abortion", "immigration"}, weight: 2},
			{keywords: []string{"issue", "issues"}, weight: 2},
		},
	},

	// --- Comparison ---
	{
		intent: query.IntentComparePrecincts,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\bcompare\b.*\bprecincts?\b`), weight: 5},
			{re: regexp.MustCompile(`(?i)\bprecincts?\b.*\b(?:versus|vs)\b`), weight: 5},
		},
	},
	{
		intent: query.IntentCompareJurisdictions,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\bcompare\b.*\b(?:cities|townships|jurisdictions|municipalities)\b`), weight: 5},
			{re: regexp.MustCompile(`(?i)\bcompare\b.*\b(?:lansing|okemos|mason|holt|haslett|williamston)\b`), weight: 4},
		},
	},

	// --- Canvassing ---
	{
		intent: query.IntentWalkList,
		patterns: []pattern{
			{phrase: "walk list", weight: 6},
			{phrase: "walklist", weight: 6},
		},
	},
	{
		intent: query.IntentCanvassTargets,
		patterns: []pattern{
			{phrase: "canvass targets", weight: 5},
			{re: regexp.MustCompile(`(?i)\b(?:who|where)\s+(?:should|do)\s+we\s+canvass\b`), weight: 5},
		},
	},
	{
		intent: query.IntentCanvassPlan,
		patterns: []pattern{
			{phrase: "canvass plan", weight: 5},
			{phrase: "door knocking", weight: 4},
			{keywords: []string{"canvass", "canvassing"}, weight: 3},
		},
	},

	// --- Spatial / map ---
	{
		intent: query.IntentLayerToggle,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\b(?:turn\s+(?:on|off)|toggle|show|hide)\b.*\blayer\b`), weight: 5},
			{keywords: []string{"layer", "layers"}, weight: 2},
		},
	},
	{
		intent: query.IntentZoomToLocation,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\bzoom\s+(?:to|in|into|out)\b`), weight: 6},
			{keywords: []string{"zoom"}, weight: 3},
		},
	},
	{
		intent: query.IntentSpatialQuery,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\b(?:near|within|around)\b.*\b(?:miles?|blocks?|km)\b`), weight: 5},
			{phrase: "on the map", weight: 4},
		},
	},

	// --- Knowledge graph ---
	{
		intent: query.IntentGraphRelationships,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\bhow\s+(?:is|are)\s+.*\b(?:related|connected)\b`), weight: 5},
			{phrase: "relationship between", weight: 5},
		},
		exclusions: []*regexp.Regexp{districtDesignator},
	},
	{
		intent: query.IntentGraphExplore,
		patterns: []pattern{
			{phrase: "knowledge graph", weight: 6},
			{re: regexp.MustCompile(`(?i)\b(?:explore|show me)\b.*\b(?:graph|connections?|relationships?)\b`), weight: 4},
			{keywords: []string{"graph", "connections"}, weight: 2},
		},
		exclusions: []*regexp.Regexp{districtDesignator},
	},

	// --- County / precinct reference ---
	{
		intent: query.IntentCountyOverview,
		patterns: []pattern{
			{phrase: "county overview", weight: 5},
			{re: regexp.MustCompile(`(?i)\b(?:about|overview of|summary of)\b.*\bcounty\b`), weight: 4},
			{keywords: []string{"county"}, weight: 2},
		},
	},
	{
		intent: query.IntentPrecinctLookup,
		patterns: []pattern{
			{re: regexp.MustCompile(`(?i)\bwhere\s+is\b.*\bprecinct\b`), weight: 5},
			{re: regexp.MustCompile(`(?i)\bprecincts?\s+\d+\b`), weight: 3},
			{re: regexp.MustCompile(`(?i)\bprecincts?\s+in\b`), weight: 3},
		},
		exclusions: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bcompare\b`),
			regexp.MustCompile(`(?i)\bcare\b|\bthink\b|\bsupport\b`),
		},
	},

	// --- General / fallback ---
	{
		intent: query.IntentGeneralQuestion,
		patterns: []pattern{
			{phrase: "tell me about", weight: 3},
			{re: regexp.MustCompile(`(?i)^\s*(?:what|who|why|when|how)\b`), weight: 1},
		},
	},
}
