package entities

// Curated reference lists for entity extraction. These mirror the reference
// data served by the data-access collaborator but are kept static here so
// extraction stays pure and dependency-free.

// knownJurisdictions lists the cities, townships, and villages of the
// supported coverage area (Ingham County, MI).
var knownJurisdictions = []string{
	"Lansing",
	"East Lansing",
	"Meridian",
	"Delhi",
	"Okemos",
	"Haslett",
	"Holt",
	"Mason",
	"Williamston",
	"Webberville",
	"Leslie",
	"Stockbridge",
	"Dansville",
	"Alaiedon",
	"Aurelius",
	"Bunker Hill",
	"Ingham",
	"Leroy",
	"Locke",
	"Onondaga",
	"Vevay",
	"Wheatfield",
	"White Oak",
	"Williamstown",
}

// knownCandidates lists candidate surnames appearing in supported election
// cycles. First token is the canonical form.
var knownCandidates = []string{
	"Biden",
	"Trump",
	"Harris",
	"Clinton",
	"Whitmer",
	"Dixon",
	"Schuette",
	"Slotkin",
	"Rogers",
	"Barrett",
	"Stabenow",
	"Peters",
	"James",
}

// issueSynonyms maps query vocabulary to canonical issue categories.
var issueSynonyms = map[string]string{
	"healthcare":     "healthcare",
	"health care":    "healthcare",
	"medicare":       "healthcare",
	"medicaid":       "healthcare",
	"education":      "education",
	"schools":        "education",
	"school funding": "education",
	"economy":        "economy",
	"jobs":           "economy",
	"inflation":      "economy",
	"wages":          "economy",
	"environment":    "environment",
	"climate":        "environment",
	"clean energy":   "environment",
	"housing":        "housing",
	"rent":           "housing",
	"public safety":  "public_safety",
	"crime":          "public_safety",
	"policing":       "public_safety",
	"infrastructure": "infrastructure",
	"roads":          "infrastructure",
	"transit":        "infrastructure",
	"taxes":          "taxes",
	"abortion":       "reproductive_rights",
	"immigration":    "immigration",
}

// canonicalIssues lists the canonical issue categories, ordered for display.
var canonicalIssues = []string{
	"healthcare",
	"education",
	"economy",
	"environment",
	"housing",
	"public_safety",
	"infrastructure",
	"taxes",
	"reproductive_rights",
	"immigration",
}

// CanonicalIssues returns the canonical issue categories the score data is
// keyed by.
func CanonicalIssues() []string {
	out := make([]string, len(canonicalIssues))
	copy(out, canonicalIssues)
	return out
}

// issueOrder fixes iteration order over issueSynonyms so extraction output is
// deterministic.
var issueOrder = []string{
	"health care", "healthcare", "medicare", "medicaid",
	"school funding", "education", "schools",
	"economy", "jobs", "inflation", "wages",
	"clean energy", "environment", "climate",
	"housing", "rent",
	"public safety", "crime", "policing",
	"infrastructure", "roads", "transit",
	"taxes", "abortion", "immigration",
}
