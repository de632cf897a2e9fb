// Package entities turns raw query text into typed entity fragments.
// Every extractor is pure, total, and case-insensitive: bad input yields an
// empty bag, never an error.
package entities

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"campaign-query/internal/query"
)

// supportedYears is the closed set of election cycles with data coverage.
// Any other year-like token resolves to the 2020 cycle. This fallback is
// intentional and load-bearing: downstream responses and tests depend on the
// 2020 default, so do not "fix" it to an error.
var supportedYears = map[int]bool{
	2016: true,
	2018: true,
	2020: true,
	2022: true,
	2024: true,
}

// FallbackYear is the cycle substituted for unsupported year tokens.
const FallbackYear = 2020

var (
	yearPattern = regexp.MustCompile(`\b(?:20)?([0-9]{2})\b`)

	houseDistrictPattern  = regexp.MustCompile(`(?i)\b(?:state\s+house|house\s+district|hd)[\s-]*(?:district\s+)?([0-9]{1,3})\b`)
	senateDistrictPattern = regexp.MustCompile(`(?i)\b(?:state\s+senate|senate\s+district|sd)[\s-]*(?:district\s+)?([0-9]{1,3})\b`)

	precinctPattern     = regexp.MustCompile(`(?i)\b(?:(ward\s+[0-9]+)\s+)?precincts?\s+([0-9]+)\b`)
	wardPrecinctPattern = regexp.MustCompile(`(?i)\bward\s+([0-9]+)\s+precincts?\b`)

	zipPattern = regexp.MustCompile(`\b([0-9]{5})\b`)
	fsaPattern = regexp.MustCompile(`(?i)\b([A-Z][0-9][A-Z])\b`)
)

// Extract runs every extractor over the text and merges the results.
func Extract(text string) query.EntityBag {
	bag := query.EntityBag{
		Jurisdictions:  Jurisdictions(text),
		Precincts:      Precincts(text),
		ZipCodes:       ZipCodes(text),
		CandidateNames: Candidates(text),
		IssueKeywords:  Issues(text),
		DistrictID:     DistrictID(text),
	}
	bag.Year = Year(text)
	return bag
}

// Year extracts an election year. Supported cycles (2016/2018/2020/2022/2024,
// with or without the century prefix) resolve exactly; any other year-like
// token resolves to FallbackYear. Returns 0 when no year-like token exists.
func Year(text string) int {
	m := yearPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	suffix, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	year := 2000 + suffix
	if supportedYears[year] {
		return year
	}
	return FallbackYear
}

// DistrictID extracts a legislative district identifier and normalizes it to
// the canonical "HD-<n>" / "SD-<n>" form. Empty string when absent.
func DistrictID(text string) string {
	if m := houseDistrictPattern.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("HD-%s", strings.TrimLeft(m[1], "0"))
	}
	if m := senateDistrictPattern.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("SD-%s", strings.TrimLeft(m[1], "0"))
	}
	return ""
}

// Jurisdictions matches text against the gazetteer of known cities, townships,
// and villages. Word-boundary, case-insensitive, all matches retained.
func Jurisdictions(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, name := range knownJurisdictions {
		if containsWord(lower, strings.ToLower(name)) {
			out = append(out, name)
		}
	}
	// "East Lansing" contains "Lansing"; drop the shorter match when the
	// longer one is present.
	if contains(out, "East Lansing") && !strings.Contains(strings.ReplaceAll(lower, "east lansing", ""), "lansing") {
		out = remove(out, "Lansing")
	}
	return out
}

// Precincts extracts precinct phrases. A precinct mention requires a trailing
// numeric qualifier ("Lansing Precinct 3") or a ward qualifier ("Ward 1
// Precinct"); bare "precincts in Lansing" phrasing is a jurisdiction query,
// not a precinct entity.
func Precincts(text string) []string {
	var out []string

	for _, m := range precinctPattern.FindAllStringSubmatch(text, -1) {
		name := "Precinct " + m[2]
		if ward := strings.TrimSpace(m[1]); ward != "" {
			name = titleCase(ward) + " " + name
		}
		if jur := precedingJurisdiction(text, m[0]); jur != "" {
			name = jur + " " + name
		}
		out = append(out, name)
	}

	// "Ward 1 Precinct" with no trailing number
	for _, m := range wardPrecinctPattern.FindAllStringSubmatch(text, -1) {
		candidate := "Ward " + m[1] + " Precinct"
		if !hasPrefixIn(out, candidate) {
			out = append(out, candidate)
		}
	}

	return out
}

// precedingJurisdiction finds a gazetteer name immediately before the matched
// precinct phrase.
func precedingJurisdiction(text, match string) string {
	idx := strings.Index(strings.ToLower(text), strings.ToLower(match))
	if idx <= 0 {
		return ""
	}
	prefix := strings.ToLower(strings.TrimSpace(text[:idx]))
	for _, name := range knownJurisdictions {
		if strings.HasSuffix(prefix, strings.ToLower(name)) {
			return name
		}
	}
	return ""
}

// Candidates matches known candidate surnames; all matches are retained in
// gazetteer order.
func Candidates(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, name := range knownCandidates {
		if containsWord(lower, strings.ToLower(name)) {
			out = append(out, name)
		}
	}
	return out
}

// Issues maps query vocabulary to canonical issue categories. Synonyms
// collapse to one canonical keyword; every distinct category mentioned is
// retained.
func Issues(text string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]bool)
	var out []string
	for _, phrase := range issueOrder {
		if !strings.Contains(lower, phrase) {
			continue
		}
		canonical := issueSynonyms[phrase]
		if !seen[canonical] {
			seen[canonical] = true
			out = append(out, canonical)
		}
	}
	return out
}

// ZipCodes extracts 5-digit ZIP codes and Canadian-style forward sortation
// area triads.
func ZipCodes(text string) []string {
	var out []string
	for _, m := range zipPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	for _, m := range fsaPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, strings.ToUpper(m[1]))
	}
	return out
}

func containsWord(haystack, needle string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], needle)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(needle)
		beforeOK := start == 0 || !isWordChar(haystack[start-1])
		afterOK := end == len(haystack) || !isWordChar(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

func hasPrefixIn(list []string, prefix string) bool {
	for _, v := range list {
		if strings.Contains(v, prefix) {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
