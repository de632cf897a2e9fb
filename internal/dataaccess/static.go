package dataaccess

import (
	"context"
	"sort"
	"strings"
)

// Static is an in-memory Service seeded with Ingham County reference data.
// It backs local development and tests, and doubles as the fixture source for
// handler responses when no database is configured.
type Static struct{}

func NewStatic() *Static {
	return &Static{}
}

var staticElections = []ElectionResult{
	{Year: 2016, Office: "President", Candidate: "Clinton", Party: "DEM", Votes: 78058, VoteShare: 53.4, TurnoutPct: 64.8},
	{Year: 2016, Office: "President", Candidate: "Trump", Party: "REP", Votes: 56771, VoteShare: 38.8, TurnoutPct: 64.8},
	{Year: 2018, Office: "Governor", Candidate: "Whitmer", Party: "DEM", Votes: 71187, VoteShare: 58.1, TurnoutPct: 58.2},
	{Year: 2018, Office: "Governor", Candidate: "Schuette", Party: "REP", Votes: 45337, VoteShare: 37.0, TurnoutPct: 58.2},
	{Year: 2020, Office: "President", Candidate: "Biden", Party: "DEM", Votes: 94212, VoteShare: 60.6, TurnoutPct: 71.4},
	{Year: 2020, Office: "President", Candidate: "Trump", Party: "REP", Votes: 57676, VoteShare: 37.1, TurnoutPct: 71.4},
	{Year: 2022, Office: "Governor", Candidate: "Whitmer", Party: "DEM", Votes: 76916, VoteShare: 63.2, TurnoutPct: 55.9},
	{Year: 2022, Office: "Governor", Candidate: "Dixon", Party: "REP", Votes: 42419, VoteShare: 34.9, TurnoutPct: 55.9},
	{Year: 2024, Office: "President", Candidate: "Harris", Party: "DEM", Votes: 89341, VoteShare: 57.8, TurnoutPct: 69.1},
	{Year: 2024, Office: "President", Candidate: "Trump", Party: "REP", Votes: 60102, VoteShare: 38.9, TurnoutPct: 69.1},
}

var staticDemographics = map[string]Demographics{
	"lansing":      {Name: "Lansing", Population: 112644, MedianAge: 33.2, MedianIncome: 47_600},
	"east lansing": {Name: "East Lansing", Population: 47741, MedianAge: 22.1, MedianIncome: 42_500},
	"meridian":     {Name: "Meridian", Population: 45198, MedianAge: 36.8, MedianIncome: 72_300},
	"delhi":        {Name: "Delhi", Population: 29123, MedianAge: 38.4, MedianIncome: 68_900},
	"mason":        {Name: "Mason", Population: 8252, MedianAge: 37.9, MedianIncome: 59_800},
	"williamston":  {Name: "Williamston", Population: 3924, MedianAge: 40.1, MedianIncome: 64_200},
	"ingham":       {Name: "Ingham County", Population: 284900, MedianAge: 33.7, MedianIncome: 56_200},
}

var staticDonorAggregates = map[string][]DonorAggregate{
	"zip": {
		{Area: "48823", DonorCount: 412, TotalAmount: 186_400, AverageGift: 452.43},
		{Area: "48864", DonorCount: 388, TotalAmount: 171_250, AverageGift: 441.37},
		{Area: "48910", DonorCount: 257, TotalAmount: 64_300, AverageGift: 250.19},
		{Area: "48912", DonorCount: 231, TotalAmount: 58_900, AverageGift: 254.98},
		{Area: "48854", DonorCount: 144, TotalAmount: 41_200, AverageGift: 286.11},
	},
	"municipality": {
		{Area: "East Lansing", DonorCount: 498, TotalAmount: 212_700, AverageGift: 427.11},
		{Area: "Meridian", DonorCount: 455, TotalAmount: 198_300, AverageGift: 435.82},
		{Area: "Lansing", DonorCount: 611, TotalAmount: 152_800, AverageGift: 250.08},
		{Area: "Mason", DonorCount: 131, TotalAmount: 38_400, AverageGift: 293.13},
	},
	"district": {
		{Area: "HD-73", DonorCount: 534, TotalAmount: 201_900, AverageGift: 378.09},
		{Area: "HD-74", DonorCount: 402, TotalAmount: 144_600, AverageGift: 359.70},
		{Area: "HD-75", DonorCount: 377, TotalAmount: 121_300, AverageGift: 321.75},
	},
	"candidate": {
		{Area: "Ingham County", Candidate: "Slotkin", DonorCount: 389, TotalAmount: 167_200, AverageGift: 429.82},
		{Area: "Ingham County", Candidate: "Whitmer", DonorCount: 344, TotalAmount: 139_800, AverageGift: 406.40},
		{Area: "Ingham County", Candidate: "Barrett", DonorCount: 198, TotalAmount: 71_400, AverageGift: 360.61},
	},
}

var staticSegments = []Segment{
	{ID: "seg-001", Name: "High-propensity Democrats", VoterCount: 23411, DistrictID: "HD-73"},
	{ID: "seg-002", Name: "Persuadable independents", VoterCount: 10822, DistrictID: "HD-73"},
	{ID: "seg-003", Name: "New registrants 2024", VoterCount: 5120, DistrictID: "HD-74"},
}

var staticPrecinctScores = map[string][]PrecinctScore{
	"healthcare": {
		{Precinct: "Lansing Precinct 12", Jurisdiction: "Lansing", Issue: "healthcare", Score: 0.87},
		{Precinct: "East Lansing Precinct 4", Jurisdiction: "East Lansing", Issue: "healthcare", Score: 0.81},
		{Precinct: "Delhi Precinct 2", Jurisdiction: "Delhi", Issue: "healthcare", Score: 0.74},
		{Precinct: "Meridian Precinct 9", Jurisdiction: "Meridian", Issue: "healthcare", Score: 0.69},
	},
	"education": {
		{Precinct: "East Lansing Precinct 1", Jurisdiction: "East Lansing", Issue: "education", Score: 0.91},
		{Precinct: "Okemos Precinct 3", Jurisdiction: "Meridian", Issue: "education", Score: 0.83},
		{Precinct: "Lansing Precinct 31", Jurisdiction: "Lansing", Issue: "education", Score: 0.72},
	},
	"economy": {
		{Precinct: "Lansing Precinct 20", Jurisdiction: "Lansing", Issue: "economy", Score: 0.85},
		{Precinct: "Delhi Precinct 5", Jurisdiction: "Delhi", Issue: "economy", Score: 0.77},
		{Precinct: "Mason Precinct 1", Jurisdiction: "Mason", Issue: "economy", Score: 0.70},
	},
	"environment": {
		{Precinct: "East Lansing Precinct 6", Jurisdiction: "East Lansing", Issue: "environment", Score: 0.88},
		{Precinct: "Meridian Precinct 2", Jurisdiction: "Meridian", Issue: "environment", Score: 0.79},
	},
	"housing": {
		{Precinct: "Lansing Precinct 8", Jurisdiction: "Lansing", Issue: "housing", Score: 0.84},
		{Precinct: "East Lansing Precinct 2", Jurisdiction: "East Lansing", Issue: "housing", Score: 0.80},
	},
}

var staticReferenceLists = map[BoundaryType][]string{
	BoundaryMunicipality: {
		"Alaiedon", "Aurelius", "Bunker Hill", "Dansville", "Delhi", "East Lansing",
		"Haslett", "Holt", "Ingham", "Lansing", "Leroy", "Leslie", "Locke", "Mason",
		"Meridian", "Okemos", "Onondaga", "Stockbridge", "Vevay", "Webberville",
		"Wheatfield", "White Oak", "Williamston", "Williamstown",
	},
	BoundaryDistrict: {
		"HD-71", "HD-73", "HD-74", "HD-75", "HD-77", "SD-21", "SD-28",
	},
	BoundaryPrecinct: {
		"Lansing Precinct 8", "Lansing Precinct 12", "Lansing Precinct 20",
		"Lansing Precinct 31", "East Lansing Precinct 1", "East Lansing Precinct 2",
		"East Lansing Precinct 4", "East Lansing Precinct 6", "Meridian Precinct 2",
		"Meridian Precinct 9", "Delhi Precinct 2", "Delhi Precinct 5",
		"Mason Precinct 1", "Okemos Precinct 3",
	},
}

func (s *Static) PrecinctScores(_ context.Context, issue string) ([]PrecinctScore, error) {
	scores := staticPrecinctScores[strings.ToLower(issue)]
	out := make([]PrecinctScore, len(scores))
	copy(out, scores)
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (s *Static) Demographics(_ context.Context, name string) (*Demographics, error) {
	if d, ok := staticDemographics[strings.ToLower(name)]; ok {
		out := d
		return &out, nil
	}
	return nil, nil
}

func (s *Static) ElectionHistory(_ context.Context, _ string, year int) ([]ElectionResult, error) {
	// Countywide data only; jurisdiction filtering is a database concern.
	var out []ElectionResult
	for _, r := range staticElections {
		if year == 0 || r.Year == year {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Static) DonorAggregates(_ context.Context, groupBy string) ([]DonorAggregate, error) {
	aggs := staticDonorAggregates[strings.ToLower(groupBy)]
	out := make([]DonorAggregate, len(aggs))
	copy(out, aggs)
	return out, nil
}

func (s *Static) Segments(_ context.Context, districtID string) ([]Segment, error) {
	var out []Segment
	for _, seg := range staticSegments {
		if districtID == "" || seg.DistrictID == districtID {
			out = append(out, seg)
		}
	}
	return out, nil
}

func (s *Static) ReferenceList(_ context.Context, boundaryType BoundaryType) ([]string, error) {
	list := staticReferenceLists[boundaryType]
	out := make([]string, len(list))
	copy(out, list)
	return out, nil
}
