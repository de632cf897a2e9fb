// Package dataaccess defines the data-access collaborator consumed by the
// capability handlers: per-precinct scores, demographics, election history,
// donor aggregates, and boundary reference lists. Implementations may return
// nil or empty results for missing data; callers treat that as a soft
// failure, never an exception.
package dataaccess

import (
	"context"
)

// BoundaryType identifies a class of geographic reference data.
type BoundaryType string

const (
	BoundaryPrecinct     BoundaryType = "precinct"
	BoundaryMunicipality BoundaryType = "municipality"
	BoundaryDistrict     BoundaryType = "district"
)

// PrecinctScore is a per-precinct issue relevance score in [0,1].
type PrecinctScore struct {
	Precinct     string  `json:"precinct"`
	Jurisdiction string  `json:"jurisdiction"`
	Issue        string  `json:"issue"`
	Score        float64 `json:"score"`
}

// Demographics summarizes one jurisdiction or precinct.
type Demographics struct {
	Name         string  `json:"name"`
	Population   int     `json:"population"`
	MedianAge    float64 `json:"medianAge"`
	MedianIncome int     `json:"medianIncome"`
}

// ElectionResult is one candidate line in one contest.
type ElectionResult struct {
	Year       int     `json:"year"`
	Office     string  `json:"office"`
	Candidate  string  `json:"candidate"`
	Party      string  `json:"party"`
	Votes      int     `json:"votes"`
	VoteShare  float64 `json:"voteShare"`  // percent of contest votes
	TurnoutPct float64 `json:"turnoutPct"` // percent of registered voters
}

// DonorAggregate is a donor rollup for one area (ZIP, jurisdiction, district).
type DonorAggregate struct {
	Area        string  `json:"area"`
	DonorCount  int     `json:"donorCount"`
	TotalAmount float64 `json:"totalAmount"`
	AverageGift float64 `json:"averageGift"`
	Candidate   string  `json:"candidate,omitempty"`
}

// Segment is a saved voter segment.
type Segment struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	VoterCount int    `json:"voterCount"`
	DistrictID string `json:"districtId,omitempty"`
}

// Service is the data-access collaborator contract.
type Service interface {
	// PrecinctScores returns per-precinct scores for a canonical issue
	// keyword, highest first.
	PrecinctScores(ctx context.Context, issue string) ([]PrecinctScore, error)

	// Demographics returns demographics for a jurisdiction or precinct
	// name, or nil when unknown.
	Demographics(ctx context.Context, name string) (*Demographics, error)

	// ElectionHistory returns contest results. Year 0 means all supported
	// years; empty jurisdiction means countywide.
	ElectionHistory(ctx context.Context, jurisdiction string, year int) ([]ElectionResult, error)

	// DonorAggregates returns donor rollups grouped by the given boundary
	// type ("zip", "municipality", "district").
	DonorAggregates(ctx context.Context, groupBy string) ([]DonorAggregate, error)

	// Segments returns the saved segments, optionally filtered by district.
	Segments(ctx context.Context, districtID string) ([]Segment, error)

	// ReferenceList returns the known names for a boundary type.
	ReferenceList(ctx context.Context, boundaryType BoundaryType) ([]string, error)
}
