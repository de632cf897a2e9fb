// internal/dataaccess/postgres_test.go
package dataaccess

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

func createMockPostgres(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresFromDB(db), mock
}

// ==========================
// PrecinctScores
// ==========================

func TestPrecinctScores(t *testing.T) {
	p, mock := createMockPostgres(t)

	rows := sqlmock.NewRows([]string{"precinct", "jurisdiction", "issue", "score"}).
		AddRow("Lansing Precinct 12", "Lansing", "healthcare", 0.87).
		AddRow("East Lansing Precinct 4", "East Lansing", "healthcare", 0.81)

	mock.ExpectQuery("FROM precinct_issue_scores").
		WithArgs("healthcare").
		WillReturnRows(rows)

	scores, err := p.PrecinctScores(context.Background(), "healthcare")

	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "Lansing Precinct 12", scores[0].Precinct)
	assert.Equal(t, 0.87, scores[0].Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrecinctScores_QueryError(t *testing.T) {
	p, mock := createMockPostgres(t)

	mock.ExpectQuery("FROM precinct_issue_scores").
		WillReturnError(errors.New("connection reset"))

	_, err := p.PrecinctScores(context.Background(), "healthcare")
	assert.Error(t, err)
}

// ==========================
// Demographics
// ==========================

func TestDemographics(t *testing.T) {
	p, mock := createMockPostgres(t)

	rows := sqlmock.NewRows([]string{"name", "population", "median_age", "median_income"}).
		AddRow("Lansing", 112644, 33.2, 47600)

	mock.ExpectQuery("FROM demographics").
		WithArgs("Lansing").
		WillReturnRows(rows)

	d, err := p.Demographics(context.Background(), "Lansing")

	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "Lansing", d.Name)
	assert.Equal(t, 112644, d.Population)
}

// Missing rows are a soft failure: nil result, nil error.
func TestDemographics_UnknownNameIsNilNil(t *testing.T) {
	p, mock := createMockPostgres(t)

	mock.ExpectQuery("FROM demographics").
		WithArgs("Atlantis").
		WillReturnRows(sqlmock.NewRows([]string{"name", "population", "median_age", "median_income"}))

	d, err := p.Demographics(context.Background(), "Atlantis")

	assert.NoError(t, err)
	assert.Nil(t, d)
}

// ==========================
// ElectionHistory
// ==========================

func TestElectionHistory(t *testing.T) {
	p, mock := createMockPostgres(t)

	rows := sqlmock.NewRows([]string{"year", "office", "candidate", "party", "votes", "vote_share", "turnout_pct"}).
		AddRow(2020, "President", "Biden", "DEM", 94212, 60.6, 71.4).
		AddRow(2020, "President", "Trump", "REP", 57676, 37.1, 71.4)

	mock.ExpectQuery("FROM election_results").
		WithArgs("", 2020).
		WillReturnRows(rows)

	results, err := p.ElectionHistory(context.Background(), "", 2020)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Biden", results[0].Candidate)
	assert.Equal(t, 60.6, results[0].VoteShare)
}

func TestElectionHistory_NoRows(t *testing.T) {
	p, mock := createMockPostgres(t)

	mock.ExpectQuery("FROM election_results").
		WithArgs("", 1990).
		WillReturnRows(sqlmock.NewRows([]string{"year", "office", "candidate", "party", "votes", "vote_share", "turnout_pct"}))

	results, err := p.ElectionHistory(context.Background(), "", 1990)

	assert.NoError(t, err)
	assert.Empty(t, results)
}

// ==========================
// DonorAggregates
// ==========================

func TestDonorAggregates(t *testing.T) {
	p, mock := createMockPostgres(t)

	rows := sqlmock.NewRows([]string{"area", "donor_count", "total_amount", "average_gift", "candidate"}).
		AddRow("48823", 412, 186400.0, 452.43, "")

	mock.ExpectQuery("FROM donor_aggregates").
		WithArgs("zip").
		WillReturnRows(rows)

	aggs, err := p.DonorAggregates(context.Background(), "zip")

	require.NoError(t, err)
	require.Len(t, aggs, 1)
	assert.Equal(t, "48823", aggs[0].Area)
	assert.Equal(t, 412, aggs[0].DonorCount)
}

// ==========================
// Segments
// ==========================

func TestSegments_FilteredByDistrict(t *testing.T) {
	p, mock := createMockPostgres(t)

	rows := sqlmock.NewRows([]string{"id", "name", "voter_count", "district_id"}).
		AddRow("seg-001", "High-propensity Democrats", 23411, "HD-73")

	mock.ExpectQuery("FROM segments").
		WithArgs("HD-73").
		WillReturnRows(rows)

	segs, err := p.Segments(context.Background(), "HD-73")

	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "HD-73", segs[0].DistrictID)
}

// ==========================
// ReferenceList
// ==========================

func TestReferenceList(t *testing.T) {
	p, mock := createMockPostgres(t)

	rows := sqlmock.NewRows([]string{"name"}).
		AddRow("East Lansing").
		AddRow("Lansing")

	mock.ExpectQuery("FROM boundaries").
		WithArgs("municipality").
		WillReturnRows(rows)

	names, err := p.ReferenceList(context.Background(), BoundaryMunicipality)

	require.NoError(t, err)
	assert.Equal(t, []string{"East Lansing", "Lansing"}, names)
}

func TestReferenceList_ScanError(t *testing.T) {
	p, mock := createMockPostgres(t)

	rows := sqlmock.NewRows([]string{"name"}).AddRow(nil)

	mock.ExpectQuery("FROM boundaries").
		WithArgs("district").
		WillReturnRows(rows)

	_, err := p.ReferenceList(context.Background(), BoundaryDistrict)
	assert.Error(t, err)
}
