package dataaccess

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"campaign-query/internal/common/config"
	stderrors "campaign-query/internal/common/errors"
)

// Postgres is the database-backed Service. Missing rows are a soft failure:
// queries return empty slices or nil, never an error, so handlers can degrade
// gracefully.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection pool using the configured DSN.
func NewPostgres(cfg config.PostgresConfig) (*Postgres, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &Postgres{db: db}, nil
}

// NewPostgresFromDB wraps an existing handle (tests use sqlmock here).
func NewPostgresFromDB(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Ping tests the database connection.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *Postgres) PrecinctScores(ctx context.Context, issue string) ([]PrecinctScore, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT precinct, jurisdiction, issue, score
		FROM precinct_issue_scores
		WHERE issue = $1
		ORDER BY score DESC`, issue)
	if err != nil {
		return nil, p.wrap("precinct_scores", err)
	}
	defer rows.Close()

	var out []PrecinctScore
	for rows.Next() {
		var s PrecinctScore
		if err := rows.Scan(&s.Precinct, &s.Jurisdiction, &s.Issue, &s.Score); err != nil {
			return nil, p.wrap("precinct_scores", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) Demographics(ctx context.Context, name string) (*Demographics, error) {
	var d Demographics
	err := p.db.QueryRowContext(ctx, `
		SELECT name, population, median_age, median_income
		FROM demographics
		WHERE LOWER(name) = LOWER($1)`, name).
		Scan(&d.Name, &d.Population, &d.MedianAge, &d.MedianIncome)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, p.wrap("demographics", err)
	}
	return &d, nil
}

func (p *Postgres) ElectionHistory(ctx context.Context, jurisdiction string, year int) ([]ElectionResult, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT year, office, candidate, party, votes, vote_share, turnout_pct
		FROM election_results
		WHERE ($1 = '' OR LOWER(jurisdiction) = LOWER($1))
		  AND ($2 = 0 OR year = $2)
		ORDER BY year, votes DESC`, jurisdiction, year)
	if err != nil {
		return nil, p.wrap("election_history", err)
	}
	defer rows.Close()

	var out []ElectionResult
	for rows.Next() {
		var r ElectionResult
		if err := rows.Scan(&r.Year, &r.Office, &r.Candidate, &r.Party, &r.Votes, &r.VoteShare, &r.TurnoutPct); err != nil {
			return nil, p.wrap("election_history", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) DonorAggregates(ctx context.Context, groupBy string) ([]DonorAggregate, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT area, donor_count, total_amount, average_gift, COALESCE(candidate, '')
		FROM donor_aggregates
		WHERE group_by = $1
		ORDER BY total_amount DESC`, groupBy)
	if err != nil {
		return nil, p.wrap("donor_aggregates", err)
	}
	defer rows.Close()

	var out []DonorAggregate
	for rows.Next() {
		var a DonorAggregate
		if err := rows.Scan(&a.Area, &a.DonorCount, &a.TotalAmount, &a.AverageGift, &a.Candidate); err != nil {
			return nil, p.wrap("donor_aggregates", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (p *Postgres) Segments(ctx context.Context, districtID string) ([]Segment, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, voter_count, COALESCE(district_id, '')
		FROM segments
		WHERE ($1 = '' OR district_id = $1)
		ORDER BY name`, districtID)
	if err != nil {
		return nil, p.wrap("segments", err)
	}
	defer rows.Close()

	var out []Segment
	for rows.Next() {
		var s Segment
		if err := rows.Scan(&s.ID, &s.Name, &s.VoterCount, &s.DistrictID); err != nil {
			return nil, p.wrap("segments", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) ReferenceList(ctx context.Context, boundaryType BoundaryType) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT name
		FROM boundaries
		WHERE boundary_type = $1
		ORDER BY name`, string(boundaryType))
	if err != nil {
		return nil, p.wrap("reference_list", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, p.wrap("reference_list", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (p *Postgres) wrap(queryType string, err error) error {
	if err == context.DeadlineExceeded {
		return stderrors.NewQueryTimeoutError(queryType)
	}
	return stderrors.NewQueryExecutionFailedError(queryType, err)
}
