package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"
)

// ResultStore implements domain.ResultStore using PostgreSQL.
type ResultStore struct {
	pool *pgxpool.Pool
}

// NewResultStore creates a new ResultStore backed by the given connection pool.
func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

var _ domain.ResultStore = (*ResultStore)(nil)

const resultSelectCols = `id, team, player, price, created_at`

func scanResultRows(rows pgx.Rows) ([]domain.ResultRecord, error) {
	var records []domain.ResultRecord
	for rows.Next() {
		var r domain.ResultRecord
		if err := rows.Scan(&r.ID, &r.Team, &r.Player, &r.Price, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Append inserts a single result row. The auction core guarantees each player
// produces at most one row, so no conflict handling is needed here.
func (s *ResultStore) Append(ctx context.Context, rec domain.ResultRecord) error {
	const query = `INSERT INTO auction_results (team, player, price) VALUES ($1, $2, $3)`
	if _, err := s.pool.Exec(ctx, query, string(rec.Team), rec.Player, rec.Price); err != nil {
		return fmt.Errorf("postgres: append result for %s: %w", rec.Player, err)
	}
	return nil
}

// Clear removes every result row. Used when the auction is reset.
func (s *ResultStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM auction_results`); err != nil {
		return fmt.Errorf("postgres: clear results: %w", err)
	}
	return nil
}

// List returns result rows in insertion order with pagination and optional
// time filtering.
func (s *ResultStore) List(ctx context.Context, opts domain.ListOpts) ([]domain.ResultRecord, error) {
	query := `SELECT ` + resultSelectCols + ` FROM auction_results WHERE 1=1`
	args := []any{}
	argIdx := 1

	if opts.Since != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *opts.Since)
		argIdx++
	}
	if opts.Until != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *opts.Until)
		argIdx++
	}

	query += " ORDER BY id ASC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list results: %w", err)
	}
	defer rows.Close()

	records, err := scanResultRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan results: %w", err)
	}
	return records, nil
}

// Count returns the total number of result rows.
func (s *ResultStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM auction_results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count results: %w", err)
	}
	return n, nil
}
