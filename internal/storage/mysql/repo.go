package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"review_analyzer/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Migrate creates the reviews table if it does not exist yet.
func (r *Repo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createReviewsTableSQL)
	return err
}

func (r *Repo) Append(ctx context.Context, rv domain.Review) error {
	_, err := r.db.ExecContext(ctx, insertReviewSQL, rv.ReviewID, rv.Location, rv.ReviewBody, rv.Timestamp)
	return err
}

// AppendBatch inserts many reviews in one statement; rows whose review_id
// already exists are left untouched.
func (r *Repo) AppendBatch(ctx context.Context, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*4)
	for _, rv := range rs {
		values = append(values, "(?, ?, ?, ?)")
		args = append(args, rv.ReviewID, rv.Location, rv.ReviewBody, rv.Timestamp)
	}
	sqlStr := insertReviewsPrefix + strings.Join(values, ", ") + insertReviewsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) List(ctx context.Context, f domain.ReviewFilter) ([]domain.Review, error) {
	query, args := buildListQuery(f)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Review, 0)
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ReviewID, &rv.Location, &rv.ReviewBody, &rv.Timestamp); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countReviewsSQL).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func buildListQuery(f domain.ReviewFilter) (string, []any) {
	var conds []string
	var args []any
	if f.Location != "" {
		conds = append(conds, "location = ?")
		args = append(args, f.Location)
	}
	if !f.Start.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, f.Start.Format(domain.TimestampLayout))
	}
	if !f.End.IsZero() {
		conds = append(conds, "created_at < ?")
		args = append(args, f.Until().Format(domain.TimestampLayout))
	}
	q := selectReviewsSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	return q + " ORDER BY seq", args
}
