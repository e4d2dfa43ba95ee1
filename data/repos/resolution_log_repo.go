package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	m "github.com/Dreamtreeme/asset-guardian/data/models"
	q "github.com/Dreamtreeme/asset-guardian/data/queries"
)

// AppendResolutionAttempt writes one row to the append-only resolution log
// and fills in the generated id and timestamp. Rows are never updated.
func (pg *Postgres) AppendResolutionAttempt(ctx context.Context, attempt *m.ResolutionAttempt) error {
	sql := q.Get(q.QueryHelper.Insert.ResolutionAttempt)
	args := pgx.NamedArgs{
		"name":            attempt.Name,
		"query":           attempt.Query,
		"result_ticker":   attempt.ResultTicker,
		"result_name":     attempt.ResultName,
		"result_exchange": attempt.ResultExchange,
		"score":           attempt.Score,
		"status":          attempt.Status,
	}

	if err := pg.db.QueryRow(ctx, sql, args).Scan(&attempt.Id, &attempt.CreatedAt); err != nil {
		return fmt.Errorf("error appending resolution attempt for %q: %w", attempt.Name, err)
	}

	return nil
}

// GetRecentResolutionFailure returns the newest failed attempt for a name at
// or after the given time, or nil. The resolver uses it to skip re-querying
// names that failed inside the cooldown window.
func (pg *Postgres) GetRecentResolutionFailure(ctx context.Context, name string, since time.Time) (*m.ResolutionAttempt, error) {
	sql := q.Get(q.QueryHelper.Select.RecentResolutionFailure)
	args := pgx.NamedArgs{
		"name":  name,
		"since": since,
	}

	attempt, err := QueryFirst[m.ResolutionAttempt](ctx, pg, sql, args)
	if err != nil {
		return nil, fmt.Errorf("unable to query recent resolution failure for %q: %w", name, err)
	}

	return attempt, nil
}
