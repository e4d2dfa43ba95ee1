package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	m "github.com/Dreamtreeme/asset-guardian/data/models"
	q "github.com/Dreamtreeme/asset-guardian/data/queries"
)

// GetCachedBundle returns the newest cache row for (symbol, asOfDate) created
// at or after notBefore, or nil on a miss. The notBefore cutoff is how TTL
// expiry is applied lazily on read.
func (pg *Postgres) GetCachedBundle(ctx context.Context, symbol string, asOfDate, notBefore time.Time) (*m.CachedBundle, error) {
	sql := q.Get(q.QueryHelper.Select.ReportCacheEntry)
	args := pgx.NamedArgs{
		"symbol":     symbol,
		"as_of_date": asOfDate,
		"not_before": notBefore,
	}

	entry, err := QueryFirst[m.CachedBundle](ctx, pg, sql, args)
	if err != nil {
		return nil, fmt.Errorf("unable to query cached bundle for %s: %w", symbol, err)
	}

	return entry, nil
}

func (pg *Postgres) PutCachedBundle(ctx context.Context, entry *m.CachedBundle) error {
	sql := q.Get(q.QueryHelper.Insert.ReportCache)
	args := pgx.NamedArgs{
		"symbol":     entry.Symbol,
		"as_of_date": entry.AsOfDate,
		"payload":    entry.Payload,
	}

	if err := pg.db.QueryRow(ctx, sql, args).Scan(&entry.Id, &entry.CreatedAt); err != nil {
		return fmt.Errorf("error storing cached bundle for %s: %w", entry.Symbol, err)
	}

	return nil
}

// PurgeExpiredBundles deletes whole cache rows older than the cutoff. There
// is no partial eviction; an entry is either fully valid or gone.
func (pg *Postgres) PurgeExpiredBundles(ctx context.Context, olderThan time.Time) (int64, error) {
	sql := q.Get(q.QueryHelper.Delete.ExpiredReportCache)
	ct, err := pg.db.Exec(ctx, sql, pgx.NamedArgs{"older_than": olderThan})
	if err != nil {
		return 0, fmt.Errorf("error purging expired cache entries: %w", err)
	}

	return ct.RowsAffected(), nil
}
