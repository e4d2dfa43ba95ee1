package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	m "github.com/Dreamtreeme/asset-guardian/data/models"
	q "github.com/Dreamtreeme/asset-guardian/data/queries"
)

// GetDailyPrices returns the daily bars for an asset in [from, to], ordered
// ascending by date. At most one bar exists per date.
func (pg *Postgres) GetDailyPrices(ctx context.Context, assetId int32, from, to time.Time) ([]*m.PriceBar, error) {
	sql := q.Get(q.QueryHelper.Select.DailyPrices)
	args := pgx.NamedArgs{
		"asset_id":  assetId,
		"from_date": from,
		"to_date":   to,
	}

	res, err := Query[m.PriceBar](ctx, pg, sql, args)
	if err != nil {
		return nil, fmt.Errorf("unable to query daily prices for asset %d: %w", assetId, err)
	}

	return res, nil
}

// UpsertDailyPrices writes bars keyed on (asset_id, date), replacing existing
// rows so late provider corrections land. All rows go in one transaction.
func (pg *Postgres) UpsertDailyPrices(ctx context.Context, bars []*m.PriceBar) (int64, error) {
	if len(bars) == 0 {
		return 0, nil
	}

	sql := q.Get(q.QueryHelper.Insert.DailyPrice)

	tx, err := pg.GetTransaction(ctx)
	if err != nil {
		return 0, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) // this will kick off if we return before committing

	var written int64
	for _, bar := range bars {
		args := pgx.NamedArgs{
			"asset_id":  bar.AssetId,
			"date":      bar.Date,
			"open":      bar.Open,
			"high":      bar.High,
			"low":       bar.Low,
			"close":     bar.Close,
			"adj_close": bar.AdjustedClose,
			"volume":    bar.Volume,
			"source":    bar.Source,
		}

		ct, err := tx.Exec(ctx, sql, args)
		if err != nil {
			return 0, fmt.Errorf("error upserting price bar for asset %d on %s: %w", bar.AssetId, bar.Date.Format(time.DateOnly), err)
		}
		written += ct.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("error committing price upsert: %w", err)
	}

	return written, nil
}
