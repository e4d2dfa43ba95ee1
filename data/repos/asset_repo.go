package repos

import (
	"context"
	"fmt"

	"github.com/guregu/null/v6"
	"github.com/jackc/pgx/v5"

	m "github.com/Dreamtreeme/asset-guardian/data/models"
	q "github.com/Dreamtreeme/asset-guardian/data/queries"
)

// EnsureAsset upserts an asset row keyed by its unique display name and
// returns the stored record. Re-running for a known name only bumps
// updated_at; it never clobbers resolved fields.
func (pg *Postgres) EnsureAsset(ctx context.Context, displayName, exchange, currency string) (*m.Asset, error) {
	sql := q.Get(q.QueryHelper.Insert.Asset)
	args := pgx.NamedArgs{
		"display_name": displayName,
		"exchange":     exchange,
		"currency":     currency,
	}

	asset, err := QueryFirst[m.Asset](ctx, pg, sql, args)
	if err != nil {
		return nil, fmt.Errorf("unable to ensure asset %q: %w", displayName, err)
	}
	if asset == nil {
		return nil, fmt.Errorf("ensure asset %q returned no row", displayName)
	}

	return asset, nil
}

func (pg *Postgres) GetAssetByName(ctx context.Context, displayName string) (*m.Asset, error) {
	sql := q.Get(q.QueryHelper.Select.AssetByName)
	asset, err := QueryFirst[m.Asset](ctx, pg, sql, pgx.NamedArgs{"display_name": displayName})
	if err != nil {
		return nil, fmt.Errorf("unable to query asset by name %q: %w", displayName, err)
	}

	return asset, nil
}

func (pg *Postgres) GetAssetByTicker(ctx context.Context, ticker string) (*m.Asset, error) {
	sql := q.Get(q.QueryHelper.Select.AssetByTicker)
	asset, err := QueryFirst[m.Asset](ctx, pg, sql, pgx.NamedArgs{"ticker": ticker})
	if err != nil {
		return nil, fmt.Errorf("unable to query asset by ticker %q: %w", ticker, err)
	}

	return asset, nil
}

// AttachTicker fills in ticker/exchange/ISIN on an asset. COALESCE in the
// query keeps any value that is already present, so a repeat resolution can
// never overwrite a confirmed ticker with a different candidate.
func (pg *Postgres) AttachTicker(ctx context.Context, assetId int32, ticker string, exchange, isin null.String) error {
	sql := q.Get(q.QueryHelper.Update.AttachTicker)
	args := pgx.NamedArgs{
		"asset_id": assetId,
		"ticker":   ticker,
		"exchange": exchange,
		"isin":     isin,
	}

	if _, err := pg.db.Exec(ctx, sql, args); err != nil {
		return fmt.Errorf("error attaching ticker %s to asset %d: %w", ticker, assetId, err)
	}

	return nil
}
