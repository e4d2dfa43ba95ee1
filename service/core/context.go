package core

import (
	"context"
	"errors"
	"time"

	"github.com/guregu/null/v6"

	dm "github.com/Dreamtreeme/asset-guardian/data/models"
	r "github.com/Dreamtreeme/asset-guardian/data/repos"
	"github.com/Dreamtreeme/asset-guardian/service/api"
	sm "github.com/Dreamtreeme/asset-guardian/service/models"
)

var (
	// ErrUnresolvedAsset means a name could not be matched to a ticker above
	// the similarity threshold, or is cooling down after a recent failure.
	ErrUnresolvedAsset = errors.New("unresolved asset")

	// ErrNoPriceData means the repository holds no bars for the asset in the
	// requested range, so no bundle can be built at all.
	ErrNoPriceData = errors.New("no price data")
)

// SeriesRepository is the read boundary for price and statement history.
type SeriesRepository interface {
	GetDailyPrices(ctx context.Context, assetId int32, from, to time.Time) ([]*dm.PriceBar, error)
	GetFinancialHistory(ctx context.Context, assetId int32) (*dm.FinancialHistory, error)
}

type AssetStore interface {
	EnsureAsset(ctx context.Context, displayName, exchange, currency string) (*dm.Asset, error)
	GetAssetByTicker(ctx context.Context, ticker string) (*dm.Asset, error)
	AttachTicker(ctx context.Context, assetId int32, ticker string, exchange, isin null.String) error
}

type ResolutionLog interface {
	AppendResolutionAttempt(ctx context.Context, attempt *dm.ResolutionAttempt) error
	GetRecentResolutionFailure(ctx context.Context, name string, since time.Time) (*dm.ResolutionAttempt, error)
}

type BundleStore interface {
	GetCachedBundle(ctx context.Context, symbol string, asOfDate, notBefore time.Time) (*dm.CachedBundle, error)
	PutCachedBundle(ctx context.Context, entry *dm.CachedBundle) error
	PurgeExpiredBundles(ctx context.Context, olderThan time.Time) (int64, error)
}

// SearchProvider supplies ticker candidates for a free-text name. Production
// uses the market-data search client; tests use a fixed in-memory index.
type SearchProvider interface {
	SearchQuotes(ctx context.Context, query string) ([]api.Quote, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type ServiceContext struct {
	Context context.Context
	Config  *sm.Config

	Assets AssetStore
	Series SeriesRepository
	Log    ResolutionLog
	Search SearchProvider
	DB     Pinger

	Retry *r.RetryPolicy
	Cache *ResultCache
}

// NewServiceContext wires the postgres connection into every repository role
// and builds the cache and retry policy from config.
func NewServiceContext(ctx context.Context, cfg *sm.Config, pg *r.Postgres, search SearchProvider) *ServiceContext {
	return &ServiceContext{
		Context: ctx,
		Config:  cfg,
		Assets:  pg,
		Series:  pg,
		Log:     pg,
		Search:  search,
		DB:      pg,
		Retry: &r.RetryPolicy{
			Attempts: cfg.Repository.Attempts,
			Backoff:  cfg.Repository.Backoff,
			Timeout:  cfg.Repository.Timeout,
		},
		Cache: NewResultCache(pg, cfg.CacheTTL()),
	}
}
