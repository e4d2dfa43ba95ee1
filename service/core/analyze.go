package core

import (
	"context"
	"time"

	sm "github.com/Dreamtreeme/asset-guardian/service/models"
)

// Analyze is the one operation this core exposes: resolve the input to a
// canonical asset, then serve the bundle for (asset, as-of date) from the
// cache or compute it once. A zero asOf means today. Resolution and
// repository failures abort the whole call with typed errors; per-metric
// shortfalls only degrade the affected metrics inside the bundle.
func (sc *ServiceContext) Analyze(ctx context.Context, nameOrTicker string, asOf time.Time) (*sm.MetricsBundle, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	asOf = dateOnly(asOf)

	asset, err := sc.Assets.GetAssetByTicker(ctx, nameOrTicker)
	if err != nil {
		return nil, err
	}
	if asset == nil || !asset.Resolved() {
		asset, err = sc.ResolveTicker(ctx, nameOrTicker)
		if err != nil {
			return nil, err
		}
	}

	return sc.Cache.GetOrCompute(ctx, asset.Ticker.String, asOf, func(c context.Context) (*sm.MetricsBundle, error) {
		return sc.BuildBundle(c, asset, asOf)
	})
}
