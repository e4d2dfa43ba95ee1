package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	ex "github.com/Dreamtreeme/asset-guardian/data/extensions"
	dm "github.com/Dreamtreeme/asset-guardian/data/models"
	sm "github.com/Dreamtreeme/asset-guardian/service/models"
)

// BuildBundle fetches the price and statement series once, runs the three
// engines concurrently and merges their outputs into a single bundle tagged
// with the as-of date actually used (the latest bar consumed). It composes;
// it does not compute any metric itself.
func (sc *ServiceContext) BuildBundle(ctx context.Context, asset *dm.Asset, asOf time.Time) (*sm.MetricsBundle, error) {
	start := time.Now()
	symbol := asset.Ticker.String
	from := asOf.AddDate(-sc.Config.Repository.LookbackY, 0, 0)

	var bars []*dm.PriceBar
	if err := sc.Retry.Do(ctx, func(c context.Context) error {
		var err error
		bars, err = sc.Series.GetDailyPrices(c, asset.Id, from, asOf)
		return err
	}); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no bars for %s in [%s, %s]", ErrNoPriceData, symbol, ex.FmtShort(from), ex.FmtShort(asOf))
	}

	var fin *dm.FinancialHistory
	if err := sc.Retry.Do(ctx, func(c context.Context) error {
		var err error
		fin, err = sc.Series.GetFinancialHistory(c, asset.Id)
		return err
	}); err != nil {
		return nil, err
	}

	lastBar := bars[len(bars)-1]
	snapshot := PriceSnapshot{
		Price:             lastBar.EffectiveClose(),
		SharesOutstanding: asset.SharesOutstanding,
	}

	log.Printf("computing metrics for %s as of %s (%d bars, %d periods, fetch time: %v)",
		symbol, ex.FmtShort(lastBar.Date), len(bars), len(fin.Income), time.Since(start))

	indicatorEngine := NewIndicatorEngine(sc.Config)
	riskEngine := NewRiskEngine(sc.Config)
	fundamentalEngine := NewFundamentalEngine()

	// the three engines share no state and no data dependency, only the
	// already-fetched series
	var indicators sm.IndicatorMetrics
	var risk sm.RiskMetrics
	var fundamentals sm.FundamentalMetrics

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		indicators = indicatorEngine.Compute(bars)
		return nil
	})
	g.Go(func() error {
		risk = riskEngine.Compute(bars)
		return nil
	})
	g.Go(func() error {
		fundamentals = fundamentalEngine.Compute(fin, snapshot)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bundle := &sm.MetricsBundle{
		SchemaVersion: sm.BundleSchemaVersion,
		Symbol:        symbol,
		DisplayName:   asset.DisplayName,
		AsOf:          lastBar.Date,
		ComputedAt:    time.Now().UTC(),
		BarsUsed:      len(bars),
		PeriodsUsed:   len(fin.Income),
		DataQuality:   aggregateQuality(indicators, risk),
		Indicators:    indicators,
		Risk:          risk,
		Fundamentals:  fundamentals,
	}

	log.Printf("bundle for %s complete (quality %s, time: %v)", symbol, bundle.DataQuality, time.Since(start))
	return bundle, nil
}

// aggregateQuality folds the engines' degraded and insufficient signals into
// the single bundle-level flag. Fundamental sentinels do not degrade the
// bundle; sparse statements are routine, a broken price series is not.
func aggregateQuality(indicators sm.IndicatorMetrics, risk sm.RiskMetrics) string {
	if indicators.Discontinuous {
		return sm.QualityDegraded
	}

	for _, metric := range []sm.Metric{
		indicators.RSI14, indicators.MA200, indicators.MA300,
		risk.AnnualizedVolatility, risk.MaxDrawdown, risk.ValueAtRisk,
	} {
		if metric.Degraded() {
			return sm.QualityDegraded
		}
	}

	return sm.QualityOK
}
