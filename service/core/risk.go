package core

import (
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	dm "github.com/Dreamtreeme/asset-guardian/data/models"
	sm "github.com/Dreamtreeme/asset-guardian/service/models"
)

const tradingDaysPerYear = 252

// RiskEngine derives volatility, drawdown and value-at-risk from the daily
// close series. Pure computation; thin samples get sentinel or low-confidence
// metrics instead of unreliable numbers.
type RiskEngine struct {
	Confidence   float64
	MinVaRSample int
	DrawdownBars int
}

func NewRiskEngine(cfg *sm.Config) *RiskEngine {
	return &RiskEngine{
		Confidence:   cfg.Risk.VaRConfidence,
		MinVaRSample: cfg.Risk.MinVaRSample,
		DrawdownBars: cfg.Risk.DrawdownBars,
	}
}

func (e *RiskEngine) Compute(bars []*dm.PriceBar) sm.RiskMetrics {
	returns := logReturns(extractCloses(bars))

	out := sm.RiskMetrics{
		AnnualizedVolatility: annualizedVolatility(returns),
		ValueAtRisk:          e.historicalVaR(returns),
		VaRConfidence:        e.Confidence,
		ReturnCount:          len(returns),
	}

	window := bars
	if e.DrawdownBars > 0 && len(bars) > e.DrawdownBars {
		window = bars[len(bars)-e.DrawdownBars:]
	}
	out.MaxDrawdown, out.DrawdownPeakDate, out.DrawdownTroughDate = maxDrawdown(window)

	return out
}

// logReturns is ln(p_t / p_{t-1}); undefined for the first bar.
func logReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 || prices[i] <= 0 {
			continue
		}
		returns = append(returns, math.Log(prices[i]/prices[i-1]))
	}
	return returns
}

// annualizedVolatility is the sample standard deviation of daily log returns
// scaled by sqrt(252). Needs at least two observations.
func annualizedVolatility(returns []float64) sm.Metric {
	if len(returns) < 2 {
		return sm.Insufficient()
	}

	return sm.Ok(stat.StdDev(returns, nil) * math.Sqrt(tradingDaysPerYear))
}

// historicalVaR takes the empirical (1-confidence) quantile of the return
// distribution. Reported as a loss threshold of zero or below; samples under
// the configured minimum are flagged low confidence rather than dropped.
func (e *RiskEngine) historicalVaR(returns []float64) sm.Metric {
	if len(returns) == 0 {
		return sm.Insufficient()
	}

	sorted := slices.Clone(returns)
	slices.Sort(sorted)

	v := stat.Quantile(1.0-e.Confidence, stat.Empirical, sorted, nil)
	if v > 0 {
		v = 0
	}

	if len(returns) < e.MinVaRSample {
		return sm.LowConfidence(v)
	}
	return sm.Ok(v)
}

// maxDrawdown walks the running price peak and reports the most negative
// peak-to-trough decline with its dates. Always <= 0; exactly 0 on a series
// that never falls below a prior peak.
func maxDrawdown(bars []*dm.PriceBar) (sm.Metric, *time.Time, *time.Time) {
	if len(bars) < 2 {
		return sm.Insufficient(), nil, nil
	}

	peak := bars[0].EffectiveClose()
	peakDate := bars[0].Date

	mdd := 0.0
	var mddPeakDate, mddTroughDate time.Time

	for _, bar := range bars {
		price := bar.EffectiveClose()
		if price > peak {
			peak = price
			peakDate = bar.Date
		}

		if peak <= 0 {
			continue
		}

		dd := (price - peak) / peak
		if dd < mdd {
			mdd = dd
			mddPeakDate = peakDate
			mddTroughDate = bar.Date
		}
	}

	if mdd == 0 {
		return sm.Ok(0), nil, nil
	}
	return sm.Ok(mdd), &mddPeakDate, &mddTroughDate
}
