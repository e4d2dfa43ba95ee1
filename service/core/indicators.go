package core

import (
	"gonum.org/v1/gonum/stat"

	ex "github.com/Dreamtreeme/asset-guardian/data/extensions"
	dm "github.com/Dreamtreeme/asset-guardian/data/models"
	sm "github.com/Dreamtreeme/asset-guardian/service/models"
)

const (
	ma200Window = 200
	ma300Window = 300

	// minimum rolling-average points before a slope regression means anything
	minSlopePoints = 20
)

// IndicatorEngine computes the technical indicator block from a daily close
// series. All methods are pure; insufficient history yields sentinel metrics,
// never partial averages.
type IndicatorEngine struct {
	RSIPeriod        int
	GapToleranceDays int
}

func NewIndicatorEngine(cfg *sm.Config) *IndicatorEngine {
	return &IndicatorEngine{
		RSIPeriod:        cfg.Indicators.RSIPeriod,
		GapToleranceDays: cfg.Indicators.GapToleranceDays,
	}
}

func (e *IndicatorEngine) Compute(bars []*dm.PriceBar) sm.IndicatorMetrics {
	closes := extractCloses(bars)

	return sm.IndicatorMetrics{
		RSI14:         RSI(closes, e.RSIPeriod),
		MA200:         TrailingSMA(closes, ma200Window),
		MA300:         TrailingSMA(closes, ma300Window),
		MA200Slope:    MovingAverageSlope(closes, ma200Window),
		MA300Slope:    MovingAverageSlope(closes, ma300Window),
		Discontinuous: maxCalendarGapDays(bars) > e.GapToleranceDays,
	}
}

// RSI computes the Wilder-smoothed relative strength index. The first average
// gain/loss is a simple mean over the first `period` changes, then each later
// bar is folded in recursively. Output is always within [0, 100]; fewer than
// period+1 bars is insufficient data.
func RSI(closes []float64, period int) sm.Metric {
	if period <= 0 || len(closes) < period+1 {
		return sm.Insufficient()
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change // make positive
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return sm.Ok(100.0)
	}

	rsi := 100.0 - 100.0/(1.0+avgGain/avgLoss)
	if rsi < 0 {
		rsi = 0
	}
	if rsi > 100 {
		rsi = 100
	}
	return sm.Ok(rsi)
}

// TrailingSMA is the arithmetic mean of the trailing `window` closes. Fewer
// points than the window is reported as insufficient rather than silently
// averaging a shorter span.
func TrailingSMA(closes []float64, window int) sm.Metric {
	if window <= 0 || len(closes) < window {
		return sm.Insufficient()
	}

	return sm.Ok(ex.Sum(closes[len(closes)-window:]) / float64(window))
}

// MovingAverageSlope regresses the rolling SMA series against time and
// returns the per-bar slope, the same trend signal the long-term view keys
// on. Needs enough rolling points for the fit to be stable.
func MovingAverageSlope(closes []float64, window int) sm.Metric {
	if window <= 0 || len(closes) < window+minSlopePoints-1 {
		return sm.Insufficient()
	}

	nPoints := len(closes) - window + 1
	xs := make([]float64, nPoints)
	ys := make([]float64, nPoints)

	sum := ex.Sum(closes[:window])
	xs[0], ys[0] = 0, sum/float64(window)
	for i := 1; i < nPoints; i++ {
		sum += closes[window+i-1] - closes[i-1]
		xs[i] = float64(i)
		ys[i] = sum / float64(window)
	}

	_, slope := stat.LinearRegression(xs, ys, nil, false)
	return sm.Ok(slope)
}

// maxCalendarGapDays returns the widest calendar gap between consecutive
// bars. Normal weekends and holidays stay under the configured tolerance;
// anything beyond it marks the series discontinuous.
func maxCalendarGapDays(bars []*dm.PriceBar) int {
	maxGap := 0
	for i := 1; i < len(bars); i++ {
		gap := int(bars[i].Date.Sub(bars[i-1].Date).Hours() / 24)
		if gap > maxGap {
			maxGap = gap
		}
	}
	return maxGap
}

func extractCloses(bars []*dm.PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.EffectiveClose()
	}
	return closes
}
