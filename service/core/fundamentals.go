package core

import (
	"gonum.org/v1/gonum/stat"

	"github.com/guregu/null/v6"

	dm "github.com/Dreamtreeme/asset-guardian/data/models"
	sm "github.com/Dreamtreeme/asset-guardian/service/models"
)

const (
	quartersPerYear = 4
	ttmQuarters     = 4

	// how many recent quarter-over-quarter diffs feed the improving share
	improvingLookback = 8
)

// PriceSnapshot is the market context the fundamental ratios are anchored to:
// the latest close and, when the provider supplied it, shares outstanding.
type PriceSnapshot struct {
	Price             float64
	SharesOutstanding null.Float
}

// FundamentalEngine turns the quarterly statement series into trend packs and
// valuation ratios. Every ratio with an invalid denominator comes back as a
// not-meaningful sentinel; nothing here produces NaN or Inf.
type FundamentalEngine struct{}

func NewFundamentalEngine() *FundamentalEngine {
	return &FundamentalEngine{}
}

func (e *FundamentalEngine) Compute(fin *dm.FinancialHistory, snap PriceSnapshot) sm.FundamentalMetrics {
	if fin == nil {
		fin = &dm.FinancialHistory{}
	}

	revenue := collectSeries(fin.Income, func(r *dm.IncomeStatement) null.Float { return r.Revenue })
	opIncome := collectSeries(fin.Income, func(r *dm.IncomeStatement) null.Float { return r.OperatingIncome })
	netIncome := collectSeries(fin.Income, func(r *dm.IncomeStatement) null.Float { return r.NetIncome })
	opMargin := operatingMarginSeries(fin.Income)
	fcf := freeCashFlowSeries(fin.CashFlow)
	debtEquity := debtToEquitySeries(fin.Balance)

	out := sm.FundamentalMetrics{
		RevenueTrend:         trendPack(revenue),
		OperatingMarginTrend: trendPack(opMargin),
		FreeCashFlowTrend:    trendPack(fcf),
		DebtToEquityTrend:    trendPack(debtEquity),

		RevenueQoQ:         growthRate(revenue, 1),
		RevenueYoY:         growthRate(revenue, quartersPerYear),
		OperatingIncomeYoY: growthRate(opIncome, quartersPerYear),

		ReturnOnEquity: returnOnEquity(netIncome, fin.Balance),
		DebtToEquity:   latestDebtToEquity(fin.Balance),
	}

	out.PriceToEarnings, out.PEGRatio = valuation(netIncome, snap)
	return out
}

// trendPack summarizes a quarterly series: latest value, regression slope per
// quarter, and the share of recent quarters that moved up. Fewer than three
// points is not a trend.
func trendPack(vals []float64) sm.TrendPack {
	if len(vals) < 3 {
		return sm.TrendPack{Available: false}
	}

	xs := make([]float64, len(vals))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, vals, nil, false)

	diffs := make([]float64, len(vals)-1)
	for i := 1; i < len(vals); i++ {
		diffs[i-1] = vals[i] - vals[i-1]
	}
	recent := diffs
	if len(recent) > improvingLookback {
		recent = recent[len(recent)-improvingLookback:]
	}
	up := 0
	for _, d := range recent {
		if d > 0 {
			up++
		}
	}

	return sm.TrendPack{
		Available:      true,
		Latest:         vals[len(vals)-1],
		Slope:          slope,
		ImprovingShare: float64(up) / float64(len(recent)),
		Periods:        len(vals),
	}
}

// growthRate compares the latest value to the one `lag` quarters back. A
// non-positive base makes the percentage economically meaningless.
func growthRate(vals []float64, lag int) sm.Metric {
	if len(vals) <= lag {
		return sm.Insufficient()
	}

	base := vals[len(vals)-1-lag]
	if base <= 0 {
		return sm.NotMeaningful()
	}

	return sm.Ok(vals[len(vals)-1]/base - 1.0)
}

// valuation derives trailing P/E from price and TTM EPS, and PEG from P/E
// over the year-on-year EPS growth expressed in percentage points (15% growth
// divides by 15). Missing shares outstanding leaves both unavailable.
func valuation(netIncome []float64, snap PriceSnapshot) (pe, peg sm.Metric) {
	if !snap.SharesOutstanding.Valid || snap.SharesOutstanding.Float64 <= 0 || snap.Price <= 0 {
		return sm.NotMeaningful(), sm.NotMeaningful()
	}
	if len(netIncome) < ttmQuarters {
		return sm.Insufficient(), sm.Insufficient()
	}

	shares := snap.SharesOutstanding.Float64
	eps := sumTail(netIncome, ttmQuarters) / shares
	if eps <= 0 {
		return sm.NotMeaningful(), sm.NotMeaningful()
	}
	pe = sm.Ok(snap.Price / eps)

	if len(netIncome) < 2*ttmQuarters {
		return pe, sm.Insufficient()
	}

	prevEPS := sumTail(netIncome[:len(netIncome)-ttmQuarters], ttmQuarters) / shares
	if prevEPS <= 0 {
		return pe, sm.NotMeaningful()
	}

	growthPct := (eps/prevEPS - 1.0) * 100.0
	if growthPct <= 0 {
		return pe, sm.NotMeaningful()
	}

	return pe, sm.Ok(pe.Value / growthPct)
}

// returnOnEquity divides the most recent quarter's net income by the most
// recent total equity. Equity at or below zero is not meaningful, never a
// sign-flipped number.
func returnOnEquity(netIncome []float64, balance []*dm.BalanceSheet) sm.Metric {
	equity, ok := latestBalanceValue(balance, func(b *dm.BalanceSheet) null.Float { return b.TotalEquity })
	if !ok || len(netIncome) == 0 {
		return sm.Insufficient()
	}
	if equity <= 0 {
		return sm.NotMeaningful()
	}

	return sm.Ok(netIncome[len(netIncome)-1] / equity)
}

func latestDebtToEquity(balance []*dm.BalanceSheet) sm.Metric {
	debt, okDebt := latestBalanceValue(balance, func(b *dm.BalanceSheet) null.Float { return b.TotalDebt })
	equity, okEquity := latestBalanceValue(balance, func(b *dm.BalanceSheet) null.Float { return b.TotalEquity })
	if !okDebt || !okEquity {
		return sm.Insufficient()
	}
	if equity <= 0 {
		return sm.NotMeaningful()
	}

	return sm.Ok(debt / equity)
}

func collectSeries(rows []*dm.IncomeStatement, field func(*dm.IncomeStatement) null.Float) []float64 {
	vals := make([]float64, 0, len(rows))
	for _, row := range rows {
		if v := field(row); v.Valid {
			vals = append(vals, v.Float64)
		}
	}
	return vals
}

func operatingMarginSeries(rows []*dm.IncomeStatement) []float64 {
	vals := make([]float64, 0, len(rows))
	for _, row := range rows {
		if row.Revenue.Valid && row.OperatingIncome.Valid && row.Revenue.Float64 != 0 {
			vals = append(vals, row.OperatingIncome.Float64/row.Revenue.Float64)
		}
	}
	return vals
}

// freeCashFlowSeries is operating cash flow plus capex per period; capex rows
// arrive as negative numbers from the provider. Missing capex degrades to
// plain operating cash flow, same as the source data did.
func freeCashFlowSeries(rows []*dm.CashFlowStatement) []float64 {
	vals := make([]float64, 0, len(rows))
	for _, row := range rows {
		if !row.OperatingCF.Valid {
			continue
		}
		v := row.OperatingCF.Float64
		if row.Capex.Valid {
			v += row.Capex.Float64
		}
		vals = append(vals, v)
	}
	return vals
}

// debtToEquitySeries skips periods with non-positive equity entirely; a
// leverage ratio against negative equity has no economic reading.
func debtToEquitySeries(rows []*dm.BalanceSheet) []float64 {
	vals := make([]float64, 0, len(rows))
	for _, row := range rows {
		if row.TotalDebt.Valid && row.TotalEquity.Valid && row.TotalEquity.Float64 > 0 {
			vals = append(vals, row.TotalDebt.Float64/row.TotalEquity.Float64)
		}
	}
	return vals
}

func latestBalanceValue(rows []*dm.BalanceSheet, field func(*dm.BalanceSheet) null.Float) (float64, bool) {
	for i := len(rows) - 1; i >= 0; i-- {
		if v := field(rows[i]); v.Valid {
			return v.Float64, true
		}
	}
	return 0, false
}

func sumTail(vals []float64, n int) float64 {
	total := 0.0
	for _, v := range vals[len(vals)-n:] {
		total += v
	}
	return total
}
