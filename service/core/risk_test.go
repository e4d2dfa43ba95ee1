package core

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	ex "github.com/Dreamtreeme/asset-guardian/data/extensions"
	dm "github.com/Dreamtreeme/asset-guardian/data/models"
	sm "github.com/Dreamtreeme/asset-guardian/service/models"
)

func barsFromCloses(closes []float64, end time.Time) []*dm.PriceBar {
	bars := make([]*dm.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = &dm.PriceBar{
			AssetId: 1,
			Date:    end.AddDate(0, 0, i-len(closes)+1),
			Close:   c,
			Source:  "test",
		}
	}
	return bars
}

// TestAnnualizedVolatilityMatchesHandComputation compares against the sample
// standard deviation computed longhand in the test
func TestAnnualizedVolatilityMatchesHandComputation(t *testing.T) {
	prices := []float64{100, 102, 99, 101, 104, 103, 105}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns = append(returns, math.Log(prices[i]/prices[i-1]))
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	expected := math.Sqrt(variance) * math.Sqrt(252)

	m := annualizedVolatility(logReturns(prices))
	if m.Status != sm.StatusOK {
		t.Fatalf("expected ok, got %s", m.Status)
	}
	ex.AssertClose(t, "annualized volatility", expected, m.Value, 1e-12)
}

func TestAnnualizedVolatilityShortSample(t *testing.T) {
	if m := annualizedVolatility(logReturns([]float64{100, 101})); m.Status != sm.StatusInsufficientData {
		t.Errorf("single return: expected insufficient_data, got %s", m.Status)
	}
}

// TestHistoricalVaRMonotoneInConfidence checks 99% VaR is at least as severe
// as 95% VaR on the same return sample
func TestHistoricalVaRMonotoneInConfidence(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	returns := make([]float64, 300)
	for i := range returns {
		returns[i] = (rng.Float64() - 0.5) * 0.06
	}

	e95 := &RiskEngine{Confidence: 0.95, MinVaRSample: 60}
	e99 := &RiskEngine{Confidence: 0.99, MinVaRSample: 60}

	v95 := e95.historicalVaR(returns)
	v99 := e99.historicalVaR(returns)
	if v95.Status != sm.StatusOK || v99.Status != sm.StatusOK {
		t.Fatalf("expected ok metrics, got %s and %s", v95.Status, v99.Status)
	}
	if v99.Value > v95.Value {
		t.Errorf("VaR(99%%) %.6f should not be milder than VaR(95%%) %.6f", v99.Value, v95.Value)
	}
	if v95.Value > 0 {
		t.Errorf("VaR is a loss threshold, got positive %.6f", v95.Value)
	}
}

func TestHistoricalVaRSmallSampleIsLowConfidence(t *testing.T) {
	engine := &RiskEngine{Confidence: 0.95, MinVaRSample: 60}

	returns := make([]float64, 30)
	for i := range returns {
		returns[i] = -0.01 + 0.0005*float64(i)
	}

	m := engine.historicalVaR(returns)
	if m.Status != sm.StatusLowConfidence {
		t.Errorf("30 returns under minimum 60: expected low_confidence, got %s", m.Status)
	}
	if !m.Usable() {
		t.Error("low-confidence VaR should still carry a usable value")
	}
}

func TestHistoricalVaRClampedAtZero(t *testing.T) {
	engine := &RiskEngine{Confidence: 0.95, MinVaRSample: 5}

	returns := make([]float64, 100)
	for i := range returns {
		returns[i] = 0.001 + 0.0001*float64(i) // every day up
	}

	m := engine.historicalVaR(returns)
	if m.Status != sm.StatusOK || m.Value != 0 {
		t.Errorf("all-positive returns: expected VaR 0 ok, got %.6f %s", m.Value, m.Status)
	}
}

// TestMaxDrawdownKnownSeries pins the peak-to-trough arithmetic and the
// reported dates on a handmade crash
func TestMaxDrawdownKnownSeries(t *testing.T) {
	end := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	bars := barsFromCloses([]float64{100, 120, 60, 90}, end)

	m, peak, trough := maxDrawdown(bars)
	if m.Status != sm.StatusOK {
		t.Fatalf("expected ok, got %s", m.Status)
	}
	if math.Abs(m.Value-(-0.5)) > 1e-12 {
		t.Errorf("drawdown: expected -0.5, got %.6f", m.Value)
	}
	if peak == nil || !peak.Equal(bars[1].Date) {
		t.Errorf("peak date: expected %v, got %v", bars[1].Date, peak)
	}
	if trough == nil || !trough.Equal(bars[2].Date) {
		t.Errorf("trough date: expected %v, got %v", bars[2].Date, trough)
	}
}

func TestMaxDrawdownNonDecreasingSeriesIsZero(t *testing.T) {
	end := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	bars := barsFromCloses([]float64{100, 100, 105, 110, 110, 120}, end)

	m, peak, trough := maxDrawdown(bars)
	if m.Status != sm.StatusOK || m.Value != 0 {
		t.Errorf("non-decreasing series: expected drawdown 0 ok, got %.6f %s", m.Value, m.Status)
	}
	ex.AssertNillability(t, "peak date", true, peak)
	ex.AssertNillability(t, "trough date", true, trough)
}

// TestMaxDrawdownWindowExcludesOldCrashes makes sure Compute only looks at
// the configured trailing window
func TestMaxDrawdownWindowExcludesOldCrashes(t *testing.T) {
	engine := &RiskEngine{Confidence: 0.95, MinVaRSample: 2, DrawdownBars: 3}
	end := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	// the crash from 100 to 10 sits outside the 3-bar window
	bars := barsFromCloses([]float64{100, 10, 11, 12, 13}, end)

	out := engine.Compute(bars)
	if out.MaxDrawdown.Status != sm.StatusOK || out.MaxDrawdown.Value != 0 {
		t.Errorf("windowed drawdown: expected 0 ok, got %.6f %s",
			out.MaxDrawdown.Value, out.MaxDrawdown.Status)
	}
}

func TestLogReturnsSkipNonPositivePrices(t *testing.T) {
	returns := logReturns([]float64{100, 0, 100, 110})
	if len(returns) != 1 {
		t.Fatalf("expected 1 usable return, got %d", len(returns))
	}
	if math.Abs(returns[0]-math.Log(1.1)) > 1e-12 {
		t.Errorf("surviving return: expected %.10f, got %.10f", math.Log(1.1), returns[0])
	}
}
