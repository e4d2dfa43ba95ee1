package models

import "time"

// BundleSchemaVersion is bumped whenever the serialized bundle shape changes,
// so stale cache payloads are never deserialized into a newer shape.
const BundleSchemaVersion = 2

const (
	QualityOK       = "ok"
	QualityDegraded = "degraded"
)

// MetricsBundle is the composed output of the three engines for one asset on
// one as-of date. Immutable once cached; a later as-of date gets a new bundle.
type MetricsBundle struct {
	SchemaVersion int       `json:"schema_version"`
	Symbol        string    `json:"symbol"`
	DisplayName   string    `json:"display_name"`
	AsOf          time.Time `json:"as_of"`
	ComputedAt    time.Time `json:"computed_at"`

	// Window of input data actually consumed.
	BarsUsed    int `json:"bars_used"`
	PeriodsUsed int `json:"periods_used"`

	// QualityOK unless any engine reported a degraded or insufficient signal.
	DataQuality string `json:"data_quality"`

	Indicators   IndicatorMetrics   `json:"indicators"`
	Risk         RiskMetrics        `json:"risk"`
	Fundamentals FundamentalMetrics `json:"fundamentals"`
}

type IndicatorMetrics struct {
	RSI14      Metric `json:"rsi_14"`
	MA200      Metric `json:"ma_200"`
	MA300      Metric `json:"ma_300"`
	MA200Slope Metric `json:"ma_200_slope"`
	MA300Slope Metric `json:"ma_300_slope"`

	// Discontinuous is set when the series has a calendar gap beyond the
	// configured tolerance; metrics are still produced but flagged.
	Discontinuous bool `json:"discontinuous"`
}

type RiskMetrics struct {
	AnnualizedVolatility Metric     `json:"annualized_volatility"`
	MaxDrawdown          Metric     `json:"max_drawdown"`
	DrawdownPeakDate     *time.Time `json:"drawdown_peak_date,omitempty"`
	DrawdownTroughDate   *time.Time `json:"drawdown_trough_date,omitempty"`
	ValueAtRisk          Metric     `json:"value_at_risk"`
	VaRConfidence        float64    `json:"var_confidence"`
	ReturnCount          int        `json:"return_count"`
}

// TrendPack summarizes one quarterly series: latest value, regression slope
// per quarter, and the share of recent quarters that improved.
type TrendPack struct {
	Available      bool    `json:"available"`
	Latest         float64 `json:"latest,omitempty"`
	Slope          float64 `json:"slope,omitempty"`
	ImprovingShare float64 `json:"improving_share,omitempty"`
	Periods        int     `json:"periods,omitempty"`
}

type FundamentalMetrics struct {
	RevenueTrend         TrendPack `json:"revenue_trend"`
	OperatingMarginTrend TrendPack `json:"operating_margin_trend"`
	FreeCashFlowTrend    TrendPack `json:"free_cash_flow_trend"`
	DebtToEquityTrend    TrendPack `json:"debt_to_equity_trend"`

	RevenueQoQ         Metric `json:"revenue_qoq"`
	RevenueYoY         Metric `json:"revenue_yoy"`
	OperatingIncomeYoY Metric `json:"operating_income_yoy"`

	PriceToEarnings Metric `json:"price_to_earnings"`
	PEGRatio        Metric `json:"peg_ratio"`
	ReturnOnEquity  Metric `json:"return_on_equity"`
	DebtToEquity    Metric `json:"debt_to_equity"`
}
