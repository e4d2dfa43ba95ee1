package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// Quarterly statement rows. The three statements are parallel tables sharing
// the (asset_id, period_end) key shape; gaps between quarters are tolerated.

type IncomeStatement struct {
	AssetId         int32      `db:"asset_id"`
	PeriodEnd       time.Time  `db:"period_end"`
	Revenue         null.Float `db:"revenue"`
	OperatingIncome null.Float `db:"operating_income"`
	NetIncome       null.Float `db:"net_income"`
	Currency        string     `db:"currency"`
	Source          string     `db:"source"`
}

type CashFlowStatement struct {
	AssetId     int32      `db:"asset_id"`
	PeriodEnd   time.Time  `db:"period_end"`
	OperatingCF null.Float `db:"operating_cf"`
	Capex       null.Float `db:"capex"`
	Currency    string     `db:"currency"`
	Source      string     `db:"source"`
}

type BalanceSheet struct {
	AssetId     int32      `db:"asset_id"`
	PeriodEnd   time.Time  `db:"period_end"`
	TotalDebt   null.Float `db:"total_debt"`
	TotalEquity null.Float `db:"total_equity"`
	Currency    string     `db:"currency"`
	Source      string     `db:"source"`
}

// FinancialHistory bundles the three statement series for one asset, each
// ordered ascending by period end.
type FinancialHistory struct {
	Income   []*IncomeStatement
	CashFlow []*CashFlowStatement
	Balance  []*BalanceSheet
}
