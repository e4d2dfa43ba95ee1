package queries

import (
	"embed"
	"fmt"
)

//go:embed delete/*.sql insert/*.sql select/*.sql update/*.sql
var Files embed.FS

type DeleteQueries struct {
	ExpiredReportCache string
}

type InsertQueries struct {
	Asset              string
	DailyPrice         string
	FinancialsIncome   string
	FinancialsCashFlow string
	FinancialsBalance  string
	ReportCache        string
	ResolutionAttempt  string
}

type SelectQueries struct {
	AssetByName             string
	AssetByTicker           string
	DailyPrices             string
	FinancialsIncome        string
	FinancialsCashFlow      string
	FinancialsBalance       string
	RecentResolutionFailure string
	ReportCacheEntry        string
}

type UpdateQueries struct {
	AttachTicker string
}

type QueryHelperStruct struct {
	Delete DeleteQueries
	Insert InsertQueries
	Select SelectQueries
	Update UpdateQueries
}

var QueryHelper = QueryHelperStruct{
	Delete: DeleteQueries{
		ExpiredReportCache: "delete/expired_report_cache.sql",
	},
	Insert: InsertQueries{
		Asset:              "insert/asset.sql",
		DailyPrice:         "insert/daily_price.sql",
		FinancialsIncome:   "insert/financials_income.sql",
		FinancialsCashFlow: "insert/financials_cashflow.sql",
		FinancialsBalance:  "insert/financials_balance.sql",
		ReportCache:        "insert/report_cache.sql",
		ResolutionAttempt:  "insert/resolution_attempt.sql",
	},
	Select: SelectQueries{
		AssetByName:             "select/asset_by_name.sql",
		AssetByTicker:           "select/asset_by_ticker.sql",
		DailyPrices:             "select/daily_prices.sql",
		FinancialsIncome:        "select/financials_income.sql",
		FinancialsCashFlow:      "select/financials_cashflow.sql",
		FinancialsBalance:       "select/financials_balance.sql",
		RecentResolutionFailure: "select/recent_resolution_failure.sql",
		ReportCacheEntry:        "select/report_cache_entry.sql",
	},
	Update: UpdateQueries{
		AttachTicker: "update/attach_ticker.sql",
	},
}

func Get(path string) string {
	content, err := Files.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("error reading query file: %w", err))
	}

	return string(content)
}
