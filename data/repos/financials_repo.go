package repos

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	m "github.com/Dreamtreeme/asset-guardian/data/models"
	q "github.com/Dreamtreeme/asset-guardian/data/queries"
)

// GetFinancialHistory returns all three quarterly statement series for an
// asset, each ordered ascending by period end. Sparse series are expected;
// the engines tolerate gaps between quarters.
func (pg *Postgres) GetFinancialHistory(ctx context.Context, assetId int32) (*m.FinancialHistory, error) {
	args := pgx.NamedArgs{"asset_id": assetId}

	income, err := Query[m.IncomeStatement](ctx, pg, q.Get(q.QueryHelper.Select.FinancialsIncome), args)
	if err != nil {
		return nil, fmt.Errorf("unable to query income statements for asset %d: %w", assetId, err)
	}

	cashflow, err := Query[m.CashFlowStatement](ctx, pg, q.Get(q.QueryHelper.Select.FinancialsCashFlow), args)
	if err != nil {
		return nil, fmt.Errorf("unable to query cash flow statements for asset %d: %w", assetId, err)
	}

	balance, err := Query[m.BalanceSheet](ctx, pg, q.Get(q.QueryHelper.Select.FinancialsBalance), args)
	if err != nil {
		return nil, fmt.Errorf("unable to query balance sheets for asset %d: %w", assetId, err)
	}

	return &m.FinancialHistory{
		Income:   income,
		CashFlow: cashflow,
		Balance:  balance,
	}, nil
}

func (pg *Postgres) UpsertIncomeStatements(ctx context.Context, rows []*m.IncomeStatement) error {
	sql := q.Get(q.QueryHelper.Insert.FinancialsIncome)
	for _, row := range rows {
		args := pgx.NamedArgs{
			"asset_id":         row.AssetId,
			"period_end":       row.PeriodEnd,
			"revenue":          row.Revenue,
			"operating_income": row.OperatingIncome,
			"net_income":       row.NetIncome,
			"currency":         row.Currency,
			"source":           row.Source,
		}
		if _, err := pg.db.Exec(ctx, sql, args); err != nil {
			return fmt.Errorf("error upserting income statement for asset %d: %w", row.AssetId, err)
		}
	}
	return nil
}

func (pg *Postgres) UpsertCashFlowStatements(ctx context.Context, rows []*m.CashFlowStatement) error {
	sql := q.Get(q.QueryHelper.Insert.FinancialsCashFlow)
	for _, row := range rows {
		args := pgx.NamedArgs{
			"asset_id":     row.AssetId,
			"period_end":   row.PeriodEnd,
			"operating_cf": row.OperatingCF,
			"capex":        row.Capex,
			"currency":     row.Currency,
			"source":       row.Source,
		}
		if _, err := pg.db.Exec(ctx, sql, args); err != nil {
			return fmt.Errorf("error upserting cash flow statement for asset %d: %w", row.AssetId, err)
		}
	}
	return nil
}

func (pg *Postgres) UpsertBalanceSheets(ctx context.Context, rows []*m.BalanceSheet) error {
	sql := q.Get(q.QueryHelper.Insert.FinancialsBalance)
	for _, row := range rows {
		args := pgx.NamedArgs{
			"asset_id":     row.AssetId,
			"period_end":   row.PeriodEnd,
			"total_debt":   row.TotalDebt,
			"total_equity": row.TotalEquity,
			"currency":     row.Currency,
			"source":       row.Source,
		}
		if _, err := pg.db.Exec(ctx, sql, args); err != nil {
			return fmt.Errorf("error upserting balance sheet for asset %d: %w", row.AssetId, err)
		}
	}
	return nil
}
