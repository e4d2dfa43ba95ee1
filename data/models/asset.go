package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// Asset is the canonical record for a security. Rows are created from a bare
// display name; ticker, exchange and ISIN stay null until resolution attaches
// them.
type Asset struct {
	Id                int32       `db:"asset_id"`
	DisplayName       string      `db:"display_name"`
	Ticker            null.String `db:"ticker"`
	Exchange          null.String `db:"exchange"`
	Currency          string      `db:"currency"`
	Sector            null.String `db:"sector"`
	Industry          null.String `db:"industry"`
	ISIN              null.String `db:"isin"`
	SharesOutstanding null.Float  `db:"shares_outstanding"`
	UpdatedAt         time.Time   `db:"updated_at"`
}

// Resolved reports whether a ticker has been attached to the asset.
func (a *Asset) Resolved() bool {
	return a.Ticker.Valid && a.Ticker.String != ""
}
