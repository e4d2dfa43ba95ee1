package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// PriceBar is one daily OHLCV row. (asset_id, date) is the primary key; late
// corrections from the provider are applied as upserts on that key.
type PriceBar struct {
	AssetId       int32      `db:"asset_id"`
	Date          time.Time  `db:"date"`
	Open          null.Float `db:"open"`
	High          null.Float `db:"high"`
	Low           null.Float `db:"low"`
	Close         float64    `db:"close"`
	AdjustedClose null.Float `db:"adj_close"`
	Volume        null.Float `db:"volume"`
	Source        string     `db:"source"`
}

// EffectiveClose prefers the adjusted close when the provider supplied one.
func (b *PriceBar) EffectiveClose() float64 {
	if b.AdjustedClose.Valid {
		return b.AdjustedClose.Float64
	}
	return b.Close
}
