package models

import (
	"time"

	"github.com/guregu/null/v6"
)

const (
	ResolutionMatched = "matched"
	ResolutionFailed  = "failed"
)

// ResolutionAttempt is one row of the append-only ticker resolution audit
// log. Rows are never updated; the latest row for a name is its current
// resolution state.
type ResolutionAttempt struct {
	Id             int64       `db:"id"`
	Name           string      `db:"name"`
	Query          string      `db:"query"`
	ResultTicker   null.String `db:"result_ticker"`
	ResultName     null.String `db:"result_name"`
	ResultExchange null.String `db:"result_exchange"`
	Score          null.Float  `db:"score"`
	Status         string      `db:"status"`
	CreatedAt      time.Time   `db:"created_at"`
}
