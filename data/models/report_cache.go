package models

import "time"

// CachedBundle wraps a serialized metrics bundle in the report_cache table.
// Entries are immutable once written; a newer bundle for a later as-of date
// supersedes rather than edits. Expiry is purely time based.
type CachedBundle struct {
	Id        int64     `db:"id"`
	Symbol    string    `db:"symbol"`
	AsOfDate  time.Time `db:"as_of_date"`
	Payload   []byte    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
}
