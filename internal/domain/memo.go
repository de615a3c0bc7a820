package domain

import "time"

// Memo is the persisted note. Postgres is the source of truth; the cache
// only ever holds disposable copies of it.
type Memo struct {
	ID      int64
	Content string

	CreatedAt time.Time
	UpdatedAt time.Time
}
