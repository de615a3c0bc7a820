package domain

import "time"

// Clip is the single cloud-clipboard slot. It lives only in Redis under a
// TTL; an expired or never-written slot is a normal state, not an error.
type Clip struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
