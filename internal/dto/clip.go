package dto

import "time"

// SaveClipRequest is the JSON body for POST /clip. Text is a pointer so
// "required" rejects a missing field but still admits an explicit empty
// string, which is how the slot is cleared.
type SaveClipRequest struct {
	Text *string `json:"text" binding:"required"`
}

// ClipResponse is the clip slot. Text is null when nothing is stored,
// which is distinct from an empty string that was saved on purpose.
type ClipResponse struct {
	Text      *string    `json:"text"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}
