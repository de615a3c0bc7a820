package dto

import "time"

// CreateMemoRequest is the JSON body for POST /memos.
type CreateMemoRequest struct {
	Content string `json:"content" binding:"required"`
}

// UpdateMemoRequest is the JSON body for PUT /memos/{id}.
type UpdateMemoRequest struct {
	Content string `json:"content" binding:"required"`
}

// MemoResponse is the canonical memo record returned by the API.
type MemoResponse struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
