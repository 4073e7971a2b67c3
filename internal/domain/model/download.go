package model

import "time"

// DownloadEntry is one line of the download audit trail. PurchaseID is
// nil for free-book downloads.
type DownloadEntry struct {
	ID         int64     `json:"id"`
	BookID     int64     `json:"book_id"`
	PurchaseID *int64    `json:"purchase_id,omitempty"`
	IP         string    `json:"ip,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
