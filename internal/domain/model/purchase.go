package model

import (
	"time"

	"github.com/elkast/blog/internal/domain/enums"
)

// Purchase is one buyer's attempt to obtain a priced book. Amount and
// currency are copied from the book at creation time and never change
// afterwards. Token, expiry and limit are populated only on the
// pending -> paid transition.
type Purchase struct {
	ID            int64                `json:"id"`
	BookID        int64                `json:"book_id"`
	CustomerName  string               `json:"customer_name"`
	CustomerEmail string               `json:"customer_email"`
	CustomerPhone string               `json:"customer_phone,omitempty"`
	Amount        int64                `json:"amount"`
	Currency      string               `json:"currency"`
	PaymentMethod string               `json:"payment_method,omitempty"`
	PaymentRef    *string              `json:"payment_ref,omitempty"`
	Status        enums.PurchaseStatus `json:"status"`
	DownloadToken *string              `json:"-"`
	DownloadsUsed int                  `json:"downloads_used"`
	DownloadLimit int                  `json:"download_limit"`
	ExpiresAt     *time.Time           `json:"expires_at,omitempty"`
	Notes         string               `json:"notes,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`

	// Joined book columns, populated by token/id lookups.
	BookTitle   string `json:"book_title,omitempty"`
	BookSlug    string `json:"book_slug,omitempty"`
	BookFileKey string `json:"-"`
}
