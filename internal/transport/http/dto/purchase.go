package dto

import "time"

type PurchaseBeginRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type PurchaseBeginResponse struct {
	PurchaseID int64  `json:"purchase_id"`
	BookSlug   string `json:"book_slug"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	Status     string `json:"status"`
}

// PayRequest drives the simulated payment endpoint. Action is
// "confirm" or "decline"; an empty action confirms.
type PayRequest struct {
	Action     string `json:"action,omitempty"`
	PaymentRef string `json:"payment_ref,omitempty"`
}

type PayResponse struct {
	PurchaseID    int64      `json:"purchase_id"`
	Status        string     `json:"status"`
	DownloadToken string     `json:"download_token,omitempty"`
	PaymentRef    string     `json:"payment_ref,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Idempotent    bool       `json:"idempotent"`
}

type PurchaseStatusRequest struct {
	Status string `json:"status"`
}
