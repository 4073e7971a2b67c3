package enums

// PurchaseStatus mirrors the purchases.status CHECK constraint.
type PurchaseStatus string

const (
	PurchaseStatusPending  PurchaseStatus = "pending"
	PurchaseStatusPaid     PurchaseStatus = "paid"
	PurchaseStatusFailed   PurchaseStatus = "failed"
	PurchaseStatusRefunded PurchaseStatus = "refunded"
)

func (s PurchaseStatus) Valid() bool {
	switch s {
	case PurchaseStatusPending, PurchaseStatusPaid, PurchaseStatusFailed, PurchaseStatusRefunded:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status can never transition to paid.
func (s PurchaseStatus) Terminal() bool {
	return s == PurchaseStatusFailed || s == PurchaseStatusRefunded
}
