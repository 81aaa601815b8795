package models

import "time"

// Payment statuses.
const (
	PaymentPending = "PENDING"
	PaymentSuccess = "SUCCESS"
	PaymentFailed  = "FAILED"
)

// ValidPaymentStatus reports whether the supplied status is known.
func ValidPaymentStatus(status string) bool {
	switch status {
	case PaymentPending, PaymentSuccess, PaymentFailed:
		return true
	}
	return false
}

// Payment is an append-only ledger entry recording one payment event.
type Payment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	Amount         float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status         string    `gorm:"size:16;not null;default:PENDING" json:"status"`
	TransactionRef string    `gorm:"size:128" json:"transaction_ref,omitempty"`
	PaymentMethod  string    `gorm:"size:64" json:"payment_method,omitempty"`
	Notes          string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
