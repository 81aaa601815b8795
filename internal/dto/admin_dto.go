package dto

import (
	"time"

	"github.com/campuskit/moodle-gateway/internal/models"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"limit"`
	TotalItems int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// AdminUserListRequest defines filters for listing accounts.
type AdminUserListRequest struct {
	Page     int
	PageSize int
	Role     string
	Search   string
}

// AdminUserResponse serializes account data for admin endpoints.
type AdminUserResponse struct {
	ID           uint      `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	IsRestricted bool      `json:"isRestricted"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AdminUserListResponse wraps a paginated account listing.
type AdminUserListResponse struct {
	Users      []AdminUserResponse `json:"users"`
	Pagination PaginationMeta      `json:"pagination"`
}

// AdminUserUpdateRequest captures partial account updates.
type AdminUserUpdateRequest struct {
	Role     *string `json:"role" validate:"omitempty,oneof=STUDENT TEACHER ADMIN SUPERADMIN"`
	IsActive *bool   `json:"isActive"`
}

// NewAdminUserResponse converts an account model into its admin DTO.
func NewAdminUserResponse(user models.User) AdminUserResponse {
	return AdminUserResponse{
		ID:           user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Role:         user.Role,
		IsActive:     user.IsActive,
		IsRestricted: user.RequiresPayment(),
		CreatedAt:    user.CreatedAt,
	}
}

// ToggleRestrictionResponse reports the restriction state after a toggle.
type ToggleRestrictionResponse struct {
	UserID       uint `json:"userId"`
	IsRestricted bool `json:"isRestricted"`
}

// MarkPaidRequest captures a confirmed payment event.
type MarkPaidRequest struct {
	Amount         float64 `json:"amount" validate:"required,gte=0"`
	TransactionRef string  `json:"transactionRef" validate:"required"`
	PaymentMethod  string  `json:"paymentMethod" validate:"omitempty,max=64"`
	Notes          string  `json:"notes" validate:"omitempty,max=2000"`
}

// PaymentResponse serializes one ledger entry.
type PaymentResponse struct {
	ID             uint      `json:"id"`
	UserID         uint      `json:"userId"`
	Amount         float64   `json:"amount"`
	Status         string    `json:"status"`
	TransactionRef string    `json:"transactionRef,omitempty"`
	PaymentMethod  string    `json:"paymentMethod,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// PaymentListRequest defines filters for listing payments.
type PaymentListRequest struct {
	Page     int
	PageSize int
	Status   string
}

// PaymentListResponse wraps a paginated payment listing.
type PaymentListResponse struct {
	Payments   []PaymentResponse `json:"payments"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewPaymentResponse converts a ledger entry into its DTO.
func NewPaymentResponse(payment models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             payment.ID,
		UserID:         payment.UserID,
		Amount:         payment.Amount,
		Status:         payment.Status,
		TransactionRef: payment.TransactionRef,
		PaymentMethod:  payment.PaymentMethod,
		Notes:          payment.Notes,
		CreatedAt:      payment.CreatedAt,
	}
}
