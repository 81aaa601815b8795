package dto

import "github.com/campuskit/moodle-gateway/internal/models"

// LoginRequest captures login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest captures registration payloads.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Role      string `json:"role" validate:"omitempty,oneof=STUDENT TEACHER ADMIN SUPERADMIN"`
}

// UserSummary serializes the account fields exposed to clients.
type UserSummary struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Role         string `json:"role"`
	MoodleUserID *uint  `json:"moodleUserId,omitempty"`
	IsRestricted bool   `json:"isRestricted"`
}

// LoginResponse carries the issued token and the account summary.
type LoginResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

// NewUserSummary converts an account model into its client summary.
func NewUserSummary(user models.User) UserSummary {
	return UserSummary{
		ID:           user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Role:         user.Role,
		MoodleUserID: user.MoodleUserID,
		IsRestricted: user.RequiresPayment(),
	}
}
