package models

import "time"

// AccessRestriction blocks a student's feature access pending payment.
// At most one row exists per user; absence is equivalent to "not restricted".
type AccessRestriction struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	IsRestricted bool       `gorm:"not null;default:false" json:"is_restricted"`
	Reason       string     `gorm:"type:text" json:"reason,omitempty"`
	RestrictedAt *time.Time `json:"restricted_at,omitempty"`
	RestrictedBy *uint      `json:"restricted_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
