package models

import "time"

// User roles recognised by the gateway.
const (
	RoleStudent    = "STUDENT"
	RoleTeacher    = "TEACHER"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPERADMIN"
)

// ValidRole reports whether the supplied role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User represents a local principal fronting a Moodle identity.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	FirstName    string `gorm:"size:128;not null" json:"first_name"`
	LastName     string `gorm:"size:128;not null" json:"last_name"`
	Role         string `gorm:"size:32;not null;default:STUDENT" json:"role"`
	MoodleUserID *uint  `json:"moodle_user_id,omitempty"`
	MoodleToken  string `gorm:"size:255" json:"-"`
	IsActive     bool   `gorm:"not null;default:true" json:"is_active"`

	AccessRestriction *AccessRestriction `gorm:"foreignKey:UserID" json:"access_restriction,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins the display name parts.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// RequiresPayment reports whether the payment gate blocks this user.
// Only students carry meaningful restriction records; a missing record
// reads as unrestricted.
func (u User) RequiresPayment() bool {
	return u.Role == RoleStudent && u.AccessRestriction != nil && u.AccessRestriction.IsRestricted
}
