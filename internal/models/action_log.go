package models

import (
	"time"

	"gorm.io/datatypes"
)

// Action types classifying audited user actions.
const (
	ActionLogin          = "LOGIN"
	ActionLogout         = "LOGOUT"
	ActionCourseView     = "COURSE_VIEW"
	ActionCourseEnroll   = "COURSE_ENROLL"
	ActionAssignmentView = "ASSIGNMENT_VIEW"
	ActionAssignSubmit   = "ASSIGNMENT_SUBMIT"
	ActionQuizView       = "QUIZ_VIEW"
	ActionQuizAttempt    = "QUIZ_ATTEMPT"
	ActionQuizSubmit     = "QUIZ_SUBMIT"
	ActionDiscussionView = "DISCUSSION_VIEW"
	ActionDiscussionPost = "DISCUSSION_POST"
	ActionAttendanceMark = "ATTENDANCE_MARK"
	ActionGradeView      = "GRADE_VIEW"
)

// ActionTypes lists every known action type.
var ActionTypes = []string{
	ActionLogin,
	ActionLogout,
	ActionCourseView,
	ActionCourseEnroll,
	ActionAssignmentView,
	ActionAssignSubmit,
	ActionQuizView,
	ActionQuizAttempt,
	ActionQuizSubmit,
	ActionDiscussionView,
	ActionDiscussionPost,
	ActionAttendanceMark,
	ActionGradeView,
}

// ValidActionType reports whether the supplied action type is known.
func ValidActionType(action string) bool {
	for _, known := range ActionTypes {
		if action == known {
			return true
		}
	}
	return false
}

// ActionLog is an immutable audit record of one user action.
// Rows are ordered by creation timestamp; insertion id breaks ties.
type ActionLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	UserID     uint              `gorm:"index:idx_action_logs_user_created,priority:1;not null" json:"user_id"`
	ActionType string            `gorm:"size:32;index:idx_action_logs_action_created,priority:1;not null" json:"action_type"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	CourseID   *uint             `gorm:"index" json:"course_id,omitempty"`
	CourseName string            `gorm:"size:255" json:"course_name,omitempty"`
	IPAddress  string            `gorm:"size:64" json:"ip_address,omitempty"`
	UserAgent  string            `gorm:"size:512" json:"user_agent,omitempty"`
	CreatedAt  time.Time         `gorm:"index:idx_action_logs_user_created,priority:2;index:idx_action_logs_action_created,priority:2" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
