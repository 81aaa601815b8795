package dto

import "github.com/campuskit/moodle-gateway/internal/lms"

// GradeSubmissionRequest captures a teacher grading payload.
type GradeSubmissionRequest struct {
	UserID   uint    `json:"userId" validate:"required"`
	Grade    float64 `json:"grade" validate:"gte=0"`
	Feedback string  `json:"feedback" validate:"omitempty,max=5000"`
}

// CreateDiscussionRequest captures a new discussion thread payload.
type CreateDiscussionRequest struct {
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
	GroupID int    `json:"groupId"`
}

// PostRequest captures a forum post payload (reply or edit).
type PostRequest struct {
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// LockDiscussionRequest toggles a discussion lock. The owning forum id is
// required by the remote call.
type LockDiscussionRequest struct {
	ForumID uint  `json:"forumId" validate:"required"`
	Lock    *bool `json:"lock" validate:"required"`
}

// PinDiscussionRequest toggles a discussion pin.
type PinDiscussionRequest struct {
	Pin *bool `json:"pin" validate:"required"`
}

// StartAttemptRequest configures a new quiz attempt.
type StartAttemptRequest struct {
	ForceNew bool `json:"forceNew"`
}

// ProcessAttemptRequest submits quiz page answers.
type ProcessAttemptRequest struct {
	Data   []lms.AttemptAnswer `json:"data" validate:"required,dive"`
	Finish bool                `json:"finish"`
}
