package dto

import (
	"time"

	"github.com/campuskit/moodle-gateway/internal/models"
	"github.com/campuskit/moodle-gateway/internal/repository"
)

// LogListRequest defines filters for the audit trail endpoints. Start and
// End bound the creation timestamp inclusively.
type LogListRequest struct {
	Page       int
	PageSize   int
	UserID     *uint
	CourseID   *uint
	ActionType string
	Start      *time.Time
	End        *time.Time
}

// LogEntryResponse serializes one audit entry with its denormalized user.
type LogEntryResponse struct {
	ID         uint                   `json:"id"`
	UserID     uint                   `json:"userId"`
	UserName   string                 `json:"userName,omitempty"`
	UserEmail  string                 `json:"userEmail,omitempty"`
	ActionType string                 `json:"actionType"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CourseID   *uint                  `json:"courseId,omitempty"`
	CourseName string                 `json:"courseName,omitempty"`
	IPAddress  string                 `json:"ipAddress,omitempty"`
	UserAgent  string                 `json:"userAgent,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// LogListResponse wraps a paginated audit trail listing.
type LogListResponse struct {
	Logs       []LogEntryResponse `json:"logs"`
	Pagination PaginationMeta     `json:"pagination"`
}

// LogStatsResponse aggregates audit statistics.
type LogStatsResponse struct {
	ActionTypeCounts []repository.ActionTypeCount `json:"actionTypeCounts"`
	DailyActivity    []repository.DailyActivity   `json:"dailyActivity"`
}

// NewLogEntryResponse converts an audit entry into its DTO.
func NewLogEntryResponse(entry models.ActionLog) LogEntryResponse {
	response := LogEntryResponse{
		ID:         entry.ID,
		UserID:     entry.UserID,
		ActionType: entry.ActionType,
		Metadata:   entry.Metadata,
		CourseID:   entry.CourseID,
		CourseName: entry.CourseName,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
		CreatedAt:  entry.CreatedAt,
	}

	if entry.User != nil {
		response.UserName = entry.User.FullName()
		response.UserEmail = entry.User.Email
	}

	return response
}
