package models

import "time"

// SubmissionUpload records a file attached to an assignment submission.
// The file itself lives on disk; only metadata is persisted.
type SubmissionUpload struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	AssignmentID uint      `gorm:"index;not null" json:"assignment_id"`
	FileName     string    `gorm:"size:255;not null" json:"file_name"`
	Path         string    `gorm:"size:512;not null" json:"path"`
	MimeType     string    `gorm:"size:128" json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	Checksum     string    `gorm:"size:64" json:"checksum"`
	CreatedAt    time.Time `json:"created_at"`
}
