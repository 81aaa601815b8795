package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campuskit/moodle-gateway/internal/models"
)

// UploadRepository persists submission upload metadata.
type UploadRepository interface {
	Create(ctx context.Context, upload *models.SubmissionUpload) error
	ListByUserAndAssignment(ctx context.Context, userID, assignmentID uint) ([]models.SubmissionUpload, error)
}

type uploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository constructs the upload repository.
func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, upload *models.SubmissionUpload) error {
	return r.db.WithContext(ctx).Create(upload).Error
}

func (r *uploadRepository) ListByUserAndAssignment(ctx context.Context, userID, assignmentID uint) ([]models.SubmissionUpload, error) {
	var uploads []models.SubmissionUpload
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND assignment_id = ?", userID, assignmentID).
		Order("created_at DESC").
		Find(&uploads).Error
	if err != nil {
		return nil, err
	}

	return uploads, nil
}
