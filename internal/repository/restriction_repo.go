package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campuskit/moodle-gateway/internal/models"
)

// RestrictionRepository persists per-user access restrictions.
type RestrictionRepository interface {
	GetByUserID(ctx context.Context, userID uint) (models.AccessRestriction, error)
	Create(ctx context.Context, restriction *models.AccessRestriction) error
	Save(ctx context.Context, restriction *models.AccessRestriction) error
}

type restrictionRepository struct {
	db *gorm.DB
}

// NewRestrictionRepository constructs the restriction repository.
func NewRestrictionRepository(db *gorm.DB) RestrictionRepository {
	return &restrictionRepository{db: db}
}

func (r *restrictionRepository) GetByUserID(ctx context.Context, userID uint) (models.AccessRestriction, error) {
	var restriction models.AccessRestriction
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&restriction).Error
	if err != nil {
		return models.AccessRestriction{}, err
	}

	return restriction, nil
}

func (r *restrictionRepository) Create(ctx context.Context, restriction *models.AccessRestriction) error {
	return r.db.WithContext(ctx).Create(restriction).Error
}

func (r *restrictionRepository) Save(ctx context.Context, restriction *models.AccessRestriction) error {
	return r.db.WithContext(ctx).Save(restriction).Error
}
