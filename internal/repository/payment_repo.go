package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/campuskit/moodle-gateway/internal/models"
)

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	Page     int
	PageSize int
	Status   string
	UserID   *uint
}

// PaymentRepository persists the append-only payment ledger.
type PaymentRepository interface {
	// RecordPaid creates the payment row and clears any restriction for the
	// same user inside one transaction. A missing restriction row is a no-op.
	RecordPaid(ctx context.Context, payment *models.Payment) error
	List(ctx context.Context, filter PaymentFilter) ([]models.Payment, int64, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository constructs the payment repository.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) RecordPaid(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		return tx.Model(&models.AccessRestriction{}).
			Where("user_id = ?", payment.UserID).
			Updates(map[string]interface{}{
				"is_restricted": false,
				"reason":        "Payment received",
				"updated_at":    time.Now(),
			}).Error
	})
}

func (r *paymentRepository) List(ctx context.Context, filter PaymentFilter) ([]models.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Payment{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Limit(filter.PageSize).Offset(offset)
	}

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}

	return payments, nil
}
