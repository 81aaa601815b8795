package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/campuskit/moodle-gateway/internal/models"
)

// ActionLogFilter narrows audit trail queries. Start and End bound the
// creation timestamp inclusively.
type ActionLogFilter struct {
	Page       int
	PageSize   int
	UserID     *uint
	CourseID   *uint
	ActionType string
	Start      *time.Time
	End        *time.Time
}

// ActionTypeCount aggregates log rows per action type.
type ActionTypeCount struct {
	ActionType string `json:"action_type"`
	Count      int64  `json:"count"`
}

// DailyActivity aggregates log rows per calendar day.
type DailyActivity struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ActionLogRepository persists the append-only audit trail.
type ActionLogRepository interface {
	Create(ctx context.Context, entry *models.ActionLog) error
	List(ctx context.Context, filter ActionLogFilter) ([]models.ActionLog, int64, error)
	ListAll(ctx context.Context, filter ActionLogFilter) ([]models.ActionLog, error)
	CountByActionType(ctx context.Context, filter ActionLogFilter) ([]ActionTypeCount, error)
	DailyActivity(ctx context.Context, days int) ([]DailyActivity, error)
}

type actionLogRepository struct {
	db *gorm.DB
}

// NewActionLogRepository constructs the action log repository.
func NewActionLogRepository(db *gorm.DB) ActionLogRepository {
	return &actionLogRepository{db: db}
}

func (r *actionLogRepository) Create(ctx context.Context, entry *models.ActionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *actionLogRepository) applyFilter(query *gorm.DB, filter ActionLogFilter) *gorm.DB {
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if filter.CourseID != nil {
		query = query.Where("course_id = ?", *filter.CourseID)
	}

	if filter.ActionType != "" {
		query = query.Where("action_type = ?", filter.ActionType)
	}

	if filter.Start != nil {
		query = query.Where("created_at >= ?", *filter.Start)
	}

	if filter.End != nil {
		query = query.Where("created_at <= ?", *filter.End)
	}

	return query
}

func (r *actionLogRepository) List(ctx context.Context, filter ActionLogFilter) ([]models.ActionLog, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ActionLog{}), filter)

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Preload("User").Order("created_at DESC, id DESC")

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Limit(filter.PageSize).Offset(offset)
	}

	var entries []models.ActionLog
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *actionLogRepository) ListAll(ctx context.Context, filter ActionLogFilter) ([]models.ActionLog, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ActionLog{}), filter)

	var entries []models.ActionLog
	err := query.Preload("User").Order("created_at DESC, id DESC").Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *actionLogRepository) CountByActionType(ctx context.Context, filter ActionLogFilter) ([]ActionTypeCount, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ActionLog{}), filter)

	var counts []ActionTypeCount
	err := query.
		Select("action_type, COUNT(*) AS count").
		Group("action_type").
		Order("count DESC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *actionLogRepository) DailyActivity(ctx context.Context, days int) ([]DailyActivity, error) {
	if days <= 0 {
		days = 30
	}

	since := time.Now().AddDate(0, 0, -days)

	var activity []DailyActivity
	err := r.db.WithContext(ctx).Model(&models.ActionLog{}).
		Select("DATE(created_at) AS date, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Order("date DESC").
		Scan(&activity).Error
	if err != nil {
		return nil, err
	}

	return activity, nil
}
