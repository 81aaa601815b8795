package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campuskit/moodle-gateway/internal/models"
)

func TestActionLogRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActionLogRepository(db)

	user := models.User{Email: "student@example.com", PasswordHash: "x", FirstName: "Ada", LastName: "Lovelace", Role: models.RoleStudent, IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	courseID := uint(7)
	require.NoError(t, repo.Create(context.Background(), &models.ActionLog{UserID: user.ID, ActionType: models.ActionLogin}))
	require.NoError(t, repo.Create(context.Background(), &models.ActionLog{UserID: user.ID, ActionType: models.ActionCourseView, CourseID: &courseID}))
	require.NoError(t, repo.Create(context.Background(), &models.ActionLog{UserID: 99, ActionType: models.ActionCourseView}))

	logs, total, err := repo.List(context.Background(), ActionLogFilter{UserID: &user.ID, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, logs, 2)
	require.NotNil(t, logs[0].User)
	require.Equal(t, "student@example.com", logs[0].User.Email)

	logs, total, err = repo.List(context.Background(), ActionLogFilter{ActionType: models.ActionCourseView, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)

	logs, total, err = repo.List(context.Background(), ActionLogFilter{CourseID: &courseID, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, models.ActionCourseView, logs[0].ActionType)
}

func TestActionLogRepositoryDateRangeInclusive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActionLogRepository(db)

	now := time.Now().UTC()
	old := models.ActionLog{UserID: 1, ActionType: models.ActionLogin, CreatedAt: now.Add(-72 * time.Hour)}
	recent := models.ActionLog{UserID: 1, ActionType: models.ActionLogin, CreatedAt: now}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&recent).Error)

	start := now.Add(-24 * time.Hour)
	logs, total, err := repo.List(context.Background(), ActionLogFilter{Start: &start, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)

	end := now.Add(-48 * time.Hour)
	logs, total, err = repo.List(context.Background(), ActionLogFilter{End: &end, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.WithinDuration(t, old.CreatedAt, logs[0].CreatedAt, time.Second)

	exact := recent.CreatedAt
	logs, total, err = repo.List(context.Background(), ActionLogFilter{Start: &exact, End: &exact, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total, "bounds include entries at the exact timestamp")
}

func TestActionLogRepositoryAggregates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActionLogRepository(db)

	require.NoError(t, db.Create(&models.ActionLog{UserID: 1, ActionType: models.ActionLogin}).Error)
	require.NoError(t, db.Create(&models.ActionLog{UserID: 1, ActionType: models.ActionLogin}).Error)
	require.NoError(t, db.Create(&models.ActionLog{UserID: 1, ActionType: models.ActionQuizView}).Error)

	counts, err := repo.CountByActionType(context.Background(), ActionLogFilter{})
	require.NoError(t, err)

	byType := map[string]int64{}
	for _, count := range counts {
		byType[count.ActionType] = count.Count
	}
	require.Equal(t, int64(2), byType[models.ActionLogin])
	require.Equal(t, int64(1), byType[models.ActionQuizView])

	daily, err := repo.DailyActivity(context.Background(), 30)
	require.NoError(t, err)
	require.NotEmpty(t, daily)
	require.Equal(t, int64(3), daily[0].Count)
}
