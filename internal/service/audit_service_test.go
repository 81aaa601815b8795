package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campuskit/moodle-gateway/internal/dto"
	"github.com/campuskit/moodle-gateway/internal/models"
	"github.com/campuskit/moodle-gateway/internal/repository"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.AccessRestriction{},
		&models.Payment{},
		&models.ActionLog{},
		&models.SubmissionUpload{},
	))
	return db
}

func TestAuditServiceRecordAndList(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewAuditService(repository.NewActionLogRepository(db), nil, time.Minute, zerolog.Nop())

	user := models.User{Email: "student@example.com", PasswordHash: "x", FirstName: "Ada", LastName: "Lovelace", Role: models.RoleStudent, IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	courseID := uint(3)
	require.NoError(t, svc.Record(context.Background(), AuditEntry{
		UserID:     user.ID,
		ActionType: models.ActionCourseView,
		Metadata:   map[string]interface{}{"endpoint": "/api/courses/3", "courseName": "Algebra"},
		CourseID:   &courseID,
		IPAddress:  "10.0.0.1",
	}))

	result, err := svc.List(context.Background(), dto.LogListRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, result.Logs, 1)
	require.Equal(t, models.ActionCourseView, result.Logs[0].ActionType)
	require.Equal(t, "Algebra", result.Logs[0].CourseName)
	require.Equal(t, "Ada Lovelace", result.Logs[0].UserName)
	require.Equal(t, int64(1), result.Pagination.TotalItems)
}

func TestAuditServiceRecordRejectsUnknownType(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewAuditService(repository.NewActionLogRepository(db), nil, time.Minute, zerolog.Nop())

	err := svc.Record(context.Background(), AuditEntry{UserID: 1, ActionType: "SOMETHING_ELSE"})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.ActionLog{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestAuditServiceExportCSV(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewAuditService(repository.NewActionLogRepository(db), nil, time.Minute, zerolog.Nop())

	user := models.User{Email: "student@example.com", PasswordHash: "x", FirstName: "Ada", LastName: "Lovelace", Role: models.RoleStudent, IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, svc.Record(context.Background(), AuditEntry{UserID: user.ID, ActionType: models.ActionLogin}))
	require.NoError(t, svc.Record(context.Background(), AuditEntry{UserID: user.ID, ActionType: models.ActionQuizView}))

	payload, err := svc.ExportCSV(context.Background(), dto.LogListRequest{})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, exportHeader, records[0])

	filtered, err := svc.ExportCSV(context.Background(), dto.LogListRequest{ActionType: models.ActionLogin})
	require.NoError(t, err)
	records, err = csv.NewReader(bytes.NewReader(filtered)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, models.ActionLogin, records[1][4])
}

func TestAuditServiceStatsUsesCache(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db := setupServiceDB(t)
	svc := NewAuditService(repository.NewActionLogRepository(db), redisClient, time.Minute, zerolog.Nop())

	require.NoError(t, svc.Record(context.Background(), AuditEntry{UserID: 1, ActionType: models.ActionLogin}))

	first, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, first.ActionTypeCounts, 1)

	// New rows must not show up until the cached entry expires.
	require.NoError(t, svc.Record(context.Background(), AuditEntry{UserID: 1, ActionType: models.ActionQuizView}))

	second, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, second.ActionTypeCounts, 1)

	mini.FastForward(2 * time.Minute)

	third, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, third.ActionTypeCounts, 2)
}
