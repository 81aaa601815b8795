package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campuskit/moodle-gateway/internal/dto"
	"github.com/campuskit/moodle-gateway/internal/models"
	"github.com/campuskit/moodle-gateway/internal/repository"
)

const statsCacheKey = "logs:stats:v1"

// AuditEntry describes one recorded user action.
type AuditEntry struct {
	UserID     uint
	ActionType string
	Metadata   map[string]interface{}
	CourseID   *uint
	IPAddress  string
	UserAgent  string
}

// AuditRecorder appends entries to the audit trail. The middleware depends
// on this narrow surface rather than the full service.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// AuditService exposes the audit trail operations.
type AuditService interface {
	AuditRecorder
	List(ctx context.Context, req dto.LogListRequest) (dto.LogListResponse, error)
	ExportCSV(ctx context.Context, req dto.LogListRequest) ([]byte, error)
	Stats(ctx context.Context) (dto.LogStatsResponse, error)
}

type auditService struct {
	logs   repository.ActionLogRepository
	cache  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewAuditService constructs the audit service.
func NewAuditService(logs repository.ActionLogRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AuditService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &auditService{
		logs:   logs,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "audit_service").Logger(),
	}
}

func (s *auditService) Record(ctx context.Context, entry AuditEntry) error {
	if !models.ValidActionType(entry.ActionType) {
		return fmt.Errorf("unknown action type %q", entry.ActionType)
	}

	courseName := ""
	if entry.Metadata != nil {
		if name, ok := entry.Metadata["courseName"].(string); ok {
			courseName = name
		}
	}

	log := models.ActionLog{
		UserID:     entry.UserID,
		ActionType: entry.ActionType,
		Metadata:   entry.Metadata,
		CourseID:   entry.CourseID,
		CourseName: courseName,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
	}
	return s.logs.Create(ctx, &log)
}

func (s *auditService) List(ctx context.Context, req dto.LogListRequest) (dto.LogListResponse, error) {
	page := maxInt(req.Page, 1)
	pageSize := clampPageSize(req.PageSize)

	filter := repository.ActionLogFilter{
		Page:       page,
		PageSize:   pageSize,
		UserID:     req.UserID,
		CourseID:   req.CourseID,
		ActionType: req.ActionType,
		Start:      req.Start,
		End:        req.End,
	}

	entries, total, err := s.logs.List(ctx, filter)
	if err != nil {
		return dto.LogListResponse{}, fmt.Errorf("failed to list action logs: %w", err)
	}

	responses := make([]dto.LogEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewLogEntryResponse(entry))
	}

	return dto.LogListResponse{
		Logs: responses,
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: totalPages(total, pageSize),
		},
	}, nil
}

var exportHeader = []string{
	"Log ID", "User ID", "User Name", "User Email", "Action Type",
	"Course ID", "Course Name", "IP Address", "User Agent", "Metadata", "Created At",
}

func (s *auditService) ExportCSV(ctx context.Context, req dto.LogListRequest) ([]byte, error) {
	filter := repository.ActionLogFilter{
		UserID:     req.UserID,
		CourseID:   req.CourseID,
		ActionType: req.ActionType,
		Start:      req.Start,
		End:        req.End,
	}

	entries, err := s.logs.ListAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to export action logs: %w", err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(exportHeader); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		userName, userEmail := "", ""
		if entry.User != nil {
			userName = entry.User.FullName()
			userEmail = entry.User.Email
		}

		courseID := ""
		if entry.CourseID != nil {
			courseID = strconv.FormatUint(uint64(*entry.CourseID), 10)
		}

		metadata := ""
		if len(entry.Metadata) > 0 {
			if encoded, err := json.Marshal(entry.Metadata); err == nil {
				metadata = string(encoded)
			}
		}

		record := []string{
			strconv.FormatUint(uint64(entry.ID), 10),
			strconv.FormatUint(uint64(entry.UserID), 10),
			userName,
			userEmail,
			entry.ActionType,
			courseID,
			entry.CourseName,
			entry.IPAddress,
			entry.UserAgent,
			metadata,
			entry.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (s *auditService) Stats(ctx context.Context) (dto.LogStatsResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, statsCacheKey).Result(); err == nil && cached != "" {
			var response dto.LogStatsResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				return response, nil
			}
		}
	}

	counts, err := s.logs.CountByActionType(ctx, repository.ActionLogFilter{})
	if err != nil {
		return dto.LogStatsResponse{}, fmt.Errorf("failed to aggregate action types: %w", err)
	}

	daily, err := s.logs.DailyActivity(ctx, 30)
	if err != nil {
		return dto.LogStatsResponse{}, fmt.Errorf("failed to aggregate daily activity: %w", err)
	}

	response := dto.LogStatsResponse{
		ActionTypeCounts: counts,
		DailyActivity:    daily,
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, encoded, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache log stats")
			}
		}
	}

	return response, nil
}
