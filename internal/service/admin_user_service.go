package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/campuskit/moodle-gateway/internal/dto"
	"github.com/campuskit/moodle-gateway/internal/repository"
)

// AdminUserService exposes account administration operations.
type AdminUserService interface {
	List(ctx context.Context, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error)
	Update(ctx context.Context, userID uint, req dto.AdminUserUpdateRequest) (dto.AdminUserResponse, error)
}

type adminUserService struct {
	users    repository.UserRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewAdminUserService constructs the account administration service.
func NewAdminUserService(users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) AdminUserService {
	return &adminUserService{
		users:    users,
		validate: validate,
		logger:   logger.With().Str("component", "admin_user_service").Logger(),
	}
}

func (s *adminUserService) List(ctx context.Context, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error) {
	page := maxInt(req.Page, 1)
	pageSize := clampPageSize(req.PageSize)

	users, total, err := s.users.List(ctx, repository.UserFilter{
		Page:     page,
		PageSize: pageSize,
		Role:     req.Role,
		Search:   req.Search,
	})
	if err != nil {
		return dto.AdminUserListResponse{}, err
	}

	responses := make([]dto.AdminUserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.NewAdminUserResponse(user))
	}

	return dto.AdminUserListResponse{
		Users: responses,
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: totalPages(total, pageSize),
		},
	}, nil
}

func (s *adminUserService) Update(ctx context.Context, userID uint, req dto.AdminUserUpdateRequest) (dto.AdminUserResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.AdminUserResponse{}, err
	}

	updates := map[string]interface{}{}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.AdminUserResponse{}, ErrAccountNotFound
			}
			return dto.AdminUserResponse{}, err
		}
		return dto.NewAdminUserResponse(user), nil
	}

	user, err := s.users.Update(ctx, userID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AdminUserResponse{}, ErrAccountNotFound
		}
		return dto.AdminUserResponse{}, err
	}

	s.logger.Info().Uint("user_id", userID).Interface("updates", updates).Msg("account updated")

	return dto.NewAdminUserResponse(user), nil
}
