package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/campuskit/moodle-gateway/internal/dto"
	"github.com/campuskit/moodle-gateway/internal/models"
	"github.com/campuskit/moodle-gateway/internal/repository"
)

// ErrInvalidCredentials covers unknown accounts, wrong passwords and
// deactivated accounts alike so the response never reveals which.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUserExists signals a registration against an email already in use.
var ErrUserExists = errors.New("user already exists")

// AuthService handles local authentication and account creation.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	Register(ctx context.Context, req dto.RegisterRequest) (dto.UserSummary, error)
}

type authService struct {
	users        repository.UserRepository
	restrictions repository.RestrictionRepository
	recorder     AuditRecorder
	validate     *validator.Validate
	secret       []byte
	expiry       time.Duration
	logger       zerolog.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(
	users repository.UserRepository,
	restrictions repository.RestrictionRepository,
	recorder AuditRecorder,
	validate *validator.Validate,
	secret string,
	expiry time.Duration,
	logger zerolog.Logger,
) AuthService {
	if expiry <= 0 {
		expiry = 168 * time.Hour
	}
	return &authService{
		users:        users,
		restrictions: restrictions,
		recorder:     recorder,
		validate:     validate,
		secret:       []byte(secret),
		expiry:       expiry,
		logger:       logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.LoginResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}

	if !user.IsActive {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	if s.recorder != nil {
		entry := AuditEntry{
			UserID:     user.ID,
			ActionType: models.ActionLogin,
			Metadata:   map[string]interface{}{"email": user.Email},
		}
		if err := s.recorder.Record(ctx, entry); err != nil {
			s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to record login")
		}
	}

	return dto.LoginResponse{
		Token: token,
		User:  dto.NewUserSummary(user),
	}, nil
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (dto.UserSummary, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.UserSummary{}, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return dto.UserSummary{}, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserSummary{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserSummary{}, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return dto.UserSummary{}, err
	}

	// Students get their restriction row up front so billing toggles
	// never race against a missing record.
	if role == models.RoleStudent {
		restriction := models.AccessRestriction{UserID: user.ID, IsRestricted: false}
		if err := s.restrictions.Create(ctx, &restriction); err != nil {
			s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("failed to create access restriction")
		} else {
			user.AccessRestriction = &restriction
		}
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", role).Msg("account registered")

	return dto.NewUserSummary(user), nil
}

func (s *authService) issueToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(s.expiry).Unix(),
	}
	if user.MoodleUserID != nil {
		claims["moodle_user_id"] = *user.MoodleUserID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
