package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/campuskit/moodle-gateway/internal/dto"
	"github.com/campuskit/moodle-gateway/internal/models"
	"github.com/campuskit/moodle-gateway/internal/repository"
)

const testSecret = "test-secret"

type testDeps struct {
	db *gorm.DB
}

func buildAuthService(t *testing.T) (AuthService, *testDeps) {
	t.Helper()
	db := setupServiceDB(t)
	deps := &testDeps{db: db}
	audit := NewAuditService(repository.NewActionLogRepository(db), nil, time.Minute, zerolog.Nop())
	svc := NewAuthService(
		repository.NewUserRepository(db),
		repository.NewRestrictionRepository(db),
		audit,
		validator.New(validator.WithRequiredStructEnabled()),
		testSecret,
		time.Hour,
		zerolog.Nop(),
	)
	return svc, deps
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	svc, deps := buildAuthService(t)

	summary, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:     "Student@Example.com",
		Password:  "hunter22d",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleStudent, summary.Role)
	require.Equal(t, "student@example.com", summary.Email)
	require.False(t, summary.IsRestricted)

	var restriction models.AccessRestriction
	require.NoError(t, deps.db.Where("user_id = ?", summary.ID).First(&restriction).Error)
	require.False(t, restriction.IsRestricted)

	_, err = svc.Register(context.Background(), dto.RegisterRequest{
		Email:     "student@example.com",
		Password:  "hunter22d",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.ErrorIs(t, err, ErrUserExists)

	result, err := svc.Login(context.Background(), dto.LoginRequest{Email: "student@example.com", Password: "hunter22d"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.False(t, result.User.IsRestricted)

	token, err := jwt.Parse(result.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	require.Equal(t, "student@example.com", claims["email"])
	require.Equal(t, models.RoleStudent, claims["role"])

	var loginCount int64
	require.NoError(t, deps.db.Model(&models.ActionLog{}).Where("action_type = ?", models.ActionLogin).Count(&loginCount).Error)
	require.Equal(t, int64(1), loginCount)
}

func TestAuthServiceLoginRejections(t *testing.T) {
	svc, deps := buildAuthService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	active := models.User{Email: "active@example.com", PasswordHash: string(hash), FirstName: "A", LastName: "B", Role: models.RoleStudent, IsActive: true}
	inactive := models.User{Email: "inactive@example.com", PasswordHash: string(hash), FirstName: "C", LastName: "D", Role: models.RoleStudent, IsActive: false}
	require.NoError(t, deps.db.Create(&active).Error)
	require.NoError(t, deps.db.Create(&inactive).Error)
	// GORM skips zero-valued fields with a default tag on insert, so force the flag.
	require.NoError(t, deps.db.Model(&inactive).Update("is_active", false).Error)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "missing@example.com", Password: "whatever9"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "active@example.com", Password: "wrong-pass"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "inactive@example.com", Password: "correct-horse"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceLoginRestrictedStudent(t *testing.T) {
	svc, deps := buildAuthService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := models.User{Email: "student@example.com", PasswordHash: string(hash), FirstName: "Ada", LastName: "Lovelace", Role: models.RoleStudent, IsActive: true}
	require.NoError(t, deps.db.Create(&user).Error)
	require.NoError(t, deps.db.Create(&models.AccessRestriction{UserID: user.ID, IsRestricted: true, Reason: "Payment pending"}).Error)

	result, err := svc.Login(context.Background(), dto.LoginRequest{Email: "student@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	require.True(t, result.User.IsRestricted, "restricted students still authenticate")
}
