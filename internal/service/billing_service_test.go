package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campuskit/moodle-gateway/internal/dto"
	"github.com/campuskit/moodle-gateway/internal/models"
	"github.com/campuskit/moodle-gateway/internal/repository"
)

func buildBillingService(t *testing.T) (BillingService, *gorm.DB) {
	t.Helper()
	db := setupServiceDB(t)
	svc := NewBillingService(
		repository.NewUserRepository(db),
		repository.NewRestrictionRepository(db),
		repository.NewPaymentRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
	return svc, db
}

func createStudent(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "x", FirstName: "Ada", LastName: "Lovelace", Role: models.RoleStudent, IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestBillingToggleRestriction(t *testing.T) {
	svc, db := buildBillingService(t)
	student := createStudent(t, db, "student@example.com")
	actorID := uint(99)

	result, err := svc.ToggleRestriction(context.Background(), student.ID, actorID)
	require.NoError(t, err)
	require.True(t, result.IsRestricted)

	var restriction models.AccessRestriction
	require.NoError(t, db.Where("user_id = ?", student.ID).First(&restriction).Error)
	require.True(t, restriction.IsRestricted)
	require.Equal(t, "Payment pending", restriction.Reason)
	require.NotNil(t, restriction.RestrictedAt)
	require.NotNil(t, restriction.RestrictedBy)
	require.Equal(t, actorID, *restriction.RestrictedBy)

	result, err = svc.ToggleRestriction(context.Background(), student.ID, actorID)
	require.NoError(t, err)
	require.False(t, result.IsRestricted)

	// Reset before re-querying: GORM leaves pointer fields untouched when
	// scanning NULL columns into an already-populated struct.
	restriction = models.AccessRestriction{}
	require.NoError(t, db.Where("user_id = ?", student.ID).First(&restriction).Error)
	require.False(t, restriction.IsRestricted)
	require.Empty(t, restriction.Reason)
	require.Nil(t, restriction.RestrictedAt)
}

func TestBillingToggleRejectsNonStudents(t *testing.T) {
	svc, db := buildBillingService(t)

	teacher := models.User{Email: "teacher@example.com", PasswordHash: "x", FirstName: "Tom", LastName: "Jones", Role: models.RoleTeacher, IsActive: true}
	require.NoError(t, db.Create(&teacher).Error)

	_, err := svc.ToggleRestriction(context.Background(), teacher.ID, 1)
	require.ErrorIs(t, err, ErrNotStudent)

	var count int64
	require.NoError(t, db.Model(&models.AccessRestriction{}).Count(&count).Error)
	require.Zero(t, count, "rejected toggles must not create state")

	_, err = svc.ToggleRestriction(context.Background(), 404, 1)
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestBillingMarkPaidClearsRestriction(t *testing.T) {
	svc, db := buildBillingService(t)
	student := createStudent(t, db, "student@example.com")
	require.NoError(t, db.Create(&models.AccessRestriction{UserID: student.ID, IsRestricted: true, Reason: "Payment pending"}).Error)

	payment, err := svc.MarkPaid(context.Background(), student.ID, dto.MarkPaidRequest{
		Amount:         250.0,
		TransactionRef: "TX-100",
		PaymentMethod:  "bank_transfer",
	})
	require.NoError(t, err)
	require.Equal(t, models.PaymentSuccess, payment.Status)
	require.Equal(t, student.ID, payment.UserID)

	var restriction models.AccessRestriction
	require.NoError(t, db.Where("user_id = ?", student.ID).First(&restriction).Error)
	require.False(t, restriction.IsRestricted)

	_, err = svc.MarkPaid(context.Background(), 404, dto.MarkPaidRequest{Amount: 1, TransactionRef: "TX-101"})
	require.ErrorIs(t, err, ErrAccountNotFound)

	_, err = svc.MarkPaid(context.Background(), student.ID, dto.MarkPaidRequest{Amount: 1})
	require.Error(t, err, "transaction reference is required")
}

func TestBillingPaymentListing(t *testing.T) {
	svc, db := buildBillingService(t)
	student := createStudent(t, db, "student@example.com")

	for _, ref := range []string{"TX-1", "TX-2"} {
		_, err := svc.MarkPaid(context.Background(), student.ID, dto.MarkPaidRequest{Amount: 10, TransactionRef: ref})
		require.NoError(t, err)
	}

	listed, err := svc.ListPayments(context.Background(), dto.PaymentListRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, listed.Payments, 2)
	require.Equal(t, int64(2), listed.Pagination.TotalItems)

	byUser, err := svc.UserPayments(context.Background(), student.ID)
	require.NoError(t, err)
	require.Len(t, byUser, 2)
}
