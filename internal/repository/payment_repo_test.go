package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campuskit/moodle-gateway/internal/models"
)

func TestPaymentRepositoryRecordPaidClearsRestriction(t *testing.T) {
	db := setupTestDB(t)
	payments := NewPaymentRepository(db)

	user := models.User{Email: "student@example.com", PasswordHash: "x", FirstName: "Ada", LastName: "Lovelace", Role: models.RoleStudent, IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.AccessRestriction{UserID: user.ID, IsRestricted: true, Reason: "Payment pending"}).Error)

	payment := models.Payment{UserID: user.ID, Amount: 150.0, Status: models.PaymentSuccess, TransactionRef: "TX-1"}
	require.NoError(t, payments.RecordPaid(context.Background(), &payment))
	require.NotZero(t, payment.ID)

	var restriction models.AccessRestriction
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&restriction).Error)
	require.False(t, restriction.IsRestricted)
	require.Equal(t, "Payment received", restriction.Reason)
}

func TestPaymentRepositoryListFiltersByStatus(t *testing.T) {
	db := setupTestDB(t)
	payments := NewPaymentRepository(db)

	require.NoError(t, db.Create(&models.Payment{UserID: 1, Amount: 10, Status: models.PaymentSuccess, TransactionRef: "TX-1"}).Error)
	require.NoError(t, db.Create(&models.Payment{UserID: 1, Amount: 20, Status: models.PaymentPending, TransactionRef: "TX-2"}).Error)
	require.NoError(t, db.Create(&models.Payment{UserID: 2, Amount: 30, Status: models.PaymentSuccess, TransactionRef: "TX-3"}).Error)

	listed, total, err := payments.List(context.Background(), PaymentFilter{Status: models.PaymentSuccess, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, listed, 2)

	userID := uint(2)
	listed, total, err = payments.List(context.Background(), PaymentFilter{UserID: &userID, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "TX-3", listed[0].TransactionRef)

	byUser, err := payments.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, byUser, 2)
}
