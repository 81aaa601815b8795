package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/campuskit/moodle-gateway/internal/dto"
	"github.com/campuskit/moodle-gateway/internal/models"
	"github.com/campuskit/moodle-gateway/internal/repository"
)

// ErrAccountNotFound signals an operation against a missing account.
var ErrAccountNotFound = errors.New("account not found")

// ErrNotStudent signals a restriction toggle against a non-student
// account. Only students are subject to the payment gate.
var ErrNotStudent = errors.New("payment status only applies to students")

// BillingService manages payment restrictions and the payment ledger.
type BillingService interface {
	ToggleRestriction(ctx context.Context, userID, actorID uint) (dto.ToggleRestrictionResponse, error)
	MarkPaid(ctx context.Context, userID uint, req dto.MarkPaidRequest) (dto.PaymentResponse, error)
	ListPayments(ctx context.Context, req dto.PaymentListRequest) (dto.PaymentListResponse, error)
	UserPayments(ctx context.Context, userID uint) ([]dto.PaymentResponse, error)
}

type billingService struct {
	users        repository.UserRepository
	restrictions repository.RestrictionRepository
	payments     repository.PaymentRepository
	validate     *validator.Validate
	logger       zerolog.Logger
}

// NewBillingService constructs the billing service.
func NewBillingService(
	users repository.UserRepository,
	restrictions repository.RestrictionRepository,
	payments repository.PaymentRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) BillingService {
	return &billingService{
		users:        users,
		restrictions: restrictions,
		payments:     payments,
		validate:     validate,
		logger:       logger.With().Str("component", "billing_service").Logger(),
	}
}

func (s *billingService) ToggleRestriction(ctx context.Context, userID, actorID uint) (dto.ToggleRestrictionResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ToggleRestrictionResponse{}, ErrAccountNotFound
		}
		return dto.ToggleRestrictionResponse{}, err
	}
	if user.Role != models.RoleStudent {
		return dto.ToggleRestrictionResponse{}, ErrNotStudent
	}

	restriction, err := s.restrictions.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ToggleRestrictionResponse{}, err
		}
		restriction = models.AccessRestriction{UserID: userID}
	}

	if restriction.IsRestricted {
		restriction.IsRestricted = false
		restriction.Reason = ""
		restriction.RestrictedAt = nil
		restriction.RestrictedBy = nil
	} else {
		now := time.Now()
		restriction.IsRestricted = true
		restriction.Reason = "Payment pending"
		restriction.RestrictedAt = &now
		restriction.RestrictedBy = &actorID
	}

	if restriction.ID == 0 {
		err = s.restrictions.Create(ctx, &restriction)
	} else {
		err = s.restrictions.Save(ctx, &restriction)
	}
	if err != nil {
		return dto.ToggleRestrictionResponse{}, err
	}

	s.logger.Info().
		Uint("user_id", userID).
		Uint("actor_id", actorID).
		Bool("is_restricted", restriction.IsRestricted).
		Msg("restriction toggled")

	return dto.ToggleRestrictionResponse{
		UserID:       userID,
		IsRestricted: restriction.IsRestricted,
	}, nil
}

func (s *billingService) MarkPaid(ctx context.Context, userID uint, req dto.MarkPaidRequest) (dto.PaymentResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.PaymentResponse{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PaymentResponse{}, ErrAccountNotFound
		}
		return dto.PaymentResponse{}, err
	}

	payment := models.Payment{
		UserID:         user.ID,
		Amount:         req.Amount,
		Status:         models.PaymentSuccess,
		TransactionRef: req.TransactionRef,
		PaymentMethod:  req.PaymentMethod,
		Notes:          req.Notes,
	}
	if err := s.payments.RecordPaid(ctx, &payment); err != nil {
		return dto.PaymentResponse{}, err
	}

	s.logger.Info().
		Uint("user_id", user.ID).
		Float64("amount", payment.Amount).
		Str("transaction_ref", payment.TransactionRef).
		Msg("payment recorded")

	return dto.NewPaymentResponse(payment), nil
}

func (s *billingService) ListPayments(ctx context.Context, req dto.PaymentListRequest) (dto.PaymentListResponse, error) {
	page := maxInt(req.Page, 1)
	pageSize := clampPageSize(req.PageSize)

	payments, total, err := s.payments.List(ctx, repository.PaymentFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   req.Status,
	})
	if err != nil {
		return dto.PaymentListResponse{}, err
	}

	responses := make([]dto.PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		responses = append(responses, dto.NewPaymentResponse(payment))
	}

	return dto.PaymentListResponse{
		Payments: responses,
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: totalPages(total, pageSize),
		},
	}, nil
}

func (s *billingService) UserPayments(ctx context.Context, userID uint) ([]dto.PaymentResponse, error) {
	payments, err := s.payments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		responses = append(responses, dto.NewPaymentResponse(payment))
	}
	return responses, nil
}
