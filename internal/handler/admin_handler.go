package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campuskit/moodle-gateway/internal/dto"
	"github.com/campuskit/moodle-gateway/internal/middleware"
	"github.com/campuskit/moodle-gateway/internal/service"
	"github.com/campuskit/moodle-gateway/internal/utils"
)

// AdminHandler exposes account and billing administration endpoints.
type AdminHandler struct {
	users   service.AdminUserService
	billing service.BillingService
	logger  zerolog.Logger
}

// NewAdminHandler constructs an admin handler.
func NewAdminHandler(users service.AdminUserService, billing service.BillingService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		users:   users,
		billing: billing,
		logger:  logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register wires the admin routes.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/users", h.listUsers)
	router.Patch("/users/:userId", h.updateUser)
	router.Get("/payments", h.listPayments)
	router.Get("/payments/user/:userId", h.userPayments)
	router.Post("/payments/toggle/:userId", h.toggleRestriction)
	router.Post("/payments/mark-paid/:userId", h.markPaid)
}

func (h *AdminHandler) listUsers(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	req := dto.AdminUserListRequest{
		Page:     page,
		PageSize: pageSize,
		Role:     strings.TrimSpace(c.Query("role")),
		Search:   strings.TrimSpace(c.Query("search")),
	}

	result, err := h.users.List(withRequestContext(c), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list accounts")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list accounts")
	}

	return utils.SendSuccess(c, result)
}

func (h *AdminHandler) updateUser(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.AdminUserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.users.Update(withRequestContext(c), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "account not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update account")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update account")
		}
	}

	return utils.SendSuccessMessage(c, "account updated", result)
}

func (h *AdminHandler) toggleRestriction(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	principal, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "Authentication required")
	}

	result, err := h.billing.ToggleRestriction(withRequestContext(c), userID, principal.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "account not found")
		case errors.Is(err, service.ErrNotStudent):
			return utils.SendError(c, fiber.StatusBadRequest, "Payment status only applies to students")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to toggle restriction")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to toggle restriction")
		}
	}

	return utils.SendSuccessMessage(c, "restriction updated", result)
}

func (h *AdminHandler) listPayments(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	req := dto.PaymentListRequest{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
	}

	result, err := h.billing.ListPayments(withRequestContext(c), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list payments")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list payments")
	}

	return utils.SendSuccess(c, result)
}

func (h *AdminHandler) userPayments(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payments, err := h.billing.UserPayments(withRequestContext(c), userID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list user payments")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list user payments")
	}

	return utils.SendSuccess(c, payments)
}

func (h *AdminHandler) markPaid(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.MarkPaidRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.billing.MarkPaid(withRequestContext(c), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "account not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to record payment")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to record payment")
		}
	}

	return utils.SendCreated(c, "payment recorded", result)
}
