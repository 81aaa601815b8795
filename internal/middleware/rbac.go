package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuskit/moodle-gateway/internal/utils"
)

// PaymentRequiredMessage is the rejection body for restricted students.
// Clients match on the "Payment" substring.
const PaymentRequiredMessage = "Payment required. Please contact administration."

// Gate returns the access policy middleware. The payment check always runs
// before the role check: a restricted student never reaches role-gated
// functionality even when the role would nominally permit it. An empty role
// list gates on payment only.
func Gate(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromCtx(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "Authentication required")
		}

		if principal.RequiresPayment {
			return utils.SendError(c, fiber.StatusForbidden, PaymentRequiredMessage)
		}

		if len(allowed) > 0 {
			if _, ok := allowed[principal.Role]; !ok {
				return utils.SendError(c, fiber.StatusForbidden, "Insufficient permissions")
			}
		}

		return c.Next()
	}
}
