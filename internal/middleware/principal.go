package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

const principalLocalKey = "principal"

type principalContextKey struct{}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID          uint
	Email           string
	Role            string
	MoodleUserID    *uint
	RequiresPayment bool
}

// SetPrincipal binds the resolved principal to the request and its context.
func SetPrincipal(c *fiber.Ctx, principal Principal) {
	c.Locals(principalLocalKey, principal)
	c.SetUserContext(context.WithValue(c.UserContext(), principalContextKey{}, principal))
}

// PrincipalFromCtx returns the principal resolved for the request, if any.
func PrincipalFromCtx(c *fiber.Ctx) (Principal, bool) {
	if value := c.Locals(principalLocalKey); value != nil {
		if principal, ok := value.(Principal); ok {
			return principal, true
		}
	}
	return Principal{}, false
}

// PrincipalFromContext extracts the principal from a plain context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	if value := ctx.Value(principalContextKey{}); value != nil {
		if principal, ok := value.(Principal); ok {
			return principal, true
		}
	}
	return Principal{}, false
}
