package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/campuskit/moodle-gateway/internal/repository"
	"github.com/campuskit/moodle-gateway/internal/utils"
)

// Authenticate returns the identity and session resolver middleware. It
// verifies the bearer token, loads the account together with its access
// restriction and attaches the resulting principal to the request. It must
// run before the access policy gate on every protected route.
func Authenticate(secret string, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")

		const bearer = "Bearer "
		if authorization == "" || !strings.HasPrefix(authorization, bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "No token provided")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "No token provided")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		userID, ok := claimUint(claims, "user_id")
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		user, err := users.GetByID(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.SendError(c, fiber.StatusUnauthorized, "User not found or inactive")
			}
			return utils.SendError(c, fiber.StatusInternalServerError, "Authentication error")
		}

		if !user.IsActive {
			return utils.SendError(c, fiber.StatusUnauthorized, "User not found or inactive")
		}

		SetPrincipal(c, Principal{
			UserID:          user.ID,
			Email:           user.Email,
			Role:            user.Role,
			MoodleUserID:    user.MoodleUserID,
			RequiresPayment: user.RequiresPayment(),
		})

		return c.Next()
	}
}

func claimUint(claims jwt.MapClaims, key string) (uint, bool) {
	value, ok := claims[key]
	if !ok {
		return 0, false
	}

	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}
