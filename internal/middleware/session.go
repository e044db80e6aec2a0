package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Lamdon-co/Backend/internal/repository"
	"github.com/Lamdon-co/Backend/internal/token"
)

// UserIDKey is the fiber.Ctx local under which Session stores the
// authenticated user id.
const UserIDKey = "userID"

// Session authenticates a bearer access token and attaches the resolved
// user id to the request context. Only the id is attached, deliberately,
// so downstream handlers always reload fresh state. Missing, malformed,
// expired and badly signed tokens all surface as 401; the distinct causes
// are kept in the logs.
func Session(issuer *token.Issuer, repo repository.UserRepository, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get(fiber.HeaderAuthorization)
		if auth == "" {
			return errorJSON(c, fiber.StatusUnauthorized, "Access denied, no token provided")
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return errorJSON(c, fiber.StatusUnauthorized, "Invalid authorization header")
		}

		userID, err := issuer.VerifyAccess(parts[1])
		if err != nil {
			logger.Debug("access token rejected",
				zap.String("path", c.Path()),
				zap.Bool("expired", errors.Is(err, token.ErrTokenExpired)),
			)
			return errorJSON(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		// The token is self-contained, but the account must still exist.
		if _, err := repo.FindByID(c.Context(), userID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errorJSON(c, fiber.StatusNotFound, "User not found")
			}
			logger.Error("session user lookup failed", zap.Error(err))
			return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// UserID returns the id attached by Session.
func UserID(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals(UserIDKey).(string)
	return id, ok && id != ""
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"status": "error", "message": msg})
}
