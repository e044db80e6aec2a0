package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/Lamdon-co/Backend/internal/config"
	"github.com/Lamdon-co/Backend/internal/handlers"
	"github.com/Lamdon-co/Backend/internal/routes"
	"github.com/Lamdon-co/Backend/internal/services"
)

// New initializes the Fiber application with config, middlewares, and
// routes. All error-to-status mapping happens in the app's ErrorHandler,
// so handlers and services deal in typed errors only.
func New(cfg *config.Config, h *handlers.Handler, deps routes.Deps, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		ErrorHandler: errorHandler(logger),
	})

	app.Use(cors.New())
	app.Use(zapLoggerMiddleware(logger))

	routes.Setup(app, h, deps)

	return app
}

// statusFor maps the service error taxonomy to one consistent HTTP
// status/message table. The source API's drift (409-style conflicts as
// 400, not-found sometimes 401) is deliberately not reproduced.
func statusFor(err error) (int, string, bool) {
	switch {
	case errors.Is(err, services.ErrUserAlreadyExists):
		return fiber.StatusConflict, "User already exists", true
	case errors.Is(err, services.ErrUserNotFound):
		return fiber.StatusNotFound, "User not found", true
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "Invalid credentials", true
	case errors.Is(err, services.ErrNoPassword):
		return fiber.StatusBadRequest, "User does not have a password. Try logging in with Google or Facebook.", true
	case errors.Is(err, services.ErrInvalidRefreshToken):
		return fiber.StatusUnauthorized, "Invalid or expired refresh token", true
	case errors.Is(err, services.ErrProfileCompleted):
		return fiber.StatusBadRequest, "Profile already completed", true
	case errors.Is(err, services.ErrInvalidVerification):
		return fiber.StatusBadRequest, "Invalid verification code", true
	case errors.Is(err, services.ErrAlreadyHoster):
		return fiber.StatusBadRequest, "User is already a hoster", true
	case errors.Is(err, services.ErrVerificationRateLimit):
		return fiber.StatusTooManyRequests, "Too many verification emails, please try again later", true
	}
	return 0, "", false
}

func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if status, msg, ok := statusFor(err); ok {
			return c.Status(status).JSON(fiber.Map{"status": "error", "message": msg})
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"status": "error", "message": fe.Message})
		}

		logger.Error("unhandled request error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Internal Server Error",
		})
	}
}

// zapLoggerMiddleware logs incoming HTTP requests using Zap.
func zapLoggerMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)
		status := c.Response().StatusCode()

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		}

		if err != nil {
			logger.Error("HTTP Request Error", append(fields, zap.Error(err))...)
			return err
		}

		logger.Info("HTTP Request", fields...)
		return nil
	}
}
