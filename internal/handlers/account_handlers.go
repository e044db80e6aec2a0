package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Lamdon-co/Backend/internal/middleware"
	"github.com/Lamdon-co/Backend/internal/validation"
)

// Profile handles GET /v1/account/profile.
func (h *Handler) Profile(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	user, err := h.svc.Profile(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status": "success",
		"user":   user.Public(),
	})
}

type toggleNotificationsReq struct {
	Enable *bool `json:"enable" validate:"required"`
}

// ToggleNotifications handles POST /v1/account/toggle-notifications.
func (h *Handler) ToggleNotifications(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	var req toggleNotificationsReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if fieldErrs := validation.Struct(req); fieldErrs != nil {
		return validationError(c, fieldErrs)
	}

	if err := h.svc.ToggleNotifications(c.Context(), userID, *req.Enable); err != nil {
		return err
	}
	msg := "Notifications disabled successfully"
	if *req.Enable {
		msg = "Notifications enabled successfully"
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": msg,
	})
}
