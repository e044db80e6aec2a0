package handlers

import "github.com/gofiber/fiber/v2"

// Home handles GET /.
func (h *Handler) Home(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Lamdon API is up and running",
	})
}

// NotFound is the catch-all for unmatched routes.
func (h *Handler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":  "error",
		"message": "Oops!, Seems you lost your way, Find your way back home",
	})
}
