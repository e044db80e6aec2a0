package routes

import (
	"crypto/cipher"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Lamdon-co/Backend/internal/handlers"
	"github.com/Lamdon-co/Backend/internal/middleware"
	"github.com/Lamdon-co/Backend/internal/repository"
	"github.com/Lamdon-co/Backend/internal/token"
)

// Deps carries what the route middlewares need beyond the handlers.
type Deps struct {
	Issuer       *token.Issuer
	Repo         repository.UserRepository
	APIKeyCipher cipher.AEAD
	APIKeyRef    string
	SignInLimit  *middleware.RateLimiter
	Logger       *zap.Logger
}

// Setup mounts the auth and account surfaces. Both groups sit behind the
// x-api-key boundary; bearer auth applies per route.
func Setup(app *fiber.App, h *handlers.Handler, d Deps) {
	apiKey := middleware.APIKey(d.APIKeyCipher, d.APIKeyRef)
	session := middleware.Session(d.Issuer, d.Repo, d.Logger)

	app.Get("/", h.Home)

	auth := app.Group("/v1/auth", apiKey)
	auth.Post("/signup", h.SignUp)
	auth.Post("/signin", d.SignInLimit.ByIP(), h.SignIn)
	auth.Post("/refresh", h.Refresh)
	auth.Get("/:provider/callback", h.OAuthCallback)
	auth.Get("/:provider", h.OAuthStart)
	auth.Post("/complete-signup", h.CompleteSignup)
	auth.Post("/send-verification", h.SendVerification)
	auth.Post("/verify-email", h.VerifyEmail)
	auth.Post("/switch-to-hoster", session, h.SwitchToHoster)

	account := app.Group("/v1/account", apiKey, session)
	account.Get("/profile", h.Profile)
	account.Post("/toggle-notifications", h.ToggleNotifications)

	app.Use(h.NotFound)
}
