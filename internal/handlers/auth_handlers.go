package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Lamdon-co/Backend/internal/middleware"
	"github.com/Lamdon-co/Backend/internal/oauth"
	"github.com/Lamdon-co/Backend/internal/services"
	"github.com/Lamdon-co/Backend/internal/validation"
)

// RefreshCookieName is the HTTP-only cookie carrying the refresh token.
const RefreshCookieName = "refreshToken"

// Handler exposes the auth surface. OAuth providers are injected at
// construction, one instance per process.
type Handler struct {
	svc          services.AuthService
	providers    map[string]*oauth.Provider
	secureCookie bool
	logger       *zap.Logger
}

func NewHandler(svc services.AuthService, providers []*oauth.Provider, secureCookie bool, logger *zap.Logger) *Handler {
	byName := make(map[string]*oauth.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Handler{svc: svc, providers: byName, secureCookie: secureCookie, logger: logger}
}

type signupReq struct {
	Email        string `json:"email" validate:"required_without=Phone,omitempty,email"`
	Phone        string `json:"phone" validate:"required_without=Email,omitempty,numeric"`
	Password     string `json:"password" validate:"required,min=6"`
	AuthProvider string `json:"authProvider" validate:"required,oneof=email phone google facebook apple"`
	ProviderID   string `json:"providerId"`
}

// SignUp handles POST /v1/auth/signup. Registration does not issue
// tokens; the client signs in afterwards.
func (h *Handler) SignUp(c *fiber.Ctx) error {
	var req signupReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if fieldErrs := validation.Struct(req); fieldErrs != nil {
		return validationError(c, fieldErrs)
	}

	user, err := h.svc.Register(c.Context(), services.RegisterInput{
		Email:        req.Email,
		Phone:        req.Phone,
		Password:     req.Password,
		AuthProvider: req.AuthProvider,
		ProviderID:   req.ProviderID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"user":   user.Public(),
	})
}

type signinReq struct {
	Email    string `json:"email" validate:"required_without=Phone,omitempty,email"`
	Phone    string `json:"phone" validate:"required_without=Email,omitempty,numeric"`
	Password string `json:"password" validate:"required"`
}

// SignIn handles POST /v1/auth/signin. The access token travels in the
// response body, the refresh token in an HTTP-only cookie.
func (h *Handler) SignIn(c *fiber.Ctx) error {
	var req signinReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if fieldErrs := validation.Struct(req); fieldErrs != nil {
		return validationError(c, fieldErrs)
	}

	res, err := h.svc.Login(c.Context(), req.Email, req.Phone, req.Password)
	if err != nil {
		return err
	}
	h.setRefreshCookie(c, res.Tokens.RefreshToken, res.Tokens.RefreshExpiry)
	return c.JSON(fiber.Map{
		"status":      "success",
		"message":     "Login successful",
		"accessToken": res.Tokens.AccessToken,
		"user":        res.User,
	})
}

// Refresh handles POST /v1/auth/refresh: rotate-on-use of the refresh
// cookie.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	presented := c.Cookies(RefreshCookieName)
	if presented == "" {
		return services.ErrInvalidRefreshToken
	}

	pair, err := h.svc.Rotate(c.Context(), presented)
	if err != nil {
		return err
	}
	h.setRefreshCookie(c, pair.RefreshToken, pair.RefreshExpiry)
	return c.JSON(fiber.Map{
		"status":      "success",
		"accessToken": pair.AccessToken,
	})
}

// OAuthStart handles GET /v1/auth/:provider, redirecting to the consent
// screen.
func (h *Handler) OAuthStart(c *fiber.Ctx) error {
	p, ok := h.providers[c.Params("provider")]
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "unknown provider")
	}
	consentURL, err := p.Start(c.Context())
	if err != nil {
		return err
	}
	return c.Redirect(consentURL, fiber.StatusFound)
}

// OAuthCallback handles GET /v1/auth/:provider/callback: code exchange,
// resolve-or-create, stateless JSON response.
func (h *Handler) OAuthCallback(c *fiber.Ctx) error {
	p, ok := h.providers[c.Params("provider")]
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "unknown provider")
	}
	if errParam := c.Query("error"); errParam != "" {
		h.logger.Warn("oauth consent denied", zap.String("provider", p.Name()), zap.String("error", errParam))
		return fiber.NewError(fiber.StatusUnauthorized, "Authentication failed")
	}

	profile, err := p.Callback(c.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		h.logger.Warn("oauth callback failed", zap.String("provider", p.Name()), zap.Error(err))
		return fiber.NewError(fiber.StatusUnauthorized, "Authentication failed")
	}

	res, err := h.svc.ResolveOAuthUser(c.Context(), profile)
	if err != nil {
		return err
	}
	h.setRefreshCookie(c, res.Tokens.RefreshToken, res.Tokens.RefreshExpiry)
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": fmt.Sprintf("%s authentication successful", p.Name()),
		"token":   res.Tokens.AccessToken,
		"user":    res.User,
	})
}

type completeSignupReq struct {
	UserID      string `json:"userId" validate:"required"`
	FirstName   string `json:"firstName" validate:"required,min=2,max=50"`
	LastName    string `json:"lastName" validate:"required,min=2,max=50"`
	DateOfBirth string `json:"dateOfBirth" validate:"required"`
}

// CompleteSignup handles POST /v1/auth/complete-signup. It takes the user
// id in the body rather than a bearer token; the route sits behind the
// API-key boundary like the rest of the surface.
func (h *Handler) CompleteSignup(c *fiber.Ctx) error {
	var req completeSignupReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if fieldErrs := validation.Struct(req); fieldErrs != nil {
		return validationError(c, fieldErrs)
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "dateOfBirth must be an ISO date")
	}

	user, err := h.svc.CompleteProfile(c.Context(), req.UserID, req.FirstName, req.LastName, dob)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Profile completed successfully",
		"user":    user.Public(),
	})
}

type sendVerificationReq struct {
	Email string `json:"email" validate:"required,email"`
}

// SendVerification handles POST /v1/auth/send-verification.
func (h *Handler) SendVerification(c *fiber.Ctx) error {
	var req sendVerificationReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if fieldErrs := validation.Struct(req); fieldErrs != nil {
		return validationError(c, fieldErrs)
	}
	if err := h.svc.SendVerification(c.Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Verification email sent",
	})
}

type verifyEmailReq struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// VerifyEmail handles POST /v1/auth/verify-email.
func (h *Handler) VerifyEmail(c *fiber.Ctx) error {
	var req verifyEmailReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if fieldErrs := validation.Struct(req); fieldErrs != nil {
		return validationError(c, fieldErrs)
	}
	if err := h.svc.VerifyEmail(c.Context(), req.Email, req.Code); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Email verified successfully",
	})
}

// SwitchToHoster handles POST /v1/auth/switch-to-hoster for an
// authenticated user.
func (h *Handler) SwitchToHoster(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	user, err := h.svc.SwitchToHoster(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "You are now a hoster",
		"user":    user.Public(),
	})
}

func (h *Handler) setRefreshCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/v1/auth",
	})
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func validationError(c *fiber.Ctx, fieldErrs []validation.FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"status":  "error",
		"message": fieldErrs[0].Message,
		"data":    fieldErrs,
	})
}
