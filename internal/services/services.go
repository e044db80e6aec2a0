package services

import (
	"context"
	"errors"
	"time"

	"github.com/Lamdon-co/Backend/internal/models"
)

var (
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrNoPassword            = errors.New("account has no password, use social login")
	ErrInvalidRefreshToken   = errors.New("invalid or expired refresh token")
	ErrProfileCompleted      = errors.New("profile already completed")
	ErrInvalidVerification   = errors.New("invalid verification code")
	ErrAlreadyHoster         = errors.New("user is already a hoster")
	ErrVerificationRateLimit = errors.New("too many verification emails, please try again later")
	ErrInternal              = errors.New("internal server error")
)

// RegisterInput is a validated signup payload. At least one of Email/Phone
// is set by the time it reaches the service.
type RegisterInput struct {
	Email        string
	Phone        string
	Password     string
	AuthProvider string
	ProviderID   string
}

// OAuthProfile is what a provider callback resolves to after the code
// exchange; the exchange itself lives in the oauth package.
type OAuthProfile struct {
	Provider   string
	ProviderID string
	Email      string
	FirstName  string
	LastName   string
}

// TokenPair is a freshly issued access/refresh pair. RefreshExpiry drives
// the cookie max-age.
type TokenPair struct {
	AccessToken   string
	RefreshToken  string
	AccessExpiry  time.Time
	RefreshExpiry time.Time
}

// LoginResult couples a token pair with the public projection of the
// authenticated user.
type LoginResult struct {
	Tokens TokenPair
	User   *models.PublicUser
}

// AuthService is the identity resolver: every state transition of a user
// record flows through here.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, phone, password string) (*LoginResult, error)
	ResolveOAuthUser(ctx context.Context, p OAuthProfile) (*LoginResult, error)
	Rotate(ctx context.Context, presentedRefresh string) (*TokenPair, error)
	CompleteProfile(ctx context.Context, userID, firstName, lastName string, dob time.Time) (*models.User, error)
	SendVerification(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, email, code string) error
	SwitchToHoster(ctx context.Context, userID string) (*models.User, error)
	ToggleNotifications(ctx context.Context, userID string, enable bool) error
	Profile(ctx context.Context, userID string) (*models.User, error)
}
