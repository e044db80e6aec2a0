package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Lamdon-co/Backend/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrDuplicate    = errors.New("user already exists")
	// ErrStaleToken is returned by RotateRefreshToken when the stored
	// refresh token no longer matches the presented one, i.e. the token
	// has been superseded by a later issuance.
	ErrStaleToken = errors.New("stored refresh token does not match")
)

// UserRepository is the credential store. Implementations must make
// RotateRefreshToken a single conditional update so two concurrent
// rotations with the same token cannot both succeed.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	FindByProvider(ctx context.Context, provider, providerID string) (*models.User, error)

	SetRefreshToken(ctx context.Context, id, token string) error
	RotateRefreshToken(ctx context.Context, id, presented, next string) error

	CompleteProfile(ctx context.Context, id, firstName, lastName string, dob time.Time) error
	SetVerificationCode(ctx context.Context, id, code string) error
	MarkVerified(ctx context.Context, id string) error
	PromoteToHoster(ctx context.Context, id string) error
	SetNotificationsEnabled(ctx context.Context, id string, enabled bool) error
}
