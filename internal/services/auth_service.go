package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Lamdon-co/Backend/internal/models"
	"github.com/Lamdon-co/Backend/internal/repository"
	"github.com/Lamdon-co/Backend/internal/token"
)

const verifySendPrefix = "verify_send:"

// VerificationMailer sends the email-verification code. Satisfied by
// *email.Client.
type VerificationMailer interface {
	SendVerificationCode(ctx context.Context, toEmail, code string) error
}

type authService struct {
	repo             repository.UserRepository
	issuer           *token.Issuer
	rdb              *redis.Client
	mailer           VerificationMailer
	bcryptCost       int
	sendLimitPerHour int
	logger           *zap.Logger
}

// NewAuthService builds the identity resolver.
func NewAuthService(
	repo repository.UserRepository,
	issuer *token.Issuer,
	rdb *redis.Client,
	mailer VerificationMailer,
	bcryptCost int,
	sendLimitPerHour int,
	logger *zap.Logger,
) AuthService {
	if bcryptCost == 0 {
		bcryptCost = 10
	}
	return &authService{
		repo:             repo,
		issuer:           issuer,
		rdb:              rdb,
		mailer:           mailer,
		bcryptCost:       bcryptCost,
		sendLimitPerHour: sendLimitPerHour,
		logger:           logger,
	}
}

// Register creates a credential account. Token issuance happens at sign-in,
// not here.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Email != "" {
		if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
			return nil, ErrUserAlreadyExists
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("lookup existing email: %w", err)
		}
	} else if in.Phone != "" {
		if _, err := s.repo.FindByPhone(ctx, in.Phone); err == nil {
			return nil, ErrUserAlreadyExists
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("lookup existing phone: %w", err)
		}
	}

	u := &models.User{
		Email:                in.Email,
		Phone:                in.Phone,
		AuthProvider:         in.AuthProvider,
		ProviderID:           in.ProviderID,
		Role:                 models.RoleUser,
		NotificationsEnabled: true,
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login resolves a credential sign-in. Email takes priority when both
// identifiers are supplied.
func (s *authService) Login(ctx context.Context, email, phone, password string) (*LoginResult, error) {
	var (
		u   *models.User
		err error
	)
	switch {
	case email != "":
		u, err = s.repo.FindByEmail(ctx, email)
	case phone != "":
		u, err = s.repo.FindByPhone(ctx, phone)
	default:
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if u.PasswordHash == "" {
		return nil, ErrNoPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issueAndPersist(ctx, u.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &LoginResult{Tokens: *pair, User: u.Public()}, nil
}

// ResolveOAuthUser finds or creates the account for a federated identity.
// Repeated calls with the same (provider, providerID) resolve to the same
// record.
func (s *authService) ResolveOAuthUser(ctx context.Context, p OAuthProfile) (*LoginResult, error) {
	u, err := s.repo.FindByProvider(ctx, p.Provider, p.ProviderID)
	if errors.Is(err, repository.ErrUserNotFound) {
		u = &models.User{
			Email:                p.Email,
			AuthProvider:         p.Provider,
			ProviderID:           p.ProviderID,
			FirstName:            p.FirstName,
			LastName:             p.LastName,
			Role:                 models.RoleUser,
			NotificationsEnabled: true,
		}
		if cerr := s.repo.Create(ctx, u); cerr != nil {
			if errors.Is(cerr, repository.ErrDuplicate) {
				// Lost the creation race to a concurrent callback for the
				// same provider identity; resolve to the existing record.
				u, err = s.repo.FindByProvider(ctx, p.Provider, p.ProviderID)
				if err != nil {
					return nil, fmt.Errorf("resolve after duplicate: %w", err)
				}
			} else {
				return nil, fmt.Errorf("create oauth user: %w", cerr)
			}
		}
	} else if err != nil {
		return nil, fmt.Errorf("lookup oauth user: %w", err)
	}

	pair, err := s.issueAndPersist(ctx, u.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &LoginResult{Tokens: *pair, User: u.Public()}, nil
}

// Rotate exchanges a refresh token for a new pair. The store-side
// conditional update is what invalidates superseded tokens: a token whose
// signature is still valid fails here once a newer one has been issued.
func (s *authService) Rotate(ctx context.Context, presentedRefresh string) (*TokenPair, error) {
	userID, err := s.issuer.VerifyRefresh(presentedRefresh)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	newRefresh, refreshExp, err := s.issuer.IssueRefresh(userID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	newAccess, accessExp, err := s.issuer.IssueAccess(userID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	if err := s.repo.RotateRefreshToken(ctx, userID, presentedRefresh, newRefresh); err != nil {
		if errors.Is(err, repository.ErrStaleToken) || errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("refresh token reuse detected", zap.String("user_id", userID))
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:   newAccess,
		RefreshToken:  newRefresh,
		AccessExpiry:  accessExp,
		RefreshExpiry: refreshExp,
	}, nil
}

// CompleteProfile is an idempotent-guard, not an idempotent update: the
// second call on a fully populated profile is rejected.
func (s *authService) CompleteProfile(ctx context.Context, userID, firstName, lastName string, dob time.Time) (*models.User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u.ProfileComplete() {
		return nil, ErrProfileCompleted
	}
	if err := s.repo.CompleteProfile(ctx, userID, firstName, lastName, dob); err != nil {
		return nil, fmt.Errorf("complete profile: %w", err)
	}
	u.FirstName = firstName
	u.LastName = lastName
	u.DateOfBirth = &dob
	return u, nil
}

// SendVerification stores a fresh 6-digit code on the user record and
// mails it. Sends are rate limited per address.
func (s *authService) SendVerification(ctx context.Context, emailAddr string) error {
	u, err := s.repo.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if s.rdb != nil && s.sendLimitPerHour > 0 {
		key := verifySendPrefix + emailAddr
		count, err := s.rdb.Incr(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("verification rate limit: %w", err)
		}
		if count == 1 {
			s.rdb.Expire(ctx, key, time.Hour)
		} else if count > int64(s.sendLimitPerHour) {
			return ErrVerificationRateLimit
		}
	}

	code := generateVerificationCode()
	if err := s.repo.SetVerificationCode(ctx, u.ID.Hex(), code); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}
	if err := s.mailer.SendVerificationCode(ctx, emailAddr, code); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

// VerifyEmail confirms the code, marks the account verified, and clears
// the code.
func (s *authService) VerifyEmail(ctx context.Context, emailAddr, code string) error {
	u, err := s.repo.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if u.VerificationCode == "" || u.VerificationCode != code {
		return ErrInvalidVerification
	}
	if err := s.repo.MarkVerified(ctx, u.ID.Hex()); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

// SwitchToHoster is the one-way role upgrade.
func (s *authService) SwitchToHoster(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u.Role != models.RoleUser {
		return nil, ErrAlreadyHoster
	}
	if err := s.repo.PromoteToHoster(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Lost a concurrent promotion; role is no longer "user".
			return nil, ErrAlreadyHoster
		}
		return nil, fmt.Errorf("promote to hoster: %w", err)
	}
	u.Role = models.RoleHoster
	return u, nil
}

func (s *authService) ToggleNotifications(ctx context.Context, userID string, enable bool) error {
	if err := s.repo.SetNotificationsEnabled(ctx, userID, enable); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("toggle notifications: %w", err)
	}
	return nil
}

func (s *authService) Profile(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return u, nil
}

// issueAndPersist issues a pair and overwrites the stored refresh token.
// If persistence fails the pair is discarded with the error, so a caller
// never receives a valid-but-unpersisted refresh token.
func (s *authService) issueAndPersist(ctx context.Context, userID string) (*TokenPair, error) {
	access, accessExp, err := s.issuer.IssueAccess(userID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, refreshExp, err := s.issuer.IssueRefresh(userID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.repo.SetRefreshToken(ctx, userID, refresh); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:   access,
		RefreshToken:  refresh,
		AccessExpiry:  accessExp,
		RefreshExpiry: refreshExp,
	}, nil
}

func generateVerificationCode() string {
	const charset = "0123456789"
	b := make([]byte, 6)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
