package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

const (
	audAccess  = "access"
	audRefresh = "refresh"
)

// Claims carries the user id alongside the registered JWT claims.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies access and refresh tokens. Access and refresh
// tokens are signed under distinct secrets, so a refresh token can never
// pass access verification or vice versa. The issuer is stateless; the
// single-active-refresh-token rule is enforced by callers persisting the
// issued refresh token on the user record.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccess signs an access token for the given user id.
func (i *Issuer) IssueAccess(userID string) (string, time.Time, error) {
	return sign(userID, i.accessSecret, i.accessTTL, audAccess)
}

// IssueRefresh signs a refresh token for the given user id.
func (i *Issuer) IssueRefresh(userID string) (string, time.Time, error) {
	return sign(userID, i.refreshSecret, i.refreshTTL, audRefresh)
}

// VerifyAccess checks signature, expiry and audience of an access token
// and returns the embedded user id.
func (i *Issuer) VerifyAccess(tokenStr string) (string, error) {
	return verify(tokenStr, i.accessSecret, audAccess)
}

// VerifyRefresh checks signature, expiry and audience of a refresh token
// and returns the embedded user id.
func (i *Issuer) VerifyRefresh(tokenStr string) (string, error) {
	return verify(tokenStr, i.refreshSecret, audRefresh)
}

func sign(userID string, secret []byte, ttl time.Duration, aud string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			Audience:  jwt.ClaimStrings{aud},
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func verify(tokenStr string, secret []byte, aud string) (string, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}
	if !tok.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	if !containsAudience(claims.Audience, aud) {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

func containsAudience(auds jwt.ClaimStrings, target string) bool {
	for _, a := range auds {
		if a == target {
			return true
		}
	}
	return false
}
