package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"

	"github.com/Lamdon-co/Backend/internal/models"
	"github.com/Lamdon-co/Backend/internal/services"
)

var (
	ErrInvalidState   = errors.New("unknown or expired oauth state")
	ErrExchangeFailed = errors.New("oauth code exchange failed")
)

const (
	statePrefix = "oauth_state:"
	stateTTL    = 10 * time.Minute
)

// Credentials is the per-provider client configuration.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Provider wraps one OAuth2 provider: consent URL generation with a
// server-side state nonce, code exchange, and profile fetch. Providers are
// constructed once at startup and injected into the handlers; there is no
// global registry.
type Provider struct {
	name        string
	config      *oauth2.Config
	userinfoURL string
	decode      func([]byte) (services.OAuthProfile, error)
	rdb         *redis.Client
}

// NewGoogle builds the Google provider (scopes profile, email).
func NewGoogle(creds Credentials, rdb *redis.Client) *Provider {
	return &Provider{
		name: models.ProviderGoogle,
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURL,
			Scopes:       []string{"profile", "email"},
			Endpoint:     google.Endpoint,
		},
		userinfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		decode:      decodeGoogleProfile,
		rdb:         rdb,
	}
}

// NewFacebook builds the Facebook provider (scope email).
func NewFacebook(creds Credentials, rdb *redis.Client) *Provider {
	return &Provider{
		name: models.ProviderFacebook,
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURL,
			Scopes:       []string{"email"},
			Endpoint:     facebook.Endpoint,
		},
		userinfoURL: "https://graph.facebook.com/me?fields=id,email,first_name,last_name",
		decode:      decodeFacebookProfile,
		rdb:         rdb,
	}
}

func (p *Provider) Name() string {
	return p.name
}

// Start generates a state nonce, parks it in Redis, and returns the
// provider consent URL to redirect to.
func (p *Provider) Start(ctx context.Context) (string, error) {
	state := uuid.NewString()
	if err := p.rdb.Set(ctx, statePrefix+state, p.name, stateTTL).Err(); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return p.config.AuthCodeURL(state), nil
}

// Callback validates the state (single use), exchanges the authorization
// code, and fetches the provider profile.
func (p *Provider) Callback(ctx context.Context, state, code string) (services.OAuthProfile, error) {
	var zero services.OAuthProfile

	n, err := p.rdb.Del(ctx, statePrefix+state).Result()
	if err != nil {
		return zero, fmt.Errorf("check oauth state: %w", err)
	}
	if n == 0 {
		return zero, ErrInvalidState
	}

	tok, err := p.config.Exchange(ctx, code)
	if err != nil {
		return zero, ErrExchangeFailed
	}
	return p.fetchProfile(ctx, tok)
}

func (p *Provider) fetchProfile(ctx context.Context, tok *oauth2.Token) (services.OAuthProfile, error) {
	var zero services.OAuthProfile

	client := p.config.Client(ctx, tok)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userinfoURL, nil)
	if err != nil {
		return zero, fmt.Errorf("build userinfo request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return zero, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return zero, fmt.Errorf("userinfo request failed: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return zero, fmt.Errorf("read userinfo response: %w", err)
	}
	profile, err := p.decode(body)
	if err != nil {
		return zero, fmt.Errorf("decode %s profile: %w", p.name, err)
	}
	return profile, nil
}

func decodeGoogleProfile(data []byte) (services.OAuthProfile, error) {
	var raw struct {
		ID         string `json:"id"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return services.OAuthProfile{}, err
	}
	if raw.ID == "" {
		return services.OAuthProfile{}, errors.New("profile has no id")
	}
	return services.OAuthProfile{
		Provider:   models.ProviderGoogle,
		ProviderID: raw.ID,
		Email:      raw.Email,
		FirstName:  raw.GivenName,
		LastName:   raw.FamilyName,
	}, nil
}

func decodeFacebookProfile(data []byte) (services.OAuthProfile, error) {
	var raw struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return services.OAuthProfile{}, err
	}
	if raw.ID == "" {
		return services.OAuthProfile{}, errors.New("profile has no id")
	}
	return services.OAuthProfile{
		Provider:   models.ProviderFacebook,
		ProviderID: raw.ID,
		Email:      raw.Email,
		FirstName:  raw.FirstName,
		LastName:   raw.LastName,
	}, nil
}
