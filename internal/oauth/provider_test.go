package oauth

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lamdon-co/Backend/internal/models"
)

/*
OAuth provider test cases:
1) Start produces a consent URL carrying a state nonce parked in Redis
2) state nonce is single use: unknown state fails the callback
3) provider constructors carry the right scopes
4) profile decoders map provider payloads to OAuthProfile
*/

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestStartStoresState(t *testing.T) {
	rdb := newTestRedis(t)
	p := NewGoogle(Credentials{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb"}, rdb)

	consent, err := p.Start(context.Background())
	require.NoError(t, err)

	u, err := url.Parse(consent)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)

	stored, err := rdb.Get(context.Background(), statePrefix+state).Result()
	require.NoError(t, err)
	assert.Equal(t, models.ProviderGoogle, stored)
}

func TestCallbackRejectsUnknownState(t *testing.T) {
	rdb := newTestRedis(t)
	p := NewFacebook(Credentials{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb"}, rdb)

	_, err := p.Callback(context.Background(), "never-issued", "code")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestProviderScopes(t *testing.T) {
	rdb := newTestRedis(t)

	g := NewGoogle(Credentials{ClientID: "id"}, rdb)
	consent, err := g.Start(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.Contains(consent, "scope=profile+email") ||
		strings.Contains(consent, "scope=profile%20email"))

	f := NewFacebook(Credentials{ClientID: "id"}, rdb)
	consent, err = f.Start(context.Background())
	require.NoError(t, err)
	assert.Contains(t, consent, "scope=email")
}

func TestDecodeGoogleProfile(t *testing.T) {
	p, err := decodeGoogleProfile([]byte(`{"id":"g-1","email":"a@x.com","given_name":"Ada","family_name":"Lovelace"}`))
	require.NoError(t, err)
	assert.Equal(t, models.ProviderGoogle, p.Provider)
	assert.Equal(t, "g-1", p.ProviderID)
	assert.Equal(t, "Ada", p.FirstName)

	_, err = decodeGoogleProfile([]byte(`{}`))
	assert.Error(t, err)
}

func TestDecodeFacebookProfile(t *testing.T) {
	p, err := decodeFacebookProfile([]byte(`{"id":"f-1","email":"b@x.com","first_name":"Alan","last_name":"Turing"}`))
	require.NoError(t, err)
	assert.Equal(t, models.ProviderFacebook, p.Provider)
	assert.Equal(t, "f-1", p.ProviderID)
	assert.Equal(t, "Turing", p.LastName)
}
