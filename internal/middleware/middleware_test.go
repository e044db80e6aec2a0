package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	appcrypto "github.com/Lamdon-co/Backend/internal/crypto"
	"github.com/Lamdon-co/Backend/internal/models"
	"github.com/Lamdon-co/Backend/internal/repository"
	"github.com/Lamdon-co/Backend/internal/token"
)

/*
Middleware test cases:
1) Session: missing header, malformed header, garbage token all 401
2) Session: valid token for an existing user passes and attaches the id
3) Session: valid token for a deleted user is 404
4) APIKey: missing key 401, undecryptable key 401
5) APIKey: independently encrypted key for the same secret passes
6) RateLimiter: requests over the window limit are 429
*/

// stubRepo serves exactly one user by id.
type stubRepo struct {
	repository.UserRepository
	user *models.User
}

func (s *stubRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if s.user != nil && s.user.ID.Hex() == id {
		return s.user, nil
	}
	return nil, repository.ErrUserNotFound
}

func newSessionApp(t *testing.T, repo repository.UserRepository, iss *token.Issuer) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Get("/protected", Session(iss, repo, zap.NewNop()), func(c *fiber.Ctx) error {
		id, _ := UserID(c)
		return c.JSON(fiber.Map{"id": id})
	})
	return app
}

func TestSessionRejectsBadTokens(t *testing.T) {
	iss := token.NewIssuer("a", "r", time.Hour, time.Hour)
	app := newSessionApp(t, &stubRepo{}, iss)

	for _, header := range []string{"", "Bearer", "Bearer garbage", "Basic abc"} {
		req := httptest.NewRequest("GET", "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "header %q", header)
	}
}

func TestSessionPassesValidToken(t *testing.T) {
	iss := token.NewIssuer("a", "r", time.Hour, time.Hour)
	u := &models.User{ID: primitive.NewObjectID(), Email: "a@x.com", Role: models.RoleUser}
	app := newSessionApp(t, &stubRepo{user: u}, iss)

	tok, _, err := iss.IssueAccess(u.ID.Hex())
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSessionUserGone(t *testing.T) {
	iss := token.NewIssuer("a", "r", time.Hour, time.Hour)
	app := newSessionApp(t, &stubRepo{}, iss)

	tok, _, err := iss.IssueAccess(primitive.NewObjectID().Hex())
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAPIKeyMiddleware(t *testing.T) {
	aead, err := appcrypto.NewGCM(appcrypto.KeyFromSecret("boundary-secret"))
	require.NoError(t, err)

	reference, err := appcrypto.EncryptString(aead, "lamdon-key-1")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", APIKey(aead, reference), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	// No key.
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Undecryptable key.
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderAPIKey, "deadbeef")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// A fresh ciphertext of the same plaintext passes even though it
	// differs byte-for-byte from the reference.
	minted, err := appcrypto.EncryptString(aead, "lamdon-key-1")
	require.NoError(t, err)
	require.NotEqual(t, reference, minted)
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderAPIKey, minted)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Right cipher, wrong plaintext.
	wrong, err := appcrypto.EncryptString(aead, "other-key")
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderAPIKey, wrong)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	rl := NewRateLimiter(rdb, "test_rl", 2, time.Minute)
	app := fiber.New()
	app.Get("/", rl.ByIP(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
