package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
Token issuer test cases:
1) issue/verify access round trip recovers the user id
2) issue/verify refresh round trip recovers the user id
3) tampered signature fails verification
4) refresh token rejected by VerifyAccess (and vice versa)
5) expired token fails with ErrTokenExpired
6) garbage input fails with ErrInvalidToken
*/

func newTestIssuer(accessTTL, refreshTTL time.Duration) *Issuer {
	return NewIssuer("access-secret", "refresh-secret", accessTTL, refreshTTL)
}

func TestAccessRoundTrip(t *testing.T) {
	iss := newTestIssuer(time.Hour, time.Hour)

	tok, exp, err := iss.IssueAccess("64f0c1a2b3d4e5f60718293a")
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	id, err := iss.VerifyAccess(tok)
	require.NoError(t, err)
	assert.Equal(t, "64f0c1a2b3d4e5f60718293a", id)
}

func TestRefreshRoundTrip(t *testing.T) {
	iss := newTestIssuer(time.Hour, time.Hour)

	tok, _, err := iss.IssueRefresh("64f0c1a2b3d4e5f60718293a")
	require.NoError(t, err)

	id, err := iss.VerifyRefresh(tok)
	require.NoError(t, err)
	assert.Equal(t, "64f0c1a2b3d4e5f60718293a", id)
}

func TestTamperedSignatureFails(t *testing.T) {
	iss := newTestIssuer(time.Hour, time.Hour)

	tok, _, err := iss.IssueRefresh("user-1")
	require.NoError(t, err)

	// Flip the last character of the signature segment.
	last := tok[len(tok)-1]
	var flipped byte = 'A'
	if last == 'A' {
		flipped = 'B'
	}
	tampered := tok[:len(tok)-1] + string(flipped)

	_, err = iss.VerifyRefresh(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAudienceCrossUseRejected(t *testing.T) {
	iss := newTestIssuer(time.Hour, time.Hour)

	access, _, err := iss.IssueAccess("user-1")
	require.NoError(t, err)
	refresh, _, err := iss.IssueRefresh("user-1")
	require.NoError(t, err)

	_, err = iss.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	iss := newTestIssuer(-time.Minute, -time.Minute)

	tok, _, err := iss.IssueAccess("user-1")
	require.NoError(t, err)

	_, err = iss.VerifyAccess(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestGarbageToken(t *testing.T) {
	iss := newTestIssuer(time.Hour, time.Hour)

	_, err := iss.VerifyAccess("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
