package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testCode   = "open-sesame"
	testSecret = "test-secret"
)

func newTestAuthService(t *testing.T) (*adminAuthService, *mockSessionRepository) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testCode), bcrypt.MinCost)
	require.NoError(t, err)

	sessions := newMockSessionRepository()
	svc := NewAdminAuthService(sessions, string(hash), testSecret, 24*time.Hour).(*adminAuthService)
	return svc, sessions
}

func TestAdminAuthService_LoginAndAuthenticate(t *testing.T) {
	svc, sessions := newTestAuthService(t)
	ctx := context.Background()

	signed, session, err := svc.Login(ctx, testCode)
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	assert.True(t, session.Active)
	assert.Len(t, session.Token, 43, "32 random bytes, unpadded base64url")
	assert.Contains(t, sessions.sessions, session.Token)

	claims, err := svc.Authenticate(ctx, signed)
	require.NoError(t, err)
	assert.Equal(t, session.Token, claims.ID)
	assert.Equal(t, "admin", claims.Subject)
}

func TestAdminAuthService_RejectsWrongCode(t *testing.T) {
	svc, sessions := newTestAuthService(t)
	ctx := context.Background()

	for _, code := range []string{"", "open-sesame!", "OPEN-SESAME"} {
		_, _, err := svc.Login(ctx, code)
		assert.ErrorIs(t, err, ErrInvalidAccessCode, code)
	}
	assert.Empty(t, sessions.sessions)
}

func TestAdminAuthService_Logout(t *testing.T) {
	svc, sessions := newTestAuthService(t)
	ctx := context.Background()

	signed, session, err := svc.Login(ctx, testCode)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, signed))
	assert.False(t, sessions.sessions[session.Token].Active)
	assert.True(t, sessions.sessions[session.Token] != nil, "row is kept")

	_, err = svc.Authenticate(ctx, signed)
	assert.ErrorIs(t, err, ErrInvalidSession)

	// logging out twice is harmless
	require.NoError(t, svc.Logout(ctx, signed))
	assert.ErrorIs(t, svc.Logout(ctx, "not-a-jwt"), ErrInvalidSession)
}

func TestAdminAuthService_ExpiredSession(t *testing.T) {
	svc, sessions := newTestAuthService(t)
	ctx := context.Background()

	start := time.Now()
	svc.now = func() time.Time { return start }
	signed, session, err := svc.Login(ctx, testCode)
	require.NoError(t, err)

	svc.now = func() time.Time { return start.Add(25 * time.Hour) }
	_, err = svc.Authenticate(ctx, signed)
	assert.ErrorIs(t, err, ErrInvalidSession)

	// still inside the JWT lifetime, but the session row drives validity
	svc.now = func() time.Time { return start.Add(time.Hour) }
	sessions.sessions[session.Token].ExpiresAt = start.Add(30 * time.Minute)
	_, err = svc.Authenticate(ctx, signed)
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.False(t, sessions.sessions[session.Token].Active, "expired session deactivated lazily")
}

func TestAdminAuthService_RejectsForeignTokens(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	signed, session, err := svc.Login(ctx, testCode)
	require.NoError(t, err)

	other := NewAdminAuthService(newMockSessionRepository(), "", "other-secret", time.Hour)
	_, err = other.Authenticate(ctx, signed)
	assert.ErrorIs(t, err, ErrInvalidSession)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{RegisteredClaims: jwt.RegisteredClaims{ID: session.Token, Subject: "admin"}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, unsigned)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestProperty_SessionTokensAreUnique(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("generated session tokens never repeat", prop.ForAll(
		func(n int) bool {
			seen := make(map[string]struct{}, n)
			for i := 0; i < n; i++ {
				token, err := newSessionToken()
				if err != nil {
					return false
				}
				if _, dup := seen[token]; dup {
					return false
				}
				seen[token] = struct{}{}
			}
			return true
		},
		gen.IntRange(1, 200),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestHashAccessCode(t *testing.T) {
	hash, err := HashAccessCode(testCode)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(testCode)))

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, BcryptCost, cost)
}
