package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nretrorsum/work-test/internal/apperr"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

func TestIssueVerify_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSecret)
	token, exp, err := issuer.Issue("alice", "11111111-1111-1111-1111-111111111111", "admin", 15*time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 2*time.Second)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", claims.UserID)
}

func TestVerify_Expired(t *testing.T) {
	issuer := NewTokenIssuer(testSecret)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := issuer.Issue("alice", "id", "cashier", 15*time.Minute)
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)
	assert.True(t, apperr.Is(err, apperr.Expired))
}

func TestVerify_Unauthenticated(t *testing.T) {
	issuer := NewTokenIssuer(testSecret)
	other, _, err := NewTokenIssuer("another_secret_that_is_long_enough").Issue("alice", "id", "admin", time.Minute)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":         "",
		"malformed":     "this.is.garbage",
		"bad signature": other,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Verify(token)
			assert.True(t, apperr.Is(err, apperr.Unauthenticated))
		})
	}
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	claims := jwt.MapClaims{"sub": "alice", "role": "admin", "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenIssuer(testSecret).Verify(token)
	assert.True(t, apperr.Is(err, apperr.Unauthenticated))
}

func TestVerify_MissingSubject(t *testing.T) {
	claims := jwt.MapClaims{"role": "admin", "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewTokenIssuer(testSecret).Verify(token)
	assert.True(t, apperr.Is(err, apperr.Unauthenticated))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
