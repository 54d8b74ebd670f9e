// Package auth issues and verifies the signed session token and hashes
// passwords.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nretrorsum/work-test/internal/apperr"
)

// CookieName is the name of the cookie that carries the session token.
const CookieName = "access_token"

// Claims are the custom claims embedded in every session token. Subject holds
// the username; the caller re-resolves it against the credential store.
type Claims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), now: time.Now}
}

// Issue returns a signed token for the subject and its expiry time.
func (i *TokenIssuer) Issue(username, userID, role string, ttl time.Duration) (string, time.Time, error) {
	now := i.now()
	expires := now.Add(ttl)
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Verify checks signature and expiry. Expired tokens yield apperr.Expired;
// every other failure yields apperr.Unauthenticated.
func (i *TokenIssuer) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, apperr.Unauthenticatedf("not authenticated")
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, &apperr.Error{Kind: apperr.Expired, Msg: "token expired", Err: err}
	}
	if err != nil || !parsed.Valid {
		return nil, &apperr.Error{Kind: apperr.Unauthenticated, Msg: "could not validate credentials", Err: err}
	}
	if claims.Subject == "" {
		return nil, apperr.Unauthenticatedf("invalid token credentials")
	}
	return claims, nil
}
