// Package auth provides the session token codec, password hashing, the
// role policy, and the request guard middleware.
//
// SESSION MODEL:
// Sessions are stateless. A login issues a signed token carrying
// {userID, email, role, issuedAt}; the server stores nothing. Every
// request re-verifies the signature and TTL and re-resolves the user
// from the database — one lookup per request in exchange for zero
// server-side session storage and no revocation list.
//
// WHY SIGNED TOKENS?
// A reversible encoding without a MAC lets any holder of the scheme
// mint arbitrary claims. HS256 (HMAC-SHA256) makes the token
// tamper-evident: the payload is readable, but changing a single byte
// invalidates the signature.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/inkwell-cms/inkwell/internal/model"
)

// TokenTTL is the fixed session lifetime. A claim older than this is
// unconditionally invalid regardless of signature validity; there is no
// refresh and no server-side revocation.
const TokenTTL = 24 * time.Hour

const issuer = "inkwell"

// Claims is the decoded payload of a session token.
type Claims struct {
	UserID   string
	Email    string
	Role     model.Role
	IssuedAt time.Time
}

// tokenClaims is the wire shape. Subject carries the user ID; email and
// role ride as private claims so the guard can log denials without a
// lookup, but authorization always re-reads the role from the database.
type tokenClaims struct {
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies session tokens.
// The same HMAC secret is used for both operations.
type TokenService struct {
	secret []byte
	// now is the clock used for issuing and verifying. Overridable in
	// tests to pin the TTL boundary exactly.
	now func() time.Time
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: token secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), now: time.Now}, nil
}

// Issue creates and signs a session token for the given user.
// The token expires TokenTTL after issuance.
func (s *TokenService) Issue(user *model.User) (string, error) {
	if user == nil || user.ID == "" {
		return "", errors.New("auth: cannot issue token without a user")
	}
	return s.issueAt(user, s.now())
}

// issueAt signs a token as if it were issued at the given instant.
// Split out so the TTL boundary tests can issue back-dated tokens.
func (s *TokenService) issueAt(user *model.User, issuedAt time.Time) (string, error) {
	c := tokenClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and checks a session token, returning its claims.
//
// Verify is a pure function of (token, wall clock): it rejects a
// malformed structure, a bad or missing signature, a signing algorithm
// other than HS256 (algorithm-confusion guard), a foreign issuer, and a
// token past its TTL. It never touches storage — whether the user still
// exists is the request guard's next gate.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&tokenClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("auth: token has no subject")
	}

	return &Claims{
		UserID:   c.Subject,
		Email:    c.Email,
		Role:     c.Role,
		IssuedAt: c.IssuedAt.Time,
	}, nil
}
