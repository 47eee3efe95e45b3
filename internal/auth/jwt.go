// Package auth provides bearer-token issuance/validation and password
// hashing for the API.
//
// AUTHENTICATION FLOW:
//  1. POST /api/auth/register or /api/auth/login → server issues a JWT
//  2. The client sends it back on every request: Authorization: Bearer <jwt>
//  3. Middleware validates the signature and expiry, and puts the user id
//     into the request context for handlers to read
//
// The token is stateless — identity and expiry live inside the signed
// payload, so validation needs no database lookup. There is no revocation
// list and no refresh mechanism: rotating the secret invalidates every
// outstanding token, and an expired token means the client logs in again.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 7 * 24 * time.Hour

// Sentinel errors returned by Validate. Callers use errors.Is to tell an
// expired token (client should re-authenticate) from a malformed or
// tampered one.
var (
	ErrTokenExpired = errors.New("auth: token expired")
	ErrTokenInvalid = errors.New("auth: invalid token")
)

// Claims is what a validated token asserts about its bearer.
type Claims struct {
	UserID string
	Email  string
}

// TokenService signs and verifies JWTs with a process-wide HMAC secret.
// The secret is loaded once at startup and injected here — nothing reads
// it from the environment at call time.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// tokenClaims is the JWT payload. RegisteredClaims carries the standard
// "sub" / "iat" / "exp" fields; Email rides alongside as a custom claim so
// the frontend can show who is logged in without an extra lookup.
type tokenClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Generate creates and signs a new HS256 token for the given user identity,
// valid for TokenTTL from now.
func (s *TokenService) Generate(userID, email string) (string, error) {
	return s.generate(userID, email, TokenTTL)
}

// GenerateWithDuration creates a token with a custom expiry. Tests use this
// to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID, email string, d time.Duration) (string, error) {
	return s.generate(userID, email, d)
}

func (s *TokenService) generate(userID, email string, d time.Duration) (string, error) {
	now := time.Now()

	c := tokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns its claims.
//
// Restricting the accepted algorithms to HS256 prevents algorithm-confusion
// attacks where a token signed with "none" slips through.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
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
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	c, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	return &Claims{UserID: c.Subject, Email: c.Email}, nil
}
