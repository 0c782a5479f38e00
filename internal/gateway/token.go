package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource yields the bearer token for the next request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed token. The empty token sends no Authorization
// header.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

// Claims are the fields the client reads from an access token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id,omitempty"`
}

// JWTToken holds an access token issued elsewhere. The client cannot verify
// the signature; it only reads the claims to fill X-User-ID and to stop
// sending a token the server would reject anyway.
type JWTToken struct {
	raw    string
	claims Claims
	now    func() time.Time
}

// ParseJWT reads raw without verifying it.
func ParseJWT(raw string) (*JWTToken, error) {
	raw = strings.TrimSpace(raw)
	claims := Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return &JWTToken{raw: raw, claims: claims, now: time.Now}, nil
}

// Subject is user_id if present, sub otherwise.
func (t *JWTToken) Subject() string {
	if t.claims.UserID != "" {
		return t.claims.UserID
	}
	return t.claims.Subject
}

func (t *JWTToken) Token(context.Context) (string, error) {
	if exp := t.claims.ExpiresAt; exp != nil && !t.now().Before(exp.Time) {
		return "", ErrTokenExpired
	}
	return t.raw, nil
}
