package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("auth: missing bearer token")
	ErrTokenExpired = errors.New("auth: bearer token expired")
)

// Token is the admin bearer credential. The console never verifies the
// signature; it only reads the expiry so expired sessions fail before any
// request goes out. Opaque (non JWT) tokens are accepted as never expiring.
type Token struct {
	raw       string
	expiresAt time.Time
	subject   string
	role      string
}

func NewToken(raw string) Token {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Bearer "))
	tok := Token{raw: raw}
	if raw == "" {
		return tok
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return tok
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tok.expiresAt = exp.Time
	}
	if sub, err := claims.GetSubject(); err == nil {
		tok.subject = sub
	}
	if role, ok := claims["role"].(string); ok {
		tok.role = role
	}
	return tok
}

func (t Token) Empty() bool {
	return t.raw == ""
}

func (t Token) String() string {
	return t.raw
}

func (t Token) Bearer() string {
	return "Bearer " + t.raw
}

// ExpiresAt reports the exp claim, if the token carries one.
func (t Token) ExpiresAt() (time.Time, bool) {
	return t.expiresAt, !t.expiresAt.IsZero()
}

func (t Token) Subject() string {
	return t.subject
}

func (t Token) Role() string {
	return t.role
}

// Check returns ErrNoToken or ErrTokenExpired when the token cannot be used at now.
func (t Token) Check(now time.Time) error {
	if t.Empty() {
		return ErrNoToken
	}
	if exp, ok := t.ExpiresAt(); ok && !now.Before(exp) {
		return ErrTokenExpired
	}
	return nil
}

// Redacted is safe to log.
func (t Token) Redacted() string {
	if len(t.raw) <= 8 {
		return "****"
	}
	return t.raw[:4] + "…" + t.raw[len(t.raw)-4:]
}
