// Package auth verifies the bearer tokens the chat platform attaches to
// every callback delivery.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSigningSecret = errors.New("auth: signing secret required")
	ErrMissingIssuer        = errors.New("auth: issuer required")
	ErrMissingToken         = errors.New("auth: callback token required")
	ErrInvalidToken         = errors.New("auth: invalid callback token")
	ErrExpiredToken         = errors.New("auth: callback token expired")
)

// CallbackVerifierConfig describes how to validate platform-signed JWTs.
type CallbackVerifierConfig struct {
	SigningSecret []byte
	Issuer        string
	Audience      string
	Clock         func() time.Time
}

// CallbackVerifier validates the HS256 JWT carried on inbound callbacks.
type CallbackVerifier struct {
	signingSecret []byte
	issuer        string
	audience      string
	clock         func() time.Time
}

// NewCallbackVerifier constructs a verifier with the provided configuration.
func NewCallbackVerifier(cfg CallbackVerifierConfig) (*CallbackVerifier, error) {
	if len(cfg.SigningSecret) == 0 {
		return nil, ErrMissingSigningSecret
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		return nil, ErrMissingIssuer
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &CallbackVerifier{
		signingSecret: append([]byte(nil), cfg.SigningSecret...),
		issuer:        issuer,
		audience:      strings.TrimSpace(cfg.Audience),
		clock:         clock,
	}, nil
}

// VerifyToken validates the supplied JWT string.
func (v *CallbackVerifier) VerifyToken(tokenString string) error {
	token := strings.TrimSpace(tokenString)
	if token == "" {
		return ErrMissingToken
	}

	options := []jwt.ParserOption{
		jwt.WithTimeFunc(v.clock),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
	}
	if v.audience != "" {
		options = append(options, jwt.WithAudience(v.audience))
	}

	parsed, err := jwt.Parse(
		token,
		func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("%w: unexpected signing algorithm %s", ErrInvalidToken, t.Method.Alg())
			}
			return v.signingSecret, nil
		},
		options...,
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if parsed == nil || !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}

// VerifyRequest extracts the Authorization bearer token and validates it.
func (v *CallbackVerifier) VerifyRequest(r *http.Request) error {
	if r == nil {
		return ErrMissingToken
	}
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ErrMissingToken
	}
	return v.VerifyToken(strings.TrimPrefix(header, "Bearer "))
}
