package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the JWT payload fields issued by the storefront auth service.
type Claims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Provider verifies RS256 JWTs issued by the storefront. The agent never
// signs tokens; it only holds the storefront's public key.
type Provider struct {
	publicKey *rsa.PublicKey
}

func NewProvider(publicKeyPath string) (*Provider, error) {
	pubBytes, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return &Provider{publicKey: pubKey}, nil
}

// NewProviderFromKey wraps an in-memory public key; used by tests.
func NewProviderFromKey(pub *rsa.PublicKey) *Provider {
	return &Provider{publicKey: pub}
}

func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Expired reports whether a bearer token is already past its exp claim.
// The signature is deliberately not checked: this is a preflight on tokens
// the agent forwards to the backend, used to short-circuit a request that
// would come back 401 anyway. Tokens without an exp claim, or that cannot
// be parsed at all, are forwarded and left to the backend to judge.
func Expired(tokenStr string, now time.Time) bool {
	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(tokenStr, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.Before(now)
}
