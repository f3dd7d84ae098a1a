// Package token mints and verifies the HS256 access and refresh tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/eduventure/auth-service/internal/core/domain"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims is the payload of both token kinds.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Role   string `json:"role,omitempty"`
}

// Issuer signs and verifies tokens with a single shared secret.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

// Option customises an Issuer.
type Option func(*Issuer)

// WithClock overrides the time source used for iat/exp and verification.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(secret string, opts ...Option) *Issuer {
	i := &Issuer{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// IssueAccessToken returns a token valid for AccessTokenTTL.
func (i *Issuer) IssueAccessToken(userID, role string) (string, error) {
	return i.sign(userID, role, AccessTokenTTL)
}

// IssueRefreshToken returns a token valid for RefreshTokenTTL. Refresh tokens
// carry no role; the role is re-read when a new access token is minted.
func (i *Issuer) IssueRefreshToken(userID string) (string, error) {
	return i.sign(userID, "", RefreshTokenTTL)
}

// IssuePair mints an access and a refresh token for the same identity.
func (i *Issuer) IssuePair(userID, role string) (domain.TokenPair, error) {
	access, err := i.IssueAccessToken(userID, role)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := i.IssueRefreshToken(userID)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Verify checks signature and expiry. It returns domain.ErrTokenExpired for a
// well-signed token past its expiry and domain.ErrTokenInvalid otherwise.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
	if !tkn.Valid || claims.UserID == "" {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

func (i *Issuer) sign(userID, role string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Role:   role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
