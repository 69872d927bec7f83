// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/danielhkuo/ballot-core/apperrors"
	"github.com/danielhkuo/ballot-core/models"
)

var (
	ErrMissingToken = apperrors.New(apperrors.KindUnauthorized, "missing bearer token")
	ErrInvalidToken = apperrors.New(apperrors.KindUnauthorized, "invalid or expired token")
)

// Claims carried by a bearer token. The subject is the voter id.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

type cachedIdentity struct {
	voter   models.Voter
	expires time.Time
}

// Gate resolves bearer tokens to voter identities.
type Gate struct {
	secret []byte
	issuer string
	cache  *lru.Cache[string, cachedIdentity]
	now    func() time.Time
}

// NewGate creates a gate verifying HS256 tokens signed with secret.
// cacheSize bounds the number of verified tokens kept in memory.
func NewGate(secret, issuer string, cacheSize int) (*Gate, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if cacheSize <= 0 {
		cacheSize = 1
	}
	cache, err := lru.New[string, cachedIdentity](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create identity cache: %w", err)
	}
	return &Gate{
		secret: []byte(secret),
		issuer: issuer,
		cache:  cache,
		now:    time.Now,
	}, nil
}

// Resolve verifies token and returns the identity it carries.
func (g *Gate) Resolve(token string) (models.Voter, error) {
	if token == "" {
		return models.Voter{}, ErrMissingToken
	}

	now := g.now()
	if hit, ok := g.cache.Get(token); ok {
		if now.Before(hit.expires) {
			return hit.voter, nil
		}
		g.cache.Remove(token)
		return models.Voter{}, ErrInvalidToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(g.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return models.Voter{}, apperrors.Wrap(apperrors.KindUnauthorized, ErrInvalidToken.Message, err)
	}

	voter, err := claims.voter()
	if err != nil {
		return models.Voter{}, err
	}
	g.cache.Add(token, cachedIdentity{voter: voter, expires: claims.ExpiresAt.Time})
	return voter, nil
}

func (c *Claims) voter() (models.Voter, error) {
	if c.Subject == "" {
		return models.Voter{}, apperrors.New(apperrors.KindUnauthorized, "token has no subject")
	}
	switch c.Role {
	case models.RoleAdmin, models.RoleVoter:
	default:
		return models.Voter{}, apperrors.New(apperrors.KindUnauthorized, "token has an unknown role")
	}
	return models.Voter{ID: c.Subject, Username: c.Username, Role: c.Role}, nil
}

// Issue mints a token for v that expires after ttl.
func (g *Gate) Issue(v models.Voter, ttl time.Duration) (string, error) {
	if v.ID == "" {
		return "", errors.New("voter id is required")
	}
	if v.Role != models.RoleAdmin && v.Role != models.RoleVoter {
		return "", fmt.Errorf("unknown role %q", v.Role)
	}
	now := g.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   v.ID,
			Issuer:    g.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: v.Username,
		Role:     v.Role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

type voterKey struct{}

// WithVoter attaches the resolved identity to ctx.
func WithVoter(ctx context.Context, v models.Voter) context.Context {
	return context.WithValue(ctx, voterKey{}, v)
}

// VoterFrom returns the identity attached by WithVoter.
func VoterFrom(ctx context.Context) (models.Voter, bool) {
	v, ok := ctx.Value(voterKey{}).(models.Voter)
	return v, ok
}
