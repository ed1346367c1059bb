package session

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/moonmatch/internal/client/repositories/metadata"
	"github.com/golang-jwt/jwt/v5"
)

// StoredToken reads the bearer token straight from session storage on every
// call, so the gateway never holds a stale copy. It can be built before the
// Store that writes the token.
type StoredToken struct {
	repo metadata.Repository
}

func NewStoredToken(repo metadata.Repository) *StoredToken {
	return &StoredToken{repo: repo}
}

// Token returns the persisted token, or "" when there is none.
func (t *StoredToken) Token(ctx context.Context) (string, error) {
	v, err := t.repo.Get(ctx, metadata.KeyToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return string(v), nil
}

// TokenExpiry reports the exp claim of a JWT bearer without verifying its
// signature, for display only. Opaque
// tokens, or JWTs without exp, return false.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
