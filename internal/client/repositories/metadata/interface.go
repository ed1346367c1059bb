package metadata

import (
	"context"
)

const (
	KeyUser     = "mm_user"
	KeyToken    = "mm_token"
	KeyLoggedIn = "mm_logged_in"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error

	// Update runs fn against a repository whose writes are applied together:
	// either all of them or none.
	Update(ctx context.Context, fn func(ctx context.Context, r Repository) error) error
}
