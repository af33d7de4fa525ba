// Package metadata is the local key/value store backing the persisted
// session (the user record and the bearer token).
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyUser  = "user"
	KeyToken = "token"
)

// Repository is a byte-valued key/value store. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
