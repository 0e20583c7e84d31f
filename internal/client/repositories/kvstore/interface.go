package kvstore

import "context"

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, values map[string][]byte) error
	DeleteMany(ctx context.Context, keys ...string) error
	Close() error
}
