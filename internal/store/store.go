package store

import "context"

// Store persists serialized board payloads by key. The sanitizer is the only
// consumer of what comes back out; nothing here inspects the payload.
type Store interface {
	// LoadBoard returns the stored payload, or (nil, nil) when no board
	// exists under the key.
	LoadBoard(ctx context.Context, key string) ([]byte, error)
	SaveBoard(ctx context.Context, key string, payload []byte) error
	DeleteBoard(ctx context.Context, key string) error
	Close() error
}
