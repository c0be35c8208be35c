// Package store holds the key-value backends behind domain.KVStore.
package store

import (
	"context"
	"strings"

	"github.com/phenrril/printorder/internal/domain"
)

// Scoped namespaces every key under scope, giving each browser session its
// own cart and checkout slots on a shared backend.
func Scoped(kv domain.KVStore, scope string) domain.KVStore {
	return scoped{kv: kv, prefix: strings.TrimSpace(scope) + ":"}
}

type scoped struct {
	kv     domain.KVStore
	prefix string
}

func (s scoped) Get(ctx context.Context, key string) (string, error) {
	return s.kv.Get(ctx, s.prefix+key)
}

func (s scoped) Set(ctx context.Context, key, value string) error {
	return s.kv.Set(ctx, s.prefix+key, value)
}

func (s scoped) Remove(ctx context.Context, key string) error {
	return s.kv.Remove(ctx, s.prefix+key)
}
