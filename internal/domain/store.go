package domain

import (
	"context"
	"time"
)

const (
	KeyCart     = "cart"
	KeyCheckout = "checkout"
)

// KVStore is the persistent key-value port shared by the configurator and
// the checkout. Get returns ErrNotFound for absent keys; Remove of an
// absent key is not an error.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// StoreEntry is the row layout of the SQL-backed store.
type StoreEntry struct {
	Key       string    `gorm:"primaryKey;size:200"`
	Value     string    `gorm:"type:text"`
	UpdatedAt time.Time `gorm:"index"`
}
