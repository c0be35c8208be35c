package usecase

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/phenrril/printorder/internal/domain"
)

type countingAsset struct {
	name        string
	contentType string
	body        string
	opens       int
}

func (a *countingAsset) Name() string        { return a.name }
func (a *countingAsset) ContentType() string { return a.contentType }
func (a *countingAsset) Open() (io.ReadCloser, error) {
	a.opens++
	return io.NopCloser(strings.NewReader(a.body)), nil
}

// fakeEncoder reads the asset and emits a deterministic data URL.
type fakeEncoder struct {
	err error
}

func (e fakeEncoder) Encode(ctx context.Context, a domain.Asset) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	f, err := a.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return "data:" + a.ContentType() + ";base64," + string(b), nil
}

var errStoreDown = errors.New("store down")

// failingStore wraps a store and fails the selected operations.
type failingStore struct {
	domain.KVStore
	failGet, failSet, failRemove bool
}

func (s failingStore) Get(ctx context.Context, key string) (string, error) {
	if s.failGet {
		return "", errStoreDown
	}
	return s.KVStore.Get(ctx, key)
}

func (s failingStore) Set(ctx context.Context, key, value string) error {
	if s.failSet {
		return errStoreDown
	}
	return s.KVStore.Set(ctx, key, value)
}

func (s failingStore) Remove(ctx context.Context, key string) error {
	if s.failRemove {
		return errStoreDown
	}
	return s.KVStore.Remove(ctx, key)
}
