package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/printorder/internal/domain"
)

func TestStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Get(ctx, "cart")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Set(ctx, "cart", "[]"))
	v, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	require.NoError(t, s.Set(ctx, "cart", "[1]"))
	v, _ = s.Get(ctx, "cart")
	assert.Equal(t, "[1]", v)

	require.NoError(t, s.Remove(ctx, "cart"))
	require.NoError(t, s.Remove(ctx, "cart"))
	_, err = s.Get(ctx, "cart")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New()
	assert.ErrorIs(t, s.Set(ctx, "k", "v"), context.Canceled)
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
