package evo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTripsOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Size = 42

	ctx := NewContext(context.Background(), opts)
	got, ok := FromContext(ctx)

	require.True(t, ok)
	assert.Same(t, opts, got)
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
}

func TestRequireFromContextMissing(t *testing.T) {
	_, err := RequireFromContext(context.Background())
	assert.ErrorIs(t, err, ErrOptionsNotFound)
}

func TestRequireFromContextPresent(t *testing.T) {
	opts := DefaultOptions()
	ctx := NewContext(context.Background(), opts)

	got, err := RequireFromContext(ctx)
	require.NoError(t, err)
	assert.Same(t, opts, got)
}
