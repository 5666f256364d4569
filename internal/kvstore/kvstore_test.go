package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	in := map[int64]int{1: 2, 7: 3}
	require.NoError(t, s.Set(ctx, "cart:lines", in))

	var out map[int64]int
	found, err := s.Get(ctx, "cart:lines", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestMemoryStoreMissingKey(t *testing.T) {
	s := NewMemoryStore()

	var out map[string]int
	found, err := s.Get(context.Background(), "nope", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStoreMalformedValueTreatedAsAbsent(t *testing.T) {
	s := NewMemoryStore()
	s.SetRaw("broken", []byte("{not json"))

	var out map[string]int
	found, err := s.Get(context.Background(), "broken", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "k", 42))
	require.NoError(t, s.Delete(ctx, "k"))

	var out int
	found, err := s.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)

	// deleting a missing key is not an error
	assert.NoError(t, s.Delete(ctx, "k"))
}
