package chunkbuf_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dashql-run/dashql-core/internal/chunkbuf"
)

func TestSetGet(t *testing.T) {
	b := chunkbuf.New[int]()
	b.Set(3, 42)
	v, ok := b.Get(3)
	require.True(t, ok)
	require.Equal(t, 42, v)
}

func TestGetUnsetKey(t *testing.T) {
	b := chunkbuf.New[int]()
	_, ok := b.Get(10)
	require.False(t, ok)
}

func TestScopeClearsOnlyItsOwnSlots(t *testing.T) {
	b := chunkbuf.New[string]()
	b.Set(1, "outer")

	release := b.Scope()
	b.Set(2, "inner")
	v, ok := b.Get(2)
	require.True(t, ok)
	require.Equal(t, "inner", v)
	release()

	_, ok = b.Get(2)
	require.False(t, ok)

	v, ok = b.Get(1)
	require.True(t, ok)
	require.Equal(t, "outer", v)
}

func TestBufferReusedAcrossScopes(t *testing.T) {
	b := chunkbuf.New[int]()
	for i := 0; i < 3; i++ {
		release := b.Scope()
		b.Set(5, i)
		v, ok := b.Get(5)
		require.True(t, ok)
		require.Equal(t, i, v)
		release()
		_, ok = b.Get(5)
		require.False(t, ok)
	}
}
