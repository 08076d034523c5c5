package securestore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, it interface {
	Next() bool
	KeyID() string
	Err() error
}) []string {
	t.Helper()
	var ids []string
	for it.Next() {
		ids = append(ids, it.KeyID())
	}
	require.NoError(t, it.Err())
	return ids
}

func TestIterator_Paging(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemoryStore(t, func(c *Config) { c.PageSize = 3 })

	var want []string
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("k%02d", i)
		want = append(want, id)
		require.NoError(t, s.Put(ctx, id, []byte("v")))
	}

	it, err := s.List(ctx)
	require.NoError(t, err)
	defer it.Close()

	assert.Equal(t, want, collect(t, it))
	assert.False(t, it.Next())
	assert.Empty(t, it.KeyID())
}

func TestIterator_Empty(t *testing.T) {
	s, _ := newMemoryStore(t)

	it, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, collect(t, it))
}

func TestIterator_SkipsReserved(t *testing.T) {
	ctx := context.Background()
	s, b := newMemoryStore(t, func(c *Config) {
		c.Passphrase = []byte("pw")
		c.MasterKDF = fastKDF()
		c.PageSize = 1
	})
	require.NoError(t, s.Put(ctx, "a", []byte("1")))
	require.NoError(t, s.Put(ctx, "z", []byte("2")))

	// 元数据条目在后端中存在
	_, err := b.Read(ctx, metaName)
	require.NoError(t, err)

	it, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "z"}, collect(t, it))
}

func TestIterator_Reset(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemoryStore(t, func(c *Config) { c.PageSize = 2 })
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Put(ctx, id, []byte("v")))
	}

	it, err := s.List(ctx)
	require.NoError(t, err)
	require.True(t, it.Next())
	require.True(t, it.Next())

	it.Reset()
	assert.Equal(t, []string{"a", "b", "c"}, collect(t, it))

	it.Close()
	it.Reset()
	assert.False(t, it.Next())
}

func TestIterator_SeesLaterWrites(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemoryStore(t, func(c *Config) { c.PageSize = 1 })
	require.NoError(t, s.Put(ctx, "a", []byte("v")))

	it, err := s.List(ctx)
	require.NoError(t, err)
	require.True(t, it.Next())
	assert.Equal(t, "a", it.KeyID())

	// 惰性拉取，后续页可以看到新写入
	require.NoError(t, s.Put(ctx, "b", []byte("v")))
	require.True(t, it.Next())
	assert.Equal(t, "b", it.KeyID())
	assert.False(t, it.Next())
}

func TestIterator_StoreClosed(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemoryStore(t)
	require.NoError(t, s.Put(ctx, "a", []byte("v")))

	it, err := s.List(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.False(t, it.Next())
	assert.ErrorIs(t, it.Err(), ErrClosed)

	_, err = s.List(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestIterator_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, _ := newMemoryStore(t)
	require.NoError(t, s.Put(context.Background(), "a", []byte("v")))

	it, err := s.List(ctx)
	require.NoError(t, err)
	cancel()

	assert.False(t, it.Next())
	assert.ErrorIs(t, it.Err(), context.Canceled)
}
