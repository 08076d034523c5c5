package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-keyvault/pkg/types"
)

func TestBackend_ReadWriteRemove(t *testing.T) {
	ctx := context.Background()
	b := New()
	defer b.Close()

	require.NoError(t, b.Write(ctx, "svc/db", []byte("blob")))

	got, err := b.Read(ctx, "svc/db")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob"), got)

	// 读到的是副本
	got[0] = 'X'
	again, _ := b.Read(ctx, "svc/db")
	assert.Equal(t, []byte("blob"), again)

	require.NoError(t, b.Remove(ctx, "svc/db"))
	_, err = b.Read(ctx, "svc/db")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, b.Remove(ctx, "svc/db"), types.ErrNotFound)
}

func TestBackend_WriteCopiesInput(t *testing.T) {
	ctx := context.Background()
	b := New()

	data := []byte("abc")
	require.NoError(t, b.Write(ctx, "k", data))
	data[0] = 'z'

	got, _ := b.Read(ctx, "k")
	assert.Equal(t, []byte("abc"), got)
}

func TestBackend_Names(t *testing.T) {
	ctx := context.Background()
	b := New()
	for i := 0; i < 7; i++ {
		require.NoError(t, b.Write(ctx, fmt.Sprintf("k%d", i), nil))
	}

	names, more, err := b.Names(ctx, "", 3)
	require.NoError(t, err)
	assert.True(t, more)
	assert.Equal(t, []string{"k0", "k1", "k2"}, names)

	names, more, err = b.Names(ctx, "k5", 3)
	require.NoError(t, err)
	assert.False(t, more)
	assert.Equal(t, []string{"k6"}, names)
}

func TestBackend_InvalidName(t *testing.T) {
	b := New()
	assert.ErrorIs(t, b.Write(context.Background(), "", nil), types.ErrInput)
	assert.ErrorIs(t, b.Write(context.Background(), "a\nb", nil), types.ErrInvalidKeyID)
}

func TestBackend_Close(t *testing.T) {
	ctx := context.Background()
	b := New()
	require.NoError(t, b.Write(ctx, "k", []byte("v")))
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	_, err := b.Read(ctx, "k")
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	assert.Equal(t, 0, b.Len())
}

func TestBackend_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, New().Write(ctx, "k", nil), context.Canceled)
}
