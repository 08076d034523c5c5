//go:build linux

package keyring

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-keyvault/pkg/types"
)

// 使用进程密钥环，进程退出后内核自动回收
func TestSysKeyctl_RoundTrip(t *testing.T) {
	ctx := context.Background()
	b, err := Open(Config{Namespace: "test-" + uuid.NewString(), Parent: ParentProcess})
	if errors.Is(err, types.ErrBackendUnavailable) || errors.Is(err, types.ErrPermissionDenied) {
		t.Skipf("kernel keyring unavailable: %v", err)
	}
	require.NoError(t, err)
	defer b.Close()

	if err := b.Write(ctx, "svc/db-password", []byte("ciphertext")); err != nil {
		t.Skipf("kernel keyring not writable: %v", err)
	}

	got, err := b.Read(ctx, "svc/db-password")
	require.NoError(t, err)
	assert.Equal(t, []byte("ciphertext"), got)

	names, _, err := b.Names(ctx, "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"svc/db-password"}, names)

	require.NoError(t, b.Remove(ctx, "svc/db-password"))
	_, err = b.Read(ctx, "svc/db-password")
	assert.ErrorIs(t, err, types.ErrNotFound)
}
