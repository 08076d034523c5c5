package credvault

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/dep2p/go-keyvault/pkg/types"
)

// hookVault 在 go-keyring 的 mock 之上按条目名注入阻塞或失败
type hookVault struct {
	platformVault

	mu      sync.Mutex
	block   map[string]chan struct{}
	failSet map[string]error
}

func newHookVault() *hookVault {
	keyring.MockInit()
	return &hookVault{block: map[string]chan struct{}{}, failSet: map[string]error{}}
}

func (h *hookVault) Set(service, user, secret string) error {
	h.mu.Lock()
	gate, err := h.block[user], h.failSet[user]
	h.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return err
	}
	return h.platformVault.Set(service, user, secret)
}

func openMock(t *testing.T, ns string) *Backend {
	t.Helper()
	keyring.MockInit()
	b, err := Open(Config{Namespace: ns})
	require.NoError(t, err)
	return b
}

func TestBackend_ReadWriteRemove(t *testing.T) {
	ctx := context.Background()
	b := openMock(t, "default")
	assert.Equal(t, "go-keyvault/default", b.Service())

	require.NoError(t, b.Write(ctx, "svc/db", []byte{0, 1, 2, 0xff}))
	got, err := b.Read(ctx, "svc/db")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 0xff}, got)

	// 平台中保存的是 base64 文本
	raw, err := keyring.Get("go-keyvault/default", "svc/db")
	require.NoError(t, err)
	assert.Equal(t, "AAEC/w==", raw)

	require.NoError(t, b.Remove(ctx, "svc/db"))
	_, err = b.Read(ctx, "svc/db")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, b.Remove(ctx, "svc/db"), types.ErrNotFound)
}

func TestBackend_IndexSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	b := openMock(t, "ns")
	for _, n := range []string{"c", "a", "b"} {
		require.NoError(t, b.Write(ctx, n, []byte(n)))
	}
	require.NoError(t, b.Close())

	// 重新打开（MockInit 不再调用，保留数据）
	b2, err := Open(Config{Namespace: "ns"})
	require.NoError(t, err)

	names, more, err := b2.Names(ctx, "", 0)
	require.NoError(t, err)
	assert.False(t, more)
	assert.Equal(t, []string{"a", "b", "c"}, names)

	names, more, err = b2.Names(ctx, "a", 1)
	require.NoError(t, err)
	assert.True(t, more)
	assert.Equal(t, []string{"b"}, names)
}

func TestBackend_NamespacesIsolated(t *testing.T) {
	ctx := context.Background()
	keyring.MockInit()
	a, err := Open(Config{Namespace: "a"})
	require.NoError(t, err)
	b, err := Open(Config{ServicePrefix: "other", Namespace: "a"})
	require.NoError(t, err)

	require.NoError(t, a.Write(ctx, "k", []byte("v")))
	_, err = b.Read(ctx, "k")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestBackend_ReservedIndexName(t *testing.T) {
	b := openMock(t, "default")
	assert.ErrorIs(t, b.Write(context.Background(), indexUser, nil), types.ErrInvalidKeyID)
}

func TestBackend_PlatformError(t *testing.T) {
	keyring.MockInitWithError(errors.New("dbus: no session bus"))
	_, err := Open(Config{Namespace: "default"})
	assert.ErrorIs(t, err, types.ErrBackendUnavailable)

	assert.ErrorIs(t, mapError(keyring.ErrSetDataTooBig), types.ErrInvalidParameters)
}

func TestBackend_Closed(t *testing.T) {
	b := openMock(t, "default")
	require.NoError(t, b.Close())
	_, err := b.Read(context.Background(), "k")
	assert.ErrorIs(t, err, types.ErrStoreClosed)
}

func TestOpen_EmptyNamespace(t *testing.T) {
	keyring.MockInit()
	_, err := Open(Config{})
	assert.ErrorIs(t, err, types.ErrInvalidParameters)

	// 服务名 "p/a/b" 无法区分前缀与命名空间
	_, err = Open(Config{Namespace: "a/b"})
	assert.ErrorIs(t, err, types.ErrInvalidParameters)
}

func TestBackend_SlowWriteDoesNotBlockOthers(t *testing.T) {
	ctx := context.Background()
	hv := newHookVault()
	b, err := open(hv, Config{Namespace: "default"})
	require.NoError(t, err)
	require.NoError(t, b.Write(ctx, "b", []byte("vb")))

	gate := make(chan struct{})
	hv.mu.Lock()
	hv.block["a"] = gate
	hv.mu.Unlock()

	slow := make(chan error, 1)
	go func() { slow <- b.Write(ctx, "a", []byte("va")) }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		got, err := b.Read(ctx, "b")
		assert.NoError(t, err)
		assert.Equal(t, []byte("vb"), got)
		assert.NoError(t, b.Write(ctx, "c", []byte("vc")))
		_, _, err = b.Names(ctx, "", 0)
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("read and write of other entries blocked behind a pending write")
	}

	close(gate)
	require.NoError(t, <-slow)
	names, _, err := b.Names(ctx, "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestBackend_IndexFailureRemovesEntry(t *testing.T) {
	ctx := context.Background()
	hv := newHookVault()
	b, err := open(hv, Config{Namespace: "default"})
	require.NoError(t, err)
	require.NoError(t, b.Write(ctx, "old", []byte("v1")))

	hv.mu.Lock()
	hv.failSet[indexUser] = errors.New("dbus: connection reset")
	hv.mu.Unlock()

	err = b.Write(ctx, "new", []byte("v"))
	assert.ErrorIs(t, err, types.ErrBackendUnavailable)

	_, err = b.Read(ctx, "new")
	assert.ErrorIs(t, err, types.ErrNotFound)
	names, _, err := b.Names(ctx, "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, names)

	// 已索引的条目覆盖写不需要写回索引
	require.NoError(t, b.Write(ctx, "old", []byte("v2")))
	got, err := b.Read(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}
