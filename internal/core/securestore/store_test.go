package securestore

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-keyvault/internal/core/securestore/backend/memory"
	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
	"github.com/dep2p/go-keyvault/pkg/lib/seal"
	"github.com/dep2p/go-keyvault/pkg/types"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemoryStore(t)

	require.NoError(t, s.Put(ctx, "svc/db-password", []byte("s3cr3t")))

	got, err := s.Get(ctx, "svc/db-password")
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cr3t"), got)

	require.NoError(t, s.Delete(ctx, "svc/db-password"))
	_, err = s.Get(ctx, "svc/db-password")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, types.KindStorage, types.KindOf(err))
}

func TestStore_DeleteMissing(t *testing.T) {
	s, _ := newMemoryStore(t)
	err := s.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	s, b := newMemoryStore(t)

	require.NoError(t, s.Put(ctx, "k", []byte("v1")))
	first, _ := b.Read(ctx, "k")
	require.NoError(t, s.Put(ctx, "k", []byte("v2")))
	second, _ := b.Read(ctx, "k")

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	// 每次写入使用新的盐和 nonce
	assert.NotEqual(t, first, second)
}

func TestStore_EmptySecret(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemoryStore(t)

	require.NoError(t, s.Put(ctx, "empty", nil))
	got, err := s.Get(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_BackendNeverSeesPlaintext(t *testing.T) {
	ctx := context.Background()
	s, b := newMemoryStore(t)

	secret := []byte("very-recognisable-plaintext")
	require.NoError(t, s.Put(ctx, "k", secret))

	raw, err := b.Read(ctx, "k")
	require.NoError(t, err)
	assert.False(t, bytes.Contains(raw, secret))
}

func TestStore_InvalidKeyID(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemoryStore(t)

	tests := []struct {
		name  string
		keyID string
	}{
		{"empty", ""},
		{"too long", strings.Repeat("k", 256)},
		{"control", "a\x00b"},
		{"invalid utf8", "\xff\xfe"},
		{"reserved", "__kv/meta"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.Put(ctx, tt.keyID, []byte("x")), types.ErrInvalidKeyID)
			_, err := s.Get(ctx, tt.keyID)
			assert.ErrorIs(t, err, types.ErrInput)
			assert.ErrorIs(t, s.Delete(ctx, tt.keyID), types.ErrInvalidKeyID)
		})
	}
}

func TestStore_TamperedRecord(t *testing.T) {
	ctx := context.Background()
	s, b := newMemoryStore(t)
	require.NoError(t, s.Put(ctx, "k", bytes.Repeat([]byte{0}, 64)))

	raw, _ := b.Read(ctx, "k")
	r, err := unmarshalRecord(raw)
	require.NoError(t, err)
	r.blob.Ciphertext[0] ^= 0x01
	tampered, err := marshalRecord(r)
	require.NoError(t, err)
	require.NoError(t, b.Write(ctx, "k", tampered))

	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, types.ErrBlobCorrupted)
	assert.ErrorIs(t, err, types.ErrAuthenticationFailed)
}

func TestStore_GarbageRecord(t *testing.T) {
	ctx := context.Background()
	s, b := newMemoryStore(t)
	require.NoError(t, b.Write(ctx, "k", []byte{0xff, 0xff, 0xff}))

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, types.ErrBlobCorrupted)
}

func TestStore_RecordMovedToOtherKey(t *testing.T) {
	ctx := context.Background()
	s, b := newMemoryStore(t)
	require.NoError(t, s.Put(ctx, "a", []byte("secret-a")))

	raw, _ := b.Read(ctx, "a")
	require.NoError(t, b.Write(ctx, "b", raw))

	_, err := s.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrRecordMismatch)
}

func TestStore_NamespacesDoNotShareRecords(t *testing.T) {
	ctx := context.Background()
	b := memory.New()
	cfg := func(ns string) *Config {
		return &Config{
			Backend: BackendMemory, Namespace: ns, Cipher: seal.CipherAES256GCM,
			MasterKDF: fastKDF(), Passphrase: []byte("pw"),
		}
	}

	a, err := New(ctx, b, cfg("a"))
	require.NoError(t, err)
	require.NoError(t, a.Put(ctx, "k", []byte("v")))

	// 同一口令和后端、不同命名空间：关联数据不同，记录被拒绝
	other, err := New(ctx, b, cfg("b"))
	require.NoError(t, err)
	_, err = other.Get(ctx, "k")
	assert.ErrorIs(t, err, types.ErrBlobCorrupted)
}

func TestStore_Ciphers(t *testing.T) {
	ctx := context.Background()

	for _, c := range []seal.CipherID{seal.CipherAES256GCM, seal.CipherChaCha20Poly1305, seal.Cipher3DESCBCHMAC, seal.CipherBlowfishCBCHMAC} {
		t.Run(c.String(), func(t *testing.T) {
			s, b := newMemoryStore(t, func(cfg *Config) {
				cfg.Cipher = c
				cfg.LegacyCiphers = c.Legacy()
			})
			require.NoError(t, s.Put(ctx, "k", []byte("payload")))
			got, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("payload"), got)

			raw, _ := b.Read(ctx, "k")
			r, err := unmarshalRecord(raw)
			require.NoError(t, err)
			assert.Equal(t, c, r.blob.Cipher)
		})
	}
}

func TestStore_LegacyCipherDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cipher = seal.Cipher3DESCBCHMAC

	_, err := New(context.Background(), memory.New(), cfg)
	assert.ErrorIs(t, err, types.ErrUnsupportedFeature)
}

func TestStore_RandomnessFailure(t *testing.T) {
	_, err := New(context.Background(), memory.New(), DefaultConfig(), WithEntropy(entropy.Exhausted()))
	assert.ErrorIs(t, err, types.ErrRandomnessFailure)
}

func TestStore_Closed(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemoryStore(t)
	require.NoError(t, s.Put(ctx, "k", []byte("v")))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.True(t, s.master.Destroyed())

	assert.ErrorIs(t, s.Put(ctx, "k", []byte("v")), ErrClosed)
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Delete(ctx, "k"), ErrClosed)
	_, err = s.List(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStore_CanceledContext(t *testing.T) {
	s, _ := newMemoryStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Put(ctx, "k", []byte("v")), context.Canceled)
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_Accessors(t *testing.T) {
	s, _ := newMemoryStore(t)
	assert.Equal(t, "memory", s.Backend())
	assert.Equal(t, "default", s.Namespace())
}
