package securestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-keyvault/internal/core/securestore/backend/memory"
	"github.com/dep2p/go-keyvault/pkg/lib/seal"
)

// fastKDF 满足下限的最便宜参数（scrypt N=2^15）
func fastKDF() seal.KDFParams {
	return seal.DefaultKDFParams(seal.KDFScrypt)
}

// newMemoryStore 创建内存后端的存储，同时返回后端供检查原始字节
func newMemoryStore(t *testing.T, mutate ...func(*Config)) (*Store, *memory.Backend) {
	t.Helper()

	cfg := DefaultConfig()
	for _, fn := range mutate {
		fn(cfg)
	}
	b := memory.New()
	s, err := New(context.Background(), b, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, b
}
