package securestore

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-keyvault/pkg/interfaces"
)

// ============================================================================
// Fx 模块测试
// ============================================================================

// TestModule_Defaults 无配置时使用内存后端
func TestModule_Defaults(t *testing.T) {
	var ss interfaces.SecureStore

	app := fxtest.New(t,
		Module(),
		fx.Populate(&ss),
	)
	app.RequireStart()

	require.NotNil(t, ss)
	assert.Equal(t, "memory", ss.Backend())

	ctx := context.Background()
	require.NoError(t, ss.Put(ctx, "k", []byte("v")))
	got, err := ss.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	app.RequireStop()

	// 停止后存储已关闭
	_, err = ss.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
}

// TestModule_WithConfigAndRegistry 注入配置和指标注册表
func TestModule_WithConfigAndRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := DefaultConfig()
	cfg.Namespace = "fx"

	var store *Store
	app := fxtest.New(t,
		fx.Supply(cfg),
		fx.Provide(func() prometheus.Registerer { return reg }),
		Module(),
		fx.Populate(&store),
	)
	defer app.RequireStart().RequireStop()

	assert.Equal(t, "fx", store.Namespace())
	require.NoError(t, store.Put(context.Background(), "k", []byte("v")))

	n, err := testutil.GatherAndCount(reg, "keyvault_store_ops_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// TestModule_InvalidConfig 配置非法时启动失败
func TestModule_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = "floppy"

	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg),
		Module(),
		fx.Invoke(func(interfaces.SecureStore) {}),
	)
	require.Error(t, app.Err())
	assert.Contains(t, app.Err().Error(), "unknown backend")
}
