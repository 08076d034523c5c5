package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-keyvault/internal/core/securestore"
	"github.com/dep2p/go-keyvault/pkg/interfaces"
	"github.com/dep2p/go-keyvault/pkg/lib/crypto"
)

// ============================================================================
// Fx 模块测试
// ============================================================================

// TestModule_Load 无默认身份时只提供管理器
func TestModule_Load(t *testing.T) {
	var (
		mgr interfaces.IdentityManager
		def *Default
	)

	app := fxtest.New(t,
		securestore.Module(),
		Module(),
		fx.Populate(&mgr, &def),
	)
	defer app.RequireStart().RequireStop()

	require.NotNil(t, mgr)
	assert.Nil(t, def.Identity())
}

// TestModule_AutoCreate 配置名称并自动创建默认身份
func TestModule_AutoCreate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Name = "node"
	cfg.AutoCreate = true

	var (
		mgr *Manager
		def *Default
	)
	app := fxtest.New(t,
		securestore.Module(),
		fx.Supply(cfg),
		Module(),
		fx.Populate(&mgr, &def),
	)
	assert.Nil(t, def.Identity())
	app.RequireStart()

	identity := def.Identity()
	require.NotNil(t, identity)
	assert.Equal(t, crypto.Ed25519, identity.Algorithm())

	loaded, err := mgr.Load(context.Background(), "node")
	require.NoError(t, err)
	assert.Equal(t, identity.ID(), loaded.ID())
	loaded.Destroy()

	app.RequireStop()

	// 停止后默认身份已清零
	assert.True(t, identity.Destroyed())
	assert.Nil(t, def.Identity())
}

// TestModule_MissingIdentity 不自动创建时缺失身份导致启动失败，存储随之关闭
func TestModule_MissingIdentity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Name = "node"

	var store *securestore.Store
	app := fx.New(
		fx.NopLogger,
		securestore.Module(),
		fx.Supply(cfg),
		Module(),
		fx.Populate(&store),
	)
	require.NoError(t, app.Err())

	err := app.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = store.Get(context.Background(), "anything")
	assert.ErrorIs(t, err, securestore.ErrClosed)
}
