package keyvault

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-keyvault/internal/core/identity"
	"github.com/dep2p/go-keyvault/internal/core/securestore"
	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
)

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 配置注入：securestore.Config、identity.Config
//  2. 运行时依赖：熵源、时钟、指标注册表（可选）
//  3. 核心模块：SecureStore → Identity
//  4. Vault 组件注入
//  5. 用户扩展 Fx 选项
func buildFxApp(o *options, v *Vault) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置转换（前置验证）
	// ════════════════════════════════════════════════════════════════════════
	storeCfg, err := o.config.SecureStoreConfig()
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if len(o.passphrase) > 0 {
		storeCfg.Passphrase = o.passphrase
	}
	idCfg, err := o.config.IdentityManagerConfig()
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(storeCfg),
		fx.Supply(idCfg),
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 运行时依赖（可选）
	// ════════════════════════════════════════════════════════════════════════
	if o.entropy != nil {
		src := o.entropy
		modules = append(modules, fx.Provide(func() entropy.Source { return src }))
	}
	if o.clock != nil {
		c := o.clock
		modules = append(modules, fx.Provide(func() clock.Clock { return c }))
	}
	if o.registerer != nil {
		reg := o.registerer
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. 核心模块
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		securestore.Module(),
		identity.Module(),
	)

	// ════════════════════════════════════════════════════════════════════════
	// 4. Vault 组件注入（先于用户扩展，构造失败时可关闭存储）
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.Invoke(injectVaultComponents(v)))

	// ════════════════════════════════════════════════════════════════════════
	// 5. 用户扩展（Fx Options）
	// ════════════════════════════════════════════════════════════════════════
	if len(o.userFxOptions) > 0 {
		modules = append(modules, o.userFxOptions...)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 6. Fx 配置
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		// 构造阶段已打开的存储不会收到 OnStop
		if v.store != nil {
			_ = v.store.Close()
		}
		return nil, err
	}
	return app, nil
}

// vaultInjectParams Vault 依赖的组件
type vaultInjectParams struct {
	fx.In

	Store      *securestore.Store
	Identities *identity.Manager
	Default    *identity.Default
}

// injectVaultComponents 把 Fx 构造的组件注入 Vault
func injectVaultComponents(v *Vault) interface{} {
	return func(params vaultInjectParams) {
		v.store = params.Store
		v.identities = params.Identities
		v.defaultID = params.Default
	}
}
