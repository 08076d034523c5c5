package securestore

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-keyvault/pkg/interfaces"
	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// 配置（可选，使用默认配置）
	Config *Config `optional:"true"`

	// 指标注册表（可选，为空时不导出指标）
	Registerer prometheus.Registerer `optional:"true"`

	// 熵源（可选，默认系统熵源）
	Entropy entropy.Source `optional:"true"`
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	SecureStore interfaces.SecureStore
	Store       *Store
}

// ProvideServices 打开安全存储
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	cfg := input.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}

	metrics, err := NewMetrics(input.Registerer)
	if err != nil {
		return ModuleOutput{}, err
	}

	store, err := Open(context.Background(), cfg,
		WithEntropy(input.Entropy),
		WithMetrics(metrics),
	)
	if err != nil {
		return ModuleOutput{}, err
	}

	return ModuleOutput{
		SecureStore: store,
		Store:       store,
	}, nil
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("securestore",
		fx.Provide(ProvideServices),
		fx.Invoke(registerLifecycle),
	)
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC    fx.Lifecycle
	Store *Store
}

// registerLifecycle 停止时清零主密钥并关闭后端
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return input.Store.Close()
		},
	})
}

// 模块元信息常量
const (
	// Name 模块名称
	Name = "securestore"
	// Description 模块描述
	Description = "安全凭据存储模块，提供加密的 put/get/delete/list"
)
