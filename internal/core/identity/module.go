package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-keyvault/pkg/interfaces"
	"github.com/dep2p/go-keyvault/pkg/lib/crypto"
	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
)

// ============================================================================
//                              默认身份
// ============================================================================

// Default 持有 Config.Name 对应的身份
//
// 身份在模块启动时加载，启动前和停止后 Identity 返回 nil。
type Default struct {
	mu sync.RWMutex
	id *crypto.Identity
}

// Identity 返回默认身份，未配置或未启动时为 nil
func (d *Default) Identity() *crypto.Identity {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.id
}

func (d *Default) set(id *crypto.Identity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.id = id
}

// release 清零并移除默认身份
func (d *Default) release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.id != nil {
		d.id.Destroy()
		d.id = nil
	}
}

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// 安全存储
	Store interfaces.SecureStore

	// 配置（可选，使用默认配置）
	Config *Config `optional:"true"`

	// 熵源（可选，默认系统熵源）
	Entropy entropy.Source `optional:"true"`

	// 时钟（可选，默认系统时钟）
	Clock clock.Clock `optional:"true"`
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	IdentityManager interfaces.IdentityManager
	Manager         *Manager
	Default         *Default
}

// ============================================================================
//                              服务提供
// ============================================================================

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	config := input.Config
	if config == nil {
		config = DefaultConfig()
	}

	opts := []Option{WithEntropy(input.Entropy)}
	if input.Clock != nil {
		opts = append(opts, WithClock(input.Clock))
	}
	manager, err := NewManager(input.Store, config, opts...)
	if err != nil {
		return ModuleOutput{}, err
	}

	return ModuleOutput{
		IdentityManager: manager,
		Manager:         manager,
		Default:         &Default{},
	}, nil
}

// loadDefault 加载默认身份，不存在且允许时自动创建
func loadDefault(ctx context.Context, m *Manager) (*crypto.Identity, error) {
	name := m.config.Name
	if !m.config.AutoCreate {
		return m.Load(ctx, name)
	}

	id, created, err := m.LoadOrCreate(ctx, name, m.config.DefaultAlgorithm)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Info("已创建默认身份", "name", name, "fingerprint", id.Fingerprint())
	}
	return id, nil
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("identity",
		fx.Provide(ProvideServices),
		fx.Invoke(registerLifecycle),
	)
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC      fx.Lifecycle
	Manager *Manager
	Default *Default
}

// registerLifecycle 启动时加载默认身份，停止时清零
//
// 加载放在 OnStart 中：失败时 Fx 回滚已启动的模块，存储后端随之关闭。
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if input.Manager.config.Name == "" {
				return nil
			}
			id, err := loadDefault(ctx, input.Manager)
			if err != nil {
				return fmt.Errorf("加载身份失败: %w", err)
			}
			input.Default.set(id)
			return nil
		},
		OnStop: func(_ context.Context) error {
			input.Default.release()
			return nil
		},
	})
}

// ============================================================================
//                              模块元信息
// ============================================================================

// 模块元信息常量
const (
	// Name 模块名称
	Name = "identity"
	// Description 模块描述
	Description = "身份管理模块，提供密钥对生成和加密持久化"
)
