package keyvault

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-keyvault/config"
	"github.com/dep2p/go-keyvault/internal/core/identity"
	"github.com/dep2p/go-keyvault/internal/core/securestore"
	"github.com/dep2p/go-keyvault/pkg/interfaces"
	"github.com/dep2p/go-keyvault/pkg/lib/crypto"
	"github.com/dep2p/go-keyvault/pkg/lib/log"
)

var logger = log.Logger("keyvault")

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期常量
// ════════════════════════════════════════════════════════════════════════════

const (
	// startTimeout 启动超时（打开后端、加载默认身份）
	startTimeout = 30 * time.Second

	// stopTimeout 停止超时
	stopTimeout = 10 * time.Second
)

// ════════════════════════════════════════════════════════════════════════════
//                              Vault
// ════════════════════════════════════════════════════════════════════════════

// Vault 保管库，用户交互的主入口
//
// 组合安全存储和身份管理。New 之后调用 Start，使用结束后调用 Close。
// Vault 可并发使用。
type Vault struct {
	mu      sync.Mutex
	config  *config.Config
	app     *fx.App
	started bool
	closed  bool

	// 由 Fx 注入
	store      *securestore.Store
	identities *identity.Manager
	defaultID  *identity.Default
}

// New 创建保管库
//
// 存储后端在 New 中打开，配置或后端错误在此返回。
func New(opts ...Option) (*Vault, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if o.config.Log != (config.LogConfig{}) {
		if err := o.config.Log.Apply(); err != nil {
			return nil, err
		}
	}

	v := &Vault{config: o.config}

	var err error
	v.app, err = buildFxApp(o, v)
	if err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	return v, nil
}

// Open 快捷启动函数
//
// 等价于 New() + Start()。
func Open(ctx context.Context, opts ...Option) (*Vault, error) {
	v, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := v.Start(ctx); err != nil {
		return nil, fmt.Errorf("start vault: %w", err)
	}
	return v, nil
}

// Start 启动保管库（加载默认身份）
func (v *Vault) Start(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return ErrVaultClosed
	}
	if v.started {
		return ErrAlreadyStarted
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	if err := v.app.Start(startCtx); err != nil {
		// Fx 已回滚，存储已关闭
		v.closed = true
		logger.Error("保管库启动失败", "error", err)
		return err
	}
	v.started = true
	logger.Info("保管库已启动", "backend", v.store.Backend(), "namespace", v.store.Namespace())
	return nil
}

// Close 关闭保管库
//
// 清零默认身份和主密钥，关闭存储后端。重复调用安全。
func (v *Vault) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil
	}
	v.closed = true

	if !v.started {
		// 未启动时 OnStop 不会执行，直接关闭存储
		return v.store.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := v.app.Stop(ctx); err != nil {
		return fmt.Errorf("stop vault: %w", err)
	}
	logger.Info("保管库已关闭")
	return nil
}

// ready 检查保管库可用
func (v *Vault) ready() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case v.closed:
		return ErrVaultClosed
	case !v.started:
		return ErrNotStarted
	default:
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              组件访问
// ════════════════════════════════════════════════════════════════════════════

// Config 返回保管库配置
func (v *Vault) Config() *config.Config {
	return v.config
}

// Store 返回安全存储
func (v *Vault) Store() interfaces.SecureStore {
	return v.store
}

// Identities 返回身份管理器
func (v *Vault) Identities() interfaces.IdentityManager {
	return v.identities
}

// Identity 返回默认身份
//
// 未配置默认身份时返回 ErrNoIdentity。
func (v *Vault) Identity() (*crypto.Identity, error) {
	if err := v.ready(); err != nil {
		return nil, err
	}
	id := v.defaultID.Identity()
	if id == nil {
		return nil, ErrNoIdentity
	}
	return id, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              凭据操作
// ════════════════════════════════════════════════════════════════════════════

// Put 加密保存凭据
func (v *Vault) Put(ctx context.Context, keyID string, secret []byte) error {
	if err := v.ready(); err != nil {
		return err
	}
	return v.store.Put(ctx, keyID, secret)
}

// Get 读取并解密凭据
func (v *Vault) Get(ctx context.Context, keyID string) ([]byte, error) {
	if err := v.ready(); err != nil {
		return nil, err
	}
	return v.store.Get(ctx, keyID)
}

// Delete 删除凭据
func (v *Vault) Delete(ctx context.Context, keyID string) error {
	if err := v.ready(); err != nil {
		return err
	}
	return v.store.Delete(ctx, keyID)
}

// List 返回 key_id 迭代器
func (v *Vault) List(ctx context.Context) (interfaces.SecretIterator, error) {
	if err := v.ready(); err != nil {
		return nil, err
	}
	return v.store.List(ctx)
}
