package identity

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-keyvault/internal/core/securestore"
	"github.com/dep2p/go-keyvault/pkg/interfaces"
	"github.com/dep2p/go-keyvault/pkg/lib/crypto"
	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
	"github.com/dep2p/go-keyvault/pkg/lib/keyfmt"
	"github.com/dep2p/go-keyvault/pkg/lib/log"
	"github.com/dep2p/go-keyvault/pkg/lib/secmem"
	"github.com/dep2p/go-keyvault/pkg/types"
)

var logger = log.Logger("identity")

// KeyPrefix 身份在安全存储中的 key_id 前缀
const KeyPrefix = "identity/"

// ValidateName 检查身份名称
func ValidateName(name string) error {
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := securestore.ValidateKeyID(KeyPrefix + name); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidName, err)
	}
	return nil
}

// ============================================================================
//                              Manager 实现
// ============================================================================

// Option 管理器选项
type Option func(*Manager)

// WithEntropy 设置密钥生成和签名使用的熵源
func WithEntropy(src entropy.Source) Option {
	return func(m *Manager) {
		m.entropy = src
	}
}

// WithClock 设置身份创建时间的时钟
func WithClock(c clock.Clock) Option {
	return func(m *Manager) {
		m.clock = c
	}
}

// Manager 身份管理器实现
type Manager struct {
	store   interfaces.SecureStore
	config  Config
	entropy entropy.Source
	clock   clock.Clock
}

// 确保实现接口
var _ interfaces.IdentityManager = (*Manager)(nil)

// NewManager 创建身份管理器
func NewManager(store interfaces.SecureStore, config *Config, opts ...Option) (*Manager, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{store: store, config: *config, clock: clock.New()}
	for _, opt := range opts {
		opt(m)
	}
	m.entropy = entropy.OrSystem(m.entropy)
	return m, nil
}

// checkAlgorithm 拒绝未启用的实验性算法
func (m *Manager) checkAlgorithm(alg crypto.Algorithm) error {
	if alg.Experimental() && !m.config.EnableExperimental {
		return fmt.Errorf("%w: %s", ErrExperimentalDisabled, alg)
	}
	return nil
}

// Create 生成新身份（不持久化）
//
// alg 为 crypto.Unspecified 时使用 Config.DefaultAlgorithm。
func (m *Manager) Create(alg crypto.Algorithm) (*crypto.Identity, error) {
	if alg == crypto.Unspecified {
		alg = m.config.DefaultAlgorithm
	}
	if err := m.checkAlgorithm(alg); err != nil {
		return nil, err
	}

	id, err := crypto.Generate(alg, m.entropy,
		crypto.WithClock(m.clock),
		crypto.WithRSABits(m.config.RSABits),
	)
	if err != nil {
		return nil, fmt.Errorf("生成密钥对失败: %w", err)
	}
	logger.Debug("已生成身份", "alg", alg.String(), "fingerprint", id.Fingerprint())
	return id, nil
}

// Save 保存身份私钥，name 已存在时覆盖
func (m *Manager) Save(ctx context.Context, name string, id *crypto.Identity) error {
	if id == nil {
		return ErrNilIdentity
	}
	if err := ValidateName(name); err != nil {
		return err
	}

	text, err := keyfmt.EncodeIdentity(id, crypto.PrivatePart)
	if err != nil {
		return err
	}
	defer secmem.Wipe(text)

	if err := m.store.Put(ctx, KeyPrefix+name, text); err != nil {
		return fmt.Errorf("save identity %s: %w", name, err)
	}
	logger.Info("身份已保存", "name", name, "alg", id.Algorithm().String(), "fingerprint", id.Fingerprint())
	return nil
}

// Load 加载身份
func (m *Manager) Load(ctx context.Context, name string) (*crypto.Identity, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	text, err := m.store.Get(ctx, KeyPrefix+name)
	if err != nil {
		return nil, fmt.Errorf("load identity %s: %w", name, err)
	}
	defer secmem.Wipe(text)

	id, err := keyfmt.DecodeIdentity(text, crypto.WithEntropy(m.entropy))
	if err != nil {
		return nil, fmt.Errorf("load identity %s: %w", name, err)
	}
	if err := m.checkAlgorithm(id.Algorithm()); err != nil {
		id.Destroy()
		return nil, err
	}
	return id, nil
}

// LoadOrCreate 加载身份，不存在时生成并保存
func (m *Manager) LoadOrCreate(ctx context.Context, name string, alg crypto.Algorithm) (*crypto.Identity, bool, error) {
	id, err := m.Load(ctx, name)
	if err == nil {
		return id, false, nil
	}
	if !types.IsNotFound(err) {
		return nil, false, err
	}

	id, err = m.Create(alg)
	if err != nil {
		return nil, false, err
	}
	if err := m.Save(ctx, name, id); err != nil {
		id.Destroy()
		return nil, false, err
	}
	return id, true, nil
}

// Delete 删除身份
func (m *Manager) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, KeyPrefix+name); err != nil {
		return fmt.Errorf("delete identity %s: %w", name, err)
	}
	logger.Info("身份已删除", "name", name)
	return nil
}

// List 列出已保存的身份名（排序）
func (m *Manager) List(ctx context.Context) ([]string, error) {
	it, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	names := []string{}
	for it.Next() {
		if name, ok := strings.CutPrefix(it.KeyID(), KeyPrefix); ok {
			names = append(names, name)
		}
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
