package securestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dep2p/go-keyvault/pkg/interfaces"
	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
	"github.com/dep2p/go-keyvault/pkg/lib/log"
	"github.com/dep2p/go-keyvault/pkg/lib/seal"
	"github.com/dep2p/go-keyvault/pkg/types"
)

var logger = log.Logger("securestore")

// ============================================================================
//                              选项
// ============================================================================

type options struct {
	entropy entropy.Source
	metrics *Metrics
}

// Option 存储选项
type Option func(*options)

// WithEntropy 设置盐值和 nonce 的熵源
func WithEntropy(src entropy.Source) Option {
	return func(o *options) {
		o.entropy = src
	}
}

// WithMetrics 设置指标
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// ============================================================================
//                              Store
// ============================================================================

// Store 安全凭据存储
//
// 实现 interfaces.SecureStore。
type Store struct {
	backend   interfaces.Backend
	namespace string
	pageSize  int
	timeout   time.Duration
	seal      *seal.Engine
	entropy   entropy.Source
	metrics   *Metrics
	locks     *keyLocks

	// lifecycle 进行中的操作持有读锁，Close 持有写锁
	lifecycle sync.RWMutex
	master    *seal.SymmetricKey
	closed    bool
}

var _ interfaces.SecureStore = (*Store)(nil)

// New 在已打开的后端上创建存储
//
// 成功后 Store 拥有后端，Close 时一并关闭；失败时后端由调用方关闭。
func New(ctx context.Context, b interfaces.Backend, cfg *Config, opts ...Option) (*Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	src := entropy.OrSystem(o.entropy)

	se := seal.NewEngine(
		seal.WithCipher(cfg.Cipher),
		seal.WithLegacyCiphers(cfg.LegacyCiphers),
		seal.WithEntropy(src),
	)

	master, err := loadMasterKey(ctx, b, cfg, se, src)
	if err != nil {
		return nil, err
	}

	pageSize := cfg.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	logger.Info("安全存储已打开", "backend", b.Name(), "namespace", cfg.Namespace, "cipher", cfg.Cipher.String())
	return &Store{
		backend:   b,
		namespace: cfg.Namespace,
		pageSize:  pageSize,
		timeout:   cfg.OpTimeout,
		seal:      se,
		entropy:   src,
		metrics:   o.metrics,
		locks:     newKeyLocks(),
		master:    master,
	}, nil
}

// Backend 返回后端名称
func (s *Store) Backend() string {
	return s.backend.Name()
}

// Namespace 返回命名空间
func (s *Store) Namespace() string {
	return s.namespace
}

// acquire 登记一个进行中的操作
func (s *Store) acquire() (func(), error) {
	s.lifecycle.RLock()
	if s.closed {
		s.lifecycle.RUnlock()
		return nil, ErrClosed
	}
	return s.lifecycle.RUnlock, nil
}

func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return ctx, func() {}
}

// associatedData 记录的关联数据和 HKDF info：namespace‖0x00‖key_id
func (s *Store) associatedData(keyID string) []byte {
	ad := make([]byte, 0, len(s.namespace)+1+len(keyID))
	ad = append(ad, s.namespace...)
	ad = append(ad, 0)
	return append(ad, keyID...)
}

// Put 加密并写入凭据
func (s *Store) Put(ctx context.Context, keyID string, secret []byte) (err error) {
	start := time.Now()
	defer func() { s.metrics.observe(opPut, s.backend.Name(), start, err) }()

	if err := ValidateKeyID(keyID); err != nil {
		return err
	}
	release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()

	unlock := s.locks.Lock(keyID)
	defer unlock()

	ctx, cancel := s.opContext(ctx)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := s.sealRecord(keyID, secret)
	if err != nil {
		return err
	}
	if err := s.backend.Write(ctx, keyID, data); err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	logger.Debug("凭据已写入", log.KeyID(keyID), "backend", s.backend.Name(), "size", len(secret))
	return nil
}

// Get 读取并解密凭据
func (s *Store) Get(ctx context.Context, keyID string) (secret []byte, err error) {
	start := time.Now()
	defer func() { s.metrics.observe(opGet, s.backend.Name(), start, err) }()

	if err := ValidateKeyID(keyID); err != nil {
		return nil, err
	}
	release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	unlock := s.locks.RLock(keyID)
	defer unlock()

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	data, err := s.backend.Read(ctx, keyID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("read record: %w", err)
	}
	return s.openRecord(keyID, data)
}

// Delete 删除凭据
func (s *Store) Delete(ctx context.Context, keyID string) (err error) {
	start := time.Now()
	defer func() { s.metrics.observe(opDelete, s.backend.Name(), start, err) }()

	if err := ValidateKeyID(keyID); err != nil {
		return err
	}
	release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()

	unlock := s.locks.Lock(keyID)
	defer unlock()

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	if err := s.backend.Remove(ctx, keyID); err != nil {
		return err
	}
	logger.Debug("凭据已删除", log.KeyID(keyID), "backend", s.backend.Name())
	return nil
}

// List 返回 key_id 的惰性迭代器
func (s *Store) List(ctx context.Context) (interfaces.SecretIterator, error) {
	release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	release()
	return newIterator(ctx, s), nil
}

// names 拉取一页条目名
func (s *Store) names(ctx context.Context, after string) (names []string, more bool, err error) {
	start := time.Now()
	defer func() { s.metrics.observe(opList, s.backend.Name(), start, err) }()

	release, err := s.acquire()
	if err != nil {
		return nil, false, err
	}
	defer release()

	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.backend.Names(ctx, after, s.pageSize)
}

// Close 清零主密钥并关闭后端
//
// 等待进行中的操作结束。重复调用安全。
func (s *Store) Close() error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	s.master.Destroy()
	err := s.backend.Close()
	logger.Info("安全存储已关闭", "backend", s.backend.Name(), "namespace", s.namespace)
	return err
}

// ============================================================================
//                              记录加解密
// ============================================================================

// sealRecord 用新盐派生子密钥并加密
func (s *Store) sealRecord(keyID string, secret []byte) ([]byte, error) {
	salt, err := entropy.Bytes(s.entropy, seal.DefaultSaltSize)
	if err != nil {
		return nil, err
	}
	ad := s.associatedData(keyID)

	sub, err := seal.DeriveSubkey(s.master, salt, ad)
	if err != nil {
		return nil, err
	}
	defer sub.Destroy()

	blob, err := s.seal.Encrypt(sub, secret, ad)
	if err != nil {
		return nil, err
	}
	return marshalRecord(&record{keyID: keyID, blob: blob})
}

// openRecord 校验记录归属并解密
func (s *Store) openRecord(keyID string, data []byte) ([]byte, error) {
	r, err := unmarshalRecord(data)
	if err != nil {
		return nil, err
	}
	if r.keyID != keyID {
		return nil, ErrRecordMismatch
	}

	ad := s.associatedData(keyID)
	params, err := r.blob.Params()
	if err != nil {
		return nil, err
	}
	if params.KDF != seal.KDFHKDFSHA256 || !bytes.Equal(params.Info, ad) {
		return nil, ErrRecordMismatch
	}

	sub, err := seal.DeriveSubkey(s.master, params.Salt, ad)
	if err != nil {
		return nil, err
	}
	defer sub.Destroy()

	pt, err := s.seal.Decrypt(sub, r.blob, ad)
	if errors.Is(err, seal.ErrAuthenticationFailed) {
		logger.Warn("凭据认证失败", log.KeyID(keyID), "backend", s.backend.Name())
		return nil, fmt.Errorf("%w: %w", types.ErrBlobCorrupted, err)
	}
	return pt, err
}
