// Package credvault 提供操作系统凭据库后端
//
// 通过 github.com/zalando/go-keyring 访问 macOS Keychain、
// Windows Credential Manager 或 Secret Service。平台本身会按用户
// 上下文再加密一次，写入的仍是安全存储已加密的记录。
//
// 条目以 base64 文本写入 service = "<prefix>/<namespace>"，
// user = 条目名。凭据库本身无法枚举，索引保存在保留条目中。
//
// 未配置口令时，安全存储把随机主密钥以明文写入同一个 service。
// 此时平台的用户作用域是唯一的保护层：同一用户下能读取该 service
// 的任何进程都能解密全部记录。需要独立于平台的保护时配置口令。
package credvault

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zalando/go-keyring"

	"github.com/dep2p/go-keyvault/internal/core/securestore/backend"
	"github.com/dep2p/go-keyvault/pkg/lib/log"
	"github.com/dep2p/go-keyvault/pkg/types"
)

var logger = log.Logger("securestore/credvault")

// Name 后端名称
const Name = "credvault"

// DefaultServicePrefix 默认服务名前缀
const DefaultServicePrefix = "go-keyvault"

// indexUser 索引条目名
const indexUser = "__kv/index"

// vault 凭据库原语
//
// 默认实现直接调用 go-keyring 的包级函数。
type vault interface {
	Set(service, user, secret string) error
	Get(service, user string) (string, error)
	Delete(service, user string) error
}

type platformVault struct{}

func (platformVault) Set(service, user, secret string) error {
	return keyring.Set(service, user, secret)
}

func (platformVault) Get(service, user string) (string, error) {
	return keyring.Get(service, user)
}

func (platformVault) Delete(service, user string) error {
	return keyring.Delete(service, user)
}

// Config 凭据库配置
type Config struct {
	// ServicePrefix 服务名前缀，避免与其他应用冲突
	ServicePrefix string
	// Namespace 命名空间
	Namespace string
}

// Backend 凭据库后端
//
// 条目的读写不持有后端锁，同一条目的并发由安全存储的按键锁串行化。
// mu 只保护索引及其写回。
type Backend struct {
	v       vault
	service string

	mu     sync.RWMutex
	index  map[string]struct{}
	closed atomic.Bool
}

// Open 打开凭据库后端并加载索引
func Open(cfg Config) (*Backend, error) {
	return open(platformVault{}, cfg)
}

func open(v vault, cfg Config) (*Backend, error) {
	prefix := cfg.ServicePrefix
	if prefix == "" {
		prefix = DefaultServicePrefix
	}
	if err := backend.CheckNamespace(cfg.Namespace); err != nil {
		return nil, err
	}

	b := &Backend{
		v:       v,
		service: prefix + "/" + cfg.Namespace,
		index:   make(map[string]struct{}),
	}
	if err := b.loadIndex(); err != nil {
		return nil, err
	}
	logger.Debug("凭据库已打开", "service", b.service, "entries", len(b.index))
	return b, nil
}

// Name 返回后端名称
func (b *Backend) Name() string {
	return Name
}

// Service 返回凭据库服务名
func (b *Backend) Service() string {
	return b.service
}

// Protected 凭据库由操作系统按用户上下文保护
func (b *Backend) Protected() bool {
	return true
}

func (b *Backend) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.closed.Load() {
		return types.ErrStoreClosed
	}
	return nil
}

// Write 写入条目并更新索引
//
// 新条目的索引写回失败时删除刚写入的条目，Read 与 Names 保持一致。
func (b *Backend) Write(ctx context.Context, name string, data []byte) error {
	if err := backend.CheckName(name); err != nil {
		return err
	}
	if name == indexUser {
		return fmt.Errorf("%w: %q is reserved", types.ErrInvalidKeyID, name)
	}
	if err := b.check(ctx); err != nil {
		return err
	}

	if err := b.v.Set(b.service, name, base64.StdEncoding.EncodeToString(data)); err != nil {
		return mapError(err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.index[name]; ok {
		return nil
	}
	b.index[name] = struct{}{}
	if err := b.saveIndex(); err != nil {
		delete(b.index, name)
		if derr := b.v.Delete(b.service, name); derr != nil && !errors.Is(derr, keyring.ErrNotFound) {
			logger.Warn("索引写回失败后删除条目失败", "service", b.service, "name", name, "error", derr)
		}
		return err
	}
	return nil
}

// Read 读取条目
func (b *Backend) Read(ctx context.Context, name string) ([]byte, error) {
	if err := b.check(ctx); err != nil {
		return nil, err
	}

	s, err := b.v.Get(b.service, name)
	if err != nil {
		return nil, mapError(err)
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: credvault entry is not base64", types.ErrBlobCorrupted)
	}
	return data, nil
}

// Remove 删除条目并更新索引
func (b *Backend) Remove(ctx context.Context, name string) error {
	if err := b.check(ctx); err != nil {
		return err
	}

	err := b.v.Delete(b.service, name)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return mapError(err)
	}

	b.mu.Lock()
	if _, indexed := b.index[name]; indexed {
		delete(b.index, name)
		if serr := b.saveIndex(); serr != nil {
			b.mu.Unlock()
			return serr
		}
	}
	b.mu.Unlock()

	if err != nil {
		return types.ErrNotFound
	}
	return nil
}

// Names 分页列出索引中的条目名
func (b *Backend) Names(ctx context.Context, after string, limit int) ([]string, bool, error) {
	if err := b.check(ctx); err != nil {
		return nil, false, err
	}

	b.mu.RLock()
	names := make([]string, 0, len(b.index))
	for name := range b.index {
		names = append(names, name)
	}
	b.mu.RUnlock()

	sort.Strings(names)
	page, more := backend.Page(names, after, limit)
	return page, more, nil
}

// Close 关闭后端（凭据库无需释放句柄）
func (b *Backend) Close() error {
	b.closed.Store(true)
	return nil
}

// ============================================================================
//                              索引
// ============================================================================

// loadIndex 读取索引条目（每行一个名称）
func (b *Backend) loadIndex() error {
	s, err := b.v.Get(b.service, indexUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	if err != nil {
		return mapError(err)
	}

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("%w: credvault index is not base64", types.ErrBlobCorrupted)
	}
	for _, name := range strings.Split(string(raw), "\n") {
		if name != "" {
			b.index[name] = struct{}{}
		}
	}
	return nil
}

// saveIndex 写回索引，调用方持有写锁
func (b *Backend) saveIndex() error {
	names := make([]string, 0, len(b.index))
	for name := range b.index {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		if err := b.v.Delete(b.service, indexUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return mapError(err)
		}
		return nil
	}

	raw := strings.Join(names, "\n")
	if err := b.v.Set(b.service, indexUser, base64.StdEncoding.EncodeToString([]byte(raw))); err != nil {
		return mapError(err)
	}
	return nil
}

// mapError 将平台错误映射为存储错误
func mapError(err error) error {
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return types.ErrNotFound
	case errors.Is(err, keyring.ErrSetDataTooBig):
		return fmt.Errorf("%w: entry too large for credential vault", types.ErrInvalidParameters)
	default:
		return fmt.Errorf("%w: %v", types.ErrBackendUnavailable, err)
	}
}
