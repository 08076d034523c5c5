// Package keyring 提供 Linux 内核密钥环后端
//
// 每个命名空间对应一个名为 "keyvault:<namespace>" 的专用密钥环，
// 链接到配置的父密钥环（session / user / process）。条目是 "user"
// 类型的密钥，描述即条目名。数据由内核持有，直到所属密钥环或会话
// 被操作系统撤销；访问受内核权限检查约束。
//
// 未配置口令时主密钥与记录保存在同一个密钥环中，能读取该密钥环的
// 进程即可解密全部记录。
//
// 非 Linux 平台上 Open 返回 ErrBackendUnavailable。
package keyring

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dep2p/go-keyvault/internal/core/securestore/backend"
	"github.com/dep2p/go-keyvault/pkg/lib/log"
	"github.com/dep2p/go-keyvault/pkg/types"
)

var logger = log.Logger("securestore/keyring")

// Name 后端名称
const Name = "keyring"

// MaxPayload user 类型密钥的最大负载
const MaxPayload = 32767

// RingPrefix 专用密钥环名称前缀
const RingPrefix = "keyvault:"

// 父密钥环
const (
	ParentSession = "session"
	ParentUser    = "user"
	ParentProcess = "process"
)

// keyctl 内核密钥环原语
//
// 错误已映射为 pkg/types 中的存储错误。
type keyctl interface {
	// ring 查找或创建父密钥环下的命名密钥环
	ring(parent, name string) (int, error)
	// add 添加或原子替换密钥
	add(ring int, desc string, payload []byte) error
	// search 在密钥环中查找 user 密钥
	search(ring int, desc string) (int, error)
	// read 读取密钥负载
	read(id int) ([]byte, error)
	// remove 撤销密钥并从密钥环解除链接
	remove(ring, id int) error
	// list 列出密钥环中的 user 密钥描述
	list(ring int) ([]string, error)
}

// Config 内核密钥环配置
type Config struct {
	// Namespace 命名空间
	Namespace string
	// Parent 父密钥环：session / user / process
	Parent string
}

// Backend 内核密钥环后端
//
// 单个 add_key 调用原子替换同名密钥，后端本身只需要保护关闭状态。
type Backend struct {
	kc     keyctl
	ring   int
	parent string

	mu     sync.RWMutex
	closed bool
}

// Open 打开（必要时创建）命名空间的专用密钥环
func Open(cfg Config) (*Backend, error) {
	kc, err := newSysKeyctl()
	if err != nil {
		return nil, err
	}
	return open(kc, cfg)
}

func open(kc keyctl, cfg Config) (*Backend, error) {
	if err := backend.CheckNamespace(cfg.Namespace); err != nil {
		return nil, err
	}
	parent := cfg.Parent
	if parent == "" {
		parent = ParentUser
	}
	switch parent {
	case ParentSession, ParentUser, ParentProcess:
	default:
		return nil, fmt.Errorf("%w: unknown parent keyring %q", types.ErrInvalidParameters, cfg.Parent)
	}

	ring, err := kc.ring(parent, RingPrefix+cfg.Namespace)
	if err != nil {
		return nil, fmt.Errorf("open keyring %s%s: %w", RingPrefix, cfg.Namespace, err)
	}
	logger.Debug("内核密钥环已打开", "parent", parent, "ring", ring)

	return &Backend{kc: kc, ring: ring, parent: parent}, nil
}

// Name 返回后端名称
func (b *Backend) Name() string {
	return Name
}

// Protected 条目由内核持有并受权限检查保护
func (b *Backend) Protected() bool {
	return true
}

// RingID 返回专用密钥环序列号
func (b *Backend) RingID() int {
	return b.ring
}

func (b *Backend) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.closed {
		return types.ErrStoreClosed
	}
	return nil
}

// Write 添加或替换密钥
func (b *Backend) Write(ctx context.Context, name string, data []byte) error {
	if err := backend.CheckName(name); err != nil {
		return err
	}
	if len(data) > MaxPayload {
		return fmt.Errorf("%w: keyring payload %d bytes exceeds %d", types.ErrInvalidParameters, len(data), MaxPayload)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.check(ctx); err != nil {
		return err
	}
	return b.kc.add(b.ring, name, data)
}

// Read 读取密钥负载
func (b *Backend) Read(ctx context.Context, name string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.check(ctx); err != nil {
		return nil, err
	}

	id, err := b.kc.search(b.ring, name)
	if err != nil {
		return nil, err
	}
	return b.kc.read(id)
}

// Remove 撤销并解除链接
func (b *Backend) Remove(ctx context.Context, name string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.check(ctx); err != nil {
		return err
	}

	id, err := b.kc.search(b.ring, name)
	if err != nil {
		return err
	}
	return b.kc.remove(b.ring, id)
}

// Names 分页列出密钥描述
func (b *Backend) Names(ctx context.Context, after string, limit int) ([]string, bool, error) {
	b.mu.RLock()
	if err := b.check(ctx); err != nil {
		b.mu.RUnlock()
		return nil, false, err
	}
	names, err := b.kc.list(b.ring)
	b.mu.RUnlock()
	if err != nil {
		return nil, false, err
	}

	sort.Strings(names)
	page, more := backend.Page(names, after, limit)
	return page, more, nil
}

// Close 关闭后端
//
// 密钥环保留在内核中，由父密钥环的生命周期决定何时回收。
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
