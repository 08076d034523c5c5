// Package memory 提供进程内安全存储后端
//
// 数据只保存在进程内存中，进程退出即丢失。用于测试和临时会话。
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dep2p/go-keyvault/internal/core/securestore/backend"
	"github.com/dep2p/go-keyvault/pkg/lib/secmem"
	"github.com/dep2p/go-keyvault/pkg/types"
)

// Name 后端名称
const Name = "memory"

// Backend 内存后端
type Backend struct {
	mu      sync.RWMutex
	entries map[string][]byte
	closed  bool
}

// New 创建内存后端
func New() *Backend {
	return &Backend{entries: make(map[string][]byte)}
}

// Name 返回后端名称
func (b *Backend) Name() string {
	return Name
}

// Write 写入条目（值被复制）
func (b *Backend) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := backend.CheckName(name); err != nil {
		return err
	}

	v := append([]byte(nil), data...)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return types.ErrStoreClosed
	}
	if old, ok := b.entries[name]; ok {
		secmem.Wipe(old)
	}
	b.entries[name] = v
	return nil
}

// Read 读取条目副本
func (b *Backend) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, types.ErrStoreClosed
	}
	v, ok := b.entries[name]
	if !ok {
		return nil, types.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Remove 删除条目
func (b *Backend) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return types.ErrStoreClosed
	}
	v, ok := b.entries[name]
	if !ok {
		return types.ErrNotFound
	}
	secmem.Wipe(v)
	delete(b.entries, name)
	return nil
}

// Names 分页列出条目名
func (b *Backend) Names(ctx context.Context, after string, limit int) ([]string, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return nil, false, types.ErrStoreClosed
	}
	names := make([]string, 0, len(b.entries))
	for name := range b.entries {
		names = append(names, name)
	}
	b.mu.RUnlock()

	sort.Strings(names)
	page, more := backend.Page(names, after, limit)
	return page, more, nil
}

// Len 返回条目数
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Close 清零并丢弃所有条目
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	for name, v := range b.entries {
		secmem.Wipe(v)
		delete(b.entries, name)
	}
	b.closed = true
	return nil
}
