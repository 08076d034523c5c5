// Package badgerdb 提供基于 BadgerDB 的持久化安全存储后端
//
// 记录保存在键空间 s/<namespace>/ 下，进程重启后仍然存在。
// 多个命名空间可以共享同一个引擎；命名空间不含 "/"，
// 因此任何一个命名空间的前缀都不是另一个的前缀。
package badgerdb

import (
	"context"

	"go.uber.org/multierr"

	"github.com/dep2p/go-keyvault/internal/core/storage/engine"
	"github.com/dep2p/go-keyvault/internal/core/storage/engine/badger"
	"github.com/dep2p/go-keyvault/internal/core/storage/kv"
	"github.com/dep2p/go-keyvault/internal/core/securestore/backend"
	"github.com/dep2p/go-keyvault/pkg/lib/log"
	"github.com/dep2p/go-keyvault/pkg/types"
)

var logger = log.Logger("securestore/badgerdb")

// Name 后端名称
const Name = "badgerdb"

// Backend BadgerDB 后端
type Backend struct {
	eng     engine.Engine
	store   *kv.Store
	ownsEng bool
}

// Open 按引擎配置打开数据库并创建后端
//
// 后端拥有引擎，Close 时一并关闭。
func Open(cfg *engine.Config, namespace string) (*Backend, error) {
	if err := backend.CheckNamespace(namespace); err != nil {
		return nil, err
	}
	eng, err := badger.New(cfg)
	if err != nil {
		return nil, err
	}

	b, err := New(eng, namespace)
	if err != nil {
		return nil, multierr.Append(err, eng.Close())
	}
	b.ownsEng = true
	logger.Info("持久化存储已打开", "path", cfg.Path, "inMemory", cfg.InMemory, "namespace", namespace)
	return b, nil
}

// New 在已有引擎上创建后端，调用方负责关闭引擎
func New(eng engine.Engine, namespace string) (*Backend, error) {
	if err := backend.CheckNamespace(namespace); err != nil {
		return nil, err
	}
	return &Backend{
		eng:   eng,
		store: kv.New(eng, []byte("s/"+namespace+backend.NamespaceSeparator)),
	}, nil
}

// Name 返回后端名称
func (b *Backend) Name() string {
	return Name
}

// Write 原子写入记录
func (b *Backend) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := backend.CheckName(name); err != nil {
		return err
	}
	return b.store.Put([]byte(name), data)
}

// Read 读取记录
func (b *Backend) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, types.ErrNotFound
	}
	return b.store.Get([]byte(name))
}

// Remove 在一个事务中检查并删除记录
func (b *Backend) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" {
		return types.ErrNotFound
	}

	key := []byte(name)
	return b.store.Update(func(txn engine.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// Names 分页列出记录名
func (b *Backend) Names(ctx context.Context, after string, limit int) ([]string, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	keys, more, err := b.store.Keys([]byte(after), limit)
	if err != nil {
		return nil, false, err
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k)
	}
	return names, more, nil
}

// Stats 返回引擎统计
func (b *Backend) Stats() *engine.Stats {
	return b.eng.Stats()
}

// Close 同步并关闭自有引擎
func (b *Backend) Close() error {
	if !b.ownsEng {
		return nil
	}
	err := b.eng.Sync()
	if engine.IsClosed(err) {
		return nil
	}
	return multierr.Append(err, b.eng.Close())
}
