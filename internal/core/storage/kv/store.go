package kv

import (
	"bytes"

	"github.com/dep2p/go-keyvault/internal/core/storage/engine"
)

// Store 带前缀隔离的 KV 存储
//
// Store 本身无状态，线程安全性由底层引擎保证。
type Store struct {
	engine engine.Engine
	prefix []byte
}

// New 创建新的 Store
//
// 参数:
//   - eng: 底层存储引擎
//   - prefix: 键前缀（所有操作会自动添加此前缀）
func New(eng engine.Engine, prefix []byte) *Store {
	return &Store{
		engine: eng,
		prefix: append([]byte(nil), prefix...),
	}
}

// prefixKey 为键添加前缀
func (s *Store) prefixKey(key []byte) []byte {
	if len(s.prefix) == 0 {
		return key
	}
	prefixed := make([]byte, len(s.prefix)+len(key))
	copy(prefixed, s.prefix)
	copy(prefixed[len(s.prefix):], key)
	return prefixed
}

// stripPrefix 从键中移除前缀
func (s *Store) stripPrefix(key []byte) []byte {
	if len(s.prefix) == 0 || len(key) < len(s.prefix) {
		return key
	}
	return key[len(s.prefix):]
}

// ============================================================================
//                              基础操作
// ============================================================================

// Get 获取指定键的值
func (s *Store) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, engine.ErrEmptyKey
	}
	return s.engine.Get(s.prefixKey(key))
}

// Put 设置键值对
func (s *Store) Put(key, value []byte) error {
	if len(key) == 0 {
		return engine.ErrEmptyKey
	}
	return s.engine.Put(s.prefixKey(key), value)
}

// Keys 按字典序分页返回键
//
// 返回严格大于 after 的至多 limit 个键（limit <= 0 表示不限制）。
// more 为 true 表示之后还有键，下一页以本页最后一个键作为 after。
// 每页使用独立的快照，页与页之间的并发写入可见。
func (s *Store) Keys(after []byte, limit int) (keys [][]byte, more bool, err error) {
	iter := s.engine.NewPrefixIterator(s.prefix)
	defer iter.Close()

	var ok bool
	if len(after) == 0 {
		ok = iter.First()
	} else {
		ok = iter.Seek(s.prefixKey(after))
		if ok && bytes.Equal(s.stripPrefix(iter.Key()), after) {
			ok = iter.Next()
		}
	}

	for ; ok; ok = iter.Next() {
		if limit > 0 && len(keys) == limit {
			more = true
			break
		}
		keys = append(keys, s.stripPrefix(iter.Key()))
	}
	if err := iter.Error(); err != nil {
		return nil, false, err
	}
	return keys, more, nil
}

// ============================================================================
//                              事务
// ============================================================================

// prefixTxn 为事务中的键添加前缀
type prefixTxn struct {
	store *Store
	txn   engine.Txn
}

func (t prefixTxn) Get(key []byte) ([]byte, error) {
	return t.txn.Get(t.store.prefixKey(key))
}

func (t prefixTxn) Set(key, value []byte) error {
	return t.txn.Set(t.store.prefixKey(key), value)
}

func (t prefixTxn) Delete(key []byte) error {
	return t.txn.Delete(t.store.prefixKey(key))
}

// Update 在一个读写事务中执行 fn，fn 看到的键不含前缀
func (s *Store) Update(fn func(txn engine.Txn) error) error {
	return s.engine.Update(func(txn engine.Txn) error {
		return fn(prefixTxn{store: s, txn: txn})
	})
}
