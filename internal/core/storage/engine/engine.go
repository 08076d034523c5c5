// Package engine 定义持久化后端使用的键值存储引擎接口
//
// # 实现
//
//   - badger: BadgerDB 实现
//
// 所有实现必须线程安全。单键 Put/Delete 是原子的，读取永远不会
// 看到写了一半的值。
package engine

// Engine 键值存储引擎
type Engine interface {
	// Get 获取值，键不存在时返回 ErrNotFound
	Get(key []byte) ([]byte, error)

	// Put 原子写入单个键值
	Put(key, value []byte) error

	// Delete 删除键，键不存在不是错误
	Delete(key []byte) error

	// Update 在一个读写事务中执行 fn，fn 返回错误时回滚
	Update(fn func(txn Txn) error) error

	// NewPrefixIterator 创建前缀迭代器，调用者负责 Close
	NewPrefixIterator(prefix []byte) Iterator

	// Sync 同步数据到磁盘
	Sync() error

	// Stats 获取统计信息
	Stats() *Stats

	// Close 关闭引擎，重复调用安全
	Close() error
}

// Txn 读写事务
type Txn interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
}

// Iterator 迭代器
//
// 迭代器保持创建时的快照视图，不受后续写入影响。
//
//	it := eng.NewPrefixIterator(prefix)
//	defer it.Close()
//	for it.First(); it.Valid(); it.Next() {
//	    key, value := it.Key(), it.Value()
//	}
//	if err := it.Error(); err != nil {
//	    return err
//	}
type Iterator interface {
	// First 移动到第一个键值对
	First() bool

	// Seek 定位到第一个 >= key 的位置
	Seek(key []byte) bool

	// Next 移动到下一个键值对
	Next() bool

	// Valid 当前位置是否有效
	Valid() bool

	// Key 返回当前键的副本
	Key() []byte

	// Value 返回当前值的副本
	Value() []byte

	// Close 关闭迭代器
	Close()

	// Error 返回迭代过程中的错误
	Error() error
}

// Stats 引擎统计信息
type Stats struct {
	NumReads   int64 `json:"num_reads"`
	NumWrites  int64 `json:"num_writes"`
	NumDeletes int64 `json:"num_deletes"`
	LSMSize    int64 `json:"lsm_size"`
	VlogSize   int64 `json:"vlog_size"`
}
