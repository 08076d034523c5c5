package badger

import (
	"bytes"
	"sync/atomic"

	"github.com/dep2p/go-keyvault/internal/core/storage/engine"
	"github.com/dgraph-io/badger/v4"
)

// Iterator BadgerDB 前缀迭代器
type Iterator struct {
	txn     *badger.Txn
	iter    *badger.Iterator
	prefix  []byte
	started bool
	closed  atomic.Bool
	err     error
}

// First 移动到第一个键值对
func (it *Iterator) First() bool {
	if it.closed.Load() {
		return false
	}
	it.started = true
	if len(it.prefix) > 0 {
		it.iter.Seek(it.prefix)
	} else {
		it.iter.Rewind()
	}
	return it.Valid()
}

// Seek 定位到第一个 >= key 的位置
func (it *Iterator) Seek(key []byte) bool {
	if it.closed.Load() {
		return false
	}
	it.started = true
	if bytes.Compare(key, it.prefix) < 0 {
		key = it.prefix
	}
	it.iter.Seek(key)
	return it.Valid()
}

// Next 移动到下一个键值对
func (it *Iterator) Next() bool {
	if it.closed.Load() {
		return false
	}
	if !it.started {
		return it.First()
	}
	it.iter.Next()
	return it.Valid()
}

// Valid 检查迭代器是否指向前缀内的有效位置
func (it *Iterator) Valid() bool {
	if it.closed.Load() || !it.iter.Valid() {
		return false
	}
	return bytes.HasPrefix(it.iter.Item().Key(), it.prefix)
}

// Key 返回当前键的副本
func (it *Iterator) Key() []byte {
	if !it.Valid() {
		return nil
	}
	return it.iter.Item().KeyCopy(nil)
}

// Value 返回当前值的副本
func (it *Iterator) Value() []byte {
	if !it.Valid() {
		return nil
	}
	value, err := it.iter.Item().ValueCopy(nil)
	if err != nil {
		it.err = convertError(err)
		return nil
	}
	return value
}

// Close 关闭迭代器
func (it *Iterator) Close() {
	if it.closed.Swap(true) {
		return
	}
	it.iter.Close()
	it.txn.Discard()
}

// Error 返回迭代过程中的错误
func (it *Iterator) Error() error {
	return it.err
}

// closedIterator 引擎关闭后返回的空迭代器
type closedIterator struct{}

func (closedIterator) First() bool       { return false }
func (closedIterator) Seek([]byte) bool  { return false }
func (closedIterator) Next() bool        { return false }
func (closedIterator) Valid() bool       { return false }
func (closedIterator) Key() []byte       { return nil }
func (closedIterator) Value() []byte     { return nil }
func (closedIterator) Close()            {}
func (closedIterator) Error() error      { return engine.ErrClosed }

var (
	_ engine.Iterator = (*Iterator)(nil)
	_ engine.Iterator = closedIterator{}
)
