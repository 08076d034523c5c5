package securestore

import (
	"context"

	"github.com/dep2p/go-keyvault/pkg/interfaces"
)

// iterator 按页从后端拉取 key_id
//
// 每页单独请求后端，迭代期间的并发写入可能可见也可能不可见，
// 但每个 key_id 至多出现一次。保留条目被跳过。
type iterator struct {
	ctx   context.Context
	store *Store

	page    []string
	pos     int
	after   string
	more    bool
	fetched bool

	cur    string
	err    error
	closed bool
}

var _ interfaces.SecretIterator = (*iterator)(nil)

func newIterator(ctx context.Context, s *Store) *iterator {
	return &iterator{ctx: ctx, store: s}
}

// Next 前进到下一个 key_id
func (it *iterator) Next() bool {
	if it.closed || it.err != nil {
		return false
	}

	for {
		for it.pos < len(it.page) {
			name := it.page[it.pos]
			it.pos++
			if IsReserved(name) {
				continue
			}
			it.cur = name
			return true
		}

		if it.fetched && !it.more {
			it.cur = ""
			return false
		}
		if err := it.fetch(); err != nil {
			it.err = err
			it.cur = ""
			return false
		}
	}
}

func (it *iterator) fetch() error {
	if err := it.ctx.Err(); err != nil {
		return err
	}
	names, more, err := it.store.names(it.ctx, it.after)
	if err != nil {
		return err
	}
	it.page, it.pos, it.more, it.fetched = names, 0, more, true
	if len(names) > 0 {
		it.after = names[len(names)-1]
	} else {
		it.more = false
	}
	return nil
}

// KeyID 返回当前 key_id
func (it *iterator) KeyID() string {
	return it.cur
}

// Err 返回迭代错误
func (it *iterator) Err() error {
	return it.err
}

// Reset 回到起点，已关闭的迭代器保持关闭
func (it *iterator) Reset() {
	it.page, it.pos, it.after = nil, 0, ""
	it.more, it.fetched = false, false
	it.cur, it.err = "", nil
}

// Close 释放迭代器
func (it *iterator) Close() {
	it.closed = true
	it.page = nil
	it.cur = ""
}
