package securestore

import "sync"

// keyLock 单个 key_id 的读写锁
type keyLock struct {
	sync.RWMutex
	refs int
}

// keyLocks 按 key_id 分配的读写锁表
//
// 条目在最后一个持有者释放后删除，表的大小与并发中的 key_id 数量
// 成正比。表锁只在获取/归还条目时短暂持有。
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*keyLock)}
}

func (l *keyLocks) acquire(id string) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	kl, ok := l.locks[id]
	if !ok {
		kl = &keyLock{}
		l.locks[id] = kl
	}
	kl.refs++
	return kl
}

func (l *keyLocks) release(id string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, id)
	}
}

// Lock 独占锁定 id，返回解锁函数
func (l *keyLocks) Lock(id string) func() {
	kl := l.acquire(id)
	kl.Lock()
	return func() {
		kl.Unlock()
		l.release(id, kl)
	}
}

// RLock 共享锁定 id，返回解锁函数
func (l *keyLocks) RLock(id string) func() {
	kl := l.acquire(id)
	kl.RLock()
	return func() {
		kl.RUnlock()
		l.release(id, kl)
	}
}

// size 返回当前条目数
func (l *keyLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
