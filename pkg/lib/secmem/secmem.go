// Package secmem 提供敏感内存的持有与清零
//
// Buffer 持有私钥、派生密钥、共享密钥等字节，Destroy 时清零。
// 不依赖 GC 或 finalizer 的时机：调用方必须在所有退出路径上显式 Destroy。
package secmem

import (
	"crypto/subtle"
	"runtime"
	"sync"
)

// Wipe 将 b 清零
//
// 所有持有派生密钥、共享密钥、明文的缓冲区都通过 Wipe 清除。
func Wipe(b []byte) {
	if len(b) == 0 {
		return
	}
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// WipeAll 清零多个缓冲区
func WipeAll(bufs ...[]byte) {
	for _, b := range bufs {
		Wipe(b)
	}
}

// ============================================================================
//                              Buffer
// ============================================================================

// Buffer 持有敏感字节
//
// Destroy 后内容被清零，Bytes 返回 nil。Destroy 幂等，
// 调用方应在所有退出路径上 defer Destroy。
type Buffer struct {
	mu        sync.RWMutex
	b         []byte
	destroyed bool
}

// New 分配 n 字节的 Buffer
func New(n int) *Buffer {
	return &Buffer{b: make([]byte, n)}
}

// Wrap 接管 b 的所有权
//
// 调用方此后不得再使用 b，Destroy 会清零 b 本身。
func Wrap(b []byte) *Buffer {
	return &Buffer{b: b}
}

// Copy 复制 b 到新的 Buffer
func Copy(b []byte) *Buffer {
	c := make([]byte, len(b))
	copy(c, b)
	return &Buffer{b: c}
}

// Bytes 返回内部字节（不复制）
//
// 返回的切片只在 Destroy 之前有效。
func (s *Buffer) Bytes() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.destroyed {
		return nil
	}
	return s.b
}

// Copy 返回内部字节的副本，调用方负责清零
func (s *Buffer) Copy() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.destroyed {
		return nil
	}
	c := make([]byte, len(s.b))
	copy(c, s.b)
	return c
}

// Len 返回长度
func (s *Buffer) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.destroyed {
		return 0
	}
	return len(s.b)
}

// Equal 常量时间比较
func (s *Buffer) Equal(other []byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.destroyed {
		return false
	}
	return subtle.ConstantTimeCompare(s.b, other) == 1
}

// Destroy 清零并释放
func (s *Buffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	Wipe(s.b)
	s.b = nil
	s.destroyed = true
}

// Destroyed 是否已销毁
func (s *Buffer) Destroyed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.destroyed
}

