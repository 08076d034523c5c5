// Package entropy 提供进程级共享的密码学安全熵源
//
// 所有密钥生成、nonce、盐值都从 Source 读取。读取失败时
// 返回 types.ErrRandomnessFailure，绝不降级为弱随机数。
package entropy

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dep2p/go-keyvault/pkg/types"
	"golang.org/x/crypto/chacha20"
)

// Source 熵源
//
// Fill 必须填满整个 buffer，否则返回错误。实现必须线程安全。
type Source interface {
	Fill(b []byte) error
}

// ============================================================================
//                              系统熵源
// ============================================================================

type systemSource struct{}

// Fill 从 crypto/rand 读取
func (systemSource) Fill(b []byte) error {
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return fmt.Errorf("%w: %v", types.ErrRandomnessFailure, err)
	}
	return nil
}

var system Source = systemSource{}

// System 返回进程级共享的系统熵源
func System() Source {
	return system
}

// OrSystem 返回 src，为 nil 时返回系统熵源
func OrSystem(src Source) Source {
	if src == nil {
		return system
	}
	return src
}

// Bytes 从熵源读取 n 个随机字节
func Bytes(src Source, n int) ([]byte, error) {
	b := make([]byte, n)
	if err := OrSystem(src).Fill(b); err != nil {
		return nil, err
	}
	return b, nil
}

// ============================================================================
//                              io.Reader 适配
// ============================================================================

// Reader 把 Source 适配为 io.Reader，供需要 io.Reader 的原语库使用
//
// 第一次失败后错误被记住，Err 返回该错误，
// 调用方据此把原语库返回的错误归类为 ErrRandomnessFailure。
type Reader struct {
	src Source
	mu  sync.Mutex
	err error
}

// NewReader 创建 Reader
func NewReader(src Source) *Reader {
	return &Reader{src: OrSystem(src)}
}

// Read 实现 io.Reader，总是读满 p 或返回错误
func (r *Reader) Read(p []byte) (int, error) {
	if err := r.src.Fill(p); err != nil {
		r.mu.Lock()
		if r.err == nil {
			r.err = err
		}
		r.mu.Unlock()
		return 0, err
	}
	return len(p), nil
}

// Err 返回第一次读取失败的错误
func (r *Reader) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Classify 若熵源曾失败，返回熵源错误，否则返回 err 本身
func (r *Reader) Classify(err error) error {
	if err == nil {
		return nil
	}
	if rerr := r.Err(); rerr != nil {
		if errors.Is(rerr, types.ErrRandomnessFailure) {
			return rerr
		}
		return fmt.Errorf("%w: %v", types.ErrRandomnessFailure, rerr)
	}
	return err
}

// ============================================================================
//                              特殊熵源
// ============================================================================

// exhausted 总是失败的熵源
type exhausted struct{}

func (exhausted) Fill([]byte) error {
	return fmt.Errorf("%w: entropy source exhausted", types.ErrRandomnessFailure)
}

// Exhausted 返回一个总是失败的熵源（仅用于测试）
func Exhausted() Source {
	return exhausted{}
}

// deterministic 基于 ChaCha20 密钥流的确定性熵源
type deterministic struct {
	mu     sync.Mutex
	stream *chacha20.Cipher
}

// Deterministic 返回由 seed 决定的确定性熵源
//
// 相同 seed 产生相同字节流。仅用于测试和可复现的密钥派生，
// 生产环境必须使用 System。
func Deterministic(seed [32]byte) Source {
	nonce := make([]byte, chacha20.NonceSize)
	stream, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce)
	if err != nil {
		// 密钥和 nonce 长度固定，不会失败
		panic(err)
	}
	return &deterministic{stream: stream}
}

func (d *deterministic) Fill(b []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range b {
		b[i] = 0
	}
	d.stream.XORKeyStream(b, b)
	return nil
}
