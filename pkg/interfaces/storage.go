// Package interfaces - Storage 安全存储接口
//
// 本文件定义安全存储引擎及其后端的接口。
//
// # 分层
//
//	SecureStore  加密、按 key_id 加锁、主密钥管理
//	    │
//	Backend      只搬运已加密的字节，永远看不到明文
package interfaces

import "context"

// SecureStore 安全凭据存储
//
// 所有方法线程安全。同一 key_id 的写入互斥，不同 key_id 的写入
// 互不阻塞；读取只会看到写入前或写入后的完整状态。
//
// 示例:
//
//	if err := store.Put(ctx, "svc/db-password", []byte("s3cr3t")); err != nil {
//	    return err
//	}
//	secret, err := store.Get(ctx, "svc/db-password")
//	if errors.Is(err, types.ErrNotFound) {
//	    // ...
//	}
type SecureStore interface {
	// Put 加密并写入凭据，已存在时覆盖（后写者胜）
	//
	// 被取消的 Put 状态未知，调用方应重新 Get 确认。
	Put(ctx context.Context, keyID string, secret []byte) error

	// Get 读取并解密凭据
	//
	// 返回:
	//   - []byte: 明文副本，调用方负责清零
	//   - error: ErrNotFound / ErrBlobCorrupted / 后端错误
	Get(ctx context.Context, keyID string) ([]byte, error)

	// Delete 删除凭据，不存在时返回 ErrNotFound
	Delete(ctx context.Context, keyID string) error

	// List 返回 key_id 的惰性迭代器（只含元数据）
	List(ctx context.Context) (SecretIterator, error)

	// Backend 返回后端名称
	Backend() string

	// Close 清零主密钥并释放后端，重复调用安全
	Close() error
}

// SecretIterator key_id 迭代器
//
// 按页从后端拉取，有限且可重启：
//
//	it, _ := store.List(ctx)
//	defer it.Close()
//	for it.Next() {
//	    fmt.Println(it.KeyID())
//	}
//	if err := it.Err(); err != nil {
//	    return err
//	}
type SecretIterator interface {
	// Next 前进到下一个 key_id，结束或出错时返回 false
	Next() bool

	// KeyID 返回当前 key_id
	KeyID() string

	// Err 返回迭代过程中的错误
	Err() error

	// Reset 回到起点重新迭代
	Reset()

	// Close 释放迭代器
	Close()
}

// Backend 安全存储后端原语
//
// 后端只处理已加密的记录字节。单个条目的写入必须是原子的。
//
// 错误约定（pkg/types）:
//   - ErrNotFound: 条目不存在
//   - ErrPermissionDenied: 操作系统拒绝访问
//   - ErrBackendUnavailable: 后端不可用（可重试）
type Backend interface {
	// Name 返回后端名称（memory / credvault / keyring / badgerdb）
	Name() string

	// Write 原子写入条目
	Write(ctx context.Context, name string, data []byte) error

	// Read 读取条目
	Read(ctx context.Context, name string) ([]byte, error)

	// Remove 删除条目，不存在时返回 ErrNotFound
	Remove(ctx context.Context, name string) error

	// Names 按字典序分页列出条目名
	//
	// 返回严格大于 after 的至多 limit 个名称；more 表示之后还有。
	Names(ctx context.Context, after string, limit int) (names []string, more bool, err error)

	// Close 释放后端资源，重复调用安全
	Close() error
}
