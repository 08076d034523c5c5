// Package kv 提供带前缀隔离的 KV 存储
//
// Store 在 engine.Engine 之上为所有键自动添加前缀，多个命名空间
// 可以共享同一个 BadgerDB 实例。
//
// # 键空间设计
//
//   - s/<namespace>/   - 加密后的凭据记录，包括保留条目 __kv/meta
//
// 前缀之间不能互为前缀，否则较短前缀的 Keys 会列出另一方的键。
//
// # 使用示例
//
//	eng, _ := badger.New(engine.DefaultConfig(dir))
//	secrets := kv.New(eng, []byte("s/default/"))
//
//	secrets.Put([]byte("svc/db"), blob)    // 实际键: s/default/svc/db
//	names, next, _ := secrets.Keys(nil, 100)
package kv
