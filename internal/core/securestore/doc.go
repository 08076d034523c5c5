// Package securestore 实现安全凭据存储引擎
//
// # put 流水线
//
//	校验 key_id → 独占锁 key_id → HKDF(主密钥, 新盐, key_id) 派生子密钥
//	→ AEAD 加密（关联数据 = namespace‖key_id）→ 编码记录 → 后端原子写入
//
// get 反向执行，记录解码失败或认证失败都报告为 ErrBlobCorrupted。
//
// # 并发
//
// 每个 key_id 一把引用计数的读写锁：同一 key_id 的写入串行，
// 不同 key_id 互不阻塞，没有全局写锁。
//
// # 主密钥
//
//   - 无口令 + memory 后端：进程内随机生成，进程退出即失效
//   - 无口令 + 操作系统保护的后端（credvault / keyring）：随机生成，
//     保存在后端的保留条目 __kv/meta 中
//   - 有口令：按 KDF 参数派生，参数、盐和校验值保存在 __kv/meta，
//     口令错误在打开时即报告 ErrWrongPassphrase
//
// 主密钥保存在 secmem 缓冲区中，Close 时清零。
package securestore
