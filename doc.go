// Package keyvault 提供加密身份与安全凭据存储
//
// go-keyvault 把三部分组合在一起：
//
//   - 身份：RSA / Ed25519 / secp256k1 / P-256 / Dilithium / Kyber 密钥对，
//     签名、验证、密钥封装和 PEM 导入导出（pkg/lib/crypto, pkg/lib/keyfmt）
//   - 加密：口令派生（Argon2id / scrypt / PBKDF2）和 AEAD 加密（pkg/lib/seal）
//   - 安全存储：凭据以 key_id 为键加密保存在内存、操作系统凭据库、
//     Linux 内核密钥环或 BadgerDB 中（internal/core/securestore）
//
// # 快速开始
//
//	import "github.com/dep2p/go-keyvault"
//
//	// 1. 打开保管库
//	v, err := keyvault.Open(ctx,
//	    keyvault.WithBackend("badgerdb"),
//	    keyvault.WithDataDir("/var/lib/keyvault"),
//	    keyvault.WithPassphrase(passphrase),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer v.Close()
//
//	// 2. 保存和读取凭据
//	_ = v.Put(ctx, "svc/db-password", []byte("s3cr3t"))
//	secret, _ := v.Get(ctx, "svc/db-password")
//
//	// 3. 管理身份
//	id, _ := crypto.Generate(crypto.Ed25519, nil)
//	_ = v.Identities().Save(ctx, "node", id)
//
//	// 或者在启动时加载默认身份，不存在则创建
//	v, err = keyvault.Open(ctx, keyvault.WithIdentity("node", true))
//	id, _ = v.Identity()
//
// # 错误分类
//
// 所有错误都可以用 errors.Is 归入 pkg/types 中的五个类别之一：
// ErrInput、ErrCrypto、ErrUnsupportedFeature、ErrStorage、ErrRandomnessFailure。
// types.KindOf 返回错误类别。
//
// # 文件组织
//
//   - vault.go: Vault 入口和生命周期
//   - options.go: 配置选项
//   - fx.go: Fx 应用组装
//   - errors.go: 公共错误
package keyvault
