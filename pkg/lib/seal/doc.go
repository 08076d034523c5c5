// Package seal 实现密钥派生与对称认证加密
//
// # 组成
//
//   - KDF：Argon2id、scrypt、PBKDF2-SHA256（口令派生），HKDF-SHA256（主密钥派生子密钥）
//   - 密码：AES-256-GCM、ChaCha20-Poly1305（AEAD，96 位 nonce），
//     3DES-CBC+HMAC、Blowfish-CBC+HMAC（遗留，默认关闭）
//   - EncryptedBlob：版本化的密文块，protobuf wire 编码
//   - SymmetricKey：派生密钥，底层由 secmem.Buffer 持有并在销毁时清零
//
// # 使用示例
//
//	params, _ := seal.NewKDFParams(seal.KDFArgon2id, nil)
//	key, err := seal.Derive([]byte("correct horse"), params)
//	if err != nil {
//	    return err
//	}
//	defer key.Destroy()
//
//	eng := seal.NewEngine()
//	blob, err := eng.Encrypt(key, plaintext, []byte("context"))
//
// 每次 Encrypt 都从熵源生成新的 nonce。解密失败只返回
// ErrAuthenticationFailed，不区分错误密钥和篡改。
package seal
