// Package crypto 提供 go-keyvault 的身份核心
//
// 本包在一个基于能力的接口下统一多种非对称算法：经典签名、
// 后量子签名和后量子 KEM。
//
// # 支持的算法
//
//   - Ed25519（默认推荐）：高性能椭圆曲线签名
//   - Secp256k1（区块链兼容）：签名 + ECDH
//   - ECDSA P-256：NIST 标准曲线，签名 + ECDH
//   - RSA（传统兼容）：RSA-PSS-SHA256，2048/3072/4096 位
//   - Dilithium3：后量子签名
//   - SPHINCS+：无状态哈希签名，SLH-DSA-SHA2-128s 参数集
//   - Kyber768：后量子 KEM（只能封装/解封装）
//   - Falcon：保留算法标识并标记为实验性，本构建不带实现，
//     调用返回 ErrAlgorithmUnavailable
//
// # 快速开始
//
//	id, err := crypto.Generate(crypto.Ed25519, entropy.System())
//	if err != nil {
//	    return err
//	}
//	defer id.Destroy()
//
//	sig, err := id.Sign([]byte("hello"))
//	ok, err := crypto.Verify(crypto.Ed25519, id.PublicKey().Raw(), []byte("hello"), sig)
//
// # 运行时能力注册表
//
// 每个算法族由 Provider 实现并在 init 中注册。缺失的算法在调用时
// 返回 ErrUnsupportedFeature，而不是编译失败：
//
//	crypto.Register(myFalconProvider{})
//
// # 安全特性
//
//   - 每次导入和验证都校验固定长度
//   - 格式错误的签名返回 ErrInvalidSignatureFormat，与 (false, nil) 区分
//   - 私钥字节由 secmem.Buffer 持有，Destroy 时清零
//   - 常量时间比较
//
// # 架构层
//
//   - 层级：pkg（公共包）
//   - 依赖：pkg/types、pkg/lib/entropy、pkg/lib/secmem
package crypto
