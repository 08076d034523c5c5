package config

import (
	"fmt"

	"github.com/dep2p/go-keyvault/pkg/lib/seal"
)

// CryptoConfig 加密配置
//
// Cipher 用于新写入的记录；读取时按记录中保存的密码解密。
// KDF 参数只在首次用口令初始化存储时使用，之后从存储元数据读取。
type CryptoConfig struct {
	// Cipher 记录加密使用的密码
	// 可选值: "aes-256-gcm"（默认）, "chacha20-poly1305",
	// "3des-cbc-hmac", "blowfish-cbc-hmac"（遗留，需 LegacyCiphers）
	Cipher string `json:"cipher" yaml:"cipher"`

	// LegacyCiphers 是否允许遗留分组密码
	LegacyCiphers bool `json:"legacy_ciphers" yaml:"legacy_ciphers"`

	// KDF 主密钥派生参数
	KDF KDFConfig `json:"kdf" yaml:"kdf"`
}

// KDFConfig 口令派生参数
//
// 为 0 的字段使用对应 KDF 的默认值。
type KDFConfig struct {
	// Algorithm "argon2id"（默认）, "scrypt", "pbkdf2-sha256"
	Algorithm string `json:"algorithm" yaml:"algorithm"`

	// Memory Argon2id 内存（KiB）
	Memory uint32 `json:"memory,omitempty" yaml:"memory,omitempty"`

	// Iterations Argon2id / PBKDF2 迭代次数
	Iterations uint32 `json:"iterations,omitempty" yaml:"iterations,omitempty"`

	// Parallelism Argon2id 并行度 / scrypt p
	Parallelism uint32 `json:"parallelism,omitempty" yaml:"parallelism,omitempty"`

	// N scrypt 代价参数
	N uint64 `json:"n,omitempty" yaml:"n,omitempty"`

	// R scrypt 块大小
	R uint32 `json:"r,omitempty" yaml:"r,omitempty"`
}

// DefaultCryptoConfig 返回默认加密配置
func DefaultCryptoConfig() CryptoConfig {
	return CryptoConfig{
		Cipher: seal.CipherAES256GCM.String(),
		KDF:    KDFConfig{Algorithm: seal.KDFArgon2id.String()},
	}
}

// Validate 验证加密配置
func (c CryptoConfig) Validate() error {
	if _, err := c.CipherID(); err != nil {
		return err
	}
	_, err := c.KDF.Params()
	return err
}

// CipherID 解析密码并检查遗留密码开关
func (c CryptoConfig) CipherID() (seal.CipherID, error) {
	id, err := seal.ParseCipher(c.Cipher)
	if err != nil {
		return 0, fmt.Errorf("crypto: %w", err)
	}
	if id.Legacy() && !c.LegacyCiphers {
		return 0, fmt.Errorf("crypto: %w: %s requires legacy_ciphers", seal.ErrCipherDisabled, id)
	}
	return id, nil
}

// Params 转换为 KDF 参数（不含盐值），并检查安全下限
func (c KDFConfig) Params() (seal.KDFParams, error) {
	id, err := seal.ParseKDF(c.Algorithm)
	if err != nil {
		return seal.KDFParams{}, fmt.Errorf("crypto: %w", err)
	}

	p := seal.DefaultKDFParams(id)
	switch id {
	case seal.KDFArgon2id:
		p.Memory = orDefault(c.Memory, p.Memory)
		p.Iterations = orDefault(c.Iterations, p.Iterations)
		p.Parallelism = orDefault(c.Parallelism, p.Parallelism)
	case seal.KDFScrypt:
		p.N = orDefault(c.N, p.N)
		p.R = orDefault(c.R, p.R)
		p.Parallelism = orDefault(c.Parallelism, p.Parallelism)
	case seal.KDFPBKDF2SHA256:
		p.Iterations = orDefault(c.Iterations, p.Iterations)
	default:
		return seal.KDFParams{}, fmt.Errorf("crypto: %w: %s is not a passphrase kdf", seal.ErrInvalidParameters, id)
	}

	// 下限检查需要盐值，用全零占位
	if err := p.WithSalt(make([]byte, seal.DefaultSaltSize)).Validate(); err != nil {
		return seal.KDFParams{}, fmt.Errorf("crypto: %w", err)
	}
	return p, nil
}

func orDefault[T uint32 | uint64](v, def T) T {
	if v == 0 {
		return def
	}
	return v
}
