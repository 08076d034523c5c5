package config

import (
	"fmt"

	"github.com/dep2p/go-keyvault/internal/core/identity"
	"github.com/dep2p/go-keyvault/pkg/lib/crypto"
	"github.com/dep2p/go-keyvault/pkg/types"
)

// IdentityConfig 身份配置
//
// 管理身份的生成参数和启动时加载的默认身份：
//   - 默认算法
//   - 实验性算法开关
//   - 默认身份名称
type IdentityConfig struct {
	// Algorithm 默认算法
	// 可选值: "ed25519", "rsa", "secp256k1", "ecdsa-p256", "dilithium3", "kyber768" 等
	Algorithm string `json:"algorithm" yaml:"algorithm"`

	// EnableExperimental 是否允许实验性算法（falcon512）
	EnableExperimental bool `json:"enable_experimental" yaml:"enable_experimental"`

	// RSABits RSA 密钥位数
	// 仅当 Algorithm="rsa" 时有效
	RSABits int `json:"rsa_bits,omitempty" yaml:"rsa_bits,omitempty"`

	// Name 启动时加载的身份名称，为空时不加载
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// AutoCreate 身份不存在时是否自动生成
	AutoCreate bool `json:"auto_create" yaml:"auto_create"`
}

// DefaultIdentityConfig 返回默认身份配置
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{
		Algorithm:  "ed25519",            // 默认 Ed25519：签名短、速度快
		RSABits:    crypto.DefaultRSABits, // 仅当 Algorithm="rsa" 时使用
		AutoCreate: true,
	}
}

// Validate 验证身份配置
func (c IdentityConfig) Validate() error {
	_, err := c.ToIdentityConfig()
	return err
}

// ToIdentityConfig 转换为身份模块配置
func (c IdentityConfig) ToIdentityConfig() (*identity.Config, error) {
	alg, err := crypto.ParseAlgorithm(c.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}
	if c.RSABits < 0 {
		return nil, fmt.Errorf("identity: %w: rsa bits %d", types.ErrInvalidParameters, c.RSABits)
	}

	out := &identity.Config{
		DefaultAlgorithm:   alg,
		EnableExperimental: c.EnableExperimental,
		RSABits:            c.RSABits,
		Name:               c.Name,
		AutoCreate:         c.AutoCreate,
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}
	return out, nil
}

// WithAlgorithm 设置默认算法
func (c IdentityConfig) WithAlgorithm(alg string) IdentityConfig {
	c.Algorithm = alg
	return c
}

// WithExperimental 设置是否允许实验性算法
func (c IdentityConfig) WithExperimental(enabled bool) IdentityConfig {
	c.EnableExperimental = enabled
	return c
}

// WithName 设置默认身份名称
func (c IdentityConfig) WithName(name string, autoCreate bool) IdentityConfig {
	c.Name = name
	c.AutoCreate = autoCreate
	return c
}
