package identity

import (
	"fmt"

	"github.com/dep2p/go-keyvault/pkg/lib/crypto"
	"github.com/dep2p/go-keyvault/pkg/types"
)

// Config 身份管理配置
type Config struct {
	// DefaultAlgorithm Create 未指定算法时使用
	DefaultAlgorithm crypto.Algorithm

	// EnableExperimental 是否允许实验性算法（Falcon）
	EnableExperimental bool

	// RSABits RSA 模数位数
	RSABits int

	// Name 模块启动时加载的身份名称，为空时不加载
	Name string

	// AutoCreate Name 对应的身份不存在时自动生成并保存
	AutoCreate bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		DefaultAlgorithm: crypto.Ed25519,
		RSABits:          crypto.DefaultRSABits,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if !c.DefaultAlgorithm.Valid() {
		return fmt.Errorf("%w: default algorithm %s", crypto.ErrUnknownAlgorithm, c.DefaultAlgorithm)
	}
	if c.DefaultAlgorithm.Experimental() && !c.EnableExperimental {
		return fmt.Errorf("%w: %s", ErrExperimentalDisabled, c.DefaultAlgorithm)
	}
	switch c.RSABits {
	case 0, 2048, 3072, 4096:
	default:
		return fmt.Errorf("%w: rsa bits %d", types.ErrInvalidParameters, c.RSABits)
	}
	if c.Name != "" {
		if err := ValidateName(c.Name); err != nil {
			return err
		}
	}
	return nil
}
