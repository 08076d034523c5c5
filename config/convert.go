package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dep2p/go-keyvault/internal/core/identity"
	"github.com/dep2p/go-keyvault/internal/core/securestore"
	"github.com/dep2p/go-keyvault/pkg/types"
)

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保留默认值。
//
// 示例 JSON:
//
//	{
//	  "identity": {"algorithm": "ed25519"},
//	  "storage": {"backend": "badgerdb", "data_dir": "/var/lib/keyvault"}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// FromYAML 从 YAML 数据创建配置
//
// 未出现的字段保留默认值。
func FromYAML(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadFile 从文件加载配置并验证
//
// .yaml / .yml 按 YAML 解析，其余按 JSON 解析。
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = FromYAML(data)
	default:
		cfg, err = FromJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", types.ErrInvalidParameters, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ToJSON 序列化为带缩进的 JSON
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// ToYAML 序列化为 YAML
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// CloneConfig 深拷贝配置
func CloneConfig(cfg *Config) *Config {
	if cfg == nil {
		return nil
	}
	cp := *cfg
	return &cp
}

// ============================================================================
//                              组件配置转换
// ============================================================================

// SecureStoreConfig 转换为安全存储配置
//
// 口令从 Storage.PassphraseEnv 读取。
func (c *Config) SecureStoreConfig() (*securestore.Config, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	backend, _ := securestore.ParseBackendKind(c.Storage.Backend)
	cipher, _ := c.Crypto.CipherID()
	kdf, _ := c.Crypto.KDF.Params()

	out := securestore.DefaultConfig()
	out.Backend = backend
	out.Namespace = c.Storage.Namespace
	out.Cipher = cipher
	out.LegacyCiphers = c.Crypto.LegacyCiphers
	out.MasterKDF = kdf
	out.Passphrase = c.Storage.Passphrase()
	out.PageSize = c.Storage.PageSize
	out.OpTimeout = c.Storage.OpTimeout.Duration()
	out.BadgerPath = c.Storage.DBPath()
	out.BadgerInMemory = c.Storage.InMemory
	out.BadgerSyncWrites = c.Storage.SyncWrites
	if c.Storage.CredVaultService != "" {
		out.CredVaultService = c.Storage.CredVaultService
	}
	if c.Storage.KeyringParent != "" {
		out.KeyringParent = c.Storage.KeyringParent
	}

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	return out, nil
}

// IdentityManagerConfig 转换为身份模块配置
func (c *Config) IdentityManagerConfig() (*identity.Config, error) {
	return c.Identity.ToIdentityConfig()
}
