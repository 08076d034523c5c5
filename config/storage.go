// Package config 提供统一的配置管理
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dep2p/go-keyvault/internal/core/securestore"
	"github.com/dep2p/go-keyvault/internal/core/securestore/backend"
	"github.com/dep2p/go-keyvault/pkg/types"
)

// DefaultPassphraseEnv 默认读取主密钥口令的环境变量
const DefaultPassphraseEnv = "KEYVAULT_PASSPHRASE"

// StorageConfig 存储配置
//
// badgerdb 后端的数据目录结构：
//
//	${DataDir}/
//	└── keyvault.db/        # BadgerDB 数据库
//	    ├── 000001.vlog     # Value Log
//	    ├── 000001.sst      # SSTable
//	    └── MANIFEST        # 数据库元信息
type StorageConfig struct {
	// Backend 后端类型: "memory", "credvault", "keyring", "badgerdb"
	Backend string `json:"backend" yaml:"backend"`

	// Namespace 命名空间
	Namespace string `json:"namespace" yaml:"namespace"`

	// DataDir badgerdb 数据目录
	// 默认值: "./data"
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// InMemory badgerdb 内存模式（测试用）
	InMemory bool `json:"in_memory,omitempty" yaml:"in_memory,omitempty"`

	// SyncWrites badgerdb 每次写入后同步
	SyncWrites bool `json:"sync_writes" yaml:"sync_writes"`

	// CredVaultService 凭据库服务名前缀
	CredVaultService string `json:"credvault_service,omitempty" yaml:"credvault_service,omitempty"`

	// KeyringParent 内核密钥环父密钥环: "session", "user", "process"
	KeyringParent string `json:"keyring_parent,omitempty" yaml:"keyring_parent,omitempty"`

	// PageSize List 每页条目数
	PageSize int `json:"page_size,omitempty" yaml:"page_size,omitempty"`

	// OpTimeout 单次后端操作超时，0 表示不限制
	OpTimeout Duration `json:"op_timeout,omitempty" yaml:"op_timeout,omitempty"`

	// PassphraseEnv 读取主密钥口令的环境变量名
	PassphraseEnv string `json:"passphrase_env" yaml:"passphrase_env"`
}

// DefaultStorageConfig 返回默认的存储配置
func DefaultStorageConfig() StorageConfig {
	def := securestore.DefaultConfig()
	return StorageConfig{
		Backend:          string(def.Backend),
		Namespace:        def.Namespace,
		DataDir:          "./data",
		SyncWrites:       def.BadgerSyncWrites,
		CredVaultService: def.CredVaultService,
		KeyringParent:    def.KeyringParent,
		PageSize:         def.PageSize,
		PassphraseEnv:    DefaultPassphraseEnv,
	}
}

// Validate 验证存储配置的有效性
func (c *StorageConfig) Validate() error {
	if _, err := securestore.ParseBackendKind(c.Backend); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if c.Backend == string(securestore.BackendBadger) && c.DataDir == "" && !c.InMemory {
		return fmt.Errorf("storage: %w: data_dir cannot be empty", types.ErrInvalidParameters)
	}
	if c.Namespace != "" {
		if err := backend.CheckNamespace(c.Namespace); err != nil {
			return fmt.Errorf("storage: %w", err)
		}
	}
	if c.PageSize < 0 {
		return fmt.Errorf("storage: %w: page_size %d", types.ErrInvalidParameters, c.PageSize)
	}
	if c.OpTimeout < 0 {
		return fmt.Errorf("storage: %w: op_timeout %s", types.ErrInvalidParameters, c.OpTimeout)
	}
	return nil
}

// DBPath 返回 BadgerDB 数据库路径
func (c *StorageConfig) DBPath() string {
	return filepath.Join(c.DataDir, "keyvault.db")
}

// Passphrase 从 PassphraseEnv 读取口令，未设置时返回 nil
func (c *StorageConfig) Passphrase() []byte {
	if c.PassphraseEnv == "" {
		return nil
	}
	if v, ok := os.LookupEnv(c.PassphraseEnv); ok && v != "" {
		return []byte(v)
	}
	return nil
}
