package securestore

import (
	"fmt"
	"time"

	"github.com/dep2p/go-keyvault/internal/core/securestore/backend"
	"github.com/dep2p/go-keyvault/internal/core/securestore/backend/credvault"
	"github.com/dep2p/go-keyvault/internal/core/securestore/backend/keyring"
	"github.com/dep2p/go-keyvault/pkg/lib/seal"
	"github.com/dep2p/go-keyvault/pkg/types"
)

// BackendKind 后端类型
type BackendKind string

const (
	// BackendMemory 进程内存
	BackendMemory BackendKind = "memory"
	// BackendCredVault 操作系统凭据库
	BackendCredVault BackendKind = "credvault"
	// BackendKeyring Linux 内核密钥环
	BackendKeyring BackendKind = "keyring"
	// BackendBadger BadgerDB 持久化
	BackendBadger BackendKind = "badgerdb"
)

// ParseBackendKind 解析后端类型
func ParseBackendKind(s string) (BackendKind, error) {
	switch k := BackendKind(s); k {
	case BackendMemory, BackendCredVault, BackendKeyring, BackendBadger:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
	}
}

// DefaultPageSize List 每页从后端拉取的条目数
const DefaultPageSize = 64

// Config 安全存储配置
type Config struct {
	// Backend 后端类型
	Backend BackendKind

	// Namespace 命名空间，隔离同一后端上的多个存储
	Namespace string

	// Cipher 记录加密使用的密码
	Cipher seal.CipherID

	// LegacyCiphers 是否允许 3DES / Blowfish
	LegacyCiphers bool

	// MasterKDF 口令派生主密钥的参数（盐值自动生成）
	MasterKDF seal.KDFParams

	// Passphrase 主密钥口令（不持久化，不出现在配置文件中）
	Passphrase []byte

	// PageSize List 每页条目数
	PageSize int

	// OpTimeout 单次后端操作超时，0 表示只使用调用方的 ctx
	OpTimeout time.Duration

	// BadgerPath BadgerDB 数据目录
	BadgerPath string

	// BadgerInMemory BadgerDB 内存模式（测试用）
	BadgerInMemory bool

	// BadgerSyncWrites 每次写入后同步到磁盘
	BadgerSyncWrites bool

	// CredVaultService 凭据库服务名前缀
	CredVaultService string

	// KeyringParent 内核密钥环的父密钥环
	KeyringParent string
}

// DefaultConfig 返回默认配置：内存后端、AES-256-GCM、Argon2id
func DefaultConfig() *Config {
	return &Config{
		Backend:          BackendMemory,
		Namespace:        "default",
		Cipher:           seal.CipherAES256GCM,
		MasterKDF:        seal.DefaultKDFParams(seal.KDFArgon2id),
		PageSize:         DefaultPageSize,
		BadgerSyncWrites: true,
		CredVaultService: credvault.DefaultServicePrefix,
		KeyringParent:    keyring.ParentUser,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if _, err := ParseBackendKind(string(c.Backend)); err != nil {
		return err
	}
	if err := backend.CheckNamespace(c.Namespace); err != nil {
		return err
	}
	if c.Cipher.Legacy() && !c.LegacyCiphers {
		return fmt.Errorf("%w: %s", seal.ErrCipherDisabled, c.Cipher)
	}
	if _, err := seal.ParseCipher(c.Cipher.String()); err != nil {
		return err
	}
	switch c.MasterKDF.KDF {
	case seal.KDFArgon2id, seal.KDFScrypt, seal.KDFPBKDF2SHA256:
	default:
		return fmt.Errorf("%w: master key kdf must be a passphrase kdf, got %s", types.ErrInvalidParameters, c.MasterKDF.KDF)
	}
	if c.PageSize < 0 {
		return fmt.Errorf("%w: page size %d", types.ErrInvalidParameters, c.PageSize)
	}
	if c.OpTimeout < 0 {
		return fmt.Errorf("%w: op timeout %s", types.ErrInvalidParameters, c.OpTimeout)
	}
	if c.Backend == BackendBadger && c.BadgerPath == "" && !c.BadgerInMemory {
		return fmt.Errorf("%w: badgerdb backend requires a path", types.ErrInvalidParameters)
	}
	return nil
}

// Clone 深拷贝配置（口令被复制）
func (c *Config) Clone() *Config {
	cp := *c
	cp.Passphrase = append([]byte(nil), c.Passphrase...)
	cp.MasterKDF.Salt = append([]byte(nil), c.MasterKDF.Salt...)
	return &cp
}
