package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config 存储引擎配置
//
// 测试代码使用 t.TempDir() 或 InMemory。
type Config struct {
	// Path 数据目录路径（InMemory 为 false 时必需）
	Path string

	// InMemory 纯内存模式，不写磁盘
	InMemory bool

	// SyncWrites 每次写入都同步到磁盘，秘密数据默认开启
	SyncWrites bool

	// ReadOnly 只读模式
	ReadOnly bool

	// Verbose 把 BadgerDB 内部日志转发到组件日志
	Verbose bool

	// ValueLogFileSize 值日志文件大小（字节）
	ValueLogFileSize int64

	// BlockCacheSize 块缓存大小（字节）
	BlockCacheSize int64

	// IndexCacheSize 索引缓存大小（字节），0 禁用
	IndexCacheSize int64

	// GCInterval 值日志垃圾回收间隔，0 禁用
	GCInterval time.Duration

	// GCDiscardRatio 垃圾回收丢弃比例
	GCDiscardRatio float64
}

// DefaultConfig 返回默认配置
//
// 秘密存储的数据量小，缓存和日志文件都比通用默认值小得多。
func DefaultConfig(path string) *Config {
	return &Config{
		Path:             path,
		SyncWrites:       true,
		ValueLogFileSize: 64 << 20,
		BlockCacheSize:   16 << 20,
		GCInterval:       10 * time.Minute,
		GCDiscardRatio:   0.5,
	}
}

// InMemoryConfig 返回纯内存配置
func InMemoryConfig() *Config {
	cfg := DefaultConfig("")
	cfg.InMemory = true
	cfg.SyncWrites = false
	cfg.GCInterval = 0
	return cfg
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.InMemory {
		if c.Path != "" {
			return fmt.Errorf("%w: in-memory engine must not have a path", ErrInvalidConfig)
		}
		if c.ReadOnly {
			return fmt.Errorf("%w: in-memory engine cannot be read-only", ErrInvalidConfig)
		}
	} else if c.Path == "" {
		return fmt.Errorf("%w: path is required", ErrInvalidConfig)
	}

	if c.ValueLogFileSize < 1<<20 || c.ValueLogFileSize >= 2<<30 {
		return fmt.Errorf("%w: value log file size %d outside [1MiB, 2GiB)", ErrInvalidConfig, c.ValueLogFileSize)
	}
	if c.BlockCacheSize < 0 || c.IndexCacheSize < 0 {
		return fmt.Errorf("%w: negative cache size", ErrInvalidConfig)
	}
	if c.GCInterval > 0 && (c.GCDiscardRatio <= 0 || c.GCDiscardRatio >= 1) {
		return fmt.Errorf("%w: gc discard ratio %v outside (0, 1)", ErrInvalidConfig, c.GCDiscardRatio)
	}
	return nil
}

// EnsureDir 确保数据目录存在（权限 0700）
func (c *Config) EnsureDir() error {
	if c.InMemory {
		return nil
	}
	absPath, err := filepath.Abs(c.Path)
	if err != nil {
		return err
	}
	c.Path = absPath
	return os.MkdirAll(c.Path, 0o700)
}

// Clone 克隆配置
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// WithSyncWrites 设置同步写入
func (c *Config) WithSyncWrites(sync bool) *Config {
	c.SyncWrites = sync
	return c
}

// WithReadOnly 设置只读模式
func (c *Config) WithReadOnly(readOnly bool) *Config {
	c.ReadOnly = readOnly
	return c
}

// WithVerbose 设置是否转发 BadgerDB 日志
func (c *Config) WithVerbose(v bool) *Config {
	c.Verbose = v
	return c
}
