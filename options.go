package keyvault

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-keyvault/config"
	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 基础配置（文件或调用方提供），为空时使用默认配置
	config *config.Config

	// 直接提供的口令，优先于 Storage.PassphraseEnv
	passphrase []byte

	// 运行时依赖
	entropy    entropy.Source
	clock      clock.Clock
	registerer prometheus.Registerer

	// 用户自定义 Fx 选项
	userFxOptions []fx.Option
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{config: config.NewConfig()}
}

// ============================================================================
//                              配置来源
// ============================================================================

// WithConfig 使用完整配置（后续选项在其基础上覆盖）
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("config is nil")
		}
		o.config = config.CloneConfig(cfg)
		return nil
	}
}

// WithConfigFile 从 JSON / YAML 文件加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// ============================================================================
//                              存储
// ============================================================================

// WithBackend 设置存储后端: memory / credvault / keyring / badgerdb
func WithBackend(backend string) Option {
	return func(o *options) error {
		o.config.Storage.Backend = backend
		return nil
	}
}

// WithNamespace 设置存储命名空间
func WithNamespace(namespace string) Option {
	return func(o *options) error {
		o.config.Storage.Namespace = namespace
		return nil
	}
}

// WithDataDir 设置 badgerdb 数据目录
func WithDataDir(dir string) Option {
	return func(o *options) error {
		o.config.Storage.DataDir = dir
		return nil
	}
}

// WithPassphrase 设置主密钥口令
//
// 口令被复制，调用方可以在返回后清零自己的副本。
func WithPassphrase(passphrase []byte) Option {
	return func(o *options) error {
		o.passphrase = append([]byte(nil), passphrase...)
		return nil
	}
}

// WithCipher 设置记录加密使用的密码
func WithCipher(cipher string) Option {
	return func(o *options) error {
		o.config.Crypto.Cipher = cipher
		return nil
	}
}

// WithLegacyCiphers 允许 3DES / Blowfish
func WithLegacyCiphers(enabled bool) Option {
	return func(o *options) error {
		o.config.Crypto.LegacyCiphers = enabled
		return nil
	}
}

// ============================================================================
//                              身份
// ============================================================================

// WithIdentity 启动时加载名为 name 的身份，autoCreate 为 true 时不存在则创建
func WithIdentity(name string, autoCreate bool) Option {
	return func(o *options) error {
		o.config.Identity = o.config.Identity.WithName(name, autoCreate)
		return nil
	}
}

// WithDefaultAlgorithm 设置默认身份算法
func WithDefaultAlgorithm(alg string) Option {
	return func(o *options) error {
		o.config.Identity = o.config.Identity.WithAlgorithm(alg)
		return nil
	}
}

// WithExperimental 允许实验性算法
func WithExperimental(enabled bool) Option {
	return func(o *options) error {
		o.config.Identity = o.config.Identity.WithExperimental(enabled)
		return nil
	}
}

// ============================================================================
//                              日志
// ============================================================================

// WithLogLevel 设置日志级别，格式同 KEYVAULT_LOG_LEVEL（如 "securestore=debug,warn"）
func WithLogLevel(spec string) Option {
	return func(o *options) error {
		o.config.Log.Level = spec
		return nil
	}
}

// ============================================================================
//                              运行时依赖
// ============================================================================

// WithEntropy 设置熵源（测试时注入确定性或失败的熵源）
func WithEntropy(src entropy.Source) Option {
	return func(o *options) error {
		o.entropy = src
		return nil
	}
}

// WithClock 设置身份创建时间的时钟
func WithClock(c clock.Clock) Option {
	return func(o *options) error {
		o.clock = c
		return nil
	}
}

// WithMetrics 把存储指标注册到 reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}

// WithFxOptions 追加自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
