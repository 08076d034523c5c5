// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON / YAML 加载和保存配置
//
// 口令不出现在配置文件中，Storage.PassphraseEnv 指定读取口令的环境变量。
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Storage.Backend = "badgerdb"
//	cfg.Storage.DataDir = "/var/lib/keyvault"
//
//	// 从文件加载（按扩展名选择 JSON 或 YAML）
//	cfg, err := config.LoadFile("keyvault.yaml")
package config

// Config 是 go-keyvault 的完整配置结构
//
// 配置按照功能模块组织：
//   - Identity: 身份生成和默认身份
//   - Crypto: 记录加密的密码和主密钥 KDF
//   - Storage: 安全存储后端
//   - Log: 日志输出
type Config struct {
	// Identity 身份配置
	Identity IdentityConfig `json:"identity" yaml:"identity"`

	// Crypto 加密配置
	Crypto CryptoConfig `json:"crypto" yaml:"crypto"`

	// Storage 存储配置
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Log 日志配置
	Log LogConfig `json:"log" yaml:"log"`
}

// NewConfig 创建默认配置
//
// 默认配置使用内存后端，进程退出后数据丢失；
// 生产环境应切换到 credvault / keyring / badgerdb。
func NewConfig() *Config {
	return &Config{
		Identity: DefaultIdentityConfig(),
		Crypto:   DefaultCryptoConfig(),
		Storage:  DefaultStorageConfig(),
		Log:      DefaultLogConfig(),
	}
}

// Validate 验证配置的有效性
//
// 检查所有子配置是否有效，如果发现无效配置则返回错误。
func (c *Config) Validate() error {
	if err := c.Identity.Validate(); err != nil {
		return err
	}
	if err := c.Crypto.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return nil
}
