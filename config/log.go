package config

import (
	"fmt"
	"log/slog"

	"github.com/dep2p/go-keyvault/internal/util/logger"
)

// LogConfig 日志配置
//
// 为空的字段不覆盖环境变量（KEYVAULT_LOG_LEVEL 等）给出的值。
type LogConfig struct {
	// Level 级别描述，格式与 KEYVAULT_LOG_LEVEL 相同
	// 例如 "info" 或 "securestore=debug,warn"
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format 输出格式: "text" 或 "json"
	Format string `json:"format,omitempty" yaml:"format,omitempty"`

	// AddSource 是否输出源码位置
	AddSource bool `json:"add_source,omitempty" yaml:"add_source,omitempty"`
}

// DefaultLogConfig 返回默认日志配置（完全由环境变量决定）
func DefaultLogConfig() LogConfig {
	return LogConfig{}
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	_, err := c.ToLoggerConfig()
	return err
}

// ToLoggerConfig 在环境变量配置的基础上叠加本配置
func (c LogConfig) ToLoggerConfig() (*logger.Config, error) {
	env := logger.ConfigFromEnv()
	out := &logger.Config{
		DefaultLevel:    env.DefaultLevel,
		ComponentLevels: make(map[string]slog.Level, len(env.ComponentLevels)),
		Format:          env.Format,
		AddSource:       env.AddSource || c.AddSource,
	}
	for k, v := range env.ComponentLevels {
		out.ComponentLevels[k] = v
	}

	if c.Level != "" {
		if err := logger.ParseLevelSpec(out, c.Level); err != nil {
			return nil, fmt.Errorf("log: %w", err)
		}
	}
	if c.Format != "" {
		f, err := logger.ParseFormat(c.Format)
		if err != nil {
			return nil, fmt.Errorf("log: %w", err)
		}
		out.Format = f
	}
	return out, nil
}

// Apply 安装日志配置
func (c LogConfig) Apply() error {
	cfg, err := c.ToLoggerConfig()
	if err != nil {
		return err
	}
	logger.Install(cfg)
	return nil
}
