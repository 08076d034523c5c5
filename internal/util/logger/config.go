package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// 环境变量
const (
	EnvLevel     = "KEYVAULT_LOG_LEVEL"
	EnvFormat    = "KEYVAULT_LOG_FORMAT"
	EnvAddSource = "KEYVAULT_LOG_ADD_SOURCE"
)

// LogFormat 日志输出格式
type LogFormat int

const (
	// FormatText 文本格式（默认）
	FormatText LogFormat = iota
	// FormatJSON JSON 格式
	FormatJSON
)

// ParseFormat 解析 "text" / "json"
func ParseFormat(s string) (LogFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format %q", s)
	}
}

// Config 日志配置
type Config struct {
	// DefaultLevel 默认日志级别
	DefaultLevel slog.Level

	// ComponentLevels 各组件的日志级别
	ComponentLevels map[string]slog.Level

	// Format 输出格式
	Format LogFormat

	// AddSource 是否添加源码位置
	AddSource bool
}

// DefaultConfig 默认配置：info 级别，文本格式
func DefaultConfig() *Config {
	return &Config{
		DefaultLevel:    slog.LevelInfo,
		ComponentLevels: make(map[string]slog.Level),
		Format:          FormatText,
	}
}

// LevelFor 获取组件的日志级别
//
// 组件名按 "/" 分层，"securestore/keyring" 未配置时使用 "securestore" 的级别。
func (c *Config) LevelFor(component string) slog.Level {
	for name := component; name != ""; {
		if level, ok := c.ComponentLevels[name]; ok {
			return level
		}
		i := strings.LastIndex(name, "/")
		if i < 0 {
			break
		}
		name = name[:i]
	}
	return c.DefaultLevel
}

var (
	envConfig     *Config
	envConfigOnce sync.Once
)

// ConfigFromEnv 从环境变量解析配置（结果缓存）
//
//   - KEYVAULT_LOG_LEVEL: 组件=级别,...,默认级别，如 securestore=debug,warn
//   - KEYVAULT_LOG_FORMAT: text 或 json
//   - KEYVAULT_LOG_ADD_SOURCE: true 或 false
//
// 无法识别的项被忽略。
func ConfigFromEnv() *Config {
	envConfigOnce.Do(func() {
		cfg := DefaultConfig()
		if s := os.Getenv(EnvLevel); s != "" {
			_ = ParseLevelSpec(cfg, s)
		}
		if s := os.Getenv(EnvFormat); s != "" {
			if f, err := ParseFormat(s); err == nil {
				cfg.Format = f
			}
		}
		if s := os.Getenv(EnvAddSource); s != "" {
			cfg.AddSource = s != "false" && s != "0"
		}
		envConfig = cfg
	})
	return envConfig
}

// ParseLevelSpec 把级别描述合并进 cfg
//
// 格式: component=level,component=level,defaultLevel。
// 所有合法项都会生效，遇到非法项时返回第一个错误。
func ParseLevelSpec(cfg *Config, spec string) error {
	var firstErr error
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if name, levelName, ok := strings.Cut(part, "="); ok {
			level, err := ParseLevel(levelName)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			cfg.ComponentLevels[strings.TrimSpace(name)] = level
			continue
		}

		level, err := ParseLevel(part)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		cfg.DefaultLevel = level
	}
	return firstErr
}

// ParseLevel 解析日志级别名称
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// ResetConfig 重置环境配置缓存（仅用于测试）
func ResetConfig() {
	envConfigOnce = sync.Once{}
	envConfig = nil
}
