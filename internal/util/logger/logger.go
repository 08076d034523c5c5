// Package logger 配置 go-keyvault 的日志输出
//
// 组件通过 pkg/lib/log.Logger 记录日志；本包负责安装 slog 默认 handler：
//   - 按组件配置日志级别（"securestore/keyring" 继承 "securestore"）
//   - 环境变量配置（KEYVAULT_LOG_LEVEL, KEYVAULT_LOG_FORMAT）
//   - 敏感属性（secret、passphrase 等）一律替换为 [REDACTED]
//
// 环境变量配置:
//
//	# 所有组件 warn，securestore 为 debug
//	KEYVAULT_LOG_LEVEL=securestore=debug,warn
//
//	# 使用 JSON 格式输出
//	KEYVAULT_LOG_FORMAT=json
package logger

import (
	"io"
	"log/slog"
	"sync"
)

var (
	mu      sync.Mutex
	current *levelTable
)

// Install 按配置安装 slog 默认 handler
//
// cfg 为 nil 时使用环境变量配置。可重复调用，后一次覆盖前一次。
func Install(cfg *Config) {
	if cfg == nil {
		cfg = ConfigFromEnv()
	}
	levels := newLevelTable(cfg)

	mu.Lock()
	current = levels
	mu.Unlock()

	slog.SetDefault(slog.New(newHandler(cfg, levels)))
}

// Logger 返回带组件名的 *slog.Logger
//
// 使用当前安装的 handler；尚未 Install 时先按环境变量安装。
func Logger(component string) *slog.Logger {
	ensureInstalled()
	return slog.Default().With("component", component)
}

// SetLevel 动态设置组件的日志级别，component 为空时设置默认级别
func SetLevel(component string, level slog.Level) {
	ensureInstalled()
	mu.Lock()
	levels := current
	mu.Unlock()
	levels.set(component, level)
}

// SetOutput 设置全局日志输出目标
//
// 已创建的 logger 也会立即写入新目标。
func SetOutput(w io.Writer) {
	outputMu.Lock()
	output = w
	outputMu.Unlock()
}

// Discard 返回一个丢弃所有日志的 Logger
func Discard() *slog.Logger {
	return slog.New(DiscardHandler())
}

func ensureInstalled() {
	mu.Lock()
	installed := current != nil
	mu.Unlock()
	if !installed {
		Install(nil)
	}
}
