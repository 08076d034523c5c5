// Package log 提供 go-keyvault 的组件日志
//
// 基于 log/slog。组件在包级别声明 logger，每次调用都使用当前的
// slog.Default()，因此 internal/util/logger.Install 之后立即生效。
//
//	var logger = log.Logger("securestore")
//	logger.Info("secret stored", log.KeyID(keyID))
//
// 密钥材料绝不能直接作为日志参数，使用 Secret 包装。
package log

import (
	"context"
	"fmt"
	"log/slog"
)

// 日志级别常量
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// ComponentKey 组件属性名
const ComponentKey = "component"

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 懒加载 logger
//
// 每次日志调用时都从 slog.Default() 获取最新的 handler。
type LazyLogger struct {
	component string
}

// Logger 返回带组件名的 LazyLogger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

// Component 返回组件名
func (l *LazyLogger) Component() string {
	return l.component
}

func (l *LazyLogger) current() *slog.Logger {
	return slog.Default().With(ComponentKey, l.component)
}

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) {
	l.current().Debug(msg, args...)
}

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) {
	l.current().Info(msg, args...)
}

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) {
	l.current().Warn(msg, args...)
}

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) {
	l.current().Error(msg, args...)
}

// DebugContext 带 context 的 Debug 日志
func (l *LazyLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.current().DebugContext(ctx, msg, args...)
}

// WarnContext 带 context 的 Warn 日志
func (l *LazyLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.current().WarnContext(ctx, msg, args...)
}

// With 添加额外的属性
func (l *LazyLogger) With(args ...any) *slog.Logger {
	return l.current().With(args...)
}

// ============================================================================
//                              敏感数据
// ============================================================================

// Secret 包装敏感字节，日志中只显示长度
type Secret []byte

// LogValue 实现 slog.LogValuer
func (s Secret) LogValue() slog.Value {
	return slog.StringValue(fmt.Sprintf("[REDACTED %d bytes]", len(s)))
}

// String 实现 fmt.Stringer，防止 %s/%v 泄露内容
func (s Secret) String() string {
	return fmt.Sprintf("[REDACTED %d bytes]", len(s))
}

// KeyIDLen 日志中 key_id 的最大显示长度
const KeyIDLen = 24

// KeyID 返回截断后的 key_id 属性
func KeyID(id string) slog.Attr {
	return slog.String("key_id", TruncateID(id, KeyIDLen))
}

// TruncateID 安全截取 ID 用于日志显示
//
// 如果 ID 长度小于等于 maxLen，返回原 ID；否则返回前 maxLen 个字符加 "…"。
func TruncateID(id string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(id) <= maxLen {
		return id
	}
	return id[:maxLen] + "…"
}
