package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/dep2p/go-keyvault/pkg/lib/log"
)

var (
	// output 全局日志输出目标，默认为 stderr
	output   io.Writer = os.Stderr
	outputMu sync.RWMutex
)

// dynamicWriter 每次写入时查找当前输出目标
type dynamicWriter struct{}

func (dynamicWriter) Write(p []byte) (int, error) {
	outputMu.RLock()
	w := output
	outputMu.RUnlock()
	return w.Write(p)
}

// redactedKeys 这些属性的值永远不会写入日志
var redactedKeys = map[string]struct{}{
	"secret":      {},
	"passphrase":  {},
	"password":    {},
	"plaintext":   {},
	"private_key": {},
	"master_key":  {},
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
	case slog.LevelKey:
		if lvl, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(strings.ToLower(lvl.String()))
		}
	default:
		if _, ok := redactedKeys[strings.ToLower(a.Key)]; ok {
			a.Value = slog.StringValue("[REDACTED]")
		}
	}
	return a
}

// componentHandler 按组件过滤级别的 slog.Handler
//
// 组件来自 log.ComponentKey 属性（LazyLogger 自动添加），
// 级别在每次 Enabled 时从 levels 查询，因此 SetLevel 立即生效。
type componentHandler struct {
	component string
	levels    *levelTable
	inner     slog.Handler
}

func newHandler(cfg *Config, levels *levelTable) slog.Handler {
	opts := &slog.HandlerOptions{
		// 过滤由 componentHandler 完成
		Level:       slog.LevelDebug,
		AddSource:   cfg.AddSource,
		ReplaceAttr: replaceAttr,
	}

	var inner slog.Handler
	if cfg.Format == FormatJSON {
		inner = slog.NewJSONHandler(dynamicWriter{}, opts)
	} else {
		inner = slog.NewTextHandler(dynamicWriter{}, opts)
	}
	return &componentHandler{levels: levels, inner: inner}
}

// Enabled 检查是否启用指定级别
func (h *componentHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.levels.levelFor(h.component)
}

// Handle 处理日志记录
func (h *componentHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

// WithAttrs 添加属性，识别组件名
func (h *componentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	component := h.component
	for _, a := range attrs {
		if a.Key == log.ComponentKey {
			component = a.Value.String()
		}
	}
	return &componentHandler{
		component: component,
		levels:    h.levels,
		inner:     h.inner.WithAttrs(attrs),
	}
}

// WithGroup 添加组
func (h *componentHandler) WithGroup(name string) slog.Handler {
	return &componentHandler{
		component: h.component,
		levels:    h.levels,
		inner:     h.inner.WithGroup(name),
	}
}

// levelTable 可动态修改的级别表
type levelTable struct {
	mu  sync.RWMutex
	cfg Config
}

func newLevelTable(cfg *Config) *levelTable {
	c := *cfg
	c.ComponentLevels = make(map[string]slog.Level, len(cfg.ComponentLevels))
	for k, v := range cfg.ComponentLevels {
		c.ComponentLevels[k] = v
	}
	return &levelTable{cfg: c}
}

func (t *levelTable) levelFor(component string) slog.Level {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cfg.LevelFor(component)
}

func (t *levelTable) set(component string, level slog.Level) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if component == "" {
		t.cfg.DefaultLevel = level
		return
	}
	t.cfg.ComponentLevels[component] = level
}

// discardHandler 丢弃所有日志的 Handler（用于测试）
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// DiscardHandler 返回一个丢弃所有日志的 Handler
func DiscardHandler() slog.Handler {
	return discardHandler{}
}
