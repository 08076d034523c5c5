package securestore

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-keyvault/pkg/types"
)

// 操作名称
const (
	opPut    = "put"
	opGet    = "get"
	opDelete = "delete"
	opList   = "list"
)

// Metrics 安全存储指标
//
//   - keyvault_store_ops_total{op,backend,result}
//   - keyvault_store_op_duration_seconds{op,backend}
//
// nil *Metrics 可安全使用，不记录任何内容。
type Metrics struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics 创建指标并注册到 reg
//
// reg 为 nil 时不注册。同名指标已注册时复用已有的收集器，
// 多个存储实例可以共享同一个注册表。
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keyvault",
			Subsystem: "store",
			Name:      "ops_total",
			Help:      "Secure store operations by result.",
		}, []string{"op", "backend", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "keyvault",
			Subsystem: "store",
			Name:      "op_duration_seconds",
			Help:      "Secure store operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "backend"}),
	}
	if reg == nil {
		return m, nil
	}

	if err := reg.Register(m.ops); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		m.ops = are.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(m.duration); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		m.duration = are.ExistingCollector.(*prometheus.HistogramVec)
	}
	return m, nil
}

// observe 记录一次操作
func (m *Metrics) observe(op, backend string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.ops.WithLabelValues(op, backend, resultLabel(err)).Inc()
	m.duration.WithLabelValues(op, backend).Observe(time.Since(start).Seconds())
}

// resultLabel 按错误类别生成 result 标签
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, types.ErrNotFound):
		return "not_found"
	default:
		return types.KindOf(err).String()
	}
}
