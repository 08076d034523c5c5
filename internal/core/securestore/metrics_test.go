package securestore

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-keyvault/pkg/types"
)

func TestMetrics_CountsByResult(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	s, _ := newMemoryStore(t)
	s.metrics = m

	require.NoError(t, s.Put(ctx, "a", []byte("v")))
	_, err = s.Get(ctx, "a")
	require.NoError(t, err)
	_, err = s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues(opPut, "memory", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues(opGet, "memory", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues(opGet, "memory", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues(opGet, "memory", "InputError")))
}

func TestMetrics_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m1, err := NewMetrics(reg)
	require.NoError(t, err)
	m2, err := NewMetrics(reg)
	require.NoError(t, err)

	m1.ops.WithLabelValues(opPut, "memory", "ok").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(m2.ops.WithLabelValues(opPut, "memory", "ok")))
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.observe(opGet, "memory", time.Now(), nil) })
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "ok", resultLabel(nil))
	assert.Equal(t, "not_found", resultLabel(ErrNotFound))
	assert.Equal(t, "StorageError", resultLabel(types.ErrBackendUnavailable))
	assert.Equal(t, "CryptoError", resultLabel(ErrWrongPassphrase))
	assert.Equal(t, "RandomnessFailure", resultLabel(types.ErrRandomnessFailure))
}
