package entropy

import (
	"errors"
	"sync"
	"testing"

	"github.com/dep2p/go-keyvault/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystem_Fill(t *testing.T) {
	a, err := Bytes(System(), 32)
	require.NoError(t, err)
	b, err := Bytes(nil, 32)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestSystem_ConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Bytes(System(), 64)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestExhausted(t *testing.T) {
	_, err := Bytes(Exhausted(), 16)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrRandomnessFailure))
}

func TestDeterministic_Reproducible(t *testing.T) {
	seed := [32]byte{1, 2, 3}

	a, err := Bytes(Deterministic(seed), 48)
	require.NoError(t, err)
	b, err := Bytes(Deterministic(seed), 48)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Bytes(Deterministic([32]byte{9}), 48)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestReader_Classify(t *testing.T) {
	r := NewReader(Exhausted())
	buf := make([]byte, 8)

	_, err := r.Read(buf)
	require.Error(t, err)

	wrapped := r.Classify(errors.New("primitive: short read"))
	assert.True(t, errors.Is(wrapped, types.ErrRandomnessFailure))

	ok := NewReader(System())
	n, err := ok.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	other := errors.New("other")
	assert.Equal(t, other, ok.Classify(other))
	assert.NoError(t, ok.Classify(nil))
}
