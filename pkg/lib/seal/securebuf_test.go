package seal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymmetricKey_Destroy(t *testing.T) {
	raw := []byte{1, 2, 3, 4}
	k := NewSymmetricKey(raw, KDFParams{KDF: KDFNone, KeyLen: 4})

	assert.Equal(t, 4, k.Len())
	k.Destroy()

	assert.True(t, k.Destroyed())
	assert.Equal(t, []byte{0, 0, 0, 0}, raw)
	assert.Nil(t, k.Bytes())
}

func TestSymmetricKey_NilDestroy(t *testing.T) {
	var k *SymmetricKey
	assert.NotPanics(t, k.Destroy)
}
