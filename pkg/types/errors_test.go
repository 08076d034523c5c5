package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Category(t *testing.T) {
	tests := []struct {
		err  error
		kind Kind
	}{
		{ErrInvalidKeySize, KindInput},
		{ErrInvalidKeyFormat, KindInput},
		{ErrInvalidSignatureFormat, KindInput},
		{ErrInvalidParameters, KindInput},
		{ErrAuthenticationFailed, KindCrypto},
		{ErrUnsupportedOperation, KindUnsupported},
		{ErrAlgorithmUnavailable, KindUnsupported},
		{ErrCipherDisabled, KindUnsupported},
		{ErrNotFound, KindStorage},
		{ErrPermissionDenied, KindStorage},
		{ErrBackendUnavailable, KindStorage},
		{ErrBlobCorrupted, KindStorage},
		{ErrRandomnessFailure, KindRandomness},
		{errors.New("other"), KindUnknown},
		{nil, KindUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.kind, KindOf(tt.err), "%v", tt.err)
	}
}

func TestErrors_WrappedKeepsIdentity(t *testing.T) {
	err := fmt.Errorf("get svc/db-password: %w", ErrNotFound)

	assert.True(t, IsNotFound(err))
	assert.True(t, errors.Is(err, ErrStorage))
	assert.False(t, errors.Is(err, ErrBlobCorrupted))
	assert.Equal(t, "StorageError", KindOf(err).String())
}

func TestErrors_StorageKindsDistinct(t *testing.T) {
	kinds := []error{ErrNotFound, ErrPermissionDenied, ErrBackendUnavailable, ErrBlobCorrupted}
	for i, a := range kinds {
		for j, b := range kinds {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v must not match %v", a, b)
		}
	}
}
