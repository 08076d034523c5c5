//go:build !linux

package keyring

import (
	"fmt"

	"github.com/dep2p/go-keyvault/pkg/types"
)

func newSysKeyctl() (keyctl, error) {
	return nil, fmt.Errorf("%w: kernel keyring requires linux", types.ErrBackendUnavailable)
}
