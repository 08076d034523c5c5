package identity

import (
	"fmt"

	"github.com/dep2p/go-keyvault/pkg/types"
)

// ============================================================================
// 错误定义
// ============================================================================

var (
	// ErrExperimentalDisabled 实验性算法未启用
	ErrExperimentalDisabled = fmt.Errorf("%w: experimental algorithm not enabled", types.ErrUnsupportedFeature)

	// ErrInvalidName 身份名称不合法
	ErrInvalidName = fmt.Errorf("%w: invalid identity name", types.ErrInvalidKeyID)

	// ErrNotFound 身份不存在
	ErrNotFound = types.ErrNotFound

	// ErrNilIdentity 身份为 nil
	ErrNilIdentity = fmt.Errorf("%w: identity is nil", types.ErrInput)
)
