package keyfmt

import (
	"fmt"

	"github.com/dep2p/go-keyvault/pkg/types"
)

var (
	// ErrInvalidKeyFormat PEM 封装不合法
	ErrInvalidKeyFormat = types.ErrInvalidKeyFormat

	// ErrUnknownLabel 无法识别的 PEM 标签
	ErrUnknownLabel = fmt.Errorf("%w: unknown PEM label", types.ErrInvalidKeyFormat)

	// ErrHeaderMismatch PEM 头与标签不一致
	ErrHeaderMismatch = fmt.Errorf("%w: PEM header does not match label", types.ErrInvalidKeyFormat)

	// ErrEncryptedPEM 不支持 RFC 1421 加密 PEM
	ErrEncryptedPEM = fmt.Errorf("%w: encrypted PEM blocks are not supported", types.ErrInvalidKeyFormat)
)
