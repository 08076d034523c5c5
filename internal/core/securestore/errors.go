package securestore

import (
	"fmt"

	"github.com/dep2p/go-keyvault/pkg/types"
)

// 错误定义
var (
	// ErrInvalidKeyID key_id 不合法
	ErrInvalidKeyID = types.ErrInvalidKeyID

	// ErrReservedKeyID key_id 使用了保留前缀
	ErrReservedKeyID = fmt.Errorf("%w: reserved prefix %q", types.ErrInvalidKeyID, ReservedPrefix)

	// ErrNotFound 凭据不存在
	ErrNotFound = types.ErrNotFound

	// ErrClosed 存储已关闭
	ErrClosed = types.ErrStoreClosed

	// ErrRecordMismatch 记录中的 key_id 与请求不符
	ErrRecordMismatch = fmt.Errorf("%w: record belongs to another key id", types.ErrBlobCorrupted)

	// ErrWrongPassphrase 口令与存储不匹配
	ErrWrongPassphrase = fmt.Errorf("%w: wrong passphrase", types.ErrAuthenticationFailed)

	// ErrPassphraseRequired 持久化后端需要口令
	ErrPassphraseRequired = fmt.Errorf("%w: passphrase required", types.ErrInvalidParameters)

	// ErrUnknownBackend 未知后端类型
	ErrUnknownBackend = fmt.Errorf("%w: unknown backend", types.ErrInvalidParameters)
)
