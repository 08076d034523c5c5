package engine

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-keyvault/pkg/types"
)

// 存储引擎错误定义
var (
	// ErrNotFound 键不存在
	ErrNotFound = fmt.Errorf("%w: storage key not found", types.ErrNotFound)

	// ErrEmptyKey 空键
	ErrEmptyKey = fmt.Errorf("%w: storage: empty key", types.ErrInput)

	// ErrClosed 引擎已关闭
	ErrClosed = fmt.Errorf("%w: storage engine closed", types.ErrStoreClosed)

	// ErrReadOnly 只读模式
	ErrReadOnly = fmt.Errorf("%w: storage is read-only", types.ErrPermissionDenied)

	// ErrTransactionConflict 事务冲突（可重试）
	ErrTransactionConflict = fmt.Errorf("%w: storage transaction conflict", types.ErrBackendUnavailable)

	// ErrTransactionTooLarge 事务太大
	ErrTransactionTooLarge = fmt.Errorf("%w: storage transaction too large", types.ErrStorage)

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = fmt.Errorf("%w: storage: invalid configuration", types.ErrInvalidParameters)

	// ErrCorrupted 数据损坏
	ErrCorrupted = fmt.Errorf("%w: storage data corrupted", types.ErrBlobCorrupted)
)

// IsNotFound 检查是否为 key not found 错误
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClosed 检查是否为 engine closed 错误
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}
