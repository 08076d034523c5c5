package seal

import (
	"fmt"

	"github.com/dep2p/go-keyvault/pkg/types"
)

// 错误定义（引用 pkg/types 中的分类错误）
var (
	// ErrInvalidParameters KDF 参数低于安全下限
	ErrInvalidParameters = types.ErrInvalidParameters

	// ErrInvalidKeySize 对称密钥长度不符合密码要求
	ErrInvalidKeySize = types.ErrInvalidKeySize

	// ErrAuthenticationFailed 解密认证失败
	ErrAuthenticationFailed = types.ErrAuthenticationFailed

	// ErrBlobCorrupted 密文块编码损坏
	ErrBlobCorrupted = types.ErrBlobCorrupted

	// ErrCipherDisabled 遗留密码未启用
	ErrCipherDisabled = types.ErrCipherDisabled

	// ErrKeyDestroyed 密钥已销毁
	ErrKeyDestroyed = types.ErrKeyDestroyed
)

// ErrUnknownCipher 未知密码标识
var ErrUnknownCipher = fmt.Errorf("%w: unknown cipher", types.ErrUnsupportedFeature)

// ErrUnknownKDF 未知 KDF 标识
var ErrUnknownKDF = fmt.Errorf("%w: unknown kdf", types.ErrUnsupportedFeature)
