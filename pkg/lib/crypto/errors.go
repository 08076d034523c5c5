package crypto

import (
	"fmt"

	"github.com/dep2p/go-keyvault/pkg/types"
)

// ============================================================================
//                              错误定义
// ============================================================================

// 输入错误
var (
	// ErrInvalidKeySize 密钥大小无效
	ErrInvalidKeySize = types.ErrInvalidKeySize

	// ErrInvalidSignatureFormat 签名长度或结构无效
	ErrInvalidSignatureFormat = types.ErrInvalidSignatureFormat

	// ErrInvalidCiphertext KEM 密文长度无效
	ErrInvalidCiphertext = types.ErrInvalidCiphertext

	// ErrUnknownAlgorithm 未知算法
	ErrUnknownAlgorithm = types.ErrUnknownAlgorithm

	// ErrInvalidPublicKey 公钥无效
	ErrInvalidPublicKey = fmt.Errorf("%w: invalid public key", types.ErrInvalidKeyFormat)

	// ErrInvalidPrivateKey 私钥无效
	ErrInvalidPrivateKey = fmt.Errorf("%w: invalid private key", types.ErrInvalidKeyFormat)

	// ErrInvalidKeyPart 未知密钥部分
	ErrInvalidKeyPart = fmt.Errorf("%w: invalid key part", types.ErrInput)

	// ErrKeyMismatch 私钥与内嵌公钥不一致
	ErrKeyMismatch = fmt.Errorf("%w: private key does not match embedded public key", types.ErrInvalidKeyFormat)
)

// 能力错误
var (
	// ErrUnsupportedOperation 算法不支持该操作
	ErrUnsupportedOperation = types.ErrUnsupportedOperation

	// ErrAlgorithmUnavailable 算法没有已注册的实现
	ErrAlgorithmUnavailable = types.ErrAlgorithmUnavailable
)

// 身份错误
var (
	// ErrNoPrivateKey 身份只有公钥
	ErrNoPrivateKey = fmt.Errorf("%w: identity has no private key", types.ErrInput)

	// ErrIdentityDestroyed 身份已销毁
	ErrIdentityDestroyed = types.ErrKeyDestroyed

	// ErrRandomnessFailure 熵源失败
	ErrRandomnessFailure = types.ErrRandomnessFailure
)
