// 公共错误定义
//
// 错误按类别组织：每个具体错误都包装一个类别哨兵，
// 因此调用方既可以匹配具体错误，也可以匹配整个类别：
//
//	errors.Is(err, types.ErrInvalidSignatureFormat) // 具体错误
//	errors.Is(err, types.ErrInput)                  // 类别

package types

import (
	"errors"
	"fmt"
)

// ============================================================================
//                              错误类别
// ============================================================================

var (
	// ErrInput 输入错误（字节格式、长度、PEM 封装等不合法）
	ErrInput = errors.New("invalid input")

	// ErrCrypto 密码学失败（验证或认证失败，消息不区分具体原因）
	ErrCrypto = errors.New("cryptographic failure")

	// ErrUnsupportedFeature 算法、密码套件未编译进来，或能力不在算法能力集内
	ErrUnsupportedFeature = errors.New("unsupported feature")

	// ErrStorage 存储错误
	ErrStorage = errors.New("storage error")

	// ErrRandomnessFailure 熵源不可用或读取不足
	ErrRandomnessFailure = errors.New("randomness failure")
)

// ============================================================================
//                              输入错误
// ============================================================================

var (
	// ErrInvalidKeySize 密钥长度与算法不匹配
	ErrInvalidKeySize = fmt.Errorf("%w: invalid key size", ErrInput)

	// ErrInvalidKeyFormat 密钥编码或 PEM 封装不合法
	ErrInvalidKeyFormat = fmt.Errorf("%w: invalid key format", ErrInput)

	// ErrInvalidSignatureFormat 签名长度或结构不合法
	ErrInvalidSignatureFormat = fmt.Errorf("%w: invalid signature format", ErrInput)

	// ErrInvalidCiphertext KEM 密文长度不合法
	ErrInvalidCiphertext = fmt.Errorf("%w: invalid ciphertext", ErrInput)

	// ErrInvalidParameters KDF 或密码参数低于安全下限
	ErrInvalidParameters = fmt.Errorf("%w: invalid parameters", ErrInput)

	// ErrInvalidKeyID 存储键标识不合法
	ErrInvalidKeyID = fmt.Errorf("%w: invalid key id", ErrInput)

	// ErrUnknownAlgorithm 未知算法名
	ErrUnknownAlgorithm = fmt.Errorf("%w: unknown algorithm", ErrInput)
)

// ============================================================================
//                              密码学错误
// ============================================================================

var (
	// ErrAuthenticationFailed 认证失败
	//
	// 错误密钥和密文被篡改返回同一个错误。
	ErrAuthenticationFailed = fmt.Errorf("%w: authentication failed", ErrCrypto)

	// ErrKeyDestroyed 密钥材料已被销毁
	ErrKeyDestroyed = fmt.Errorf("%w: key material destroyed", ErrCrypto)
)

// ============================================================================
//                              不支持的特性
// ============================================================================

var (
	// ErrUnsupportedOperation 算法能力集中不包含该操作
	ErrUnsupportedOperation = fmt.Errorf("%w: operation not supported by algorithm", ErrUnsupportedFeature)

	// ErrAlgorithmUnavailable 算法没有已注册的实现
	ErrAlgorithmUnavailable = fmt.Errorf("%w: algorithm not available in this build", ErrUnsupportedFeature)

	// ErrCipherDisabled 密码套件未启用
	ErrCipherDisabled = fmt.Errorf("%w: cipher not enabled", ErrUnsupportedFeature)
)

// ============================================================================
//                              存储错误
// ============================================================================

var (
	// ErrNotFound 记录不存在
	ErrNotFound = fmt.Errorf("%w: not found", ErrStorage)

	// ErrPermissionDenied 操作系统拒绝访问
	ErrPermissionDenied = fmt.Errorf("%w: permission denied", ErrStorage)

	// ErrBackendUnavailable 后端不可用（平台不支持或服务未运行）
	ErrBackendUnavailable = fmt.Errorf("%w: backend unavailable", ErrStorage)

	// ErrBlobCorrupted 存储的密文块无法解析或无法通过认证
	ErrBlobCorrupted = fmt.Errorf("%w: blob corrupted", ErrStorage)

	// ErrStoreClosed 存储已关闭
	ErrStoreClosed = fmt.Errorf("%w: store closed", ErrStorage)
)

// ============================================================================
//                              分类辅助
// ============================================================================

// Kind 错误类别
type Kind int

const (
	// KindUnknown 非本库错误
	KindUnknown Kind = iota
	// KindInput 输入错误
	KindInput
	// KindCrypto 密码学错误
	KindCrypto
	// KindUnsupported 不支持的特性
	KindUnsupported
	// KindStorage 存储错误
	KindStorage
	// KindRandomness 熵源错误
	KindRandomness
)

// String 返回类别名称
func (k Kind) String() string {
	switch k {
	case KindInput:
		return "InputError"
	case KindCrypto:
		return "CryptoError"
	case KindUnsupported:
		return "UnsupportedFeature"
	case KindStorage:
		return "StorageError"
	case KindRandomness:
		return "RandomnessFailure"
	default:
		return "Unknown"
	}
}

// KindOf 返回错误所属类别
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInput):
		return KindInput
	case errors.Is(err, ErrCrypto):
		return KindCrypto
	case errors.Is(err, ErrUnsupportedFeature):
		return KindUnsupported
	case errors.Is(err, ErrStorage):
		return KindStorage
	case errors.Is(err, ErrRandomnessFailure):
		return KindRandomness
	default:
		return KindUnknown
	}
}

// IsNotFound 检查是否为记录不存在错误
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAuthenticationFailed 检查是否为认证失败
func IsAuthenticationFailed(err error) bool {
	return errors.Is(err, ErrAuthenticationFailed)
}
