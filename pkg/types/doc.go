// Package types 定义 go-keyvault 的公共错误
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
//
// # 文件组织
//
//   - errors.go - 错误类别、具体错误、分类辅助
//
// # 错误类别
//
// 每个具体错误包装一个类别哨兵：
//
//	ErrInput              -> InputError
//	ErrCrypto             -> CryptoError
//	ErrUnsupportedFeature -> UnsupportedFeature
//	ErrStorage            -> StorageError
//	ErrRandomnessFailure  -> RandomnessFailure
//
// KindOf 把任意错误映射到类别，供调用方按类别处理。
package types
