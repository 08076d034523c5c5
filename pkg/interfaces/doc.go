// Package interfaces 定义 go-keyvault 的公共接口
//
// # 接口
//
//   - storage.go   - SecureStore 安全存储、Backend 后端原语
//   - identity.go  - IdentityManager 身份管理
//
// 实现位于 internal/core 下，一个接口文件对应一个实现目录：
//
//	interfaces.SecureStore     -> internal/core/securestore
//	interfaces.Backend         -> internal/core/securestore/backend/...
//	interfaces.IdentityManager -> internal/core/identity
package interfaces
