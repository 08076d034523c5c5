// Package interfaces 定义 go-keyvault 公共接口
//
// 本文件定义 IdentityManager 接口，管理身份的生成和持久化。
package interfaces

import (
	"context"

	"github.com/dep2p/go-keyvault/pkg/lib/crypto"
)

// IdentityManager 身份管理
//
// 私钥以 PEM 形式保存在 SecureStore 中，键为 "identity/<name>"。
type IdentityManager interface {
	// Create 生成新身份（不持久化）
	Create(alg crypto.Algorithm) (*crypto.Identity, error)

	// Save 保存身份私钥，name 已存在时覆盖
	Save(ctx context.Context, name string, id *crypto.Identity) error

	// Load 加载身份
	Load(ctx context.Context, name string) (*crypto.Identity, error)

	// Delete 删除身份
	Delete(ctx context.Context, name string) error

	// List 列出已保存的身份名
	List(ctx context.Context) ([]string, error)
}
