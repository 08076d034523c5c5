// Package lib 包含基础设施工具库
//
// 本目录包含与架构组件无关的通用工具库：
//
//   - crypto: 身份密钥对、签名验证、KEM（按算法注册的实现）
//   - seal: 对称加密、口令派生、密文块编码
//   - keyfmt: PEM 编解码
//   - entropy: 进程级熵源
//   - secmem: 清零缓冲区
//   - log: 组件日志封装
//
// # 与 pkg/ 其他目录的关系
//
// pkg/ 目录包含三类内容：
//
//   - interfaces/: 组件公共接口（架构核心）
//   - types/: 公共错误定义（架构核心）
//   - lib/: 基础设施工具库（本目录）
//
// # 使用示例
//
//	import (
//	    "github.com/dep2p/go-keyvault/pkg/lib/crypto"
//	    "github.com/dep2p/go-keyvault/pkg/lib/keyfmt"
//	    "github.com/dep2p/go-keyvault/pkg/lib/seal"
//	)
package lib
