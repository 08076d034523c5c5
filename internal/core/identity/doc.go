// Package identity 实现身份管理
//
// Manager 在安全存储之上管理命名身份：生成密钥对、以 PEM 形式
// 加密保存私钥、按名称加载和删除。
//
// # 存储布局
//
// 身份 name 的私钥 PEM 保存在 key_id "identity/<name>" 下，
// PEM 头携带身份 ID 和创建时间，加载后与保存前一致。
//
// # 实验性算法
//
// Falcon 等实验性算法默认拒绝，返回 ErrExperimentalDisabled；
// Config.EnableExperimental 为 true 时放行，是否可用取决于
// 是否注册了实现。
//
// # Fx 模块
//
//	app := fx.New(
//	    securestore.Module(),
//	    identity.Module(),
//	    fx.Invoke(func(m interfaces.IdentityManager) { ... }),
//	)
//
// Config.Name 非空时模块启动时加载该身份，不存在且 AutoCreate
// 为 true 时生成并保存。
package identity
