// Package keyfmt 在原始密钥字节和 PEM 文本之间转换
//
// 每个算法使用独立的 PEM 标签：
//
//	-----BEGIN ED25519 PRIVATE KEY-----
//	Algorithm: ed25519
//	Key-Part: private
//
//	<base64>
//	-----END ED25519 PRIVATE KEY-----
//
// Decode 先校验封装（BEGIN/END 匹配、base64 合法、无多余数据），
// 封装不合法时返回 ErrInvalidKeyFormat，不会尝试导入密钥。
package keyfmt
