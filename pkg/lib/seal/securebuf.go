package seal

import "github.com/dep2p/go-keyvault/pkg/lib/secmem"

// Wipe 清零 b
func Wipe(b []byte) {
	secmem.Wipe(b)
}

// WipeAll 清零多个缓冲区
func WipeAll(bufs ...[]byte) {
	secmem.WipeAll(bufs...)
}

// ============================================================================
//                              SymmetricKey
// ============================================================================

// SymmetricKey 对称密钥及其来源 KDF 参数
//
// 由 Derive / DeriveSubkey / RandomKey 创建，用于一次或多次
// Encrypt/Decrypt，结束后调用 Destroy。永不持久化。
type SymmetricKey struct {
	buf    *secmem.Buffer
	params KDFParams
}

// NewSymmetricKey 接管 raw 的所有权创建对称密钥
func NewSymmetricKey(raw []byte, params KDFParams) *SymmetricKey {
	return &SymmetricKey{buf: secmem.Wrap(raw), params: params}
}

// Bytes 返回密钥字节
func (k *SymmetricKey) Bytes() []byte {
	return k.buf.Bytes()
}

// Len 返回密钥长度
func (k *SymmetricKey) Len() int {
	return k.buf.Len()
}

// Params 返回派生参数
func (k *SymmetricKey) Params() KDFParams {
	return k.params
}

// Destroy 清零密钥
func (k *SymmetricKey) Destroy() {
	if k == nil {
		return
	}
	k.buf.Destroy()
}

// Destroyed 是否已销毁
func (k *SymmetricKey) Destroyed() bool {
	return k.buf.Destroyed()
}
