package crypto

import (
	"crypto/subtle"
	"fmt"

	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
)

// ============================================================================
//                              PublicKey
// ============================================================================

// PublicKey 已校验的公钥（不可变）
type PublicKey struct {
	alg Algorithm
	raw []byte
}

// UnmarshalPublicKey 校验并构造公钥
func UnmarshalPublicKey(alg Algorithm, raw []byte) (*PublicKey, error) {
	p, err := Lookup(alg)
	if err != nil {
		return nil, err
	}
	if err := p.CheckPublicKey(raw); err != nil {
		return nil, err
	}
	return &PublicKey{alg: alg, raw: append([]byte(nil), raw...)}, nil
}

// Algorithm 返回算法
func (k *PublicKey) Algorithm() Algorithm {
	return k.alg
}

// Raw 返回原始公钥字节的副本
func (k *PublicKey) Raw() []byte {
	return append([]byte(nil), k.raw...)
}

// Equals 比较两个公钥是否相等
//
// 使用常量时间比较以防止时序攻击。
func (k *PublicKey) Equals(other *PublicKey) bool {
	if other == nil {
		return false
	}
	return k.alg == other.alg && KeyEqual(k.raw, other.raw)
}

// Verify 使用此公钥验证签名
func (k *PublicKey) Verify(msg, sig []byte) (bool, error) {
	return Verify(k.alg, k.raw, msg, sig)
}

// Encapsulate 向此公钥封装共享密钥
func (k *PublicKey) Encapsulate(src entropy.Source) (ciphertext, sharedSecret []byte, err error) {
	return Encapsulate(k.alg, k.raw, src)
}

// Fingerprint 返回公钥指纹
func (k *PublicKey) Fingerprint() string {
	return Fingerprint(k.alg, k.raw)
}

// ============================================================================
//                              无状态操作
// ============================================================================

// Verify 验证签名
//
// 先按算法固定长度校验公钥和签名，格式错误返回
// ErrInvalidKeySize / ErrInvalidSignatureFormat；格式正确但签名
// 与公钥不匹配返回 (false, nil)。两类结果可区分。
func Verify(alg Algorithm, pub, msg, sig []byte) (bool, error) {
	s, err := signerFor(alg)
	if err != nil {
		return false, err
	}

	info, _ := alg.Info()
	if info.PublicKeySize > 0 && len(pub) != info.PublicKeySize {
		return false, fmt.Errorf("%w: %s public key must be %d bytes, got %d", ErrInvalidKeySize, alg, info.PublicKeySize, len(pub))
	}
	if info.SignatureSize > 0 && len(sig) != info.SignatureSize {
		return false, fmt.Errorf("%w: %s signature must be %d bytes, got %d", ErrInvalidSignatureFormat, alg, info.SignatureSize, len(sig))
	}
	if info.MaxSignatureSize > 0 && (len(sig) == 0 || len(sig) > info.MaxSignatureSize) {
		return false, fmt.Errorf("%w: %s signature length %d", ErrInvalidSignatureFormat, alg, len(sig))
	}

	return s.Verify(pub, msg, sig)
}

// Encapsulate 向公钥封装共享密钥（仅 KEM 算法）
func Encapsulate(alg Algorithm, pub []byte, src entropy.Source) (ciphertext, sharedSecret []byte, err error) {
	k, err := kemFor(alg)
	if err != nil {
		return nil, nil, err
	}
	info, _ := alg.Info()
	if len(pub) != info.PublicKeySize {
		return nil, nil, fmt.Errorf("%w: %s public key must be %d bytes, got %d", ErrInvalidKeySize, alg, info.PublicKeySize, len(pub))
	}
	return k.Encapsulate(pub, entropy.OrSystem(src))
}

// KeyEqual 常量时间比较两个密钥字节
func KeyEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
