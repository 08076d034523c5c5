package seal

import (
	"fmt"
	"strings"
)

// ============================================================================
//                              密码标识
// ============================================================================

// CipherID 对称密码标识（持久化值，不可改动）
type CipherID uint8

const (
	// CipherAES256GCM AES-256-GCM
	CipherAES256GCM CipherID = 1
	// CipherChaCha20Poly1305 ChaCha20-Poly1305
	CipherChaCha20Poly1305 CipherID = 2
	// Cipher3DESCBCHMAC 3DES-CBC + HMAC-SHA256（遗留）
	Cipher3DESCBCHMAC CipherID = 3
	// CipherBlowfishCBCHMAC Blowfish-CBC + HMAC-SHA256（遗留）
	CipherBlowfishCBCHMAC CipherID = 4
)

// KeySize 所有密码套件的输入密钥长度
const KeySize = 32

// AEADNonceSize AEAD 模式的 nonce 长度（96 位）
const AEADNonceSize = 12

// String 返回密码名称
func (c CipherID) String() string {
	switch c {
	case CipherAES256GCM:
		return "aes-256-gcm"
	case CipherChaCha20Poly1305:
		return "chacha20-poly1305"
	case Cipher3DESCBCHMAC:
		return "3des-cbc-hmac"
	case CipherBlowfishCBCHMAC:
		return "blowfish-cbc-hmac"
	default:
		return fmt.Sprintf("cipher(%d)", uint8(c))
	}
}

// Legacy 是否为遗留分组密码
func (c CipherID) Legacy() bool {
	return c == Cipher3DESCBCHMAC || c == CipherBlowfishCBCHMAC
}

// ParseCipher 按名称解析密码
func ParseCipher(name string) (CipherID, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range AllCiphers() {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCipher, name)
}

// AllCiphers 返回所有已知密码
func AllCiphers() []CipherID {
	return []CipherID{CipherAES256GCM, CipherChaCha20Poly1305, Cipher3DESCBCHMAC, CipherBlowfishCBCHMAC}
}

// ============================================================================
//                              密码套件
// ============================================================================

// cipherSuite 单个密码的实现
//
// seal 返回分离的密文和认证标签；open 在任何失败时只返回
// ErrAuthenticationFailed，且不返回部分明文。
type cipherSuite interface {
	nonceSize() int
	seal(key, nonce, plaintext, aad []byte) (ciphertext, tag []byte, err error)
	open(key, nonce, ciphertext, tag, aad []byte) ([]byte, error)
}

var suites = map[CipherID]cipherSuite{
	CipherAES256GCM:        aeadSuite{newAEAD: newAESGCM},
	CipherChaCha20Poly1305: aeadSuite{newAEAD: newChaCha20Poly1305},
	Cipher3DESCBCHMAC:      tripleDESSuite,
	CipherBlowfishCBCHMAC:  blowfishSuite,
}

func suiteFor(id CipherID) (cipherSuite, error) {
	s, ok := suites[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCipher, id)
	}
	return s, nil
}
