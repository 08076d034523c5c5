package seal

import (
	"crypto/aes"
	"crypto/cipher"

	"golang.org/x/crypto/chacha20poly1305"
)

// aeadSuite AEAD 密码（AES-256-GCM、ChaCha20-Poly1305）
type aeadSuite struct {
	newAEAD func(key []byte) (cipher.AEAD, error)
}

func newAESGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func newChaCha20Poly1305(key []byte) (cipher.AEAD, error) {
	return chacha20poly1305.New(key)
}

func (aeadSuite) nonceSize() int {
	return AEADNonceSize
}

func (s aeadSuite) seal(key, nonce, plaintext, aad []byte) ([]byte, []byte, error) {
	a, err := s.newAEAD(key)
	if err != nil {
		return nil, nil, err
	}

	out := a.Seal(nil, nonce, plaintext, aad)
	split := len(out) - a.Overhead()
	return out[:split:split], out[split:], nil
}

func (s aeadSuite) open(key, nonce, ciphertext, tag, aad []byte) ([]byte, error) {
	a, err := s.newAEAD(key)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	if len(nonce) != a.NonceSize() || len(tag) != a.Overhead() {
		return nil, ErrAuthenticationFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := a.Open(nil, nonce, sealed, aad)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}
