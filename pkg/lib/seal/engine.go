package seal

import (
	"crypto/subtle"
	"fmt"

	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
)

// Engine 对称加密引擎
//
// Engine 无内部可变状态，可被多个 goroutine 共享。
type Engine struct {
	cipher  CipherID
	legacy  bool
	entropy entropy.Source
}

// Option 引擎选项
type Option func(*Engine)

// WithCipher 设置 Encrypt 使用的默认密码
func WithCipher(id CipherID) Option {
	return func(e *Engine) {
		e.cipher = id
	}
}

// WithLegacyCiphers 启用 3DES / Blowfish
//
// 默认关闭。关闭时遗留密码的加密和解密都返回 ErrCipherDisabled。
func WithLegacyCiphers(enabled bool) Option {
	return func(e *Engine) {
		e.legacy = enabled
	}
}

// WithEntropy 设置 nonce 熵源
func WithEntropy(src entropy.Source) Option {
	return func(e *Engine) {
		e.entropy = src
	}
}

// NewEngine 创建加密引擎，默认 AES-256-GCM
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		cipher:  CipherAES256GCM,
		entropy: entropy.System(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.entropy = entropy.OrSystem(e.entropy)
	return e
}

// Cipher 返回默认密码
func (e *Engine) Cipher() CipherID {
	return e.cipher
}

// LegacyEnabled 是否启用遗留密码
func (e *Engine) LegacyEnabled() bool {
	return e.legacy
}

// Check 检查密码在当前引擎配置下是否可用
func (e *Engine) Check(id CipherID) error {
	if _, err := suiteFor(id); err != nil {
		return err
	}
	if id.Legacy() && !e.legacy {
		return fmt.Errorf("%w: %s", ErrCipherDisabled, id)
	}
	return nil
}

func (e *Engine) suite(id CipherID) (cipherSuite, error) {
	if err := e.Check(id); err != nil {
		return nil, err
	}
	return suiteFor(id)
}

// Encrypt 使用默认密码加密
func (e *Engine) Encrypt(key *SymmetricKey, plaintext, ad []byte) (*EncryptedBlob, error) {
	return e.EncryptWith(e.cipher, key, plaintext, ad)
}

// EncryptWith 使用指定密码加密
//
// 每次调用都从熵源生成新的 nonce/IV。
func (e *Engine) EncryptWith(id CipherID, key *SymmetricKey, plaintext, ad []byte) (*EncryptedBlob, error) {
	s, err := e.suite(id)
	if err != nil {
		return nil, err
	}

	raw, err := keyBytes(key)
	if err != nil {
		return nil, err
	}

	params, err := key.Params().MarshalBinary()
	if err != nil {
		return nil, err
	}

	nonce, err := entropy.Bytes(e.entropy, s.nonceSize())
	if err != nil {
		return nil, err
	}

	blob := &EncryptedBlob{
		Version:   BlobVersion,
		Cipher:    id,
		KDF:       key.Params().KDF,
		KDFParams: params,
		Nonce:     nonce,
		ADTag:     adTag(ad),
	}

	aad := blob.aad(ad)
	blob.Ciphertext, blob.Tag, err = s.seal(raw, nonce, plaintext, aad)
	if err != nil {
		return nil, err
	}
	return blob, nil
}

// Decrypt 解密并认证
//
// 任何认证失败（错误密钥、篡改、关联数据不匹配）都返回
// ErrAuthenticationFailed，不返回部分明文。
func (e *Engine) Decrypt(key *SymmetricKey, blob *EncryptedBlob, ad []byte) ([]byte, error) {
	if blob == nil || blob.Version != BlobVersion {
		return nil, ErrBlobCorrupted
	}

	s, err := e.suite(blob.Cipher)
	if err != nil {
		return nil, err
	}

	raw, err := keyBytes(key)
	if err != nil {
		return nil, err
	}

	if len(blob.Nonce) != s.nonceSize() {
		return nil, ErrAuthenticationFailed
	}
	if subtle.ConstantTimeCompare(blob.ADTag, adTag(ad)) != 1 {
		return nil, ErrAuthenticationFailed
	}

	return s.open(raw, blob.Nonce, blob.Ciphertext, blob.Tag, blob.aad(ad))
}

// aad 认证数据：头部 + 调用方关联数据
func (b *EncryptedBlob) aad(ad []byte) []byte {
	h := b.header()
	out := make([]byte, 0, len(h)+len(ad))
	out = append(out, h...)
	return append(out, ad...)
}

func keyBytes(key *SymmetricKey) ([]byte, error) {
	if key == nil || key.Destroyed() {
		return nil, ErrKeyDestroyed
	}
	raw := key.Bytes()
	if len(raw) != KeySize {
		return nil, fmt.Errorf("%w: symmetric key must be %d bytes, got %d", ErrInvalidKeySize, KeySize, len(raw))
	}
	return raw, nil
}

// ============================================================================
//                              口令便捷方法
// ============================================================================

// SealWithPassphrase 派生密钥并加密
//
// params 没有盐值时从熵源生成。派生密钥在返回前清零。
func (e *Engine) SealWithPassphrase(passphrase []byte, params KDFParams, plaintext, ad []byte) (*EncryptedBlob, error) {
	if len(params.Salt) == 0 {
		salt, err := entropy.Bytes(e.entropy, DefaultSaltSize)
		if err != nil {
			return nil, err
		}
		params.Salt = salt
	}

	key, err := Derive(passphrase, params)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	return e.Encrypt(key, plaintext, ad)
}

// OpenWithPassphrase 按密文块中的 KDF 参数派生密钥并解密
func (e *Engine) OpenWithPassphrase(passphrase []byte, blob *EncryptedBlob, ad []byte) ([]byte, error) {
	if blob == nil {
		return nil, ErrBlobCorrupted
	}
	params, err := blob.Params()
	if err != nil {
		return nil, err
	}
	if params.KDF == KDFNone || params.KDF == KDFHKDFSHA256 {
		return nil, fmt.Errorf("%w: blob was not sealed with a passphrase", ErrInvalidParameters)
	}

	key, err := Derive(passphrase, params)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	return e.Decrypt(key, blob, ad)
}
