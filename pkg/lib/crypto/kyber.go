package crypto

import (
	"fmt"

	"github.com/cloudflare/circl/kem/kyber/kyber768"
	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
	"github.com/dep2p/go-keyvault/pkg/lib/secmem"
)

// Kyber768 常量
const (
	KyberPublicKeySize    = kyber768.PublicKeySize
	KyberPrivateKeySize   = kyber768.PrivateKeySize
	KyberCiphertextSize   = kyber768.CiphertextSize
	KyberSharedSecretSize = kyber768.SharedKeySize
)

// kyberProvider 仅提供 KEM，不实现 SignerProvider
type kyberProvider struct{}

func init() {
	mustRegister(kyberProvider{})
}

func (kyberProvider) Algorithm() Algorithm {
	return Kyber
}

func (kyberProvider) GenerateKey(src entropy.Source, _ GenerateOptions) ([]byte, []byte, error) {
	seed, err := entropy.Bytes(src, kyber768.KeySeedSize)
	if err != nil {
		return nil, nil, err
	}
	defer secmem.Wipe(seed)

	pk, sk := kyber768.NewKeyFromSeed(seed)
	pub := make([]byte, KyberPublicKeySize)
	priv := make([]byte, KyberPrivateKeySize)
	pk.Pack(pub)
	sk.Pack(priv)
	return pub, priv, nil
}

// PublicKey 私钥打包格式内嵌公钥及其哈希，重新打包必须与输入一致
func (kyberProvider) PublicKey(priv []byte) ([]byte, error) {
	sk, err := kyberPrivate(priv)
	if err != nil {
		return nil, err
	}

	pk, ok := sk.Public().(*kyber768.PublicKey)
	if !ok {
		return nil, ErrInvalidPrivateKey
	}
	pub := make([]byte, KyberPublicKeySize)
	pk.Pack(pub)

	// 内嵌的 H(pk) 必须与重新计算的一致
	check := new(kyber768.PublicKey)
	check.Unpack(pub)
	if !check.Equal(pk) {
		return nil, ErrKeyMismatch
	}

	packed := make([]byte, KyberPrivateKeySize)
	sk.Pack(packed)
	defer secmem.Wipe(packed)
	if !KeyEqual(packed, priv) {
		return nil, fmt.Errorf("%w: kyber768 private key is not canonical", ErrInvalidPrivateKey)
	}
	return pub, nil
}

func (kyberProvider) CheckPublicKey(pub []byte) error {
	if len(pub) != KyberPublicKeySize {
		return fmt.Errorf("%w: kyber768 public key must be %d bytes, got %d", ErrInvalidKeySize, KyberPublicKeySize, len(pub))
	}
	pk := new(kyber768.PublicKey)
	pk.Unpack(pub)

	packed := make([]byte, KyberPublicKeySize)
	pk.Pack(packed)
	if !KeyEqual(packed, pub) {
		return fmt.Errorf("%w: kyber768 public key is not canonical", ErrInvalidPublicKey)
	}
	return nil
}

func (p kyberProvider) Encapsulate(pub []byte, src entropy.Source) ([]byte, []byte, error) {
	if err := p.CheckPublicKey(pub); err != nil {
		return nil, nil, err
	}
	seed, err := entropy.Bytes(src, kyber768.EncapsulationSeedSize)
	if err != nil {
		return nil, nil, err
	}
	defer secmem.Wipe(seed)

	pk := new(kyber768.PublicKey)
	pk.Unpack(pub)

	ct := make([]byte, KyberCiphertextSize)
	ss := make([]byte, KyberSharedSecretSize)
	pk.EncapsulateTo(ct, ss, seed)
	return ct, ss, nil
}

// Decapsulate 密文被篡改时返回伪随机共享密钥（隐式拒绝），不返回错误
func (kyberProvider) Decapsulate(priv, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) != KyberCiphertextSize {
		return nil, fmt.Errorf("%w: kyber768 ciphertext must be %d bytes, got %d", ErrInvalidCiphertext, KyberCiphertextSize, len(ciphertext))
	}
	sk, err := kyberPrivate(priv)
	if err != nil {
		return nil, err
	}
	ss := make([]byte, KyberSharedSecretSize)
	sk.DecapsulateTo(ss, ciphertext)
	return ss, nil
}

func kyberPrivate(priv []byte) (*kyber768.PrivateKey, error) {
	if len(priv) != KyberPrivateKeySize {
		return nil, fmt.Errorf("%w: kyber768 private key must be %d bytes, got %d", ErrInvalidKeySize, KyberPrivateKeySize, len(priv))
	}
	sk := new(kyber768.PrivateKey)
	sk.Unpack(priv)
	return sk, nil
}
