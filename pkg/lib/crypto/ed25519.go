package crypto

import (
	"crypto/ed25519"
	"fmt"

	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
	"github.com/dep2p/go-keyvault/pkg/lib/secmem"
)

// Ed25519 密钥常量
const (
	// Ed25519PrivateKeySize Ed25519 私钥大小（64 字节：种子 + 公钥）
	Ed25519PrivateKeySize = ed25519.PrivateKeySize
	// Ed25519PublicKeySize Ed25519 公钥大小（32 字节）
	Ed25519PublicKeySize = ed25519.PublicKeySize
	// Ed25519SignatureSize Ed25519 签名大小（64 字节）
	Ed25519SignatureSize = ed25519.SignatureSize
)

type ed25519Provider struct{}

func init() {
	mustRegister(ed25519Provider{})
}

func (ed25519Provider) Algorithm() Algorithm {
	return Ed25519
}

func (ed25519Provider) GenerateKey(src entropy.Source, _ GenerateOptions) ([]byte, []byte, error) {
	seed, err := entropy.Bytes(src, ed25519.SeedSize)
	if err != nil {
		return nil, nil, err
	}
	defer secmem.Wipe(seed)

	priv := ed25519.NewKeyFromSeed(seed)
	pub := append([]byte(nil), priv[ed25519.SeedSize:]...)
	return pub, priv, nil
}

// PublicKey 校验 64 字节私钥：种子重新派生的公钥必须与内嵌公钥一致
func (ed25519Provider) PublicKey(priv []byte) ([]byte, error) {
	if len(priv) != Ed25519PrivateKeySize {
		return nil, fmt.Errorf("%w: ed25519 private key must be %d bytes, got %d", ErrInvalidKeySize, Ed25519PrivateKeySize, len(priv))
	}

	derived := ed25519.NewKeyFromSeed(priv[:ed25519.SeedSize])
	defer secmem.Wipe(derived)

	if !KeyEqual(derived[ed25519.SeedSize:], priv[ed25519.SeedSize:]) {
		return nil, ErrKeyMismatch
	}
	return append([]byte(nil), derived[ed25519.SeedSize:]...), nil
}

func (ed25519Provider) CheckPublicKey(pub []byte) error {
	if len(pub) != Ed25519PublicKeySize {
		return fmt.Errorf("%w: ed25519 public key must be %d bytes, got %d", ErrInvalidKeySize, Ed25519PublicKeySize, len(pub))
	}
	return nil
}

func (ed25519Provider) Sign(priv, msg []byte, _ entropy.Source) ([]byte, error) {
	if len(priv) != Ed25519PrivateKeySize {
		return nil, ErrInvalidKeySize
	}
	return ed25519.Sign(priv, msg), nil
}

func (p ed25519Provider) Verify(pub, msg, sig []byte) (bool, error) {
	if err := p.CheckPublicKey(pub); err != nil {
		return false, err
	}
	if len(sig) != Ed25519SignatureSize {
		return false, ErrInvalidSignatureFormat
	}
	return ed25519.Verify(pub, msg, sig), nil
}
