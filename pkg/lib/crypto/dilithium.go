package crypto

import (
	"fmt"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
	"github.com/dep2p/go-keyvault/pkg/lib/secmem"
)

// Dilithium3 密钥常量
const (
	DilithiumPublicKeySize  = mode3.PublicKeySize
	DilithiumPrivateKeySize = mode3.PrivateKeySize
	DilithiumSignatureSize  = mode3.SignatureSize
)

type dilithiumProvider struct{}

func init() {
	mustRegister(dilithiumProvider{})
}

func (dilithiumProvider) Algorithm() Algorithm {
	return Dilithium
}

func (dilithiumProvider) GenerateKey(src entropy.Source, _ GenerateOptions) ([]byte, []byte, error) {
	var seed [mode3.SeedSize]byte
	if err := entropy.OrSystem(src).Fill(seed[:]); err != nil {
		return nil, nil, err
	}
	defer secmem.Wipe(seed[:])

	pk, sk := mode3.NewKeyFromSeed(&seed)
	return pk.Bytes(), sk.Bytes(), nil
}

// PublicKey 从私钥重新计算公钥
//
// 打包格式只保存 rho/t0 等分量，重新打包结果必须与输入一致。
func (dilithiumProvider) PublicKey(priv []byte) ([]byte, error) {
	sk, err := dilithiumPrivate(priv)
	if err != nil {
		return nil, err
	}
	packed := sk.Bytes()
	defer secmem.Wipe(packed)
	if !KeyEqual(packed, priv) {
		return nil, fmt.Errorf("%w: dilithium3 private key is not canonical", ErrInvalidPrivateKey)
	}

	pk, ok := sk.Public().(*mode3.PublicKey)
	if !ok {
		return nil, ErrInvalidPrivateKey
	}
	return pk.Bytes(), nil
}

func (dilithiumProvider) CheckPublicKey(pub []byte) error {
	_, err := dilithiumPublic(pub)
	return err
}

func (dilithiumProvider) Sign(priv, msg []byte, _ entropy.Source) ([]byte, error) {
	sk, err := dilithiumPrivate(priv)
	if err != nil {
		return nil, err
	}
	sig := make([]byte, DilithiumSignatureSize)
	mode3.SignTo(sk, msg, sig)
	return sig, nil
}

func (dilithiumProvider) Verify(pub, msg, sig []byte) (bool, error) {
	pk, err := dilithiumPublic(pub)
	if err != nil {
		return false, err
	}
	if len(sig) != DilithiumSignatureSize {
		return false, ErrInvalidSignatureFormat
	}
	return mode3.Verify(pk, msg, sig), nil
}

func dilithiumPrivate(priv []byte) (*mode3.PrivateKey, error) {
	if len(priv) != DilithiumPrivateKeySize {
		return nil, fmt.Errorf("%w: dilithium3 private key must be %d bytes, got %d", ErrInvalidKeySize, DilithiumPrivateKeySize, len(priv))
	}
	sk := new(mode3.PrivateKey)
	if err := sk.UnmarshalBinary(priv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	return sk, nil
}

func dilithiumPublic(pub []byte) (*mode3.PublicKey, error) {
	if len(pub) != DilithiumPublicKeySize {
		return nil, fmt.Errorf("%w: dilithium3 public key must be %d bytes, got %d", ErrInvalidKeySize, DilithiumPublicKeySize, len(pub))
	}
	pk := new(mode3.PublicKey)
	if err := pk.UnmarshalBinary(pub); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return pk, nil
}
