package crypto

import (
	"bytes"
	"fmt"

	"github.com/cloudflare/circl/sign/slhdsa"
	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
	"github.com/dep2p/go-keyvault/pkg/lib/secmem"
)

// sphincsParams SPHINCS+ 参数集：SLH-DSA-SHA2-128s（FIPS 205）
const sphincsParams = slhdsa.SHA2_128s

// SPHINCS+ 密钥常量
const (
	SPHINCSPublicKeySize  = 32
	SPHINCSPrivateKeySize = 64
	SPHINCSSignatureSize  = 7856

	sphincsN = SPHINCSPublicKeySize / 2
)

type sphincsProvider struct{}

func init() {
	mustRegister(sphincsProvider{})
}

func (sphincsProvider) Algorithm() Algorithm {
	return SPHINCSPlus
}

func (sphincsProvider) GenerateKey(src entropy.Source, _ GenerateOptions) ([]byte, []byte, error) {
	r := entropy.NewReader(src)
	pk, sk, err := slhdsa.GenerateKey(r, sphincsParams)
	if err != nil {
		return nil, nil, r.Classify(err)
	}
	pub, err := pk.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	priv, err := sk.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	return pub, priv, nil
}

// PublicKey 从私钥重新计算公钥
//
// 私钥尾部携带 PK.seed‖PK.root，用种子重新生成密钥对并要求逐字节一致，
// 根与种子不匹配的私钥会被拒绝。
func (sphincsProvider) PublicKey(priv []byte) ([]byte, error) {
	if len(priv) != SPHINCSPrivateKeySize {
		return nil, fmt.Errorf("%w: sphincs+ private key must be %d bytes, got %d", ErrInvalidKeySize, SPHINCSPrivateKeySize, len(priv))
	}

	// GenerateKey 依次读取 SK.seed、SK.prf、PK.seed
	seeds := make([]byte, 3*sphincsN)
	defer secmem.Wipe(seeds)
	copy(seeds, priv[:2*sphincsN])
	copy(seeds[2*sphincsN:], priv[2*sphincsN:3*sphincsN])

	pk, sk, err := slhdsa.GenerateKey(bytes.NewReader(seeds), sphincsParams)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	packed, err := sk.MarshalBinary()
	if err != nil {
		return nil, err
	}
	defer secmem.Wipe(packed)
	if !KeyEqual(packed, priv) {
		return nil, fmt.Errorf("%w: sphincs+ public root does not match the private seeds", ErrInvalidPrivateKey)
	}
	return pk.MarshalBinary()
}

func (sphincsProvider) CheckPublicKey(pub []byte) error {
	_, err := sphincsPublic(pub)
	return err
}

// Sign 随机化签名（空上下文）
func (sphincsProvider) Sign(priv, msg []byte, src entropy.Source) ([]byte, error) {
	sk, err := sphincsPrivate(priv)
	if err != nil {
		return nil, err
	}
	r := entropy.NewReader(src)
	sig, err := slhdsa.SignRandomized(sk, r, slhdsa.NewMessage(msg), nil)
	if err != nil {
		return nil, r.Classify(err)
	}
	return sig, nil
}

func (sphincsProvider) Verify(pub, msg, sig []byte) (bool, error) {
	pk, err := sphincsPublic(pub)
	if err != nil {
		return false, err
	}
	if len(sig) != SPHINCSSignatureSize {
		return false, ErrInvalidSignatureFormat
	}
	return slhdsa.Verify(pk, slhdsa.NewMessage(msg), sig, nil), nil
}

func sphincsPrivate(priv []byte) (*slhdsa.PrivateKey, error) {
	if len(priv) != SPHINCSPrivateKeySize {
		return nil, fmt.Errorf("%w: sphincs+ private key must be %d bytes, got %d", ErrInvalidKeySize, SPHINCSPrivateKeySize, len(priv))
	}
	sk := &slhdsa.PrivateKey{ID: sphincsParams}
	if err := sk.UnmarshalBinary(priv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	return sk, nil
}

func sphincsPublic(pub []byte) (*slhdsa.PublicKey, error) {
	if len(pub) != SPHINCSPublicKeySize {
		return nil, fmt.Errorf("%w: sphincs+ public key must be %d bytes, got %d", ErrInvalidKeySize, SPHINCSPublicKeySize, len(pub))
	}
	pk := &slhdsa.PublicKey{ID: sphincsParams}
	if err := pk.UnmarshalBinary(pub); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return pk, nil
}
