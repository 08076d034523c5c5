package crypto

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
)

// P-256 密钥常量
const (
	// P256PublicKeySize 未压缩 SEC1 公钥（0x04 || X || Y）
	P256PublicKeySize = 65
	// P256PrivateKeySize 标量大小
	P256PrivateKeySize = 32
	// P256SignatureSize r || s
	P256SignatureSize = 64
)

type p256Provider struct{}

func init() {
	mustRegister(p256Provider{})
}

func (p256Provider) Algorithm() Algorithm {
	return ECDSAP256
}

func (p256Provider) GenerateKey(src entropy.Source, _ GenerateOptions) ([]byte, []byte, error) {
	r := entropy.NewReader(src)
	k, err := ecdh.P256().GenerateKey(r)
	if err != nil {
		return nil, nil, r.Classify(err)
	}
	return k.PublicKey().Bytes(), k.Bytes(), nil
}

func (p256Provider) PublicKey(priv []byte) ([]byte, error) {
	k, err := p256ECDHPrivate(priv)
	if err != nil {
		return nil, err
	}
	return k.PublicKey().Bytes(), nil
}

func (p256Provider) CheckPublicKey(pub []byte) error {
	_, err := p256ECDHPublic(pub)
	return err
}

func (p256Provider) Sign(priv, msg []byte, src entropy.Source) ([]byte, error) {
	k, err := p256ECDSAPrivate(priv)
	if err != nil {
		return nil, err
	}

	h := sha256.Sum256(msg)
	rd := entropy.NewReader(src)
	r, s, err := ecdsa.Sign(rd, k, h[:])
	if err != nil {
		return nil, rd.Classify(err)
	}

	sig := make([]byte, P256SignatureSize)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:])
	return sig, nil
}

func (p256Provider) Verify(pub, msg, sig []byte) (bool, error) {
	pk, err := p256ECDSAPublic(pub)
	if err != nil {
		return false, err
	}
	if len(sig) != P256SignatureSize {
		return false, ErrInvalidSignatureFormat
	}

	n := elliptic.P256().Params().N
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])
	if r.Sign() == 0 || s.Sign() == 0 || r.Cmp(n) >= 0 || s.Cmp(n) >= 0 {
		return false, ErrInvalidSignatureFormat
	}

	h := sha256.Sum256(msg)
	return ecdsa.Verify(pk, h[:], r, s), nil
}

func (p256Provider) SharedSecret(priv, peerPub []byte) ([]byte, error) {
	k, err := p256ECDHPrivate(priv)
	if err != nil {
		return nil, err
	}
	peer, err := p256ECDHPublic(peerPub)
	if err != nil {
		return nil, err
	}
	return k.ECDH(peer)
}

// ============================================================================
//                              解析
// ============================================================================

func p256ECDHPrivate(priv []byte) (*ecdh.PrivateKey, error) {
	if len(priv) != P256PrivateKeySize {
		return nil, fmt.Errorf("%w: p256 private key must be %d bytes, got %d", ErrInvalidKeySize, P256PrivateKeySize, len(priv))
	}
	k, err := ecdh.P256().NewPrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	return k, nil
}

func p256ECDHPublic(pub []byte) (*ecdh.PublicKey, error) {
	if len(pub) != P256PublicKeySize {
		return nil, fmt.Errorf("%w: p256 public key must be %d bytes, got %d", ErrInvalidKeySize, P256PublicKeySize, len(pub))
	}
	k, err := ecdh.P256().NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return k, nil
}

func p256ECDSAPublic(pub []byte) (*ecdsa.PublicKey, error) {
	if _, err := p256ECDHPublic(pub); err != nil {
		return nil, err
	}
	x, y := elliptic.Unmarshal(elliptic.P256(), pub)
	if x == nil {
		return nil, ErrInvalidPublicKey
	}
	return &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}, nil
}

func p256ECDSAPrivate(priv []byte) (*ecdsa.PrivateKey, error) {
	k, err := p256ECDHPrivate(priv)
	if err != nil {
		return nil, err
	}
	pk, err := p256ECDSAPublic(k.PublicKey().Bytes())
	if err != nil {
		return nil, err
	}
	return &ecdsa.PrivateKey{PublicKey: *pk, D: new(big.Int).SetBytes(priv)}, nil
}
