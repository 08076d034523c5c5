package crypto

import (
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
)

// Secp256k1 密钥常量
const (
	// Secp256k1PublicKeySize 压缩公钥
	Secp256k1PublicKeySize = secp256k1.PubKeyBytesLenCompressed
	// Secp256k1PrivateKeySize 标量
	Secp256k1PrivateKeySize = secp256k1.PrivKeyBytesLen
	// Secp256k1SignatureSize r || s
	Secp256k1SignatureSize = 64
)

type secp256k1Provider struct{}

func init() {
	mustRegister(secp256k1Provider{})
}

func (secp256k1Provider) Algorithm() Algorithm {
	return Secp256k1
}

func (secp256k1Provider) GenerateKey(src entropy.Source, _ GenerateOptions) ([]byte, []byte, error) {
	r := entropy.NewReader(src)
	k, err := secp256k1.GeneratePrivateKeyFromRand(r)
	if err != nil {
		return nil, nil, r.Classify(err)
	}
	defer k.Zero()

	return k.PubKey().SerializeCompressed(), k.Serialize(), nil
}

func (secp256k1Provider) PublicKey(priv []byte) ([]byte, error) {
	k, err := secp256k1Private(priv)
	if err != nil {
		return nil, err
	}
	defer k.Zero()
	return k.PubKey().SerializeCompressed(), nil
}

func (secp256k1Provider) CheckPublicKey(pub []byte) error {
	_, err := secp256k1Public(pub)
	return err
}

// Sign 对 SHA-256 摘要做 RFC 6979 确定性签名，输出 r || s
func (secp256k1Provider) Sign(priv, msg []byte, _ entropy.Source) ([]byte, error) {
	k, err := secp256k1Private(priv)
	if err != nil {
		return nil, err
	}
	defer k.Zero()

	h := sha256.Sum256(msg)
	s := secpecdsa.Sign(k, h[:])

	r, sv := s.R(), s.S()
	sig := make([]byte, Secp256k1SignatureSize)
	rb, sb := r.Bytes(), sv.Bytes()
	copy(sig[:32], rb[:])
	copy(sig[32:], sb[:])
	return sig, nil
}

func (secp256k1Provider) Verify(pub, msg, sig []byte) (bool, error) {
	pk, err := secp256k1Public(pub)
	if err != nil {
		return false, err
	}
	if len(sig) != Secp256k1SignatureSize {
		return false, ErrInvalidSignatureFormat
	}

	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow || r.IsZero() {
		return false, fmt.Errorf("%w: secp256k1 r out of range", ErrInvalidSignatureFormat)
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow || s.IsZero() {
		return false, fmt.Errorf("%w: secp256k1 s out of range", ErrInvalidSignatureFormat)
	}

	h := sha256.Sum256(msg)
	return secpecdsa.NewSignature(&r, &s).Verify(h[:], pk), nil
}

func (secp256k1Provider) SharedSecret(priv, peerPub []byte) ([]byte, error) {
	k, err := secp256k1Private(priv)
	if err != nil {
		return nil, err
	}
	defer k.Zero()

	peer, err := secp256k1Public(peerPub)
	if err != nil {
		return nil, err
	}
	return secp256k1.GenerateSharedSecret(k, peer), nil
}

func secp256k1Private(priv []byte) (*secp256k1.PrivateKey, error) {
	if len(priv) != Secp256k1PrivateKeySize {
		return nil, fmt.Errorf("%w: secp256k1 private key must be %d bytes, got %d", ErrInvalidKeySize, Secp256k1PrivateKeySize, len(priv))
	}
	var d secp256k1.ModNScalar
	if overflow := d.SetByteSlice(priv); overflow || d.IsZero() {
		d.Zero()
		return nil, fmt.Errorf("%w: secp256k1 scalar out of range", ErrInvalidPrivateKey)
	}
	return secp256k1.NewPrivateKey(&d), nil
}

func secp256k1Public(pub []byte) (*secp256k1.PublicKey, error) {
	if len(pub) != Secp256k1PublicKeySize {
		return nil, fmt.Errorf("%w: secp256k1 public key must be %d bytes, got %d", ErrInvalidKeySize, Secp256k1PublicKeySize, len(pub))
	}
	pk, err := secp256k1.ParsePubKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return pk, nil
}
