package crypto

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
)

// RSA 参数
const (
	// DefaultRSABits 默认模数位数
	DefaultRSABits = 2048
	// MinRSABits 最小模数位数
	MinRSABits = 2048
	// MaxRSABits 最大模数位数
	MaxRSABits = 4096
)

// RSA 密钥编码：公钥 PKCS#1 DER，私钥 PKCS#1 DER；签名 RSA-PSS-SHA256
type rsaProvider struct{}

func init() {
	mustRegister(rsaProvider{})
}

func (rsaProvider) Algorithm() Algorithm {
	return RSA
}

func (rsaProvider) GenerateKey(src entropy.Source, opts GenerateOptions) ([]byte, []byte, error) {
	bits := opts.RSABits
	if bits == 0 {
		bits = DefaultRSABits
	}
	if bits != 2048 && bits != 3072 && bits != 4096 {
		return nil, nil, fmt.Errorf("%w: rsa bits must be 2048, 3072 or 4096, got %d", ErrInvalidKeySize, bits)
	}

	r := entropy.NewReader(src)
	k, err := rsa.GenerateKey(r, bits)
	if err != nil {
		return nil, nil, r.Classify(err)
	}
	return x509.MarshalPKCS1PublicKey(&k.PublicKey), x509.MarshalPKCS1PrivateKey(k), nil
}

func (rsaProvider) PublicKey(priv []byte) ([]byte, error) {
	k, err := rsaPrivate(priv)
	if err != nil {
		return nil, err
	}
	return x509.MarshalPKCS1PublicKey(&k.PublicKey), nil
}

func (rsaProvider) CheckPublicKey(pub []byte) error {
	_, err := rsaPublic(pub)
	return err
}

func (rsaProvider) Sign(priv, msg []byte, src entropy.Source) ([]byte, error) {
	k, err := rsaPrivate(priv)
	if err != nil {
		return nil, err
	}

	h := sha256.Sum256(msg)
	r := entropy.NewReader(src)
	sig, err := rsa.SignPSS(r, k, crypto.SHA256, h[:], &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash})
	if err != nil {
		return nil, r.Classify(err)
	}
	return sig, nil
}

func (rsaProvider) Verify(pub, msg, sig []byte) (bool, error) {
	k, err := rsaPublic(pub)
	if err != nil {
		return false, err
	}
	if len(sig) != k.Size() {
		return false, fmt.Errorf("%w: rsa signature must be %d bytes, got %d", ErrInvalidSignatureFormat, k.Size(), len(sig))
	}

	h := sha256.Sum256(msg)
	err = rsa.VerifyPSS(k, crypto.SHA256, h[:], sig, &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash})
	if errors.Is(err, rsa.ErrVerification) {
		return false, nil
	}
	return err == nil, err
}

func checkRSABits(bits int) error {
	if bits < MinRSABits || bits > MaxRSABits {
		return fmt.Errorf("%w: rsa modulus %d bits outside [%d, %d]", ErrInvalidKeySize, bits, MinRSABits, MaxRSABits)
	}
	return nil
}

func rsaPrivate(priv []byte) (*rsa.PrivateKey, error) {
	if len(priv) == 0 {
		return nil, fmt.Errorf("%w: empty rsa private key", ErrInvalidKeySize)
	}
	k, err := x509.ParsePKCS1PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	if err := checkRSABits(k.N.BitLen()); err != nil {
		return nil, err
	}
	return k, nil
}

func rsaPublic(pub []byte) (*rsa.PublicKey, error) {
	if len(pub) == 0 {
		return nil, fmt.Errorf("%w: empty rsa public key", ErrInvalidKeySize)
	}
	k, err := x509.ParsePKCS1PublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if err := checkRSABits(k.N.BitLen()); err != nil {
		return nil, err
	}
	return k, nil
}
