package crypto

import (
	"errors"
	"testing"

	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
)

// fakeFalcon 测试用的可插拔实现
type fakeFalcon struct{}

func (fakeFalcon) Algorithm() Algorithm { return Falcon }

func (fakeFalcon) GenerateKey(src entropy.Source, _ GenerateOptions) ([]byte, []byte, error) {
	priv, err := entropy.Bytes(src, 1281)
	if err != nil {
		return nil, nil, err
	}
	return append([]byte(nil), priv[:897]...), priv, nil
}

func (fakeFalcon) PublicKey(priv []byte) ([]byte, error) {
	if len(priv) != 1281 {
		return nil, ErrInvalidKeySize
	}
	return append([]byte(nil), priv[:897]...), nil
}

func (fakeFalcon) CheckPublicKey(pub []byte) error {
	if len(pub) != 897 {
		return ErrInvalidKeySize
	}
	return nil
}

func (fakeFalcon) Sign(priv, msg []byte, _ entropy.Source) ([]byte, error) {
	return append([]byte{byte(len(msg))}, priv[:8]...), nil
}

func (fakeFalcon) Verify(pub, msg, sig []byte) (bool, error) {
	return sig[0] == byte(len(msg)), nil
}

// kemOnly 用于注册校验：bare 包装后只剩 Provider 方法
type kemOnly struct{ fakeFalcon }

func (kemOnly) Algorithm() Algorithm { return Dilithium }

func TestRegistry_Register(t *testing.T) {
	if err := Register(fakeFalcon{}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	defer Unregister(Falcon)

	id, err := Generate(Falcon, nil)
	if err != nil {
		t.Fatalf("Generate(falcon) error = %v", err)
	}
	defer id.Destroy()

	sig, err := id.Sign([]byte("abc"))
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	ok, err := id.Verify([]byte("abc"), sig)
	if err != nil || !ok {
		t.Errorf("Verify() = %v, %v", ok, err)
	}

	// 变长签名：空签名和超长签名是格式错误
	if _, err := id.Verify([]byte("abc"), nil); !errors.Is(err, ErrInvalidSignatureFormat) {
		t.Errorf("Verify(empty) error = %v", err)
	}
	if _, err := id.Verify([]byte("abc"), make([]byte, 667)); !errors.Is(err, ErrInvalidSignatureFormat) {
		t.Errorf("Verify(oversize) error = %v", err)
	}
}

func TestRegistry_RegisterMissingCapability(t *testing.T) {
	type bare struct{ Provider }
	err := Register(bare{kemOnly{}})
	if !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("Register(no signer) error = %v", err)
	}
}

func TestRegistry_Available(t *testing.T) {
	got := Available()
	want := []Algorithm{RSA, Ed25519, Secp256k1, ECDSAP256, Dilithium, SPHINCSPlus, Kyber}
	if len(got) != len(want) {
		t.Fatalf("Available() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Available()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRegistry_Capabilities(t *testing.T) {
	tests := []struct {
		alg  Algorithm
		want Capability
	}{
		{Ed25519, CapSign | CapVerify},
		{Secp256k1, CapSign | CapVerify | CapKeyExchange},
		{Kyber, CapKEM},
		{SPHINCSPlus, CapSign | CapVerify},
		{Falcon, 0},
	}
	for _, tt := range tests {
		if got := Capabilities(tt.alg); got != tt.want {
			t.Errorf("Capabilities(%s) = %s, want %s", tt.alg, got, tt.want)
		}
	}
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in   string
		want Algorithm
	}{
		{"ed25519", Ed25519},
		{"ED25519", Ed25519},
		{"p-256", ECDSAP256},
		{"kyber", Kyber},
		{"sphincs+", SPHINCSPlus},
		{" rsa ", RSA},
	}
	for _, tt := range tests {
		got, err := ParseAlgorithm(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseAlgorithm(%q) = %v, %v", tt.in, got, err)
		}
	}

	if _, err := ParseAlgorithm("md5"); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("ParseAlgorithm(md5) error = %v", err)
	}

	var a Algorithm
	if err := a.UnmarshalText([]byte("falcon512")); err != nil || a != Falcon || !a.Experimental() {
		t.Errorf("UnmarshalText(falcon512) = %v, %v", a, err)
	}
	if _, err := Algorithm(0).MarshalText(); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("MarshalText(0) error = %v", err)
	}
}
