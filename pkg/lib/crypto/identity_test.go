package crypto

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
	"github.com/dep2p/go-keyvault/pkg/types"
)

// signers 有内置实现的签名算法
var signers = []Algorithm{RSA, Ed25519, Secp256k1, ECDSAP256, Dilithium, SPHINCSPlus}

// flipPositions 返回要翻转的比特位置
//
// 经典签名逐比特翻转；后量子签名数千字节，每个字节抽一位，并覆盖首尾。
func flipPositions(alg Algorithm, sigLen int) []int {
	var bits []int
	switch alg {
	case Ed25519, Secp256k1, ECDSAP256:
		for i := 0; i < sigLen*8; i++ {
			bits = append(bits, i)
		}
	case RSA:
		for i := 0; i < sigLen; i++ {
			bits = append(bits, i*8+i%8)
		}
	default:
		step := sigLen / 64
		for i := 0; i < sigLen; i += step {
			bits = append(bits, i*8+(i/step)%8)
		}
		bits = append(bits, (sigLen-1)*8+7)
	}
	return bits
}

func mustGenerate(t *testing.T, alg Algorithm) *Identity {
	t.Helper()
	id, err := Generate(alg, nil)
	if err != nil {
		t.Fatalf("Generate(%s) error = %v", alg, err)
	}
	t.Cleanup(id.Destroy)
	return id
}

func TestEd25519_HelloScenario(t *testing.T) {
	id := mustGenerate(t, Ed25519)
	msg := []byte("hello")

	sig, err := id.Sign(msg)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if len(sig) != 64 {
		t.Fatalf("Sign() len = %d, want 64", len(sig))
	}

	pub := id.PublicKey().Raw()
	ok, err := Verify(Ed25519, pub, msg, sig)
	if err != nil || !ok {
		t.Fatalf("Verify() = %v, %v, want true, nil", ok, err)
	}

	// 翻转一个字节
	bad := append([]byte(nil), sig...)
	bad[10] ^= 0x01
	ok, err = Verify(Ed25519, pub, msg, bad)
	if err != nil || ok {
		t.Errorf("Verify(flipped) = %v, %v, want false, nil", ok, err)
	}

	// 截断签名
	_, err = Verify(Ed25519, pub, msg, sig[:63])
	if !errors.Is(err, ErrInvalidSignatureFormat) {
		t.Errorf("Verify(truncated) error = %v, want ErrInvalidSignatureFormat", err)
	}
	if types.KindOf(err) != types.KindInput {
		t.Errorf("KindOf(truncated) = %v, want InputError", types.KindOf(err))
	}
}

func TestIdentity_SignVerifyAll(t *testing.T) {
	for _, alg := range signers {
		alg := alg
		t.Run(alg.String(), func(t *testing.T) {
			id := mustGenerate(t, alg)
			msg := []byte("keyvault test message")

			sig, err := id.Sign(msg)
			if err != nil {
				t.Fatalf("Sign() error = %v", err)
			}

			ok, err := id.Verify(msg, sig)
			if err != nil || !ok {
				t.Fatalf("Verify() = %v, %v, want true, nil", ok, err)
			}

			ok, _ = id.Verify([]byte("another message"), sig)
			if ok {
				t.Error("Verify(wrong message) = true, want false")
			}

			// 签名任意一位翻转都不能通过验证
			bad := append([]byte(nil), sig...)
			for _, bit := range flipPositions(alg, len(sig)) {
				mask := byte(1) << (bit % 8)
				bad[bit/8] ^= mask
				ok, err := id.Verify(msg, bad)
				bad[bit/8] ^= mask
				if ok {
					t.Fatalf("Verify(flip bit %d) = true, err = %v", bit, err)
				}
			}
		})
	}
}

func TestIdentity_ExportImportRoundTrip(t *testing.T) {
	for _, alg := range append(append([]Algorithm(nil), signers...), Kyber) {
		alg := alg
		t.Run(alg.String(), func(t *testing.T) {
			id := mustGenerate(t, alg)

			priv, err := id.ExportRaw(PrivatePart)
			if err != nil {
				t.Fatalf("ExportRaw(private) error = %v", err)
			}
			pub, err := ExportRaw(id, PublicPart)
			if err != nil {
				t.Fatalf("ExportRaw(public) error = %v", err)
			}

			imported, err := ImportRaw(priv, alg, PrivatePart)
			if err != nil {
				t.Fatalf("ImportRaw(private) error = %v", err)
			}
			defer imported.Destroy()

			priv2, _ := imported.ExportRaw(PrivatePart)
			if !bytes.Equal(priv, priv2) {
				t.Error("private key changed after export/import")
			}
			if !imported.PublicKey().Equals(id.PublicKey()) {
				t.Error("derived public key differs")
			}

			pubOnly, err := ImportRaw(pub, alg, PublicPart)
			if err != nil {
				t.Fatalf("ImportRaw(public) error = %v", err)
			}
			if pubOnly.HasPrivateKey() {
				t.Error("public-only identity reports a private key")
			}
			if _, err := pubOnly.ExportRaw(PrivatePart); !errors.Is(err, ErrNoPrivateKey) {
				t.Errorf("ExportRaw(private) on public identity error = %v", err)
			}
			if pubOnly.Fingerprint() != id.Fingerprint() {
				t.Error("fingerprint differs between identities with the same public key")
			}
		})
	}
}

func TestIdentity_ImportWrongSize(t *testing.T) {
	for _, alg := range []Algorithm{Ed25519, Secp256k1, ECDSAP256, Dilithium, Kyber} {
		_, err := ImportRaw(make([]byte, 7), alg, PrivatePart)
		if !errors.Is(err, ErrInvalidKeySize) {
			t.Errorf("%s: ImportRaw(7 bytes) error = %v, want ErrInvalidKeySize", alg, err)
		}
		_, err = ImportRaw(make([]byte, 7), alg, PublicPart)
		if !errors.Is(err, ErrInvalidKeySize) {
			t.Errorf("%s: ImportRaw(public 7 bytes) error = %v, want ErrInvalidKeySize", alg, err)
		}
	}

	if _, err := ImportRaw([]byte{1, 2, 3}, RSA, PrivatePart); !errors.Is(err, types.ErrInvalidKeyFormat) {
		t.Errorf("rsa: ImportRaw(garbage) error = %v, want ErrInvalidKeyFormat", err)
	}
	if _, err := ImportRaw(make([]byte, 32), Ed25519, KeyPart(9)); !errors.Is(err, ErrInvalidKeyPart) {
		t.Errorf("ImportRaw(bad part) error = %v", err)
	}
}

func TestIdentity_Ed25519Mismatch(t *testing.T) {
	id := mustGenerate(t, Ed25519)
	priv, _ := id.ExportRaw(PrivatePart)
	priv[40] ^= 0xFF

	if _, err := ImportRaw(priv, Ed25519, PrivatePart); !errors.Is(err, ErrKeyMismatch) {
		t.Errorf("ImportRaw(tampered) error = %v, want ErrKeyMismatch", err)
	}
}

func TestIdentity_Secp256k1ScalarRange(t *testing.T) {
	zero := make([]byte, 32)
	if _, err := ImportRaw(zero, Secp256k1, PrivatePart); !errors.Is(err, ErrInvalidPrivateKey) {
		t.Errorf("ImportRaw(zero) error = %v, want ErrInvalidPrivateKey", err)
	}

	over := bytes.Repeat([]byte{0xFF}, 32)
	if _, err := ImportRaw(over, Secp256k1, PrivatePart); !errors.Is(err, ErrInvalidPrivateKey) {
		t.Errorf("ImportRaw(overflow) error = %v, want ErrInvalidPrivateKey", err)
	}
}

func TestIdentity_MalformedSignature(t *testing.T) {
	id := mustGenerate(t, Secp256k1)
	msg := []byte("m")

	// r = 0
	sig := make([]byte, 64)
	sig[63] = 1
	if _, err := id.Verify(msg, sig); !errors.Is(err, ErrInvalidSignatureFormat) {
		t.Errorf("Verify(r=0) error = %v", err)
	}

	p := mustGenerate(t, ECDSAP256)
	big := bytes.Repeat([]byte{0xFF}, 64)
	if _, err := p.Verify(msg, big); !errors.Is(err, ErrInvalidSignatureFormat) {
		t.Errorf("p256 Verify(r>=N) error = %v", err)
	}

	r := mustGenerate(t, RSA)
	if _, err := r.Verify(msg, make([]byte, 10)); !errors.Is(err, ErrInvalidSignatureFormat) {
		t.Errorf("rsa Verify(short) error = %v", err)
	}
}

func TestIdentity_Kyber(t *testing.T) {
	id := mustGenerate(t, Kyber)

	if _, err := id.Sign([]byte("x")); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("Sign() error = %v, want ErrUnsupportedOperation", err)
	}
	if _, err := Verify(Kyber, id.PublicKey().Raw(), []byte("x"), []byte("y")); !errors.Is(err, types.ErrUnsupportedFeature) {
		t.Errorf("Verify() error = %v, want UnsupportedFeature", err)
	}

	ct, ss, err := id.PublicKey().Encapsulate(nil)
	if err != nil {
		t.Fatalf("Encapsulate() error = %v", err)
	}
	if len(ct) != KyberCiphertextSize || len(ss) != KyberSharedSecretSize {
		t.Fatalf("Encapsulate() sizes = %d/%d", len(ct), len(ss))
	}

	got, err := id.Decapsulate(ct)
	if err != nil {
		t.Fatalf("Decapsulate() error = %v", err)
	}
	if !bytes.Equal(ss, got) {
		t.Error("Decapsulate() shared secret differs")
	}

	// 篡改密文得到不同的共享密钥
	ct[0] ^= 0x01
	got, err = id.Decapsulate(ct)
	if err != nil {
		t.Fatalf("Decapsulate(tampered) error = %v", err)
	}
	if bytes.Equal(ss, got) {
		t.Error("Decapsulate(tampered) returned original secret")
	}

	if _, err := id.Decapsulate(ct[:100]); !errors.Is(err, ErrInvalidCiphertext) {
		t.Errorf("Decapsulate(short) error = %v", err)
	}

	ed := mustGenerate(t, Ed25519)
	if _, _, err := ed.PublicKey().Encapsulate(nil); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("ed25519 Encapsulate() error = %v", err)
	}
}

func TestIdentity_SharedSecret(t *testing.T) {
	for _, alg := range []Algorithm{Secp256k1, ECDSAP256} {
		a := mustGenerate(t, alg)
		b := mustGenerate(t, alg)

		s1, err := a.SharedSecret(b.PublicKey().Raw())
		if err != nil {
			t.Fatalf("%s: SharedSecret() error = %v", alg, err)
		}
		s2, err := b.SharedSecret(a.PublicKey().Raw())
		if err != nil {
			t.Fatalf("%s: SharedSecret() error = %v", alg, err)
		}
		if !bytes.Equal(s1, s2) || len(s1) != 32 {
			t.Errorf("%s: shared secrets differ", alg)
		}
		if !a.Capabilities().Has(CapKeyExchange) {
			t.Errorf("%s: missing key-exchange capability", alg)
		}
	}

	ed := mustGenerate(t, Ed25519)
	if _, err := ed.SharedSecret(make([]byte, 32)); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("ed25519 SharedSecret() error = %v", err)
	}
}

func TestIdentity_Unavailable(t *testing.T) {
	for _, alg := range []Algorithm{Falcon} {
		_, err := Generate(alg, nil)
		if !errors.Is(err, ErrAlgorithmUnavailable) {
			t.Errorf("Generate(%s) error = %v, want ErrAlgorithmUnavailable", alg, err)
		}
		if types.KindOf(err) != types.KindUnsupported {
			t.Errorf("KindOf = %v", types.KindOf(err))
		}
		if _, err := Verify(alg, nil, nil, nil); !errors.Is(err, types.ErrUnsupportedFeature) {
			t.Errorf("Verify(%s) error = %v", alg, err)
		}
	}

	if _, err := Generate(Algorithm(42), nil); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("Generate(42) error = %v", err)
	}
}

func TestIdentity_RandomnessFailure(t *testing.T) {
	for _, alg := range append(append([]Algorithm(nil), signers...), Kyber) {
		_, err := Generate(alg, entropy.Exhausted())
		if !errors.Is(err, ErrRandomnessFailure) {
			t.Errorf("Generate(%s, exhausted) error = %v, want ErrRandomnessFailure", alg, err)
		}
	}
}

func TestIdentity_Deterministic(t *testing.T) {
	seed := [32]byte{7}
	a, err := Generate(Ed25519, entropy.Deterministic(seed), WithID("a"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(Ed25519, entropy.Deterministic(seed), WithID("b"))
	if err != nil {
		t.Fatal(err)
	}
	if !a.PublicKey().Equals(b.PublicKey()) {
		t.Error("same seed produced different keys")
	}
}

func TestIdentity_RSABits(t *testing.T) {
	if _, err := Generate(RSA, nil, WithRSABits(1024)); !errors.Is(err, ErrInvalidKeySize) {
		t.Errorf("Generate(rsa 1024) error = %v", err)
	}
}

func TestIdentity_Destroy(t *testing.T) {
	id := mustGenerate(t, Ed25519)
	id.Destroy()
	id.Destroy()

	if !id.Destroyed() || id.HasPrivateKey() {
		t.Fatal("identity not destroyed")
	}
	if _, err := id.Sign([]byte("x")); !errors.Is(err, ErrIdentityDestroyed) {
		t.Errorf("Sign() after Destroy error = %v", err)
	}
	if _, err := id.ExportRaw(PrivatePart); !errors.Is(err, ErrIdentityDestroyed) {
		t.Errorf("ExportRaw() after Destroy error = %v", err)
	}
	// 公钥仍可用
	if len(id.PublicKey().Raw()) != Ed25519PublicKeySize {
		t.Error("public key lost after Destroy")
	}
}

func TestIdentity_Metadata(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

	id, err := Generate(Ed25519, nil, WithClock(mock))
	if err != nil {
		t.Fatal(err)
	}
	defer id.Destroy()

	if !id.CreatedAt().Equal(mock.Now()) {
		t.Errorf("CreatedAt() = %v, want %v", id.CreatedAt(), mock.Now())
	}
	if id.ID() == "" {
		t.Error("ID() is empty")
	}
	if id.Algorithm() != Ed25519 {
		t.Errorf("Algorithm() = %v", id.Algorithm())
	}
	s := id.String()
	if !bytes.Contains([]byte(s), []byte(id.Fingerprint())) {
		t.Errorf("String() = %q missing fingerprint", s)
	}
}

func TestParseKeyPart(t *testing.T) {
	tests := []struct {
		in      string
		want    KeyPart
		wantErr bool
	}{
		{"public", PublicPart, false},
		{"PRIV", PrivatePart, false},
		{"both", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseKeyPart(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseKeyPart(%q) = %v, %v", tt.in, got, err)
		}
	}
}
