package keyfmt

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dep2p/go-keyvault/pkg/lib/crypto"
	"github.com/dep2p/go-keyvault/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_AllAvailable(t *testing.T) {
	for _, alg := range crypto.Available() {
		alg := alg
		t.Run(alg.String(), func(t *testing.T) {
			id, err := crypto.Generate(alg, nil)
			require.NoError(t, err)
			defer id.Destroy()

			for _, which := range []crypto.KeyPart{crypto.PublicPart, crypto.PrivatePart} {
				text, err := EncodeIdentity(id, which)
				require.NoError(t, err)

				label, _ := Label(alg, which)
				assert.True(t, bytes.HasPrefix(text, []byte("-----BEGIN "+label+"-----")))

				raw, gotAlg, gotPart, err := Decode(text)
				require.NoError(t, err)
				assert.Equal(t, alg, gotAlg)
				assert.Equal(t, which, gotPart)

				want, _ := id.ExportRaw(which)
				assert.Equal(t, want, raw)

				imported, err := DecodeIdentity(text)
				require.NoError(t, err)
				assert.True(t, imported.PublicKey().Equals(id.PublicKey()))
				assert.Equal(t, which == crypto.PrivatePart, imported.HasPrivateKey())
				assert.Equal(t, id.ID(), imported.ID())
				assert.True(t, id.CreatedAt().Equal(imported.CreatedAt()))
				imported.Destroy()
			}
		})
	}
}

func TestDecodeIdentity_BadCreatedHeader(t *testing.T) {
	id, err := crypto.Generate(crypto.Ed25519, nil)
	require.NoError(t, err)
	defer id.Destroy()

	text, err := EncodeIdentity(id, crypto.PublicPart)
	require.NoError(t, err)
	text = bytes.Replace(text, []byte(HeaderCreated+": "), []byte(HeaderCreated+": yesterday-"), 1)

	_, err = DecodeIdentity(text)
	assert.ErrorIs(t, err, ErrInvalidKeyFormat)
}

func TestDecodeIdentity_SPHINCSPlusSignsAfterRoundTrip(t *testing.T) {
	id, err := crypto.Generate(crypto.SPHINCSPlus, nil)
	require.NoError(t, err)
	defer id.Destroy()

	text, err := EncodeIdentity(id, crypto.PrivatePart)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(text, []byte("-----BEGIN SPHINCS+ PRIVATE KEY-----")))

	imported, err := DecodeIdentity(text)
	require.NoError(t, err)
	defer imported.Destroy()

	sig, err := imported.Sign([]byte("hello"))
	require.NoError(t, err)
	assert.Len(t, sig, 7856)
	ok, err := id.Verify([]byte("hello"), sig)
	require.NoError(t, err)
	assert.True(t, ok)

	// 篡改公钥根的私钥不能导入
	raw, _, _, err := Decode(text)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01
	bad, err := Encode(raw, crypto.SPHINCSPlus, crypto.PrivatePart)
	require.NoError(t, err)
	_, err = DecodeIdentity(bad)
	assert.ErrorIs(t, err, types.ErrInvalidKeyFormat)
}

func TestEncode_LabelsForUnavailable(t *testing.T) {
	text, err := Encode(make([]byte, 897), crypto.Falcon, crypto.PublicPart)
	require.NoError(t, err)
	assert.Contains(t, string(text), "-----BEGIN FALCON PUBLIC KEY-----")

	raw, alg, which, err := Decode(text)
	require.NoError(t, err)
	assert.Len(t, raw, 897)
	assert.Equal(t, crypto.Falcon, alg)
	assert.Equal(t, crypto.PublicPart, which)

	// 封装合法但算法没有实现
	_, err = DecodeIdentity(text)
	assert.ErrorIs(t, err, types.ErrUnsupportedFeature)
}

func TestEncode_Invalid(t *testing.T) {
	_, err := Encode(nil, crypto.Ed25519, crypto.PublicPart)
	assert.ErrorIs(t, err, ErrInvalidKeyFormat)

	_, err = Encode([]byte{1}, crypto.Algorithm(99), crypto.PublicPart)
	assert.ErrorIs(t, err, crypto.ErrUnknownAlgorithm)

	_, err = Encode([]byte{1}, crypto.Ed25519, crypto.KeyPart(0))
	assert.ErrorIs(t, err, crypto.ErrInvalidKeyPart)
}

func TestDecode_Malformed(t *testing.T) {
	good, err := Encode(bytes.Repeat([]byte{1}, 32), crypto.Ed25519, crypto.PublicPart)
	require.NoError(t, err)
	s := string(good)

	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", ErrInvalidKeyFormat},
		{"garbage", "not a pem", ErrInvalidKeyFormat},
		{"preamble", "junk\n" + s, ErrInvalidKeyFormat},
		{"trailing", s + "trailing", ErrInvalidKeyFormat},
		{"two blocks", s + s, ErrInvalidKeyFormat},
		{"mismatched end", strings.Replace(s, "END ED25519", "END RSA", 1), ErrInvalidKeyFormat},
		{"bad base64", strings.Replace(s, "AQEB", "!!!!", 1), ErrInvalidKeyFormat},
		{"unknown label", strings.ReplaceAll(s, "ED25519 PUBLIC", "X448 PUBLIC"), ErrUnknownLabel},
		{"header mismatch", strings.Replace(s, "Algorithm: ed25519", "Algorithm: rsa", 1), ErrHeaderMismatch},
		{"part mismatch", strings.Replace(s, "Key-Part: public", "Key-Part: private", 1), ErrHeaderMismatch},
		{"encrypted", strings.Replace(s, "Algorithm: ed25519", "Proc-Type: 4,ENCRYPTED\nAlgorithm: ed25519", 1), ErrEncryptedPEM},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := Decode([]byte(tt.in))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, types.KindInput, types.KindOf(err))

			_, err = DecodeIdentity([]byte(tt.in))
			assert.ErrorIs(t, err, types.ErrInvalidKeyFormat)
		})
	}
}

func TestDecode_SurroundingWhitespace(t *testing.T) {
	good, err := Encode(bytes.Repeat([]byte{2}, 32), crypto.Ed25519, crypto.PublicPart)
	require.NoError(t, err)

	_, alg, _, err := Decode(append(append([]byte("\n\n  "), good...), '\n', '\n'))
	require.NoError(t, err)
	assert.Equal(t, crypto.Ed25519, alg)
}

func TestDecode_WithoutHeaders(t *testing.T) {
	text := "-----BEGIN EC P256 PUBLIC KEY-----\nAQID\n-----END EC P256 PUBLIC KEY-----\n"
	raw, alg, which, err := Decode([]byte(text))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, raw)
	assert.Equal(t, crypto.ECDSAP256, alg)
	assert.Equal(t, crypto.PublicPart, which)

	// 长度错误在导入时才报告
	_, err = DecodeIdentity([]byte(text))
	assert.ErrorIs(t, err, crypto.ErrInvalidKeySize)
}

func TestParseLabel(t *testing.T) {
	for alg := range labelNames {
		for _, which := range []crypto.KeyPart{crypto.PublicPart, crypto.PrivatePart} {
			label, err := Label(alg, which)
			require.NoError(t, err)
			gotAlg, gotPart, err := ParseLabel(label)
			require.NoError(t, err)
			assert.Equal(t, alg, gotAlg)
			assert.Equal(t, which, gotPart)
		}
	}
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id.pem")
	data := []byte("-----BEGIN X-----\n-----END X-----\n")

	require.NoError(t, WriteFile(path, data))
	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.pem"))
	assert.ErrorIs(t, err, types.ErrNotFound)
}
