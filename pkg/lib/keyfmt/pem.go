package keyfmt

import (
	"bytes"
	"encoding/pem"
	"fmt"
	"strings"
	"time"

	"github.com/dep2p/go-keyvault/pkg/lib/crypto"
	"github.com/dep2p/go-keyvault/pkg/lib/secmem"
)

// PEM 头
const (
	HeaderAlgorithm = "Algorithm"
	HeaderKeyPart   = "Key-Part"

	// HeaderIdentityID 和 HeaderCreated 只出现在 EncodeIdentity 的输出中
	HeaderIdentityID = "Identity-Id"
	HeaderCreated    = "Created"
)

// labelNames 算法在 PEM 标签中的名称
var labelNames = map[crypto.Algorithm]string{
	crypto.RSA:         "RSA",
	crypto.Ed25519:     "ED25519",
	crypto.Secp256k1:   "SECP256K1",
	crypto.ECDSAP256:   "EC P256",
	crypto.Dilithium:   "DILITHIUM3",
	crypto.SPHINCSPlus: "SPHINCS+",
	crypto.Falcon:      "FALCON",
	crypto.Kyber:       "KYBER768",
}

// Label 返回算法和密钥部分对应的 PEM 标签
func Label(alg crypto.Algorithm, which crypto.KeyPart) (string, error) {
	name, ok := labelNames[alg]
	if !ok {
		return "", fmt.Errorf("%w: %d", crypto.ErrUnknownAlgorithm, uint8(alg))
	}
	switch which {
	case crypto.PublicPart:
		return name + " PUBLIC KEY", nil
	case crypto.PrivatePart:
		return name + " PRIVATE KEY", nil
	default:
		return "", fmt.Errorf("%w: %s", crypto.ErrInvalidKeyPart, which)
	}
}

// ParseLabel 解析 PEM 标签
func ParseLabel(label string) (crypto.Algorithm, crypto.KeyPart, error) {
	var (
		which crypto.KeyPart
		name  string
	)
	switch {
	case strings.HasSuffix(label, " PUBLIC KEY"):
		which, name = crypto.PublicPart, strings.TrimSuffix(label, " PUBLIC KEY")
	case strings.HasSuffix(label, " PRIVATE KEY"):
		which, name = crypto.PrivatePart, strings.TrimSuffix(label, " PRIVATE KEY")
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}

	for alg, n := range labelNames {
		if n == name {
			return alg, which, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
}

// ============================================================================
//                              编解码
// ============================================================================

// Encode 把原始密钥字节编码为 PEM
//
// 不检查密钥结构，只要求非空；结构校验在导入时进行。
func Encode(raw []byte, alg crypto.Algorithm, which crypto.KeyPart) ([]byte, error) {
	return encode(raw, alg, which, nil)
}

func encode(raw []byte, alg crypto.Algorithm, which crypto.KeyPart, extra map[string]string) ([]byte, error) {
	label, err := Label(alg, which)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidKeyFormat)
	}

	block := &pem.Block{
		Type: label,
		Headers: map[string]string{
			HeaderAlgorithm: alg.String(),
			HeaderKeyPart:   which.String(),
		},
		Bytes: raw,
	}
	for k, v := range extra {
		block.Headers[k] = v
	}
	return pem.EncodeToMemory(block), nil
}

// Decode 解析 PEM 文本
//
// 输入必须恰好是一个 PEM 块（前后允许空白）。
func Decode(text []byte) ([]byte, crypto.Algorithm, crypto.KeyPart, error) {
	block, alg, which, err := decode(text)
	if err != nil {
		return nil, 0, 0, err
	}
	return block.Bytes, alg, which, nil
}

func decode(text []byte) (*pem.Block, crypto.Algorithm, crypto.KeyPart, error) {
	trimmed := bytes.TrimSpace(text)
	if !bytes.HasPrefix(trimmed, []byte("-----BEGIN ")) {
		return nil, 0, 0, fmt.Errorf("%w: missing BEGIN marker", ErrInvalidKeyFormat)
	}

	block, rest := pem.Decode(trimmed)
	if block == nil {
		return nil, 0, 0, fmt.Errorf("%w: malformed PEM envelope", ErrInvalidKeyFormat)
	}
	if len(bytes.TrimSpace(rest)) != 0 {
		return nil, 0, 0, fmt.Errorf("%w: trailing data after PEM block", ErrInvalidKeyFormat)
	}
	if _, ok := block.Headers["Proc-Type"]; ok {
		return nil, 0, 0, ErrEncryptedPEM
	}

	alg, which, err := ParseLabel(block.Type)
	if err != nil {
		return nil, 0, 0, err
	}
	if v, ok := block.Headers[HeaderAlgorithm]; ok {
		if a, err := crypto.ParseAlgorithm(v); err != nil || a != alg {
			return nil, 0, 0, fmt.Errorf("%w: %s=%q", ErrHeaderMismatch, HeaderAlgorithm, v)
		}
	}
	if v, ok := block.Headers[HeaderKeyPart]; ok {
		if p, err := crypto.ParseKeyPart(v); err != nil || p != which {
			return nil, 0, 0, fmt.Errorf("%w: %s=%q", ErrHeaderMismatch, HeaderKeyPart, v)
		}
	}
	if len(block.Bytes) == 0 {
		return nil, 0, 0, fmt.Errorf("%w: empty PEM body", ErrInvalidKeyFormat)
	}

	return block, alg, which, nil
}

// EncodeIdentity 导出身份的公钥或私钥为 PEM
//
// 输出额外携带身份 ID 和创建时间头，DecodeIdentity 据此恢复。
func EncodeIdentity(id *crypto.Identity, which crypto.KeyPart) ([]byte, error) {
	raw, err := id.ExportRaw(which)
	if err != nil {
		return nil, err
	}
	defer secmem.Wipe(raw)
	return encode(raw, id.Algorithm(), which, map[string]string{
		HeaderIdentityID: id.ID(),
		HeaderCreated:    id.CreatedAt().UTC().Format(time.RFC3339Nano),
	})
}

// DecodeIdentity 解析 PEM 并导入为身份
//
// 显式传入的 WithID / WithCreatedAt 优先于 PEM 头。
func DecodeIdentity(text []byte, opts ...crypto.Option) (*crypto.Identity, error) {
	block, alg, which, err := decode(text)
	if err != nil {
		return nil, err
	}
	defer secmem.Wipe(block.Bytes)

	var meta []crypto.Option
	if v := block.Headers[HeaderIdentityID]; v != "" {
		meta = append(meta, crypto.WithID(v))
	}
	if v := block.Headers[HeaderCreated]; v != "" {
		created, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidKeyFormat, HeaderCreated, v)
		}
		meta = append(meta, crypto.WithCreatedAt(created))
	}
	return crypto.ImportRaw(block.Bytes, alg, which, append(meta, opts...)...)
}
