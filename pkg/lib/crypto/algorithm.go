package crypto

import (
	"fmt"
	"strings"
)

// ============================================================================
//                              算法定义
// ============================================================================

// Algorithm 算法标识
//
// 数值会被持久化（PEM 头、存储记录），不可改动：
//   - RSA = 1
//   - Ed25519 = 2
//   - Secp256k1 = 3
//   - ECDSAP256 = 4
//   - Dilithium = 5
//   - SPHINCSPlus = 6
//   - Falcon = 7
//   - Kyber = 8
type Algorithm uint8

const (
	// Unspecified 未指定
	Unspecified Algorithm = 0
	// RSA RSA-PSS-SHA256
	RSA Algorithm = 1
	// Ed25519 Ed25519（默认推荐）
	Ed25519 Algorithm = 2
	// Secp256k1 ECDSA secp256k1（区块链兼容）
	Secp256k1 Algorithm = 3
	// ECDSAP256 ECDSA P-256
	ECDSAP256 Algorithm = 4
	// Dilithium Dilithium3
	Dilithium Algorithm = 5
	// SPHINCSPlus SPHINCS+-SHA2-128s
	SPHINCSPlus Algorithm = 6
	// Falcon Falcon-512（实验性，未标准化）
	Falcon Algorithm = 7
	// Kyber Kyber768（仅 KEM）
	Kyber Algorithm = 8
)

// Algorithms 所有已知算法
var Algorithms = []Algorithm{RSA, Ed25519, Secp256k1, ECDSAP256, Dilithium, SPHINCSPlus, Falcon, Kyber}

// Capability 能力集
type Capability uint8

const (
	// CapSign 签名
	CapSign Capability = 1 << iota
	// CapVerify 验证
	CapVerify
	// CapKeyExchange 密钥协商（ECDH）
	CapKeyExchange
	// CapKEM 密钥封装
	CapKEM
)

// Has 是否包含 c 中的全部能力
func (c Capability) Has(other Capability) bool {
	return c&other == other
}

// String 返回能力名称列表
func (c Capability) String() string {
	var parts []string
	if c.Has(CapSign) {
		parts = append(parts, "sign")
	}
	if c.Has(CapVerify) {
		parts = append(parts, "verify")
	}
	if c.Has(CapKeyExchange) {
		parts = append(parts, "key-exchange")
	}
	if c.Has(CapKEM) {
		parts = append(parts, "kem")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// AlgorithmInfo 算法元数据
//
// 大小为 0 表示可变（RSA）或不适用。
type AlgorithmInfo struct {
	Algorithm        Algorithm
	Name             string
	Capabilities     Capability
	PublicKeySize    int
	PrivateKeySize   int
	SignatureSize    int
	MaxSignatureSize int
	CiphertextSize   int
	SharedSecretSize int
	Standardized     bool
	Experimental     bool
}

var signVerify = CapSign | CapVerify

var algorithmInfos = map[Algorithm]AlgorithmInfo{
	RSA: {
		Algorithm: RSA, Name: "rsa",
		Capabilities: signVerify, Standardized: true,
	},
	Ed25519: {
		Algorithm: Ed25519, Name: "ed25519",
		Capabilities:  signVerify,
		PublicKeySize: 32, PrivateKeySize: 64, SignatureSize: 64,
		Standardized: true,
	},
	Secp256k1: {
		Algorithm: Secp256k1, Name: "secp256k1",
		Capabilities:  signVerify | CapKeyExchange,
		PublicKeySize: 33, PrivateKeySize: 32, SignatureSize: 64, SharedSecretSize: 32,
		Standardized: true,
	},
	ECDSAP256: {
		Algorithm: ECDSAP256, Name: "ecdsa-p256",
		Capabilities:  signVerify | CapKeyExchange,
		PublicKeySize: 65, PrivateKeySize: 32, SignatureSize: 64, SharedSecretSize: 32,
		Standardized: true,
	},
	Dilithium: {
		Algorithm: Dilithium, Name: "dilithium3",
		Capabilities:  signVerify,
		PublicKeySize: 1952, PrivateKeySize: 4032, SignatureSize: 3293,
		Standardized: true,
	},
	SPHINCSPlus: {
		Algorithm: SPHINCSPlus, Name: "sphincs+",
		Capabilities:  signVerify,
		PublicKeySize: 32, PrivateKeySize: 64, SignatureSize: 7856,
		Standardized: true,
	},
	Falcon: {
		Algorithm: Falcon, Name: "falcon512",
		Capabilities:  signVerify,
		PublicKeySize: 897, PrivateKeySize: 1281, MaxSignatureSize: 666,
		Experimental: true,
	},
	Kyber: {
		Algorithm: Kyber, Name: "kyber768",
		Capabilities:  CapKEM,
		PublicKeySize: 1184, PrivateKeySize: 2400, CiphertextSize: 1088, SharedSecretSize: 32,
		Standardized: true,
	},
}

var algorithmAliases = map[string]Algorithm{
	"ecdsa-secp256k1": Secp256k1,
	"p256":            ECDSAP256,
	"p-256":           ECDSAP256,
	"ecdsa":           ECDSAP256,
	"dilithium":       Dilithium,
	"sphincsplus":     SPHINCSPlus,
	"sphincs":         SPHINCSPlus,
	"falcon":          Falcon,
	"kyber":           Kyber,
}

// Info 返回算法元数据
func (a Algorithm) Info() (AlgorithmInfo, bool) {
	info, ok := algorithmInfos[a]
	return info, ok
}

// Valid 是否为已知算法
func (a Algorithm) Valid() bool {
	_, ok := algorithmInfos[a]
	return ok
}

// String 返回算法名称
func (a Algorithm) String() string {
	if info, ok := algorithmInfos[a]; ok {
		return info.Name
	}
	if a == Unspecified {
		return "unspecified"
	}
	return fmt.Sprintf("algorithm(%d)", uint8(a))
}

// Experimental 是否为实验性算法
func (a Algorithm) Experimental() bool {
	return algorithmInfos[a].Experimental
}

// MarshalText 实现 encoding.TextMarshaler
func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, uint8(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (a *Algorithm) UnmarshalText(text []byte) error {
	alg, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = alg
	return nil
}

// ParseAlgorithm 按名称解析算法（大小写不敏感，接受常见别名）
func ParseAlgorithm(name string) (Algorithm, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for alg, info := range algorithmInfos {
		if info.Name == n {
			return alg, nil
		}
	}
	if alg, ok := algorithmAliases[n]; ok {
		return alg, nil
	}
	return Unspecified, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}
