package seal

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
	"google.golang.org/protobuf/encoding/protowire"
)

// ============================================================================
//                              KDF 标识
// ============================================================================

// KDFID 密钥派生函数标识（持久化值，不可改动）
type KDFID uint8

const (
	// KDFNone 非派生密钥（随机生成）
	KDFNone KDFID = 0
	// KDFArgon2id Argon2id
	KDFArgon2id KDFID = 1
	// KDFScrypt scrypt
	KDFScrypt KDFID = 2
	// KDFPBKDF2SHA256 PBKDF2-HMAC-SHA256
	KDFPBKDF2SHA256 KDFID = 3
	// KDFHKDFSHA256 HKDF-SHA256，只用于从高熵主密钥派生子密钥
	KDFHKDFSHA256 KDFID = 4
)

// String 返回 KDF 名称
func (id KDFID) String() string {
	switch id {
	case KDFNone:
		return "none"
	case KDFArgon2id:
		return "argon2id"
	case KDFScrypt:
		return "scrypt"
	case KDFPBKDF2SHA256:
		return "pbkdf2-sha256"
	case KDFHKDFSHA256:
		return "hkdf-sha256"
	default:
		return fmt.Sprintf("kdf(%d)", uint8(id))
	}
}

// ParseKDF 按名称解析 KDF
func ParseKDF(name string) (KDFID, error) {
	for _, id := range []KDFID{KDFArgon2id, KDFScrypt, KDFPBKDF2SHA256, KDFHKDFSHA256} {
		if id.String() == name {
			return id, nil
		}
	}
	return KDFNone, fmt.Errorf("%w: %q", ErrUnknownKDF, name)
}

// ============================================================================
//                              安全下限与上限
// ============================================================================

// 上限约束从不可信字节（密文块、存储元数据）解码出的参数，
// 防止构造的参数耗尽内存或让派生长时间不返回。

const (
	// MinSaltSize 盐值最小长度
	MinSaltSize = 16
	// MinKeyLen 派生密钥最小长度
	MinKeyLen = 16
	// MaxKeyLen 派生密钥最大长度
	MaxKeyLen = 64

	// MinArgon2Memory Argon2id 最小内存（KiB）
	MinArgon2Memory = 19 * 1024
	// Argon2SingleIterMemory 内存不低于该值（KiB）时允许 1 次迭代，否则至少 2 次
	Argon2SingleIterMemory = 46 * 1024
	// MaxArgon2Memory Argon2id 最大内存（KiB），1 GiB
	MaxArgon2Memory = 1 << 20
	// MaxArgon2Iterations Argon2id 最大迭代次数
	MaxArgon2Iterations = 64
	// MaxArgon2Parallelism Argon2id 最大并行度
	MaxArgon2Parallelism = 255

	// MinScryptN scrypt 最小 N
	MinScryptN = 1 << 15
	// MaxScryptN scrypt 最大 N
	MaxScryptN = 1 << 20
	// MinScryptR scrypt 最小 r
	MinScryptR = 8
	// MaxScryptR scrypt 最大 r
	MaxScryptR = 32
	// MaxScryptP scrypt 最大 p
	MaxScryptP = 16
	// MaxScryptMemory scrypt 内存上限 128·N·r（字节），1 GiB
	MaxScryptMemory = 1 << 30

	// MinPBKDF2Iterations PBKDF2-SHA256 最小迭代次数
	MinPBKDF2Iterations = 600_000
	// MaxPBKDF2Iterations PBKDF2-SHA256 最大迭代次数
	MaxPBKDF2Iterations = 10_000_000

	// MinHKDFSecret HKDF 输入密钥最小长度
	MinHKDFSecret = 32
)

// 默认参数
const (
	DefaultKeyLen            = 32
	DefaultArgon2Memory      = 64 * 1024
	DefaultArgon2Iterations  = 3
	DefaultArgon2Parallelism = 4
	DefaultScryptN           = 1 << 15
	DefaultScryptR           = 8
	DefaultScryptP           = 1
	DefaultPBKDF2Iterations  = MinPBKDF2Iterations
	DefaultSaltSize          = 16
)

// ============================================================================
//                              KDFParams
// ============================================================================

// KDFParams 派生参数
//
// 字段按 KDF 复用：
//   - Argon2id: Memory(KiB), Iterations, Parallelism
//   - scrypt: N, R, Parallelism(p)
//   - PBKDF2: Iterations
//   - HKDF: Info
type KDFParams struct {
	KDF         KDFID  `json:"kdf" yaml:"kdf"`
	Salt        []byte `json:"salt,omitempty" yaml:"-"`
	KeyLen      uint32 `json:"key_len" yaml:"key_len"`
	Memory      uint32 `json:"memory,omitempty" yaml:"memory,omitempty"`
	Iterations  uint32 `json:"iterations,omitempty" yaml:"iterations,omitempty"`
	Parallelism uint32 `json:"parallelism,omitempty" yaml:"parallelism,omitempty"`
	N           uint64 `json:"n,omitempty" yaml:"n,omitempty"`
	R           uint32 `json:"r,omitempty" yaml:"r,omitempty"`
	Info        []byte `json:"info,omitempty" yaml:"-"`
}

// DefaultKDFParams 返回 KDF 的默认参数（不含盐值）
func DefaultKDFParams(id KDFID) KDFParams {
	p := KDFParams{KDF: id, KeyLen: DefaultKeyLen}
	switch id {
	case KDFArgon2id:
		p.Memory = DefaultArgon2Memory
		p.Iterations = DefaultArgon2Iterations
		p.Parallelism = DefaultArgon2Parallelism
	case KDFScrypt:
		p.N = DefaultScryptN
		p.R = DefaultScryptR
		p.Parallelism = DefaultScryptP
	case KDFPBKDF2SHA256:
		p.Iterations = DefaultPBKDF2Iterations
	}
	return p
}

// NewKDFParams 返回默认参数并从熵源生成新盐值
func NewKDFParams(id KDFID, src entropy.Source) (KDFParams, error) {
	p := DefaultKDFParams(id)
	salt, err := entropy.Bytes(src, DefaultSaltSize)
	if err != nil {
		return KDFParams{}, err
	}
	p.Salt = salt
	return p, nil
}

// WithSalt 返回替换了盐值的副本
func (p KDFParams) WithSalt(salt []byte) KDFParams {
	p.Salt = append([]byte(nil), salt...)
	return p
}

// Validate 检查参数是否在安全下限与资源上限之间
func (p KDFParams) Validate() error {
	if p.KeyLen < MinKeyLen || p.KeyLen > MaxKeyLen {
		return fmt.Errorf("%w: key length %d outside [%d, %d]", ErrInvalidParameters, p.KeyLen, MinKeyLen, MaxKeyLen)
	}

	switch p.KDF {
	case KDFArgon2id:
		if len(p.Salt) < MinSaltSize {
			return fmt.Errorf("%w: salt shorter than %d bytes", ErrInvalidParameters, MinSaltSize)
		}
		if p.Memory < MinArgon2Memory || p.Memory > MaxArgon2Memory {
			return fmt.Errorf("%w: argon2id memory %d KiB outside [%d, %d] KiB", ErrInvalidParameters, p.Memory, MinArgon2Memory, MaxArgon2Memory)
		}
		if p.Iterations < 1 || (p.Iterations < 2 && p.Memory < Argon2SingleIterMemory) {
			return fmt.Errorf("%w: argon2id iterations %d too low for %d KiB", ErrInvalidParameters, p.Iterations, p.Memory)
		}
		if p.Iterations > MaxArgon2Iterations {
			return fmt.Errorf("%w: argon2id iterations %d above %d", ErrInvalidParameters, p.Iterations, MaxArgon2Iterations)
		}
		if p.Parallelism < 1 || p.Parallelism > MaxArgon2Parallelism {
			return fmt.Errorf("%w: argon2id parallelism %d outside [1, %d]", ErrInvalidParameters, p.Parallelism, MaxArgon2Parallelism)
		}
	case KDFScrypt:
		if len(p.Salt) < MinSaltSize {
			return fmt.Errorf("%w: salt shorter than %d bytes", ErrInvalidParameters, MinSaltSize)
		}
		if p.N < MinScryptN || p.N > MaxScryptN || p.N&(p.N-1) != 0 {
			return fmt.Errorf("%w: scrypt N must be a power of two in [%d, %d]", ErrInvalidParameters, MinScryptN, MaxScryptN)
		}
		if p.R < MinScryptR || p.R > MaxScryptR {
			return fmt.Errorf("%w: scrypt r %d outside [%d, %d]", ErrInvalidParameters, p.R, MinScryptR, MaxScryptR)
		}
		if p.Parallelism < 1 || p.Parallelism > MaxScryptP {
			return fmt.Errorf("%w: scrypt p %d outside [1, %d]", ErrInvalidParameters, p.Parallelism, MaxScryptP)
		}
		if 128*p.N*uint64(p.R) > MaxScryptMemory {
			return fmt.Errorf("%w: scrypt N=%d r=%d needs more than %d bytes", ErrInvalidParameters, p.N, p.R, MaxScryptMemory)
		}
	case KDFPBKDF2SHA256:
		if len(p.Salt) < MinSaltSize {
			return fmt.Errorf("%w: salt shorter than %d bytes", ErrInvalidParameters, MinSaltSize)
		}
		if p.Iterations < MinPBKDF2Iterations || p.Iterations > MaxPBKDF2Iterations {
			return fmt.Errorf("%w: pbkdf2 iterations %d outside [%d, %d]", ErrInvalidParameters, p.Iterations, MinPBKDF2Iterations, MaxPBKDF2Iterations)
		}
	case KDFHKDFSHA256:
		// HKDF 的盐值可选，强度来自输入密钥
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKDF, p.KDF)
	}
	return nil
}

// ============================================================================
//                              派生
// ============================================================================

// Derive 从口令（或 HKDF 的主密钥）派生对称密钥
//
// 相同 (secret, params) 总是得到相同的密钥字节。参数低于下限时
// 返回 ErrInvalidParameters，不会降级。
func Derive(secret []byte, p KDFParams) (*SymmetricKey, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var key []byte
	switch p.KDF {
	case KDFArgon2id:
		key = argon2.IDKey(secret, p.Salt, p.Iterations, p.Memory, uint8(p.Parallelism), p.KeyLen)
	case KDFScrypt:
		var err error
		key, err = scrypt.Key(secret, p.Salt, int(p.N), int(p.R), int(p.Parallelism), int(p.KeyLen))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
		}
	case KDFPBKDF2SHA256:
		key = pbkdf2.Key(secret, p.Salt, int(p.Iterations), int(p.KeyLen), sha256.New)
	case KDFHKDFSHA256:
		if len(secret) < MinHKDFSecret {
			return nil, fmt.Errorf("%w: hkdf secret shorter than %d bytes", ErrInvalidParameters, MinHKDFSecret)
		}
		key = make([]byte, p.KeyLen)
		if _, err := io.ReadFull(hkdf.New(sha256.New, secret, p.Salt, p.Info), key); err != nil {
			Wipe(key)
			return nil, err
		}
	}

	return NewSymmetricKey(key, p.clone()), nil
}

// DeriveSubkey 用 HKDF-SHA256 从主密钥派生子密钥
func DeriveSubkey(master *SymmetricKey, salt, info []byte) (*SymmetricKey, error) {
	secret := master.Bytes()
	if secret == nil {
		return nil, ErrKeyDestroyed
	}
	return Derive(secret, KDFParams{
		KDF:    KDFHKDFSHA256,
		Salt:   salt,
		KeyLen: DefaultKeyLen,
		Info:   info,
	})
}

// RandomKey 从熵源生成随机对称密钥
func RandomKey(src entropy.Source, n int) (*SymmetricKey, error) {
	raw, err := entropy.Bytes(src, n)
	if err != nil {
		return nil, err
	}
	return NewSymmetricKey(raw, KDFParams{KDF: KDFNone, KeyLen: uint32(n)}), nil
}

func (p KDFParams) clone() KDFParams {
	c := p
	c.Salt = append([]byte(nil), p.Salt...)
	c.Info = append([]byte(nil), p.Info...)
	return c
}

// ============================================================================
//                              编码
// ============================================================================

// KDFParams 的 protobuf 字段号
const (
	kdfFieldID          protowire.Number = 1
	kdfFieldSalt        protowire.Number = 2
	kdfFieldKeyLen      protowire.Number = 3
	kdfFieldMemory      protowire.Number = 4
	kdfFieldIterations  protowire.Number = 5
	kdfFieldParallelism protowire.Number = 6
	kdfFieldN           protowire.Number = 7
	kdfFieldR           protowire.Number = 8
	kdfFieldInfo        protowire.Number = 9
)

// MarshalBinary 编码参数（KDFNone 编码为空）
func (p KDFParams) MarshalBinary() ([]byte, error) {
	if p.KDF == KDFNone {
		return nil, nil
	}
	var b []byte
	b = appendVarint(b, kdfFieldID, uint64(p.KDF))
	b = appendBytes(b, kdfFieldSalt, p.Salt)
	b = appendVarint(b, kdfFieldKeyLen, uint64(p.KeyLen))
	b = appendVarint(b, kdfFieldMemory, uint64(p.Memory))
	b = appendVarint(b, kdfFieldIterations, uint64(p.Iterations))
	b = appendVarint(b, kdfFieldParallelism, uint64(p.Parallelism))
	b = appendVarint(b, kdfFieldN, p.N)
	b = appendVarint(b, kdfFieldR, uint64(p.R))
	b = appendBytes(b, kdfFieldInfo, p.Info)
	return b, nil
}

// UnmarshalBinary 解码参数
func (p *KDFParams) UnmarshalBinary(b []byte) error {
	*p = KDFParams{}
	return walkFields(b, func(num protowire.Number, v uint64, bs []byte) error {
		switch num {
		case kdfFieldID:
			p.KDF = KDFID(v)
		case kdfFieldSalt:
			p.Salt = append([]byte(nil), bs...)
		case kdfFieldKeyLen:
			p.KeyLen = uint32(v)
		case kdfFieldMemory:
			p.Memory = uint32(v)
		case kdfFieldIterations:
			p.Iterations = uint32(v)
		case kdfFieldParallelism:
			p.Parallelism = uint32(v)
		case kdfFieldN:
			p.N = v
		case kdfFieldR:
			p.R = uint32(v)
		case kdfFieldInfo:
			p.Info = append([]byte(nil), bs...)
		}
		return nil
	})
}
