package crypto

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
	"github.com/dep2p/go-keyvault/pkg/lib/secmem"
	"github.com/google/uuid"
)

// ============================================================================
//                              KeyPart
// ============================================================================

// KeyPart 密钥部分
type KeyPart uint8

const (
	// PublicPart 公钥
	PublicPart KeyPart = 1
	// PrivatePart 私钥
	PrivatePart KeyPart = 2
)

// String 返回名称
func (p KeyPart) String() string {
	switch p {
	case PublicPart:
		return "public"
	case PrivatePart:
		return "private"
	default:
		return fmt.Sprintf("keypart(%d)", uint8(p))
	}
}

// ParseKeyPart 解析 "public" / "private"
func ParseKeyPart(s string) (KeyPart, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public", "pub":
		return PublicPart, nil
	case "private", "priv":
		return PrivatePart, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidKeyPart, s)
	}
}

// ============================================================================
//                              选项
// ============================================================================

type options struct {
	clock   clock.Clock
	entropy entropy.Source
	gen     GenerateOptions
	id      string
	created time.Time
}

// Option 身份构造选项
type Option func(*options)

// WithClock 设置创建时间的时钟
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithEntropy 设置导入身份签名时使用的熵源
func WithEntropy(src entropy.Source) Option {
	return func(o *options) {
		o.entropy = src
	}
}

// WithRSABits 设置 RSA 模数位数
func WithRSABits(bits int) Option {
	return func(o *options) {
		o.gen.RSABits = bits
	}
}

// WithID 指定身份 ID（从存储恢复时使用）
func WithID(id string) Option {
	return func(o *options) {
		o.id = id
	}
}

// WithCreatedAt 指定创建时间（从存储恢复时使用）
func WithCreatedAt(t time.Time) Option {
	return func(o *options) {
		o.created = t
	}
}

func buildOptions(src entropy.Source, opts []Option) *options {
	o := &options{clock: clock.New(), entropy: src}
	for _, opt := range opts {
		opt(o)
	}
	o.entropy = entropy.OrSystem(o.entropy)
	return o
}

// ============================================================================
//                              Identity
// ============================================================================

// Identity 密钥对身份
//
// 算法在创建后不可变。私钥由 secmem.Buffer 持有，Destroy 后清零，
// 之后所有私钥操作返回 ErrIdentityDestroyed。Identity 可并发使用。
type Identity struct {
	mu        sync.RWMutex
	id        string
	alg       Algorithm
	pub       *PublicKey
	priv      *secmem.Buffer
	createdAt time.Time
	entropy   entropy.Source
	destroyed bool
}

// Generate 生成新身份
//
// 熵源不可用时返回 ErrRandomnessFailure；算法没有实现时返回
// ErrAlgorithmUnavailable。
func Generate(alg Algorithm, src entropy.Source, opts ...Option) (*Identity, error) {
	p, err := Lookup(alg)
	if err != nil {
		return nil, err
	}

	o := buildOptions(src, opts)
	pub, priv, err := p.GenerateKey(o.entropy, o.gen)
	if err != nil {
		return nil, err
	}

	return newIdentity(alg, pub, secmem.Wrap(priv), o)
}

// ImportRaw 从原始字节导入身份
//
// which 为 PrivatePart 时从私钥导出公钥；为 PublicPart 时得到
// 仅含公钥的身份。导出再导入得到逐字节相同的密钥材料。
func ImportRaw(raw []byte, alg Algorithm, which KeyPart, opts ...Option) (*Identity, error) {
	p, err := Lookup(alg)
	if err != nil {
		return nil, err
	}
	o := buildOptions(nil, opts)

	switch which {
	case PublicPart:
		if err := p.CheckPublicKey(raw); err != nil {
			return nil, err
		}
		return newIdentity(alg, append([]byte(nil), raw...), nil, o)
	case PrivatePart:
		pub, err := p.PublicKey(raw)
		if err != nil {
			return nil, err
		}
		return newIdentity(alg, pub, secmem.Copy(raw), o)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidKeyPart, which)
	}
}

func newIdentity(alg Algorithm, pub []byte, priv *secmem.Buffer, o *options) (*Identity, error) {
	id := o.id
	if id == "" {
		r := entropy.NewReader(o.entropy)
		u, err := uuid.NewRandomFromReader(r)
		if err != nil {
			if priv != nil {
				priv.Destroy()
			}
			return nil, r.Classify(err)
		}
		id = u.String()
	}

	created := o.created
	if created.IsZero() {
		created = o.clock.Now().UTC()
	}

	return &Identity{
		id:        id,
		alg:       alg,
		pub:       &PublicKey{alg: alg, raw: pub},
		priv:      priv,
		createdAt: created,
		entropy:   o.entropy,
	}, nil
}

// ID 返回身份 ID
func (i *Identity) ID() string {
	return i.id
}

// Algorithm 返回算法
func (i *Identity) Algorithm() Algorithm {
	return i.alg
}

// CreatedAt 返回创建时间
func (i *Identity) CreatedAt() time.Time {
	return i.createdAt
}

// PublicKey 返回公钥
func (i *Identity) PublicKey() *PublicKey {
	return i.pub
}

// Fingerprint 返回公钥指纹
func (i *Identity) Fingerprint() string {
	return i.pub.Fingerprint()
}

// HasPrivateKey 是否持有私钥
func (i *Identity) HasPrivateKey() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.priv != nil && !i.destroyed
}

// Capabilities 返回可用能力（仅公钥身份不含 Sign/KeyExchange/解封装）
func (i *Identity) Capabilities() Capability {
	caps := Capabilities(i.alg)
	if !i.HasPrivateKey() {
		caps &^= CapSign | CapKeyExchange
	}
	return caps
}

// withPrivate 在读锁下使用私钥字节
func (i *Identity) withPrivate(fn func(priv []byte) error) error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.destroyed {
		return ErrIdentityDestroyed
	}
	if i.priv == nil {
		return ErrNoPrivateKey
	}
	return fn(i.priv.Bytes())
}

// Sign 签名
//
// 算法不支持签名（如 Kyber）时返回 ErrUnsupportedOperation。
func (i *Identity) Sign(msg []byte) ([]byte, error) {
	s, err := signerFor(i.alg)
	if err != nil {
		return nil, err
	}

	var sig []byte
	err = i.withPrivate(func(priv []byte) error {
		var err error
		sig, err = s.Sign(priv, msg, i.entropy)
		return err
	})
	return sig, err
}

// Verify 用本身份的公钥验证签名
func (i *Identity) Verify(msg, sig []byte) (bool, error) {
	return i.pub.Verify(msg, sig)
}

// Decapsulate 解封装共享密钥（仅 KEM 算法）
//
// 返回的共享密钥由调用方负责清零。
func (i *Identity) Decapsulate(ciphertext []byte) ([]byte, error) {
	k, err := kemFor(i.alg)
	if err != nil {
		return nil, err
	}
	info, _ := i.alg.Info()
	if len(ciphertext) != info.CiphertextSize {
		return nil, fmt.Errorf("%w: %s ciphertext must be %d bytes, got %d", ErrInvalidCiphertext, i.alg, info.CiphertextSize, len(ciphertext))
	}

	var ss []byte
	err = i.withPrivate(func(priv []byte) error {
		var err error
		ss, err = k.Decapsulate(priv, ciphertext)
		return err
	})
	return ss, err
}

// SharedSecret 与对端公钥做 ECDH（Secp256k1、P-256）
//
// 返回的共享密钥由调用方负责清零。
func (i *Identity) SharedSecret(peerPub []byte) ([]byte, error) {
	k, err := agreementFor(i.alg)
	if err != nil {
		return nil, err
	}

	var ss []byte
	err = i.withPrivate(func(priv []byte) error {
		var err error
		ss, err = k.SharedSecret(priv, peerPub)
		return err
	})
	return ss, err
}

// ExportRaw 导出原始密钥字节
//
// 导出的私钥是副本，调用方负责清零。
func (i *Identity) ExportRaw(which KeyPart) ([]byte, error) {
	switch which {
	case PublicPart:
		return i.pub.Raw(), nil
	case PrivatePart:
		var out []byte
		err := i.withPrivate(func(priv []byte) error {
			out = append([]byte(nil), priv...)
			return nil
		})
		return out, err
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidKeyPart, which)
	}
}

// ExportRaw 导出原始密钥字节
func ExportRaw(id *Identity, which KeyPart) ([]byte, error) {
	return id.ExportRaw(which)
}

// Destroy 清零私钥
//
// 幂等。等待进行中的私钥操作结束后再清零。
func (i *Identity) Destroy() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.destroyed {
		return
	}
	if i.priv != nil {
		i.priv.Destroy()
	}
	i.destroyed = true
}

// Destroyed 是否已销毁
func (i *Identity) Destroyed() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.destroyed
}

// String 返回不含密钥材料的描述
func (i *Identity) String() string {
	return fmt.Sprintf("Identity{id=%s alg=%s fp=%s}", i.id, i.alg, i.Fingerprint())
}
