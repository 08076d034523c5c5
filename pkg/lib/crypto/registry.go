package crypto

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
)

// ============================================================================
//                              Provider 接口
// ============================================================================

// GenerateOptions 密钥生成选项
type GenerateOptions struct {
	// RSABits RSA 模数位数（2048/3072/4096），0 表示默认 2048
	RSABits int
}

// Provider 单个算法族的实现
//
// 所有方法处理原始字节；长度和结构校验由实现负责。
type Provider interface {
	// Algorithm 返回实现的算法
	Algorithm() Algorithm

	// GenerateKey 从熵源生成密钥对
	GenerateKey(src entropy.Source, opts GenerateOptions) (pub, priv []byte, err error)

	// PublicKey 校验私钥并导出对应公钥
	PublicKey(priv []byte) ([]byte, error)

	// CheckPublicKey 校验公钥长度和结构
	CheckPublicKey(pub []byte) error
}

// SignerProvider 签名算法
type SignerProvider interface {
	Provider

	// Sign 签名
	Sign(priv, msg []byte, src entropy.Source) ([]byte, error)

	// Verify 验证签名
	//
	// 公钥或签名格式错误时返回 ErrInvalidKeySize / ErrInvalidSignatureFormat，
	// 格式正确但不匹配时返回 (false, nil)。
	Verify(pub, msg, sig []byte) (bool, error)
}

// KEMProvider 密钥封装算法
type KEMProvider interface {
	Provider

	// Encapsulate 生成共享密钥及其密文
	Encapsulate(pub []byte, src entropy.Source) (ciphertext, sharedSecret []byte, err error)

	// Decapsulate 从密文恢复共享密钥
	Decapsulate(priv, ciphertext []byte) ([]byte, error)
}

// KeyAgreementProvider 密钥协商（ECDH）
type KeyAgreementProvider interface {
	Provider

	// SharedSecret 计算共享密钥
	SharedSecret(priv, peerPub []byte) ([]byte, error)
}

// ============================================================================
//                              注册表
// ============================================================================

var registry = struct {
	sync.RWMutex
	providers map[Algorithm]Provider
}{providers: make(map[Algorithm]Provider)}

// Register 注册算法实现，替换已有实现
//
// 算法元数据声明的 Sign/KEM 能力必须由实现提供。
func Register(p Provider) error {
	alg := p.Algorithm()
	info, ok := alg.Info()
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownAlgorithm, uint8(alg))
	}
	if info.Capabilities.Has(CapSign) {
		if _, ok := p.(SignerProvider); !ok {
			return fmt.Errorf("%w: %s provider must implement signing", ErrUnsupportedOperation, alg)
		}
	}
	if info.Capabilities.Has(CapKEM) {
		if _, ok := p.(KEMProvider); !ok {
			return fmt.Errorf("%w: %s provider must implement encapsulation", ErrUnsupportedOperation, alg)
		}
	}

	registry.Lock()
	registry.providers[alg] = p
	registry.Unlock()
	return nil
}

// mustRegister 注册内置实现
func mustRegister(p Provider) {
	if err := Register(p); err != nil {
		panic(err)
	}
}

// Unregister 移除算法实现
func Unregister(alg Algorithm) {
	registry.Lock()
	delete(registry.providers, alg)
	registry.Unlock()
}

// Lookup 查找算法实现
//
// 未知算法返回 ErrUnknownAlgorithm，已知但无实现返回 ErrAlgorithmUnavailable。
func Lookup(alg Algorithm) (Provider, error) {
	if !alg.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, uint8(alg))
	}

	registry.RLock()
	p, ok := registry.providers[alg]
	registry.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAlgorithmUnavailable, alg)
	}
	return p, nil
}

// Available 返回有实现的算法（按标识排序）
func Available() []Algorithm {
	registry.RLock()
	out := make([]Algorithm, 0, len(registry.providers))
	for alg := range registry.providers {
		out = append(out, alg)
	}
	registry.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Capabilities 返回算法当前可用的能力
//
// 无实现时返回 0；KeyExchange 只有实现了 KeyAgreementProvider 才计入。
func Capabilities(alg Algorithm) Capability {
	p, err := Lookup(alg)
	if err != nil {
		return 0
	}
	info, _ := alg.Info()
	caps := info.Capabilities
	if _, ok := p.(KeyAgreementProvider); !ok {
		caps &^= CapKeyExchange
	}
	return caps
}

func signerFor(alg Algorithm) (SignerProvider, error) {
	p, err := Lookup(alg)
	if err != nil {
		return nil, err
	}
	s, ok := p.(SignerProvider)
	if !ok {
		return nil, fmt.Errorf("%w: %s cannot sign", ErrUnsupportedOperation, alg)
	}
	return s, nil
}

func kemFor(alg Algorithm) (KEMProvider, error) {
	p, err := Lookup(alg)
	if err != nil {
		return nil, err
	}
	k, ok := p.(KEMProvider)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a KEM", ErrUnsupportedOperation, alg)
	}
	return k, nil
}

func agreementFor(alg Algorithm) (KeyAgreementProvider, error) {
	p, err := Lookup(alg)
	if err != nil {
		return nil, err
	}
	k, ok := p.(KeyAgreementProvider)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no key exchange", ErrUnsupportedOperation, alg)
	}
	return k, nil
}
