package securestore

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-keyvault/internal/core/securestore/backend/memory"
	"github.com/dep2p/go-keyvault/pkg/interfaces"
	"github.com/dep2p/go-keyvault/pkg/lib/entropy"
	"github.com/dep2p/go-keyvault/pkg/lib/seal"
	"github.com/dep2p/go-keyvault/pkg/lib/secmem"
)

// metaName 主密钥元数据条目
const metaName = ReservedPrefix + "meta"

// metaVersion 元数据格式版本
const metaVersion = 1

// 主密钥模式
const (
	// masterFromPassphrase 口令派生，元数据保存 KDF 参数和校验值
	masterFromPassphrase uint64 = 1
	// masterStored 随机主密钥保存在受操作系统保护的后端中
	masterStored uint64 = 2
)

// 元数据字段号
const (
	metaFieldVersion   protowire.Number = 1
	metaFieldMode      protowire.Number = 2
	metaFieldKDFParams protowire.Number = 3
	metaFieldVerifier  protowire.Number = 4
	metaFieldKey       protowire.Number = 5
)

var verifierPlaintext = []byte("go-keyvault master key verifier")

// protectedBackend 由操作系统保护的后端（凭据库、内核密钥环）
type protectedBackend interface {
	Protected() bool
}

func isProtected(b interfaces.Backend) bool {
	p, ok := b.(protectedBackend)
	return ok && p.Protected()
}

// storeMeta 主密钥元数据
type storeMeta struct {
	mode      uint64
	kdfParams []byte
	verifier  []byte
	key       []byte
}

func (m *storeMeta) marshal() []byte {
	var out []byte
	out = protowire.AppendTag(out, metaFieldVersion, protowire.VarintType)
	out = protowire.AppendVarint(out, metaVersion)
	out = protowire.AppendTag(out, metaFieldMode, protowire.VarintType)
	out = protowire.AppendVarint(out, m.mode)
	for _, f := range []struct {
		num protowire.Number
		v   []byte
	}{
		{metaFieldKDFParams, m.kdfParams},
		{metaFieldVerifier, m.verifier},
		{metaFieldKey, m.key},
	} {
		if len(f.v) == 0 {
			continue
		}
		out = protowire.AppendTag(out, f.num, protowire.BytesType)
		out = protowire.AppendBytes(out, f.v)
	}
	return out
}

func unmarshalMeta(b []byte) (*storeMeta, error) {
	var (
		m       storeMeta
		version uint64
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: store meta: %v", seal.ErrBlobCorrupted, protowire.ParseError(n))
		}
		b = b[n:]

		var m2 int
		switch typ {
		case protowire.VarintType:
			var v uint64
			v, m2 = protowire.ConsumeVarint(b)
			switch num {
			case metaFieldVersion:
				version = v
			case metaFieldMode:
				m.mode = v
			}
		case protowire.BytesType:
			var v []byte
			v, m2 = protowire.ConsumeBytes(b)
			v = append([]byte(nil), v...)
			switch num {
			case metaFieldKDFParams:
				m.kdfParams = v
			case metaFieldVerifier:
				m.verifier = v
			case metaFieldKey:
				m.key = v
			}
		default:
			m2 = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m2 < 0 {
			return nil, fmt.Errorf("%w: store meta: %v", seal.ErrBlobCorrupted, protowire.ParseError(m2))
		}
		b = b[m2:]
	}
	if version != metaVersion {
		return nil, fmt.Errorf("%w: store meta version %d", seal.ErrBlobCorrupted, version)
	}
	return &m, nil
}

// ============================================================================
//                              加载 / 初始化
// ============================================================================

// loadMasterKey 读取或初始化主密钥
func loadMasterKey(ctx context.Context, b interfaces.Backend, cfg *Config, se *seal.Engine, src entropy.Source) (*seal.SymmetricKey, error) {
	raw, err := b.Read(ctx, metaName)
	if errors.Is(err, ErrNotFound) {
		return initMasterKey(ctx, b, cfg, se, src)
	}
	if err != nil {
		return nil, fmt.Errorf("read store meta: %w", err)
	}

	m, err := unmarshalMeta(raw)
	if err != nil {
		return nil, err
	}
	defer secmem.Wipe(m.key)

	switch m.mode {
	case masterFromPassphrase:
		if len(cfg.Passphrase) == 0 {
			return nil, ErrPassphraseRequired
		}
		var params seal.KDFParams
		if err := params.UnmarshalBinary(m.kdfParams); err != nil {
			return nil, err
		}
		key, err := seal.Derive(cfg.Passphrase, params)
		if err != nil {
			return nil, err
		}
		if err := checkVerifier(se, key, m.verifier); err != nil {
			key.Destroy()
			return nil, err
		}
		return key, nil

	case masterStored:
		if len(m.key) != seal.KeySize {
			return nil, fmt.Errorf("%w: stored master key has %d bytes", seal.ErrBlobCorrupted, len(m.key))
		}
		if len(cfg.Passphrase) > 0 {
			logger.Warn("存储使用后端保护的主密钥，忽略口令", "backend", b.Name())
		}
		return seal.NewSymmetricKey(append([]byte(nil), m.key...), seal.KDFParams{KDF: seal.KDFNone, KeyLen: seal.KeySize}), nil

	default:
		return nil, fmt.Errorf("%w: unknown master key mode %d", seal.ErrBlobCorrupted, m.mode)
	}
}

// initMasterKey 首次打开时创建主密钥
func initMasterKey(ctx context.Context, b interfaces.Backend, cfg *Config, se *seal.Engine, src entropy.Source) (*seal.SymmetricKey, error) {
	switch {
	case len(cfg.Passphrase) > 0:
		params := cfg.MasterKDF
		salt, err := entropy.Bytes(src, seal.DefaultSaltSize)
		if err != nil {
			return nil, err
		}
		params = params.WithSalt(salt)

		key, err := seal.Derive(cfg.Passphrase, params)
		if err != nil {
			return nil, err
		}
		verifier, err := se.EncryptWith(seal.CipherAES256GCM, key, verifierPlaintext, []byte(metaName))
		if err != nil {
			key.Destroy()
			return nil, err
		}
		vb, _ := verifier.MarshalBinary()
		pb, _ := params.MarshalBinary()

		m := &storeMeta{mode: masterFromPassphrase, kdfParams: pb, verifier: vb}
		if err := b.Write(ctx, metaName, m.marshal()); err != nil {
			key.Destroy()
			return nil, fmt.Errorf("write store meta: %w", err)
		}
		logger.Info("已初始化口令主密钥", "backend", b.Name(), "kdf", params.KDF.String())
		return key, nil

	case b.Name() == memory.Name:
		return seal.RandomKey(src, seal.KeySize)

	case isProtected(b):
		// 主密钥与记录位于同一平台作用域，能读取该作用域的进程即可解密全部记录。
		// 需要两层独立保护时应配置口令。
		key, err := seal.RandomKey(src, seal.KeySize)
		if err != nil {
			return nil, err
		}
		m := &storeMeta{mode: masterStored, key: key.Bytes()}
		data := m.marshal()
		defer secmem.Wipe(data)
		if err := b.Write(ctx, metaName, data); err != nil {
			key.Destroy()
			return nil, fmt.Errorf("write store meta: %w", err)
		}
		logger.Warn("未配置口令，主密钥只受后端平台保护", "backend", b.Name())
		return key, nil

	default:
		return nil, fmt.Errorf("%w: backend %s", ErrPassphraseRequired, b.Name())
	}
}

// checkVerifier 用校验值确认口令正确
func checkVerifier(se *seal.Engine, key *seal.SymmetricKey, verifier []byte) error {
	blob, err := seal.ParseBlob(verifier)
	if err != nil {
		return err
	}
	pt, err := se.Decrypt(key, blob, []byte(metaName))
	if errors.Is(err, seal.ErrAuthenticationFailed) {
		return ErrWrongPassphrase
	}
	if err != nil {
		return err
	}
	secmem.Wipe(pt)
	return nil
}
