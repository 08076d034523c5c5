package seal

import (
	"fmt"

	sha256 "github.com/minio/sha256-simd"
	"google.golang.org/protobuf/encoding/protowire"
)

// BlobVersion 当前密文块格式版本
const BlobVersion = 1

// adTagSize 关联数据标签长度
const adTagSize = 8

// EncryptedBlob 版本化密文块
//
// 持久化布局：{version, cipher_id, kdf_id, kdf_params, nonce, ciphertext, tag}，
// 外加关联数据标签 ad_tag。编码使用 protobuf wire 格式。
type EncryptedBlob struct {
	Version    uint32
	Cipher     CipherID
	KDF        KDFID
	KDFParams  []byte
	Nonce      []byte
	Ciphertext []byte
	Tag        []byte
	ADTag      []byte
}

// 字段号
const (
	blobFieldVersion    protowire.Number = 1
	blobFieldCipher     protowire.Number = 2
	blobFieldKDF        protowire.Number = 3
	blobFieldKDFParams  protowire.Number = 4
	blobFieldNonce      protowire.Number = 5
	blobFieldCiphertext protowire.Number = 6
	blobFieldTag        protowire.Number = 7
	blobFieldADTag      protowire.Number = 8
)

// header 返回认证覆盖的头部字节（version、cipher、kdf、kdf_params）
func (b *EncryptedBlob) header() []byte {
	var h []byte
	h = appendVarint(h, blobFieldVersion, uint64(b.Version))
	h = appendVarint(h, blobFieldCipher, uint64(b.Cipher))
	h = appendVarint(h, blobFieldKDF, uint64(b.KDF))
	h = appendBytes(h, blobFieldKDFParams, b.KDFParams)
	return h
}

// MarshalBinary 编码密文块
func (b *EncryptedBlob) MarshalBinary() ([]byte, error) {
	out := b.header()
	out = appendBytes(out, blobFieldNonce, b.Nonce)
	out = appendBytes(out, blobFieldCiphertext, b.Ciphertext)
	out = appendBytes(out, blobFieldTag, b.Tag)
	out = appendBytes(out, blobFieldADTag, b.ADTag)
	return out, nil
}

// UnmarshalBinary 解码密文块
//
// 未知版本、未知密码或缺少必需字段时返回 ErrBlobCorrupted。
func (b *EncryptedBlob) UnmarshalBinary(data []byte) error {
	*b = EncryptedBlob{}
	err := walkFields(data, func(num protowire.Number, v uint64, bs []byte) error {
		switch num {
		case blobFieldVersion:
			b.Version = uint32(v)
		case blobFieldCipher:
			b.Cipher = CipherID(v)
		case blobFieldKDF:
			b.KDF = KDFID(v)
		case blobFieldKDFParams:
			b.KDFParams = append([]byte(nil), bs...)
		case blobFieldNonce:
			b.Nonce = append([]byte(nil), bs...)
		case blobFieldCiphertext:
			b.Ciphertext = append([]byte(nil), bs...)
		case blobFieldTag:
			b.Tag = append([]byte(nil), bs...)
		case blobFieldADTag:
			b.ADTag = append([]byte(nil), bs...)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if b.Version != BlobVersion {
		return fmt.Errorf("%w: unsupported blob version %d", ErrBlobCorrupted, b.Version)
	}
	if _, ok := suites[b.Cipher]; !ok {
		return fmt.Errorf("%w: unknown cipher %d", ErrBlobCorrupted, uint8(b.Cipher))
	}
	if len(b.Nonce) == 0 || len(b.Tag) == 0 {
		return fmt.Errorf("%w: missing nonce or tag", ErrBlobCorrupted)
	}
	return nil
}

// ParseBlob 解码密文块
func ParseBlob(data []byte) (*EncryptedBlob, error) {
	b := new(EncryptedBlob)
	if err := b.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return b, nil
}

// Params 解码 KDF 参数
func (b *EncryptedBlob) Params() (KDFParams, error) {
	var p KDFParams
	if len(b.KDFParams) == 0 {
		return KDFParams{KDF: b.KDF}, nil
	}
	if err := p.UnmarshalBinary(b.KDFParams); err != nil {
		return KDFParams{}, err
	}
	if p.KDF != b.KDF {
		return KDFParams{}, fmt.Errorf("%w: kdf mismatch", ErrBlobCorrupted)
	}
	return p, nil
}

// adTag 关联数据摘要前 8 字节
func adTag(ad []byte) []byte {
	sum := sha256.Sum256(ad)
	return append([]byte(nil), sum[:adTagSize]...)
}
