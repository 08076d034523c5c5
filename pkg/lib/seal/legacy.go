package seal

import (
	"crypto/cipher"
	"crypto/des"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/blowfish"
	"golang.org/x/crypto/hkdf"
)

// macSize HMAC-SHA256 标签长度
const macSize = sha256.Size

// cbcHMACSuite 遗留分组密码：CBC + PKCS#7 + encrypt-then-MAC
//
// 输入密钥经 HKDF 拆分为加密密钥和 MAC 密钥。
// 解密前先以常量时间校验 MAC。
type cbcHMACSuite struct {
	label     string
	blockSize int
	encKeyLen int
	newBlock  func(key []byte) (cipher.Block, error)
}

var tripleDESSuite = cbcHMACSuite{
	label:     "keyvault/3des-cbc-hmac",
	blockSize: des.BlockSize,
	encKeyLen: 24,
	newBlock:  des.NewTripleDESCipher,
}

var blowfishSuite = cbcHMACSuite{
	label:     "keyvault/blowfish-cbc-hmac",
	blockSize: blowfish.BlockSize,
	encKeyLen: 32,
	newBlock: func(key []byte) (cipher.Block, error) {
		return blowfish.NewCipher(key)
	},
}

func (s cbcHMACSuite) nonceSize() int {
	return s.blockSize
}

// splitKeys 派生加密密钥和 MAC 密钥，调用方负责清零
func (s cbcHMACSuite) splitKeys(key []byte) (encKey, macKey []byte, err error) {
	r := hkdf.New(sha256.New, key, nil, []byte(s.label))
	encKey = make([]byte, s.encKeyLen)
	macKey = make([]byte, macSize)
	if _, err = io.ReadFull(r, encKey); err != nil {
		return nil, nil, err
	}
	if _, err = io.ReadFull(r, macKey); err != nil {
		Wipe(encKey)
		return nil, nil, err
	}
	return encKey, macKey, nil
}

func (s cbcHMACSuite) mac(macKey, aad, iv, ciphertext []byte) []byte {
	h := hmac.New(sha256.New, macKey)
	var l [8]byte
	binary.BigEndian.PutUint64(l[:], uint64(len(aad)))
	h.Write(l[:])
	h.Write(aad)
	h.Write(iv)
	h.Write(ciphertext)
	return h.Sum(nil)
}

func (s cbcHMACSuite) seal(key, iv, plaintext, aad []byte) ([]byte, []byte, error) {
	encKey, macKey, err := s.splitKeys(key)
	if err != nil {
		return nil, nil, err
	}
	defer WipeAll(encKey, macKey)

	block, err := s.newBlock(encKey)
	if err != nil {
		return nil, nil, err
	}

	padded := pkcs7Pad(plaintext, s.blockSize)
	defer Wipe(padded)

	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return ciphertext, s.mac(macKey, aad, iv, ciphertext), nil
}

func (s cbcHMACSuite) open(key, iv, ciphertext, tag, aad []byte) ([]byte, error) {
	if len(iv) != s.blockSize || len(tag) != macSize {
		return nil, ErrAuthenticationFailed
	}
	if len(ciphertext) == 0 || len(ciphertext)%s.blockSize != 0 {
		return nil, ErrAuthenticationFailed
	}

	encKey, macKey, err := s.splitKeys(key)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	defer WipeAll(encKey, macKey)

	if !hmac.Equal(tag, s.mac(macKey, aad, iv, ciphertext)) {
		return nil, ErrAuthenticationFailed
	}

	block, err := s.newBlock(encKey)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, ok := pkcs7Unpad(padded, s.blockSize)
	if !ok {
		Wipe(padded)
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

// pkcs7Pad 填充到 blockSize 的整数倍（总是至少填充一个字节）
func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

// pkcs7Unpad 去除填充
func pkcs7Unpad(b []byte, blockSize int) ([]byte, bool) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize {
		return nil, false
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, false
		}
	}
	return b[: len(b)-n : len(b)-n], true
}
