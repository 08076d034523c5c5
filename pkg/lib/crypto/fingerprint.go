package crypto

import (
	"github.com/mr-tron/base58"
	sha256 "github.com/minio/sha256-simd"
)

// Fingerprint 计算公钥指纹
//
// 格式：base58(SHA-256(algorithm || public_key))。算法字节参与摘要，
// 相同字节在不同算法下得到不同指纹。
func Fingerprint(alg Algorithm, pub []byte) string {
	h := sha256.New()
	h.Write([]byte{byte(alg)})
	h.Write(pub)
	return base58.Encode(h.Sum(nil))
}
