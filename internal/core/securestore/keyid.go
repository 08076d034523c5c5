package securestore

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dep2p/go-keyvault/internal/core/securestore/backend"
)

// ReservedPrefix 内部条目前缀，调用方不可使用
const ReservedPrefix = "__kv/"

// ValidateKeyID 检查 key_id
//
// key_id 为 1..255 字节的合法 UTF-8，不含控制字符，且不以
// ReservedPrefix 开头。
func ValidateKeyID(keyID string) error {
	if err := backend.CheckName(keyID); err != nil {
		return err
	}
	if !utf8.ValidString(keyID) {
		return fmt.Errorf("%w: key id is not valid utf-8", ErrInvalidKeyID)
	}
	if IsReserved(keyID) {
		return ErrReservedKeyID
	}
	return nil
}

// IsReserved 是否为内部保留名称
func IsReserved(name string) bool {
	return strings.HasPrefix(name, ReservedPrefix)
}
