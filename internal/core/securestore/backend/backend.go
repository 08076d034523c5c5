// Package backend 汇总安全存储后端实现
//
// # 实现
//
//   - memory:    进程内映射，进程退出即丢失
//   - credvault: 操作系统凭据库（macOS Keychain / Windows Credential Manager / Secret Service）
//   - keyring:   Linux 内核密钥环
//   - badgerdb:  BadgerDB 持久化存储
//
// 所有后端实现 interfaces.Backend，只处理已加密的记录字节。
package backend

import (
	"fmt"
	"strings"

	"github.com/dep2p/go-keyvault/pkg/types"
)

// MaxNameLen 条目名最大长度（字节）
const MaxNameLen = 255

// MaxNamespaceLen 命名空间最大长度（字节）
const MaxNamespaceLen = 64

// NamespaceSeparator 后端键空间中命名空间与条目名之间的分隔符，命名空间内不得出现
const NamespaceSeparator = "/"

// CheckName 检查条目名
//
// 名称非空、不超过 MaxNameLen 字节，且不含控制字符。
func CheckName(name string) error {
	if name == "" || len(name) > MaxNameLen {
		return fmt.Errorf("%w: name length %d outside [1, %d]", types.ErrInvalidKeyID, len(name), MaxNameLen)
	}
	if strings.IndexFunc(name, func(r rune) bool { return r < 0x20 || r == 0x7f }) >= 0 {
		return fmt.Errorf("%w: name contains control characters", types.ErrInvalidKeyID)
	}
	return nil
}

// CheckNamespace 检查命名空间
//
// 命名空间是后端键前缀的一部分，含分隔符时 "team" 会覆盖 "team/prod" 的键空间。
func CheckNamespace(ns string) error {
	if ns == "" || len(ns) > MaxNamespaceLen {
		return fmt.Errorf("%w: namespace length %d outside [1, %d]", types.ErrInvalidParameters, len(ns), MaxNamespaceLen)
	}
	if strings.Contains(ns, NamespaceSeparator) {
		return fmt.Errorf("%w: namespace %q contains %q", types.ErrInvalidParameters, ns, NamespaceSeparator)
	}
	if strings.IndexFunc(ns, func(r rune) bool { return r < 0x20 || r == 0x7f }) >= 0 {
		return fmt.Errorf("%w: namespace contains control characters", types.ErrInvalidParameters)
	}
	return nil
}

// Page 从已排序的名称中取出严格大于 after 的一页
func Page(sorted []string, after string, limit int) (names []string, more bool) {
	i := 0
	if after != "" {
		// 二分查找第一个 > after 的位置
		lo, hi := 0, len(sorted)
		for lo < hi {
			mid := int(uint(lo+hi) >> 1)
			if sorted[mid] <= after {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		i = lo
	}
	rest := sorted[i:]
	if limit > 0 && len(rest) > limit {
		rest, more = rest[:limit], true
	}
	names = make([]string, len(rest))
	copy(names, rest)
	return names, more
}
