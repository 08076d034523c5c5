//go:build linux

package keyring

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/dep2p/go-keyvault/pkg/types"
)

// sysKeyctl 基于 keyctl(2) / add_key(2) 的实现
type sysKeyctl struct{}

func newSysKeyctl() (keyctl, error) {
	return sysKeyctl{}, nil
}

func parentSpec(parent string) int {
	switch parent {
	case ParentSession:
		return unix.KEY_SPEC_SESSION_KEYRING
	case ParentProcess:
		return unix.KEY_SPEC_PROCESS_KEYRING
	default:
		return unix.KEY_SPEC_USER_KEYRING
	}
}

func (sysKeyctl) ring(parent, name string) (int, error) {
	parentID, err := unix.KeyctlGetKeyringID(parentSpec(parent), true)
	if err != nil {
		return 0, mapErrno(err)
	}

	id, err := unix.KeyctlSearch(parentID, "keyring", name, 0)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, unix.ENOKEY) {
		return 0, mapErrno(err)
	}

	id, err = unix.AddKey("keyring", name, nil, parentID)
	if err != nil {
		return 0, mapErrno(err)
	}
	return id, nil
}

func (sysKeyctl) add(ring int, desc string, payload []byte) error {
	if _, err := unix.AddKey("user", desc, payload, ring); err != nil {
		return mapErrno(err)
	}
	return nil
}

func (sysKeyctl) search(ring int, desc string) (int, error) {
	id, err := unix.KeyctlSearch(ring, "user", desc, 0)
	if err != nil {
		return 0, mapErrno(err)
	}
	return id, nil
}

// readBuffer 读取 KEYCTL_READ 的结果，负载在两次调用之间变大时重试
func readBuffer(id int) ([]byte, error) {
	size, err := unix.KeyctlBuffer(unix.KEYCTL_READ, id, nil, 0)
	if err != nil {
		return nil, mapErrno(err)
	}
	for {
		buf := make([]byte, size)
		n, err := unix.KeyctlBuffer(unix.KEYCTL_READ, id, buf, 0)
		if err != nil {
			return nil, mapErrno(err)
		}
		if n <= size {
			return buf[:n], nil
		}
		size = n
	}
}

func (sysKeyctl) read(id int) ([]byte, error) {
	return readBuffer(id)
}

func (sysKeyctl) remove(ring, id int) error {
	if _, err := unix.KeyctlInt(unix.KEYCTL_REVOKE, id, 0, 0, 0); err != nil && !errors.Is(err, unix.EKEYREVOKED) {
		return mapErrno(err)
	}
	if _, err := unix.KeyctlInt(unix.KEYCTL_UNLINK, id, ring, 0, 0); err != nil {
		return mapErrno(err)
	}
	return nil
}

func (sysKeyctl) list(ring int) ([]string, error) {
	raw, err := readBuffer(ring)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(raw)/4)
	for off := 0; off+4 <= len(raw); off += 4 {
		id := int(int32(binary.NativeEndian.Uint32(raw[off:])))
		desc, err := unix.KeyctlString(unix.KEYCTL_DESCRIBE, id)
		if err != nil {
			// 并发删除或无权查看的密钥直接跳过
			continue
		}
		// type;uid;gid;perm;description
		parts := strings.SplitN(desc, ";", 5)
		if len(parts) == 5 && parts[0] == "user" {
			names = append(names, parts[4])
		}
	}
	return names, nil
}

// mapErrno 将 errno 映射为存储错误
func mapErrno(err error) error {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return fmt.Errorf("%w: %v", types.ErrBackendUnavailable, err)
	}
	switch errno {
	case unix.ENOKEY, unix.EKEYREVOKED, unix.EKEYEXPIRED:
		return types.ErrNotFound
	case unix.EACCES, unix.EPERM:
		return fmt.Errorf("%w: %v", types.ErrPermissionDenied, errno)
	case unix.EDQUOT:
		return fmt.Errorf("%w: keyring quota exceeded", types.ErrBackendUnavailable)
	default:
		return fmt.Errorf("%w: %v", types.ErrBackendUnavailable, errno)
	}
}
