package securestore

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-keyvault/pkg/lib/seal"
)

// recordVersion 记录格式版本
const recordVersion = 1

// 记录字段号
const (
	recordFieldVersion protowire.Number = 1
	recordFieldKeyID   protowire.Number = 2
	recordFieldBlob    protowire.Number = 3
)

// record 后端中保存的记录
//
// key_id 随记录一起保存，读取时与请求比对，防止后端条目被挪用。
type record struct {
	keyID string
	blob  *seal.EncryptedBlob
}

// marshalRecord 编码记录
func marshalRecord(r *record) ([]byte, error) {
	blob, err := r.blob.MarshalBinary()
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(blob)+len(r.keyID)+16)
	out = protowire.AppendTag(out, recordFieldVersion, protowire.VarintType)
	out = protowire.AppendVarint(out, recordVersion)
	out = protowire.AppendTag(out, recordFieldKeyID, protowire.BytesType)
	out = protowire.AppendString(out, r.keyID)
	out = protowire.AppendTag(out, recordFieldBlob, protowire.BytesType)
	out = protowire.AppendBytes(out, blob)
	return out, nil
}

// unmarshalRecord 解码记录，任何格式问题返回 ErrBlobCorrupted
func unmarshalRecord(b []byte) (*record, error) {
	var (
		version  uint64
		r        record
		haveBlob bool
	)

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", seal.ErrBlobCorrupted, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == recordFieldVersion && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", seal.ErrBlobCorrupted, protowire.ParseError(m))
			}
			version, b = v, b[m:]
		case num == recordFieldKeyID && typ == protowire.BytesType:
			v, m := protowire.ConsumeString(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", seal.ErrBlobCorrupted, protowire.ParseError(m))
			}
			r.keyID, b = v, b[m:]
		case num == recordFieldBlob && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", seal.ErrBlobCorrupted, protowire.ParseError(m))
			}
			blob, err := seal.ParseBlob(v)
			if err != nil {
				return nil, err
			}
			r.blob, haveBlob, b = blob, true, b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", seal.ErrBlobCorrupted, protowire.ParseError(m))
			}
			b = b[m:]
		}
	}

	if version != recordVersion {
		return nil, fmt.Errorf("%w: record version %d", seal.ErrBlobCorrupted, version)
	}
	if !haveBlob || r.keyID == "" {
		return nil, fmt.Errorf("%w: incomplete record", seal.ErrBlobCorrupted)
	}
	return &r, nil
}
