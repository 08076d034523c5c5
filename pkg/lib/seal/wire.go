package seal

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// appendVarint 追加 varint 字段，零值省略
func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// appendBytes 追加 bytes 字段，空值省略
func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// walkFields 遍历 protobuf 字段
//
// varint 字段以 v 传入，bytes 字段以 bs 传入（指向 b 内部），
// 其他类型跳过。任何编码错误返回 ErrBlobCorrupted。
func walkFields(b []byte, fn func(num protowire.Number, v uint64, bs []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrBlobCorrupted, protowire.ParseError(n))
		}
		b = b[n:]

		switch typ {
		case protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return fmt.Errorf("%w: %v", ErrBlobCorrupted, protowire.ParseError(m))
			}
			b = b[m:]
			if err := fn(num, v, nil); err != nil {
				return err
			}
		case protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return fmt.Errorf("%w: %v", ErrBlobCorrupted, protowire.ParseError(m))
			}
			b = b[m:]
			if err := fn(num, 0, v); err != nil {
				return err
			}
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return fmt.Errorf("%w: %v", ErrBlobCorrupted, protowire.ParseError(m))
			}
			b = b[m:]
		}
	}
	return nil
}
