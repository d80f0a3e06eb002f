package clarity

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// maxDepth bounds nesting when decoding untrusted input.
const maxDepth = 64

// Encode serializes v to the consensus wire format.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeHex serializes v and returns it as 0x-prefixed hex, the form the
// node API expects for call arguments.
func EncodeHex(v Value) (string, error) {
	data, err := Encode(v)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(data), nil
}

func encodeValue(buf *bytes.Buffer, v Value, depth int) error {
	if v == nil {
		return fmt.Errorf("cannot encode nil value")
	}
	if depth > maxDepth {
		return fmt.Errorf("value nested deeper than %d", maxDepth)
	}

	buf.WriteByte(byte(v.Type()))
	switch val := v.(type) {
	case Int:
		n := val.Big()
		if n.Sign() < 0 {
			n.Add(n, two128)
		}
		var b [16]byte
		n.FillBytes(b[:])
		buf.Write(b[:])
	case UInt:
		b := val.n.Bytes32()
		buf.Write(b[16:])
	case Buffer:
		writeLen(buf, len(val))
		buf.Write(val)
	case Bool:
	case Principal:
		buf.WriteByte(val.Version)
		buf.Write(val.Hash160[:])
		if val.Name != "" {
			if len(val.Name) > 128 {
				return fmt.Errorf("contract name %q too long", val.Name)
			}
			buf.WriteByte(byte(len(val.Name)))
			buf.WriteString(val.Name)
		}
	case Response:
		return encodeValue(buf, val.Inner, depth+1)
	case Optional:
		if val.Inner != nil {
			return encodeValue(buf, val.Inner, depth+1)
		}
	case List:
		writeLen(buf, len(val))
		for i, item := range val {
			if err := encodeValue(buf, item, depth+1); err != nil {
				return fmt.Errorf("list[%d]: %w", i, err)
			}
		}
	case Tuple:
		writeLen(buf, len(val))
		for _, k := range val.Keys() {
			if len(k) == 0 || len(k) > 128 {
				return fmt.Errorf("invalid tuple field name %q", k)
			}
			buf.WriteByte(byte(len(k)))
			buf.WriteString(k)
			if err := encodeValue(buf, val[k], depth+1); err != nil {
				return fmt.Errorf("tuple.%s: %w", k, err)
			}
		}
	case StringASCII:
		for i := 0; i < len(val); i++ {
			if val[i] > 0x7f {
				return fmt.Errorf("string-ascii contains non-ASCII byte at %d", i)
			}
		}
		writeLen(buf, len(val))
		buf.WriteString(string(val))
	case StringUTF8:
		if !utf8.ValidString(string(val)) {
			return fmt.Errorf("string-utf8 is not valid UTF-8")
		}
		writeLen(buf, len(val))
		buf.WriteString(string(val))
	default:
		return fmt.Errorf("unsupported value %T", v)
	}
	return nil
}

func writeLen(buf *bytes.Buffer, n int) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(n))
	buf.Write(b[:])
}

// Decode parses one value from data, which must contain nothing else.
func Decode(data []byte) (Value, error) {
	d := &decoder{data: data}
	v, err := d.value(0)
	if err != nil {
		return nil, err
	}
	if d.pos != len(d.data) {
		return nil, fmt.Errorf("%d trailing bytes after value", len(d.data)-d.pos)
	}
	return v, nil
}

// DecodeHex parses a hex-encoded value, with or without the 0x prefix.
func DecodeHex(s string) (Value, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	data, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return Decode(data)
}

type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) take(n int) ([]byte, error) {
	if n < 0 || len(d.data)-d.pos < n {
		return nil, fmt.Errorf("unexpected end of input at offset %d", d.pos)
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *decoder) readByte() (byte, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) length() (int, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	n := binary.BigEndian.Uint32(b)
	// every element takes at least one byte
	if int64(n) > int64(len(d.data)-d.pos) {
		return 0, fmt.Errorf("length %d exceeds remaining input", n)
	}
	return int(n), nil
}

func (d *decoder) value(depth int) (Value, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("value nested deeper than %d", maxDepth)
	}
	prefix, err := d.readByte()
	if err != nil {
		return nil, err
	}

	switch Type(prefix) {
	case TypeInt:
		b, err := d.take(16)
		if err != nil {
			return nil, err
		}
		n := new(big.Int).SetBytes(b)
		if b[0]&0x80 != 0 {
			n.Sub(n, two128)
		}
		return Int{n: n}, nil
	case TypeUInt:
		b, err := d.take(16)
		if err != nil {
			return nil, err
		}
		var u UInt
		u.n.SetBytes(b)
		return u, nil
	case TypeBuffer:
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		b, err := d.take(n)
		if err != nil {
			return nil, err
		}
		return Buffer(append([]byte(nil), b...)), nil
	case TypeTrue:
		return Bool(true), nil
	case TypeFalse:
		return Bool(false), nil
	case TypeStandardPrincipal, TypeContractPrincipal:
		return d.principal(Type(prefix) == TypeContractPrincipal)
	case TypeResponseOk, TypeResponseErr:
		inner, err := d.value(depth + 1)
		if err != nil {
			return nil, err
		}
		return Response{Ok: Type(prefix) == TypeResponseOk, Inner: inner}, nil
	case TypeNone:
		return None(), nil
	case TypeSome:
		inner, err := d.value(depth + 1)
		if err != nil {
			return nil, err
		}
		return Some(inner), nil
	case TypeList:
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		list := make(List, 0, n)
		for i := 0; i < n; i++ {
			item, err := d.value(depth + 1)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			list = append(list, item)
		}
		return list, nil
	case TypeTuple:
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		tuple := make(Tuple, n)
		for i := 0; i < n; i++ {
			nameLen, err := d.readByte()
			if err != nil {
				return nil, err
			}
			name, err := d.take(int(nameLen))
			if err != nil {
				return nil, err
			}
			item, err := d.value(depth + 1)
			if err != nil {
				return nil, fmt.Errorf("tuple.%s: %w", name, err)
			}
			tuple[string(name)] = item
		}
		return tuple, nil
	case TypeStringASCII, TypeStringUTF8:
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		b, err := d.take(n)
		if err != nil {
			return nil, err
		}
		if Type(prefix) == TypeStringUTF8 {
			if !utf8.Valid(b) {
				return nil, fmt.Errorf("string-utf8 is not valid UTF-8")
			}
			return StringUTF8(b), nil
		}
		return StringASCII(b), nil
	default:
		return nil, fmt.Errorf("unknown type prefix 0x%02x at offset %d", prefix, d.pos-1)
	}
}

func (d *decoder) principal(contract bool) (Value, error) {
	b, err := d.take(21)
	if err != nil {
		return nil, err
	}
	p := Principal{Version: b[0]}
	copy(p.Hash160[:], b[1:])
	if !contract {
		return p, nil
	}

	nameLen, err := d.readByte()
	if err != nil {
		return nil, err
	}
	name, err := d.take(int(nameLen))
	if err != nil {
		return nil, err
	}
	if len(name) == 0 {
		return nil, fmt.Errorf("empty contract name")
	}
	p.Name = string(name)
	return p, nil
}
