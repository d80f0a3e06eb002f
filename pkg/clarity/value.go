package clarity

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// Type is the wire type prefix of a Clarity value.
type Type byte

const (
	TypeInt               Type = 0x00
	TypeUInt              Type = 0x01
	TypeBuffer            Type = 0x02
	TypeTrue              Type = 0x03
	TypeFalse             Type = 0x04
	TypeStandardPrincipal Type = 0x05
	TypeContractPrincipal Type = 0x06
	TypeResponseOk        Type = 0x07
	TypeResponseErr       Type = 0x08
	TypeNone              Type = 0x09
	TypeSome              Type = 0x0a
	TypeList              Type = 0x0b
	TypeTuple             Type = 0x0c
	TypeStringASCII       Type = 0x0d
	TypeStringUTF8        Type = 0x0e
)

var typeNames = map[Type]string{
	TypeInt:               "int",
	TypeUInt:              "uint",
	TypeBuffer:            "buffer",
	TypeTrue:              "true",
	TypeFalse:             "false",
	TypeStandardPrincipal: "standard-principal",
	TypeContractPrincipal: "contract-principal",
	TypeResponseOk:        "response-ok",
	TypeResponseErr:       "response-err",
	TypeNone:              "none",
	TypeSome:              "some",
	TypeList:              "list",
	TypeTuple:             "tuple",
	TypeStringASCII:       "string-ascii",
	TypeStringUTF8:        "string-utf8",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(0x%02x)", byte(t))
}

// Value is a Clarity value. The set of implementations is closed.
type Value interface {
	// Type returns the wire type prefix.
	Type() Type
	// Repr renders the value as a Clarity literal, e.g. (some u1).
	Repr() string

	isValue()
}

var (
	maxInt  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minInt  = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	two128  = new(big.Int).Lsh(big.NewInt(1), 128)
	maxUInt = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 128), 1)
)

// Int is a signed 128-bit integer.
type Int struct{ n *big.Int }

// NewInt returns an Int holding v.
func NewInt(v int64) Int { return Int{n: big.NewInt(v)} }

// NewIntFromBig returns an Int holding v, which must fit in 128 bits.
func NewIntFromBig(v *big.Int) (Int, error) {
	if v == nil || v.Cmp(minInt) < 0 || v.Cmp(maxInt) > 0 {
		return Int{}, fmt.Errorf("int %v out of 128-bit range", v)
	}
	return Int{n: new(big.Int).Set(v)}, nil
}

// Big returns a copy of the integer.
func (v Int) Big() *big.Int {
	if v.n == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v.n)
}

func (Int) Type() Type { return TypeInt }
func (v Int) Repr() string { return v.Big().String() }
func (Int) isValue() {}

// UInt is an unsigned 128-bit integer.
type UInt struct{ n uint256.Int }

// NewUInt returns a UInt holding v.
func NewUInt(v uint64) UInt {
	var u UInt
	u.n.SetUint64(v)
	return u
}

// NewUIntFromBig returns a UInt holding v, which must fit in 128 bits.
func NewUIntFromBig(v *big.Int) (UInt, error) {
	if v == nil || v.Sign() < 0 {
		return UInt{}, fmt.Errorf("uint %v is negative", v)
	}
	n, overflow := uint256.FromBig(v)
	if overflow || n.Gt(maxUInt) {
		return UInt{}, fmt.Errorf("uint %v out of 128-bit range", v)
	}
	return UInt{n: *n}, nil
}

// ParseUInt parses a decimal string with an optional "u" prefix.
func ParseUInt(s string) (UInt, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "u")
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return UInt{}, fmt.Errorf("invalid uint %q", s)
	}
	return NewUIntFromBig(n)
}

// Uint64 returns the value and whether it fits in a uint64.
func (v UInt) Uint64() (uint64, bool) {
	return v.n.Uint64(), v.n.IsUint64()
}

// Big returns the value as a big.Int.
func (v UInt) Big() *big.Int { return v.n.ToBig() }

func (UInt) Type() Type { return TypeUInt }
func (v UInt) Repr() string { return "u" + v.n.ToBig().String() }
func (UInt) isValue() {}

// Buffer is a byte buffer.
type Buffer []byte

func (Buffer) Type() Type { return TypeBuffer }
func (v Buffer) Repr() string { return hexutil.Encode(v) }
func (Buffer) isValue() {}

// Bool is a boolean.
type Bool bool

func (v Bool) Type() Type {
	if v {
		return TypeTrue
	}
	return TypeFalse
}
func (v Bool) Repr() string { return strconv.FormatBool(bool(v)) }
func (Bool) isValue() {}

// StringASCII is an ASCII string.
type StringASCII string

func (StringASCII) Type() Type { return TypeStringASCII }
func (v StringASCII) Repr() string { return strconv.Quote(string(v)) }
func (StringASCII) isValue() {}

// StringUTF8 is a UTF-8 string.
type StringUTF8 string

func (StringUTF8) Type() Type { return TypeStringUTF8 }
func (v StringUTF8) Repr() string { return "u" + strconv.Quote(string(v)) }
func (StringUTF8) isValue() {}

// Response is (ok v) or (err v).
type Response struct {
	Ok    bool
	Inner Value
}

// Ok returns (ok v).
func Ok(v Value) Response { return Response{Ok: true, Inner: v} }

// Err returns (err v).
func Err(v Value) Response { return Response{Ok: false, Inner: v} }

func (v Response) Type() Type {
	if v.Ok {
		return TypeResponseOk
	}
	return TypeResponseErr
}

func (v Response) Repr() string {
	if v.Ok {
		return "(ok " + repr(v.Inner) + ")"
	}
	return "(err " + repr(v.Inner) + ")"
}
func (Response) isValue() {}

// Optional is (some v), or none when Inner is nil.
type Optional struct {
	Inner Value
}

// Some returns (some v).
func Some(v Value) Optional { return Optional{Inner: v} }

// None returns none.
func None() Optional { return Optional{} }

// IsNone reports whether the optional is empty.
func (v Optional) IsNone() bool { return v.Inner == nil }

func (v Optional) Type() Type {
	if v.Inner == nil {
		return TypeNone
	}
	return TypeSome
}

func (v Optional) Repr() string {
	if v.Inner == nil {
		return "none"
	}
	return "(some " + v.Inner.Repr() + ")"
}
func (Optional) isValue() {}

// List is a homogeneous list.
type List []Value

func (List) Type() Type { return TypeList }
func (v List) Repr() string {
	parts := make([]string, 0, len(v)+1)
	parts = append(parts, "list")
	for _, item := range v {
		parts = append(parts, repr(item))
	}
	return "(" + strings.Join(parts, " ") + ")"
}
func (List) isValue() {}

// Tuple maps field names to values. Fields are encoded in name order.
type Tuple map[string]Value

// Keys returns the field names sorted the way they are encoded.
func (v Tuple) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (Tuple) Type() Type { return TypeTuple }
func (v Tuple) Repr() string {
	var b strings.Builder
	b.WriteString("(tuple")
	for _, k := range v.Keys() {
		fmt.Fprintf(&b, " (%s %s)", k, repr(v[k]))
	}
	b.WriteString(")")
	return b.String()
}
func (Tuple) isValue() {}

func repr(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.Repr()
}
