package clarity

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ResponseError is the native form of an (err v) response.
type ResponseError struct {
	Value any
}

func (e ResponseError) Error() string {
	return fmt.Sprintf("contract returned (err %v)", e.Value)
}

// ToNative converts a value into plain Go data:
//
//	int, uint            *big.Int
//	buffer               0x-prefixed hex string
//	bool                 bool
//	principal            string
//	string-ascii/utf8    string
//	(ok v), (some v)     ToNative(v)
//	none                 nil
//	(err v)              ResponseError{ToNative(v)}
//	list                 []any
//	tuple                map[string]any
func ToNative(v Value) any {
	switch val := v.(type) {
	case nil:
		return nil
	case Int:
		return val.Big()
	case UInt:
		return val.Big()
	case Buffer:
		return hexutil.Encode(val)
	case Bool:
		return bool(val)
	case Principal:
		return val.String()
	case StringASCII:
		return string(val)
	case StringUTF8:
		return string(val)
	case Response:
		if val.Ok {
			return ToNative(val.Inner)
		}
		return ResponseError{Value: ToNative(val.Inner)}
	case Optional:
		if val.Inner == nil {
			return nil
		}
		return ToNative(val.Inner)
	case List:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = ToNative(item)
		}
		return out
	case Tuple:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = ToNative(item)
		}
		return out
	default:
		return nil
	}
}

// Unwrap strips (ok v) and (some v) layers. An (err v) response becomes a
// ResponseError; none yields a nil value and no error.
func Unwrap(v Value) (Value, error) {
	for {
		switch val := v.(type) {
		case Response:
			if !val.Ok {
				return nil, ResponseError{Value: ToNative(val.Inner)}
			}
			v = val.Inner
		case Optional:
			if val.Inner == nil {
				return nil, nil
			}
			v = val.Inner
		default:
			return v, nil
		}
	}
}
