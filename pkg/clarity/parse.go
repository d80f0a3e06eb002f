package clarity

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseLiteral parses a single Clarity literal as typed on a command line:
//
//	u10  -3  true  none  0xdeadbeef  "ascii"  u"utf8"  'SP...  SP....name
//
// Lists and tuples are not accepted.
func ParseLiteral(s string) (Value, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, fmt.Errorf("empty literal")
	case s == "true":
		return Bool(true), nil
	case s == "false":
		return Bool(false), nil
	case s == "none":
		return None(), nil
	case strings.HasPrefix(s, "u\""):
		str, err := strconv.Unquote(s[1:])
		if err != nil {
			return nil, fmt.Errorf("invalid string-utf8 literal %s: %w", s, err)
		}
		return StringUTF8(str), nil
	case strings.HasPrefix(s, "\""):
		str, err := strconv.Unquote(s)
		if err != nil {
			return nil, fmt.Errorf("invalid string-ascii literal %s: %w", s, err)
		}
		return StringASCII(str), nil
	case strings.HasPrefix(s, "0x"):
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("invalid buffer literal %s: %w", s, err)
		}
		return Buffer(b), nil
	case strings.HasPrefix(s, "u"):
		return ParseUInt(s)
	case strings.HasPrefix(s, "'") || strings.HasPrefix(s, "S"):
		return ParsePrincipal(s)
	default:
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("unrecognized literal %q", s)
		}
		return NewIntFromBig(n)
	}
}
