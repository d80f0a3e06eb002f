package clarity

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"
)

const c32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var big32 = big.NewInt(32)

// c32Encode renders data in Crockford base32, keeping one '0' per leading zero byte.
func c32Encode(data []byte) string {
	zeros := 0
	for zeros < len(data) && data[zeros] == 0 {
		zeros++
	}

	n := new(big.Int).SetBytes(data)
	mod := new(big.Int)
	var digits []byte
	for n.Sign() > 0 {
		n.DivMod(n, big32, mod)
		digits = append(digits, c32Alphabet[mod.Int64()])
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return strings.Repeat("0", zeros) + string(digits)
}

func c32Normalize(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, "O", "0")
	s = strings.ReplaceAll(s, "L", "1")
	return strings.ReplaceAll(s, "I", "1")
}

func c32Decode(s string) ([]byte, error) {
	s = c32Normalize(s)
	zeros := 0
	for zeros < len(s) && s[zeros] == '0' {
		zeros++
	}

	n := new(big.Int)
	for i := zeros; i < len(s); i++ {
		idx := strings.IndexByte(c32Alphabet, s[i])
		if idx < 0 {
			return nil, fmt.Errorf("invalid c32 character %q", s[i])
		}
		n.Mul(n, big32)
		n.Add(n, big.NewInt(int64(idx)))
	}
	return append(make([]byte, zeros), n.Bytes()...), nil
}

func c32Checksum(version byte, data []byte) []byte {
	first := sha256.Sum256(append([]byte{version}, data...))
	second := sha256.Sum256(first[:])
	return second[:4]
}

// c32Address renders an "S"-prefixed c32check address.
func c32Address(version byte, hash [20]byte) string {
	payload := append(hash[:], c32Checksum(version, hash[:])...)
	return "S" + string(c32Alphabet[version&0x1f]) + c32Encode(payload)
}

// parseC32Address decodes and checksums an "S"-prefixed address.
func parseC32Address(addr string) (byte, [20]byte, error) {
	var hash [20]byte
	if len(addr) < 5 || (addr[0] != 'S' && addr[0] != 's') {
		return 0, hash, fmt.Errorf("invalid address %q: must start with S", addr)
	}

	version := strings.IndexByte(c32Alphabet, c32Normalize(addr[1:2])[0])
	if version < 0 {
		return 0, hash, fmt.Errorf("invalid address %q: bad version character", addr)
	}

	payload, err := c32Decode(addr[2:])
	if err != nil {
		return 0, hash, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	if len(payload) != 24 {
		return 0, hash, fmt.Errorf("invalid address %q: decoded length %d, want 24", addr, len(payload))
	}

	if !bytes.Equal(payload[20:], c32Checksum(byte(version), payload[:20])) {
		return 0, hash, fmt.Errorf("invalid address %q: checksum mismatch", addr)
	}
	copy(hash[:], payload[:20])
	return byte(version), hash, nil
}
