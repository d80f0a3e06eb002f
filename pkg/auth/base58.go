package auth

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

func doubleSHA256(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:]
}

// base58CheckEncode prefixes payload with version and appends a 4-byte
// double-sha256 checksum.
func base58CheckEncode(version byte, payload []byte) string {
	buf := append([]byte{version}, payload...)
	return base58.Encode(append(buf, doubleSHA256(buf)[:4]...))
}

// base58CheckDecode is the inverse of base58CheckEncode.
func base58CheckDecode(s string) (byte, []byte, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return 0, nil, fmt.Errorf("base58check: %w", err)
	}
	if len(raw) < 5 {
		return 0, nil, fmt.Errorf("base58check payload too short")
	}
	body, sum := raw[:len(raw)-4], raw[len(raw)-4:]
	if !bytes.Equal(doubleSHA256(body)[:4], sum) {
		return 0, nil, fmt.Errorf("base58check checksum mismatch")
	}
	return body[0], body[1:], nil
}
