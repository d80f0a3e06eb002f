package clarity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

const devnetDeployer = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"

func TestEncodeHex(t *testing.T) {
	deployer := MustParsePrincipal(devnetDeployer)
	contract, err := deployer.Contract("nft-ownership")
	require.NoError(t, err)

	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"uint", NewUInt(1), "0x0100000000000000000000000000000001"},
		{"int negative", NewInt(-1), "0x00ffffffffffffffffffffffffffffffff"},
		{"int positive", NewInt(258), "0x0000000000000000000000000000000102"},
		{"true", Bool(true), "0x03"},
		{"false", Bool(false), "0x04"},
		{"none", None(), "0x09"},
		{"some uint", Some(NewUInt(5)), "0x0a0100000000000000000000000000000005"},
		{"ok true", Ok(Bool(true)), "0x0703"},
		{"err uint", Err(NewUInt(404)), "0x080100000000000000000000000000000194"},
		{"buffer", Buffer{0xde, 0xad}, "0x0200000002dead"},
		{"string ascii", StringASCII("hi"), "0x0d000000026869"},
		{"string utf8", StringUTF8("é"), "0x0e00000002c3a9"},
		{"standard principal", deployer, "0x051a6d78de7b0625dfbfc16c3a8a5735f6dc3dc3f2ce"},
		{"contract principal", contract, "0x061a6d78de7b0625dfbfc16c3a8a5735f6dc3dc3f2ce0d6e66742d6f776e657273686970"},
		{"list", List{Bool(true), Bool(false)}, "0x0b000000020304"},
		{"tuple sorted by name", Tuple{"b": Bool(false), "a": Bool(true)}, "0x0c00000002016103016204"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeHex(tt.value)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)

			decoded, err := DecodeHex(got)
			require.NoError(t, err)
			require.Equal(t, tt.value.Repr(), decoded.Repr())
		})
	}
}

func TestEncodeRejects(t *testing.T) {
	tests := []struct {
		name  string
		value Value
	}{
		{"non ascii", StringASCII("é")},
		{"invalid utf8", StringUTF8(string([]byte{0xff}))},
		{"nil in list", List{nil}},
		{"empty tuple key", Tuple{"": Bool(true)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.value)
			require.Error(t, err)
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		hex  string
	}{
		{"empty", "0x"},
		{"unknown prefix", "0x42"},
		{"truncated uint", "0x0100"},
		{"trailing bytes", "0x0303"},
		{"length past end", "0x02ffffffff00"},
		{"bad hex", "0xzz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeHex(tt.hex)
			require.Error(t, err)
		})
	}
}

func TestDecodeHexWithoutPrefix(t *testing.T) {
	v, err := DecodeHex("0703")
	require.NoError(t, err)
	require.Equal(t, Ok(Bool(true)), v)
}

func TestIntRange(t *testing.T) {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	v, err := NewIntFromBig(max)
	require.NoError(t, err)

	hex, err := EncodeHex(v)
	require.NoError(t, err)
	require.Equal(t, "0x007fffffffffffffffffffffffffffffff", hex)

	_, err = NewIntFromBig(new(big.Int).Add(max, big.NewInt(1)))
	require.Error(t, err)
}

func TestUIntRange(t *testing.T) {
	u, err := ParseUInt("u340282366920938463463374607431768211455")
	require.NoError(t, err)
	hex, err := EncodeHex(u)
	require.NoError(t, err)
	require.Equal(t, "0x01ffffffffffffffffffffffffffffffff", hex)

	_, err = ParseUInt("340282366920938463463374607431768211456")
	require.Error(t, err)
	_, err = ParseUInt("-1")
	require.Error(t, err)

	small, err := ParseUInt("42")
	require.NoError(t, err)
	n, ok := small.Uint64()
	require.True(t, ok)
	require.Equal(t, uint64(42), n)
}

func TestDecodeDepthLimit(t *testing.T) {
	data := make([]byte, 0, maxDepth+3)
	for i := 0; i < maxDepth+2; i++ {
		data = append(data, byte(TypeSome))
	}
	data = append(data, byte(TypeTrue))
	_, err := Decode(data)
	require.Error(t, err)
}
