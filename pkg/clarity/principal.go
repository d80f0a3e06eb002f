package clarity

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/ripemd160"
)

// Address versions.
const (
	AddressVersionMainnetSingleSig byte = 22 // SP
	AddressVersionMainnetMultiSig  byte = 20 // SM
	AddressVersionTestnetSingleSig byte = 26 // ST
	AddressVersionTestnetMultiSig  byte = 21 // SN
)

const maxContractNameLength = 40

var contractNameRe = regexp.MustCompile(`^[a-zA-Z]([a-zA-Z0-9]|[-_])*$`)

// Principal is a standard principal, or a contract principal when Name is set.
type Principal struct {
	Version byte
	Hash160 [20]byte
	Name    string
}

// NewStandardPrincipal builds a standard principal from its parts.
func NewStandardPrincipal(version byte, hash [20]byte) Principal {
	return Principal{Version: version, Hash160: hash}
}

// ParsePrincipal parses "ADDRESS" or "ADDRESS.contract-name". A leading quote,
// as written in Clarity source, is accepted.
func ParsePrincipal(s string) (Principal, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "'")
	addr, name, isContract := strings.Cut(s, ".")

	version, hash, err := parseC32Address(addr)
	if err != nil {
		return Principal{}, err
	}
	p := Principal{Version: version, Hash160: hash}

	if isContract {
		if err := validateContractName(name); err != nil {
			return Principal{}, err
		}
		p.Name = name
	}
	return p, nil
}

// MustParsePrincipal is like ParsePrincipal but panics on error.
func MustParsePrincipal(s string) Principal {
	p, err := ParsePrincipal(s)
	if err != nil {
		panic(err)
	}
	return p
}

func validateContractName(name string) error {
	if len(name) == 0 || len(name) > maxContractNameLength {
		return fmt.Errorf("contract name must be 1-%d characters; got %d", maxContractNameLength, len(name))
	}
	if !contractNameRe.MatchString(name) {
		return fmt.Errorf("invalid contract name %q", name)
	}
	return nil
}

// Address returns the c32check address without the contract name.
func (p Principal) Address() string {
	return c32Address(p.Version, p.Hash160)
}

// String returns "ADDRESS" or "ADDRESS.contract-name".
func (p Principal) String() string {
	if p.Name != "" {
		return p.Address() + "." + p.Name
	}
	return p.Address()
}

// IsContract reports whether p names a contract.
func (p Principal) IsContract() bool { return p.Name != "" }

// IsMainnet reports whether the address version belongs to mainnet.
func (p Principal) IsMainnet() bool {
	return p.Version == AddressVersionMainnetSingleSig || p.Version == AddressVersionMainnetMultiSig
}

// Contract returns the contract principal deployed by p under name.
func (p Principal) Contract(name string) (Principal, error) {
	if err := validateContractName(name); err != nil {
		return Principal{}, err
	}
	return Principal{Version: p.Version, Hash160: p.Hash160, Name: name}, nil
}

func (p Principal) Type() Type {
	if p.Name != "" {
		return TypeContractPrincipal
	}
	return TypeStandardPrincipal
}

func (p Principal) Repr() string { return "'" + p.String() }
func (Principal) isValue() {}

// Hash160 computes ripemd160(sha256(data)).
func Hash160(data []byte) [20]byte {
	sha := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(sha[:])
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

// AddressFromPublicKey derives the single-sig address controlled by a
// compressed or uncompressed secp256k1 public key.
func AddressFromPublicKey(version byte, pubKey []byte) string {
	return c32Address(version, Hash160(pubKey))
}
