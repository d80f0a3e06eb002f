package auth

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/montybasquiart/sihiri-build/pkg/clarity"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

// IssuerPrefix is the DID method wallets use for the auth-response issuer.
const IssuerPrefix = "did:btc-addr:"

// identityAddressVersion is the base58check version byte of a Bitcoin-style
// P2PKH identity address.
const identityAddressVersion byte = 0x00

// ProfileImage is one entry of the schema.org image list in a wallet profile.
type ProfileImage struct {
	Type       string `json:"@type,omitempty"`
	Name       string `json:"name,omitempty"`
	ContentURL string `json:"contentUrl"`
}

// Profile is the public profile a wallet embeds in its auth response.
type Profile struct {
	StxAddress map[string]string `json:"stxAddress,omitempty"`
	Name       string            `json:"name,omitempty"`
	Image      []ProfileImage    `json:"image,omitempty"`
}

// AvatarURL returns the image named "avatar", or the first image.
func (p Profile) AvatarURL() string {
	for _, img := range p.Image {
		if img.Name == "avatar" {
			return img.ContentURL
		}
	}
	if len(p.Image) > 0 {
		return p.Image[0].ContentURL
	}
	return ""
}

// AuthResponseClaims are the claims of a wallet auth-response token.
type AuthResponseClaims struct {
	jwt.RegisteredClaims
	PublicKeys []string `json:"public_keys"`
	Profile    Profile  `json:"profile"`
	Username   string   `json:"username,omitempty"`
	ProfileURL string   `json:"profile_url,omitempty"`
}

// IdentityAddress returns the base58check P2PKH address controlled by pubKey.
func IdentityAddress(pubKey []byte) string {
	h := clarity.Hash160(pubKey)
	return base58CheckEncode(identityAddressVersion, h[:])
}

// networkVersions lists the address versions each profile network may use.
var networkVersions = map[string][2]byte{
	"mainnet": {clarity.AddressVersionMainnetSingleSig, clarity.AddressVersionMainnetMultiSig},
	"testnet": {clarity.AddressVersionTestnetSingleSig, clarity.AddressVersionTestnetMultiSig},
}

// VerifyAuthResponse checks a wallet auth-response token and returns the
// session data it grants. Any failure is an UnauthorizedError.
func VerifyAuthResponse(token string) (*UserData, error) {
	claims := &AuthResponseClaims{}
	var pubKey []byte

	parser := jwt.NewParser(jwt.WithValidMethods([]string{SigningMethodES256K.Alg()}))
	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if len(claims.PublicKeys) != 1 {
			return nil, fmt.Errorf("expected exactly one public key, got %d", len(claims.PublicKeys))
		}
		key, err := hex.DecodeString(strings.TrimPrefix(claims.PublicKeys[0], "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid public key: %w", err)
		}
		pubKey = key
		return key, nil
	})
	if err != nil {
		return nil, errors.NewUnauthorizedError(fmt.Sprintf("invalid auth response: %v", err))
	}

	if err := checkIssuer(claims.Issuer, pubKey); err != nil {
		return nil, errors.NewUnauthorizedError(err.Error())
	}

	addresses := make(map[string]string, len(networkVersions))
	for network, addr := range claims.Profile.StxAddress {
		allowed, ok := networkVersions[network]
		if !ok {
			continue
		}
		p, err := clarity.ParsePrincipal(addr)
		if err != nil || p.IsContract() || (p.Version != allowed[0] && p.Version != allowed[1]) {
			return nil, errors.NewUnauthorizedError(fmt.Sprintf("profile %s address %q is not a %s address", network, addr, network))
		}
		addresses[network] = p.Address()
	}
	for network, versions := range networkVersions {
		if _, ok := addresses[network]; !ok {
			addresses[network] = clarity.AddressFromPublicKey(versions[0], pubKey)
		}
	}

	data := &UserData{
		Addresses:  addresses,
		Username:   claims.Username,
		Name:       claims.Profile.Name,
		AvatarURL:  claims.Profile.AvatarURL(),
		AuthToken:  token,
		PublicKey:  hex.EncodeToString(pubKey),
		SignedInAt: time.Now().UTC().Truncate(time.Second),
	}
	if claims.ExpiresAt != nil {
		data.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return data, nil
}

// checkIssuer requires iss to name the identity address of pubKey.
func checkIssuer(iss string, pubKey []byte) error {
	if !strings.HasPrefix(iss, IssuerPrefix) {
		return fmt.Errorf("issuer %q is not a %s DID", iss, strings.TrimSuffix(IssuerPrefix, ":"))
	}
	version, hash, err := base58CheckDecode(strings.TrimPrefix(iss, IssuerPrefix))
	if err != nil {
		return fmt.Errorf("issuer address: %w", err)
	}
	want := clarity.Hash160(pubKey)
	if version != identityAddressVersion || string(hash) != string(want[:]) {
		return fmt.Errorf("issuer does not match signing key")
	}
	return nil
}
