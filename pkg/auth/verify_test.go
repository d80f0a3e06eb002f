package auth

import (
	"crypto/ecdsa"
	"encoding/hex"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montybasquiart/sihiri-build/pkg/clarity"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

const generatorPubKey = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"

func newKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key
}

// authClaims returns well-formed claims for key, valid for an hour.
func authClaims(key *ecdsa.PrivateKey) *AuthResponseClaims {
	pub := crypto.CompressPubkey(&key.PublicKey)
	now := time.Now()
	return &AuthResponseClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "resp-1",
			Issuer:    IssuerPrefix + IdentityAddress(pub),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		PublicKeys: []string{hex.EncodeToString(pub)},
		Username:   "alice.btc",
	}
}

func signClaims(t *testing.T, key *ecdsa.PrivateKey, claims *AuthResponseClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(SigningMethodES256K, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestIdentityAddress_KnownVector(t *testing.T) {
	pub, err := hex.DecodeString(generatorPubKey)
	require.NoError(t, err)
	assert.Equal(t, "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH", IdentityAddress(pub))
}

func TestBase58Check_RoundTrip(t *testing.T) {
	payload := []byte{0, 0, 1, 2, 3, 250}
	enc := base58CheckEncode(0x00, payload)
	assert.Equal(t, "1", enc[:1])

	version, got, err := base58CheckDecode(enc)
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), version)
	assert.Equal(t, payload, got)

	// Flip the last character to break the checksum.
	bad := enc[:len(enc)-1] + "z"
	if bad == enc {
		bad = enc[:len(enc)-1] + "y"
	}
	_, _, err = base58CheckDecode(bad)
	assert.Error(t, err)

	_, _, err = base58CheckDecode("0OIl")
	assert.Error(t, err)

	_, _, err = base58CheckDecode("1111")
	assert.Error(t, err, "too short for a checksum")
}

func TestVerifyAuthResponse_DerivesAddresses(t *testing.T) {
	key := newKey(t)
	claims := authClaims(key)
	token := signClaims(t, key, claims)

	data, err := VerifyAuthResponse(token)
	require.NoError(t, err)

	pub := crypto.CompressPubkey(&key.PublicKey)
	assert.Equal(t, clarity.AddressFromPublicKey(clarity.AddressVersionMainnetSingleSig, pub), data.Addresses["mainnet"])
	assert.Equal(t, clarity.AddressFromPublicKey(clarity.AddressVersionTestnetSingleSig, pub), data.Addresses["testnet"])
	assert.Equal(t, "alice.btc", data.Username)
	assert.Equal(t, token, data.AuthToken)
	assert.Equal(t, hex.EncodeToString(pub), data.PublicKey)
	assert.WithinDuration(t, claims.ExpiresAt.Time, data.ExpiresAt, time.Second)
}

func TestVerifyAuthResponse_ProfileAddresses(t *testing.T) {
	key := newKey(t)
	claims := authClaims(key)
	claims.Profile = Profile{
		StxAddress: map[string]string{
			"mainnet": "SP1THWXQ8368SDN2MJGE4BMDKMCHZ2GSVTS1X0BPM",
			"testnet": "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM",
		},
		Name: "Alice",
		Image: []ProfileImage{
			{Type: "ImageObject", Name: "cover", ContentURL: "https://example.com/cover.png"},
			{Type: "ImageObject", Name: "avatar", ContentURL: "https://example.com/a.png"},
		},
	}

	data, err := VerifyAuthResponse(signClaims(t, key, claims))
	require.NoError(t, err)
	assert.Equal(t, "SP1THWXQ8368SDN2MJGE4BMDKMCHZ2GSVTS1X0BPM", data.Addresses["mainnet"])
	assert.Equal(t, "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM", data.Addresses["testnet"])
	assert.Equal(t, "Alice", data.Name)
	assert.Equal(t, "https://example.com/a.png", data.AvatarURL)
}

func TestVerifyAuthResponse_Rejects(t *testing.T) {
	key := newKey(t)
	other := newKey(t)

	tests := []struct {
		name  string
		token func() string
	}{
		{
			name: "wrong network version",
			token: func() string {
				c := authClaims(key)
				c.Profile.StxAddress = map[string]string{"testnet": "SP1THWXQ8368SDN2MJGE4BMDKMCHZ2GSVTS1X0BPM"}
				return signClaims(t, key, c)
			},
		},
		{
			name: "contract principal as address",
			token: func() string {
				c := authClaims(key)
				c.Profile.StxAddress = map[string]string{"testnet": "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM.marketplace"}
				return signClaims(t, key, c)
			},
		},
		{
			name: "issuer of another key",
			token: func() string {
				c := authClaims(key)
				c.Issuer = IssuerPrefix + IdentityAddress(crypto.CompressPubkey(&other.PublicKey))
				return signClaims(t, key, c)
			},
		},
		{
			name: "issuer without did prefix",
			token: func() string {
				c := authClaims(key)
				c.Issuer = IdentityAddress(crypto.CompressPubkey(&key.PublicKey))
				return signClaims(t, key, c)
			},
		},
		{
			name: "signed by a different key",
			token: func() string {
				return signClaims(t, other, authClaims(key))
			},
		},
		{
			name: "expired",
			token: func() string {
				c := authClaims(key)
				c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
				return signClaims(t, key, c)
			},
		},
		{
			name: "two public keys",
			token: func() string {
				c := authClaims(key)
				c.PublicKeys = append(c.PublicKeys, c.PublicKeys[0])
				return signClaims(t, key, c)
			},
		},
		{
			name: "unsigned",
			token: func() string {
				s, err := jwt.NewWithClaims(jwt.SigningMethodNone, authClaims(key)).SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return s
			},
		},
		{
			name:  "garbage",
			token: func() string { return "not.a.token" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyAuthResponse(tt.token())
			require.Error(t, err)
			assert.True(t, errors.IsUnauthorized(err), "got %T: %v", err, err)
		})
	}
}
