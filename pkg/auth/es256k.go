package auth

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v4"
)

// SigningMethodES256K signs and verifies JWTs with secp256k1 over SHA-256,
// the scheme Stacks wallets use for auth responses. Signatures are the raw
// 64-byte r||s form.
var SigningMethodES256K = &signingMethodES256K{}

type signingMethodES256K struct{}

func init() {
	jwt.RegisterSigningMethod(SigningMethodES256K.Alg(), func() jwt.SigningMethod {
		return SigningMethodES256K
	})
}

func (m *signingMethodES256K) Alg() string {
	return "ES256K"
}

// Verify accepts a compressed or uncompressed public key as []byte or
// *ecdsa.PublicKey.
func (m *signingMethodES256K) Verify(signingString, signature string, key interface{}) error {
	var pub []byte
	switch k := key.(type) {
	case []byte:
		pub = k
	case *ecdsa.PublicKey:
		pub = crypto.FromECDSAPub(k)
	default:
		return jwt.ErrInvalidKeyType
	}

	sig, err := jwt.DecodeSegment(signature)
	if err != nil {
		return err
	}
	if len(sig) != 64 {
		return fmt.Errorf("es256k: signature must be 64 bytes, got %d", len(sig))
	}

	digest := sha256.Sum256([]byte(signingString))
	if !crypto.VerifySignature(pub, digest[:], sig) {
		return jwt.ErrSignatureInvalid
	}
	return nil
}

// Sign expects an *ecdsa.PrivateKey on the secp256k1 curve.
func (m *signingMethodES256K) Sign(signingString string, key interface{}) (string, error) {
	priv, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return "", jwt.ErrInvalidKeyType
	}

	digest := sha256.Sum256([]byte(signingString))
	sig, err := crypto.Sign(digest[:], priv)
	if err != nil {
		return "", err
	}
	// Drop the recovery id.
	return jwt.EncodeSegment(sig[:64]), nil
}
