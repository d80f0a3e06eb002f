package wallet

import (
	"context"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/montybasquiart/sihiri-build/pkg/auth"
	"github.com/montybasquiart/sihiri-build/pkg/contracts"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

// SimulatedWallet answers wallet requests without user interaction. It backs
// the mock_blockchain_calls feature flag: sign-in produces a genuinely signed
// auth response for a throwaway key, and transactions are approved with a
// fabricated txid (or rejected when Reject is set). Nothing is broadcast.
type SimulatedWallet struct {
	Reject bool

	key    *ecdsa.PrivateKey
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	requests []contracts.TxRequest
}

// NewSimulatedWallet creates a simulator with a fresh secp256k1 key.
func NewSimulatedWallet(logger *zap.Logger) (*SimulatedWallet, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, errors.NewInternalError("failed to generate simulator key", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulatedWallet{key: key, logger: logger, now: time.Now}, nil
}

// PublicKey returns the simulator's compressed public key.
func (s *SimulatedWallet) PublicKey() []byte {
	return crypto.CompressPubkey(&s.key.PublicKey)
}

// Authenticate returns a signed auth response valid for 24 hours.
func (s *SimulatedWallet) Authenticate(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Reject {
		return "", errors.NewCancelledError(ParamAuthRequest)
	}

	pub := s.PublicKey()
	now := s.now()
	claims := &auth.AuthResponseClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        hex.EncodeToString(crypto.Keccak256(pub, []byte(now.String()))[:16]),
			Issuer:    auth.IssuerPrefix + auth.IdentityAddress(pub),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
		PublicKeys: []string{hex.EncodeToString(pub)},
		Profile:    auth.Profile{Name: "Simulated Creator"},
	}

	token, err := jwt.NewWithClaims(auth.SigningMethodES256K, claims).SignedString(s.key)
	if err != nil {
		return "", errors.NewInternalError("failed to sign simulated auth response", err)
	}
	s.logger.Debug("Simulated sign-in", zap.String("issuer", claims.Issuer))
	return token, nil
}

// RequestTransaction records req and approves it with a deterministic txid
// derived from the request, unless Reject is set.
func (s *SimulatedWallet) RequestTransaction(ctx context.Context, req contracts.TxRequest) (*contracts.TxResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.Reject {
		s.logger.Info("Simulated wallet rejected transaction", zap.String("function", req.FunctionName))
		return nil, errors.NewCancelledError(ParamTxRequest)
	}

	b, err := json.Marshal(req)
	if err != nil {
		return nil, errors.NewInternalError("failed to encode transaction request", err)
	}
	sum := sha256.Sum256(b)
	txID := "0x" + hex.EncodeToString(sum[:])
	s.logger.Info("Simulated wallet approved transaction",
		zap.String("contract", req.ContractAddress+"."+req.ContractName),
		zap.String("function", req.FunctionName),
		zap.String("txid", txID))
	return &contracts.TxResponse{TxID: txID}, nil
}

// Requests returns every transaction request seen so far.
func (s *SimulatedWallet) Requests() []contracts.TxRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]contracts.TxRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

var (
	_ auth.Authenticator = (*SimulatedWallet)(nil)
	_ contracts.Wallet   = (*SimulatedWallet)(nil)
)
