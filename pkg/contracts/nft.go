package contracts

import (
	"context"

	"github.com/montybasquiart/sihiri-build/pkg/clarity"
	"github.com/montybasquiart/sihiri-build/pkg/config"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

// MaxRoyaltyPercent is the highest royalty the ownership contract accepts.
const MaxRoyaltyPercent = 100

// NFT wraps the ownership contract.
type NFT struct {
	a *Adapter
}

// NFT returns the ownership contract wrapper.
func (a *Adapter) NFT() *NFT {
	return &NFT{a: a}
}

// GetOwner returns the token owner, or "" when the token does not exist.
func (n *NFT) GetOwner(ctx context.Context, tokenID uint64) (string, error) {
	v, err := n.a.read(ctx, config.ContractNFTOwnership, "get-owner", clarity.NewUInt(tokenID))
	if err != nil {
		return "", err
	}
	return asString(v)
}

// GetTokenURI returns the metadata URI embedded at mint time.
func (n *NFT) GetTokenURI(ctx context.Context, tokenID uint64) (string, error) {
	v, err := n.a.read(ctx, config.ContractNFTOwnership, "get-token-uri", clarity.NewUInt(tokenID))
	if err != nil {
		return "", err
	}
	return asString(v)
}

// GetCreator returns the principal that minted the token.
func (n *NFT) GetCreator(ctx context.Context, tokenID uint64) (string, error) {
	v, err := n.a.read(ctx, config.ContractNFTOwnership, "get-creator", clarity.NewUInt(tokenID))
	if err != nil {
		return "", err
	}
	return asString(v)
}

func (n *NFT) GetRoyaltyPercent(ctx context.Context, tokenID uint64) (uint64, error) {
	v, err := n.a.read(ctx, config.ContractNFTOwnership, "get-royalty-percent", clarity.NewUInt(tokenID))
	if err != nil {
		return 0, err
	}
	return asUint64(v)
}

func (n *NFT) IsTransferable(ctx context.Context, tokenID uint64) (bool, error) {
	v, err := n.a.read(ctx, config.ContractNFTOwnership, "is-transferable", clarity.NewUInt(tokenID))
	if err != nil {
		return false, err
	}
	return asBool(v)
}

func (n *NFT) GetLastTokenID(ctx context.Context) (uint64, error) {
	v, err := n.a.read(ctx, config.ContractNFTOwnership, "get-last-token-id")
	if err != nil {
		return 0, err
	}
	return asUint64(v)
}

// GetTokensByOwner lists the token ids held by owner.
func (n *NFT) GetTokensByOwner(ctx context.Context, owner string) ([]uint64, error) {
	arg, err := principalArg("owner", owner)
	if err != nil {
		return nil, err
	}
	v, err := n.a.read(ctx, config.ContractNFTOwnership, "get-tokens-by-owner", arg)
	if err != nil {
		return nil, err
	}
	return asUint64List(v)
}

// OwnsToken reports whether address currently owns tokenID.
func (n *NFT) OwnsToken(ctx context.Context, tokenID uint64, address string) (bool, error) {
	owner, err := n.GetOwner(ctx, tokenID)
	if err != nil {
		return false, err
	}
	return owner != "" && owner == address, nil
}

// Mint creates a token pointing at metadataURI (normally ipfs://<cid>).
func (n *NFT) Mint(ctx context.Context, metadataURI string, royaltyPercent uint64, transferable bool) (*Result, error) {
	var violations []errors.Violation
	if metadataURI == "" {
		violations = append(violations, errors.Violation{Field: "metadataUri", Message: "is required"})
	}
	if royaltyPercent > MaxRoyaltyPercent {
		violations = append(violations, errors.Violation{Field: "royaltyPercent", Message: "must be between 0 and 100"})
	}
	if len(violations) > 0 {
		return nil, errors.NewValidationErrors(violations)
	}

	args := []clarity.Value{
		clarity.StringUTF8(metadataURI),
		clarity.NewUInt(royaltyPercent),
		clarity.Bool(transferable),
	}
	return n.a.SubmitCall(ctx, config.ContractNFTOwnership, "mint", args, nil)
}

// Transfer sends tokenID to recipient.
func (n *NFT) Transfer(ctx context.Context, tokenID uint64, recipient string) (*Result, error) {
	to, err := principalArg("recipient", recipient)
	if err != nil {
		return nil, err
	}
	args := []clarity.Value{clarity.NewUInt(tokenID), to}
	return n.a.SubmitCall(ctx, config.ContractNFTOwnership, "transfer", args, nil)
}
