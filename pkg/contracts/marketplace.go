package contracts

import (
	"context"

	"github.com/montybasquiart/sihiri-build/pkg/clarity"
	"github.com/montybasquiart/sihiri-build/pkg/config"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

// Marketplace wraps the listing and auction contract.
type Marketplace struct {
	a *Adapter
}

// Marketplace returns the marketplace contract wrapper.
func (a *Adapter) Marketplace() *Marketplace {
	return &Marketplace{a: a}
}

func (m *Marketplace) GetListing(ctx context.Context, listingID uint64) (Record, error) {
	v, err := m.a.read(ctx, config.ContractMarketplace, "get-listing", clarity.NewUInt(listingID))
	if err != nil {
		return nil, err
	}
	return asRecord(v)
}

func (m *Marketplace) GetAuction(ctx context.Context, auctionID uint64) (Record, error) {
	v, err := m.a.read(ctx, config.ContractMarketplace, "get-auction", clarity.NewUInt(auctionID))
	if err != nil {
		return nil, err
	}
	return asRecord(v)
}

func (m *Marketplace) GetHighestBid(ctx context.Context, auctionID uint64) (Record, error) {
	v, err := m.a.read(ctx, config.ContractMarketplace, "get-highest-bid", clarity.NewUInt(auctionID))
	if err != nil {
		return nil, err
	}
	return asRecord(v)
}

// GetListingsBySeller lists the listing ids created by seller.
func (m *Marketplace) GetListingsBySeller(ctx context.Context, seller string) ([]uint64, error) {
	arg, err := principalArg("seller", seller)
	if err != nil {
		return nil, err
	}
	v, err := m.a.read(ctx, config.ContractMarketplace, "get-listings-by-seller", arg)
	if err != nil {
		return nil, err
	}
	return asUint64List(v)
}

// GetAuctionsBySeller lists the auction ids created by seller.
func (m *Marketplace) GetAuctionsBySeller(ctx context.Context, seller string) ([]uint64, error) {
	arg, err := principalArg("seller", seller)
	if err != nil {
		return nil, err
	}
	v, err := m.a.read(ctx, config.ContractMarketplace, "get-auctions-by-seller", arg)
	if err != nil {
		return nil, err
	}
	return asUint64List(v)
}

func (m *Marketplace) IsTokenListed(ctx context.Context, tokenID uint64) (bool, error) {
	v, err := m.a.read(ctx, config.ContractMarketplace, "is-token-listed", clarity.NewUInt(tokenID))
	if err != nil {
		return false, err
	}
	return asBool(v)
}

// CreateListing lists tokenID at price microSTX until block height expiry.
func (m *Marketplace) CreateListing(ctx context.Context, tokenID, price, expiry uint64) (*Result, error) {
	if price == 0 {
		return nil, errors.NewValidationError("price", "must be greater than zero")
	}
	nft, err := m.a.contractArg(config.ContractNFTOwnership)
	if err != nil {
		return nil, err
	}

	args := []clarity.Value{nft, clarity.NewUInt(tokenID), clarity.NewUInt(price), clarity.NewUInt(expiry)}
	return m.a.SubmitCall(ctx, config.ContractMarketplace, "create-listing", args, nil)
}

// BuyListing buys a listing, capping the buyer's STX outflow at price.
func (m *Marketplace) BuyListing(ctx context.Context, listingID, price uint64) (*Result, error) {
	sender, err := m.a.requireSender()
	if err != nil {
		return nil, err
	}
	nft, err := m.a.contractArg(config.ContractNFTOwnership)
	if err != nil {
		return nil, err
	}
	royalty, err := m.a.contractArg(config.ContractRoyalty)
	if err != nil {
		return nil, err
	}

	args := []clarity.Value{clarity.NewUInt(listingID), nft, royalty}
	pcs := []PostCondition{STXPostCondition(sender, ConditionLessEqual, price)}
	return m.a.SubmitCall(ctx, config.ContractMarketplace, "buy-listing", args, pcs)
}

// PlaceBid bids amount microSTX on an auction.
func (m *Marketplace) PlaceBid(ctx context.Context, auctionID, amount uint64) (*Result, error) {
	if amount == 0 {
		return nil, errors.NewValidationError("amount", "must be greater than zero")
	}
	sender, err := m.a.requireSender()
	if err != nil {
		return nil, err
	}

	args := []clarity.Value{clarity.NewUInt(auctionID), clarity.NewUInt(amount)}
	pcs := []PostCondition{STXPostCondition(sender, ConditionLessEqual, amount)}
	return m.a.SubmitCall(ctx, config.ContractMarketplace, "place-bid", args, pcs)
}
