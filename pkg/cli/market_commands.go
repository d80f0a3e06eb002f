package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/montybasquiart/sihiri-build/pkg/contracts"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

func newMarketCommand(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "market",
		Short: "Read and trade on the marketplace",
	}

	market := func(app *App) *contracts.Marketplace { return app.Contracts.Marketplace() }

	cmd.AddCommand(
		s.recordCommand("listing <listing-id>", "Show a fixed-price listing", "listing",
			func(ctx context.Context, app *App, id uint64) (contracts.Record, error) {
				return market(app).GetListing(ctx, id)
			}),
		s.recordCommand("auction <auction-id>", "Show an auction", "auction",
			func(ctx context.Context, app *App, id uint64) (contracts.Record, error) {
				return market(app).GetAuction(ctx, id)
			}),
		s.recordCommand("highest-bid <auction-id>", "Show the highest bid of an auction", "bid",
			func(ctx context.Context, app *App, id uint64) (contracts.Record, error) {
				return market(app).GetHighestBid(ctx, id)
			}),
		s.idsCommand("listings [seller]", "List listing ids of a seller (default: signed-in address)", "LISTING",
			func(ctx context.Context, app *App, seller string) ([]uint64, error) {
				return market(app).GetListingsBySeller(ctx, seller)
			}),
		s.idsCommand("auctions [seller]", "List auction ids of a seller (default: signed-in address)", "AUCTION",
			func(ctx context.Context, app *App, seller string) ([]uint64, error) {
				return market(app).GetAuctionsBySeller(ctx, seller)
			}),
	)

	listed := &cobra.Command{
		Use:   "listed <token-id>",
		Short: "Check whether a token is listed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			id, err := parseUint("token-id", args[0])
			if err != nil {
				return err
			}
			ctx, cancel := s.readContext(cmd)
			defer cancel()

			ok, err := market(app).IsTokenListed(ctx, id)
			if err != nil {
				return err
			}
			return s.renderKV(map[string]bool{"listed": ok}, [][2]string{{"Listed", strconv.FormatBool(ok)}})
		},
	}

	var price, expiry uint64
	list := &cobra.Command{
		Use:   "list <token-id>",
		Short: "List a token for sale at a fixed price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			id, err := parseUint("token-id", args[0])
			if err != nil {
				return err
			}
			res, err := market(app).CreateListing(cmd.Context(), id, price, expiry)
			if err != nil {
				return err
			}
			return s.renderResult(app, res)
		},
	}
	list.Flags().Uint64Var(&price, "price", 0, "Price in microSTX")
	list.Flags().Uint64Var(&expiry, "expiry", 0, "Block height at which the listing expires")
	_ = list.MarkFlagRequired("price")
	_ = list.MarkFlagRequired("expiry")

	var maxPrice uint64
	buy := &cobra.Command{
		Use:   "buy <listing-id>",
		Short: "Buy a listing; the wallet never sends more than --price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			id, err := parseUint("listing-id", args[0])
			if err != nil {
				return err
			}
			if maxPrice == 0 {
				return errors.NewValidationError("price", "must be greater than zero")
			}
			res, err := market(app).BuyListing(cmd.Context(), id, maxPrice)
			if err != nil {
				return err
			}
			return s.renderResult(app, res)
		},
	}
	buy.Flags().Uint64Var(&maxPrice, "price", 0, "Listing price in microSTX")
	_ = buy.MarkFlagRequired("price")

	var amount uint64
	bid := &cobra.Command{
		Use:   "bid <auction-id>",
		Short: "Bid on an auction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			id, err := parseUint("auction-id", args[0])
			if err != nil {
				return err
			}
			res, err := market(app).PlaceBid(cmd.Context(), id, amount)
			if err != nil {
				return err
			}
			return s.renderResult(app, res)
		},
	}
	bid.Flags().Uint64Var(&amount, "amount", 0, "Bid in microSTX")
	_ = bid.MarkFlagRequired("amount")

	cmd.AddCommand(listed, list, buy, bid)
	return cmd
}

// recordCommand builds a read command that prints the tuple found by id.
func (s *state) recordCommand(use, short, resource string, get func(context.Context, *App, uint64) (contracts.Record, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			id, err := parseUint("id", args[0])
			if err != nil {
				return err
			}
			ctx, cancel := s.readContext(cmd)
			defer cancel()

			rec, err := get(ctx, app, id)
			if err != nil {
				return err
			}
			if rec == nil {
				return errors.NewNotFoundError(resource, args[0])
			}
			return s.renderRecord(rec)
		},
	}
}

// idsCommand builds a read command that lists ids owned by an address.
func (s *state) idsCommand(use, short, header string, get func(context.Context, *App, string) ([]uint64, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			addr, err := addressArg(app, args)
			if err != nil {
				return err
			}
			ctx, cancel := s.readContext(cmd)
			defer cancel()

			ids, err := get(ctx, app, addr)
			if err != nil {
				return err
			}
			return s.renderIDs(ids, header)
		},
	}
}
