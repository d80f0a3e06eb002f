package cli

import (
	"context"
	"math/big"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/montybasquiart/sihiri-build/pkg/contracts"
)

func newRoyaltyCommand(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "royalty",
		Short: "Read royalty payments and pay creators",
	}

	last := &cobra.Command{
		Use:   "last",
		Short: "Print the id of the most recent payment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			ctx, cancel := s.readContext(cmd)
			defer cancel()

			id, err := app.Contracts.Royalty().GetLastPaymentID(ctx)
			if err != nil {
				return err
			}
			return s.renderKV(map[string]uint64{"last_payment_id": id}, [][2]string{{"Last payment", strconv.FormatUint(id, 10)}})
		},
	}

	payment := s.recordCommand("payment <payment-id>", "Show a payment", "payment",
		func(ctx context.Context, app *App, id uint64) (contracts.Record, error) {
			return app.Contracts.Royalty().GetPaymentDetails(ctx, id)
		})

	var token string
	earnings := &cobra.Command{
		Use:   "earnings [creator]",
		Short: "Show a creator's total earnings, or per token with --token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			creator, err := addressArg(app, args)
			if err != nil {
				return err
			}
			ctx, cancel := s.readContext(cmd)
			defer cancel()

			var amount *big.Int
			if token != "" {
				id, err := parseUint("token", token)
				if err != nil {
					return err
				}
				amount, err = app.Contracts.Royalty().GetCreatorTokenEarnings(ctx, creator, id)
				if err != nil {
					return err
				}
			} else {
				amount, err = app.Contracts.Royalty().GetCreatorEarnings(ctx, creator)
				if err != nil {
					return err
				}
			}
			if amount == nil {
				amount = new(big.Int)
			}
			out := map[string]string{"creator": creator, "amount": amount.String()}
			return s.renderKV(out, [][2]string{{"Creator", creator}, {"Earnings (microSTX)", amount.String()}})
		},
	}
	earnings.Flags().StringVar(&token, "token", "", "Restrict to one token id")

	var (
		amount      uint64
		paymentType string
		note        string
	)
	pay := &cobra.Command{
		Use:   "pay <recipient>",
		Short: "Pay a creator directly; the wallet never sends more than --amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			res, err := app.Contracts.Royalty().DirectPayment(cmd.Context(), args[0], amount, paymentType, note)
			if err != nil {
				return err
			}
			return s.renderResult(app, res)
		},
	}
	pay.Flags().Uint64Var(&amount, "amount", 0, "Amount in microSTX")
	pay.Flags().StringVar(&paymentType, "type", "tip", "Payment type recorded on chain")
	pay.Flags().StringVar(&note, "note", "", "Note recorded on chain")
	_ = pay.MarkFlagRequired("amount")

	cmd.AddCommand(last, payment, earnings, pay)
	return cmd
}
