package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/montybasquiart/sihiri-build/pkg/clarity"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

func newContractCommand(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contract",
		Short: "Call any registered contract function",
		Long: `Call a function of a registered contract by logical name
(nftOwnership, identity, royalty, marketplace). Arguments are Clarity
literals: u10, -3, true, none, 0xbeef, "ascii", u"utf8", 'SP... or SP....name.`,
	}

	var sender string
	read := &cobra.Command{
		Use:   "read <contract> <function> [args...]",
		Short: "Evaluate a read-only function",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			values, err := parseLiterals(args[2:])
			if err != nil {
				return err
			}
			ctx, cancel := s.readContext(cmd)
			defer cancel()

			v, err := app.Contracts.CallReadOnlyValue(ctx, args[0], args[1], values, sender)
			if err != nil {
				return err
			}
			if s.opts.Format == formatJSON {
				return printJSON(s.out, clarity.ToNative(v))
			}
			fmt.Fprintln(s.out, v.Repr())
			return nil
		},
	}
	read.Flags().StringVar(&sender, "sender", "", "Sender principal for the call (default: signed-in address, then the contract deployer)")

	call := &cobra.Command{
		Use:   "call <contract> <function> [args...]",
		Short: "Submit a state-changing call for wallet approval",
		Long: `Submit a state-changing call for wallet approval. Calls that move STX
need post-conditions and must use the dedicated commands (market buy,
market bid, royalty pay).`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			values, err := parseLiterals(args[2:])
			if err != nil {
				return err
			}
			res, err := app.Contracts.SubmitCall(cmd.Context(), args[0], args[1], values, nil)
			if err != nil {
				return err
			}
			return s.renderResult(app, res)
		},
	}

	cmd.AddCommand(read, call)
	return cmd
}

// parseLiterals parses every argument, reporting all bad ones together.
func parseLiterals(args []string) ([]clarity.Value, error) {
	values := make([]clarity.Value, 0, len(args))
	var violations []errors.Violation
	for i, a := range args {
		v, err := clarity.ParseLiteral(a)
		if err != nil {
			violations = append(violations, errors.Violation{Field: fmt.Sprintf("args[%d]", i), Message: err.Error()})
			continue
		}
		values = append(values, v)
	}
	if len(violations) > 0 {
		return nil, errors.NewValidationErrors(violations)
	}
	return values, nil
}
