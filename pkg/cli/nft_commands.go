package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"github.com/montybasquiart/sihiri-build/pkg/metadata"
)

type tokenOutput struct {
	TokenID        uint64 `json:"token_id"`
	Owner          string `json:"owner"`
	URI            string `json:"uri"`
	Creator        string `json:"creator"`
	RoyaltyPercent uint64 `json:"royalty_percent"`
	Transferable   bool   `json:"transferable"`
}

func parseUint(field, s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.NewValidationError(field, fmt.Sprintf("%q is not an unsigned integer", s))
	}
	return n, nil
}

func newNFTCommand(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nft",
		Short: "Read and transfer ownership NFTs",
	}

	show := &cobra.Command{
		Use:   "show <token-id>",
		Short: "Show owner, creator, royalty and metadata URI of a token",
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

			nft := app.Contracts.NFT()
			out := tokenOutput{TokenID: id}
			if out.Owner, err = nft.GetOwner(ctx, id); err != nil {
				return err
			}
			if out.Owner == "" {
				return errors.NewNotFoundError("token", args[0])
			}
			if out.URI, err = nft.GetTokenURI(ctx, id); err != nil {
				return err
			}
			if out.Creator, err = nft.GetCreator(ctx, id); err != nil {
				return err
			}
			if out.RoyaltyPercent, err = nft.GetRoyaltyPercent(ctx, id); err != nil {
				return err
			}
			if out.Transferable, err = nft.IsTransferable(ctx, id); err != nil {
				return err
			}
			return s.renderKV(out, [][2]string{
				{"Token", args[0]},
				{"Owner", out.Owner},
				{"Creator", out.Creator},
				{"Metadata", out.URI},
				{"URL", app.Storage.ResolveURL(out.URI)},
				{"Royalty", fmt.Sprintf("%d%%", out.RoyaltyPercent)},
				{"Transferable", strconv.FormatBool(out.Transferable)},
			})
		},
	}

	metadataCmd := &cobra.Command{
		Use:   "metadata <token-id>",
		Short: "Fetch the metadata document a token points at",
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

			uri, err := app.Contracts.NFT().GetTokenURI(ctx, id)
			if err != nil {
				return err
			}
			if uri == "" {
				return errors.NewNotFoundError("token", args[0])
			}
			data, err := app.Storage.Fetch(ctx, uri)
			if err != nil {
				return err
			}
			doc, err := metadata.Decode(data)
			if err != nil {
				return err
			}
			return s.renderMetadata(app, doc)
		},
	}

	last := &cobra.Command{
		Use:   "last",
		Short: "Print the id of the most recently minted token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			ctx, cancel := s.readContext(cmd)
			defer cancel()

			id, err := app.Contracts.NFT().GetLastTokenID(ctx)
			if err != nil {
				return err
			}
			return s.renderKV(map[string]uint64{"last_token_id": id}, [][2]string{{"Last token", strconv.FormatUint(id, 10)}})
		},
	}

	tokens := &cobra.Command{
		Use:   "tokens [owner]",
		Short: "List tokens held by an address (default: signed-in address)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			owner, err := addressArg(app, args)
			if err != nil {
				return err
			}
			ctx, cancel := s.readContext(cmd)
			defer cancel()

			ids, err := app.Contracts.NFT().GetTokensByOwner(ctx, owner)
			if err != nil {
				return err
			}
			return s.renderIDs(ids, "TOKEN")
		},
	}

	owns := &cobra.Command{
		Use:   "owns <token-id> <address>",
		Short: "Check whether an address owns a token",
		Args:  cobra.ExactArgs(2),
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

			ok, err := app.Contracts.NFT().OwnsToken(ctx, id, args[1])
			if err != nil {
				return err
			}
			return s.renderKV(map[string]bool{"owns": ok}, [][2]string{{"Owns", strconv.FormatBool(ok)}})
		},
	}

	transfer := &cobra.Command{
		Use:   "transfer <token-id> <recipient>",
		Short: "Transfer a token you own",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			id, err := parseUint("token-id", args[0])
			if err != nil {
				return err
			}
			res, err := app.Contracts.NFT().Transfer(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			return s.renderResult(app, res)
		},
	}

	cmd.AddCommand(show, metadataCmd, last, tokens, owns, transfer)
	return cmd
}

// addressArg returns args[0], or the signed-in address when args is empty.
func addressArg(app *App, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	addr, ok := app.Contracts.SessionAddress()
	if !ok || addr == "" {
		return "", errors.NewUnauthorizedError("pass an address or run 'sihiri auth login'")
	}
	return addr, nil
}

func (s *state) renderIDs(ids []uint64, header string) error {
	if ids == nil {
		ids = []uint64{}
	}
	return s.render(ids, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, header)
		for _, id := range ids {
			fmt.Fprintln(tw, id)
		}
	})
}
