package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/montybasquiart/sihiri-build/pkg/contracts"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

func newProfileCommand(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Read and register creator profiles",
	}

	show := &cobra.Command{
		Use:   "show [address]",
		Short: "Show the on-chain profile of an address (default: signed-in address)",
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

			rec, err := app.Contracts.Identity().GetProfile(ctx, addr)
			if err != nil {
				return err
			}
			if rec == nil {
				return errors.NewNotFoundError("profile", addr)
			}
			return s.renderRecord(rec)
		},
	}

	username := &cobra.Command{
		Use:   "username <name>",
		Short: "Look up who holds a username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			ctx, cancel := s.readContext(cmd)
			defer cancel()

			principal, err := app.Contracts.Identity().GetPrincipalByUsername(ctx, args[0])
			if err != nil {
				return err
			}
			available, err := app.Contracts.Identity().IsUsernameAvailable(ctx, args[0])
			if err != nil {
				return err
			}
			out := map[string]any{"username": args[0], "principal": principal, "available": available}
			return s.renderKV(out, [][2]string{
				{"Username", args[0]},
				{"Holder", principal},
				{"Available", strconv.FormatBool(available)},
			})
		},
	}

	verified := &cobra.Command{
		Use:   "verified [address]",
		Short: "Check whether an address is a verified creator",
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

			ok, err := app.Contracts.Identity().IsVerified(ctx, addr)
			if err != nil {
				return err
			}
			return s.renderKV(map[string]bool{"verified": ok}, [][2]string{{"Verified", strconv.FormatBool(ok)}})
		},
	}

	var (
		in    contracts.ProfileInput
		links []string
	)
	register := &cobra.Command{
		Use:   "register",
		Short: "Register your creator profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			in.SocialLinks = in.SocialLinks[:0]
			for i, raw := range links {
				platform, url, ok := cutPair(raw)
				if !ok {
					return errors.NewValidationError("link["+strconv.Itoa(i)+"]", "must be platform=url")
				}
				in.SocialLinks = append(in.SocialLinks, contracts.SocialLink{Platform: platform, URL: url})
			}
			res, err := app.Contracts.Identity().RegisterProfile(cmd.Context(), in)
			if err != nil {
				return err
			}
			return s.renderResult(app, res)
		},
	}
	flags := register.Flags()
	flags.StringVar(&in.Username, "username", "", "Unique username")
	flags.StringVar(&in.DisplayName, "display-name", "", "Display name")
	flags.StringVar(&in.Bio, "bio", "", "Short biography")
	flags.StringVar(&in.AvatarURL, "avatar", "", "Avatar URL")
	flags.StringVar(&in.Website, "website", "", "Website URL")
	flags.StringArrayVar(&links, "link", nil, "Social link as platform=url (repeatable)")
	flags.StringSliceVar(&in.Categories, "category", nil, "Creative categories")
	_ = register.MarkFlagRequired("username")

	cmd.AddCommand(show, username, verified, register)
	return cmd
}
