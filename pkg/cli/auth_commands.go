package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newAuthCommand(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in with a Stacks wallet",
		Long: `Sign in with a Stacks wallet.

Authentication Flow:
  1. Run 'sihiri auth login'
  2. Approve the request in the wallet page that opens in your browser
  3. The verified session is saved to ~/.sihiri/session.json`,
	}

	login := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with your wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Waiting for wallet approval...")

			data, err := app.Session.SignIn(cmd.Context(), app.Wallet)
			if err != nil {
				return err
			}
			addr, _ := app.Session.Address(app.Registry.Active().SessionKey())
			return s.renderKV(data.Profile(), [][2]string{
				{"Signed in as", data.Profile().Name},
				{"Address", addr},
				{"Expires", formatExpiry(data.ExpiresAt)},
			})
		},
	}

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			if err := app.Session.SignOut(); err != nil {
				return err
			}
			fmt.Fprintln(s.out, "Logged out")
			return nil
		},
	}

	status := &cobra.Command{
		Use:     "status",
		Aliases: []string{"whoami"},
		Short:   "Show the current session",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			profile, ok := app.Session.Profile()
			if !ok {
				if s.opts.Format == formatJSON {
					return printJSON(s.out, map[string]bool{"authenticated": false})
				}
				fmt.Fprintln(s.out, "Not authenticated - run 'sihiri auth login'")
				return nil
			}
			data := app.Session.UserData()
			return s.renderKV(profile, [][2]string{
				{"Name", profile.Name},
				{"Username", profile.Username},
				{"Mainnet", profile.StxAddress},
				{"Testnet", profile.TestnetAddress},
				{"Signed in", data.SignedInAt.Local().Format("2006-01-02 15:04:05")},
				{"Expires", formatExpiry(data.ExpiresAt)},
			})
		},
	}

	cmd.AddCommand(login, logout, status)
	return cmd
}

func formatExpiry(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
