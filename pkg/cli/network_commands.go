package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/montybasquiart/sihiri-build/pkg/registry"
	"github.com/montybasquiart/sihiri-build/pkg/stacks"
)

func newNetworkCommand(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "network",
		Short: "Inspect networks and deployed contracts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List known networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			var profiles []registry.NetworkProfile
			for _, name := range app.Registry.Networks() {
				p, err := app.Registry.Profile(name)
				if err != nil {
					return err
				}
				profiles = append(profiles, p)
			}
			active := app.Registry.Active().Name
			return s.render(profiles, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "NETWORK\tAPI\tEXPLORER\tACTIVE")
				for _, p := range profiles {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", p.Name, p.APIURL, p.ExplorerURL, p.Name == active)
				}
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show the active network and its node status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			ctx, cancel := s.readContext(cmd)
			defer cancel()

			profile := app.Registry.Active()
			info, err := app.Node.Info(ctx)
			if err != nil {
				return err
			}
			out := struct {
				Network registry.NetworkProfile `json:"network"`
				Node    *stacks.NodeInfo        `json:"node"`
			}{profile, info}
			return s.renderKV(out, [][2]string{
				{"Network", profile.Name},
				{"API", profile.APIURL},
				{"Explorer", profile.ExplorerURL},
				{"Chain ID", strconv.FormatUint(uint64(profile.NetworkID), 10)},
				{"Node version", info.ServerVersion},
				{"Stacks tip", strconv.FormatUint(info.StacksTipHeight, 10)},
				{"Burn block", strconv.FormatUint(info.BurnBlockHeight, 10)},
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "contracts",
		Short: "List contracts deployed on the active network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			refs := app.Registry.Contracts(app.Registry.Active().Name)
			return s.render(refs, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "CONTRACT\tADDRESS\tNAME")
				for _, ref := range refs {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", ref.LogicalName, ref.Address, ref.OnChainName)
				}
			})
		},
	})

	return cmd
}
