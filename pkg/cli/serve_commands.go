package cli

import (
	"github.com/spf13/cobra"

	"github.com/montybasquiart/sihiri-build/pkg/gateway"
)

func newServeCommand(s *state) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			cfg := app.Config.API
			if listen != "" {
				cfg.ListenAddr = listen
			}

			gw, err := gateway.New(cfg, gateway.Dependencies{
				Registry:  app.Registry,
				Node:      app.Node,
				Storage:   app.Storage,
				Contracts: app.Contracts,
			}, app.Logger, s.build.Version)
			if err != nil {
				return err
			}
			return gw.Serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides api.listen_addr)")
	return cmd
}
