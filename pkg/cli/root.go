package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

// BuildInfo is the version metadata injected with -ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

func (b BuildInfo) String() string {
	s := "sihiri " + b.Version
	if b.Commit != "" {
		s += " (commit " + b.Commit + ")"
	}
	if b.Date != "" {
		s += " built " + b.Date
	}
	return s
}

// state is shared by every command of one tree.
type state struct {
	opts  Options
	build BuildInfo
	app   *App
	out   io.Writer
}

// App builds the adapters on first use.
func (s *state) App() (*App, error) {
	if s.app != nil {
		return s.app, nil
	}
	app, err := NewApp(s.opts)
	if err != nil {
		return nil, err
	}
	s.app = app
	return app, nil
}

// readContext bounds read-only work by --timeout. Wallet interactions use the
// command context directly and wait for as long as the user needs.
func (s *state) readContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	if s.opts.Timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), s.opts.Timeout)
}

// NewRootCommand builds the full command tree.
func NewRootCommand(build BuildInfo) *cobra.Command {
	s := &state{build: build}

	root := &cobra.Command{
		Use:           "sihiri",
		Short:         "Publish and trade creative works on Stacks",
		Long:          "sihiri stores media and metadata on IPFS, mints ownership NFTs and reads marketplace, identity and royalty contracts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s.out = cmd.OutOrStdout()
			switch s.opts.Format {
			case formatTable, formatJSON:
				return nil
			default:
				return errors.NewValidationError("format", fmt.Sprintf("unknown format %q (want table or json)", s.opts.Format))
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if s.app != nil {
				s.app.Close()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&s.opts.ConfigPath, "config", "c", "", "Path to a YAML config file")
	flags.StringVarP(&s.opts.Network, "network", "n", "", "Network to use: mainnet, testnet or local (overrides config)")
	flags.StringVarP(&s.opts.Format, "format", "f", formatTable, "Output format: table or json")
	flags.DurationVarP(&s.opts.Timeout, "timeout", "t", 30*time.Second, "Timeout for read-only requests (0 disables)")
	flags.StringVar(&s.opts.SessionPath, "session", "", "Session file (default ~/.sihiri/session.json)")
	flags.BoolVarP(&s.opts.Verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newVersionCommand(s),
		newConfigCommand(s),
		newNetworkCommand(s),
		newContractCommand(s),
		newStorageCommand(s),
		newMetadataCommand(s),
		newPublishCommand(s),
		newNFTCommand(s),
		newProfileCommand(s),
		newMarketCommand(s),
		newRoyaltyCommand(s),
		newAuthCommand(s),
		newServeCommand(s),
	)
	return root
}

func newVersionCommand(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.opts.Format == formatJSON {
				return printJSON(s.out, s.build)
			}
			fmt.Fprintln(s.out, s.build.String())
			return nil
		},
	}
}
