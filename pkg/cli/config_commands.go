package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/montybasquiart/sihiri-build/pkg/config"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

// DefaultConfigName is the file looked up in ~/.sihiri when --config is not
// given.
const DefaultConfigName = "sihiri.yaml"

const redacted = "<redacted>"

func newConfigCommand(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create, validate and inspect configuration",
	}

	var (
		name  string
		force bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to ~/.sihiri",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.EnsureConfigDir()
			if err != nil {
				return err
			}
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil && !force {
				return errors.NewValidationError("name", fmt.Sprintf("%s already exists (use --force to overwrite)", path))
			}

			data, err := yaml.Marshal(config.Default())
			if err != nil {
				return fmt.Errorf("failed to render config: %w", err)
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(s.out, "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&name, "name", DefaultConfigName, "File name inside ~/.sihiri")
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	validate := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a config file, reporting every problem at once",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := s.opts.ConfigPath
			if len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				var err error
				if path, err = config.DefaultPath(DefaultConfigName); err != nil {
					return err
				}
			}

			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if errs := cfg.Validate(); len(errs) > 0 {
				return joinConfigErrors(errs)
			}
			fmt.Fprintf(s.out, "Config is valid: %s\n", path)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			cfg := *app.Config
			if cfg.Storage.IPFS.PinataAPIKey != "" {
				cfg.Storage.IPFS.PinataAPIKey = redacted
			}
			if cfg.Storage.IPFS.PinataSecretKey != "" {
				cfg.Storage.IPFS.PinataSecretKey = redacted
			}
			if s.opts.Format == formatJSON {
				return printJSON(s.out, cfg)
			}
			enc := yaml.NewEncoder(s.out)
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}

	cmd.AddCommand(initCmd, validate, show)
	return cmd
}
