package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"github.com/montybasquiart/sihiri-build/pkg/storage"
)

type uploadOutput struct {
	Cid    string                 `json:"cid"`
	URI    string                 `json:"uri"`
	URL    string                 `json:"url"`
	Size   int                    `json:"size"`
	Mirror *storage.MirrorReceipt `json:"mirror,omitempty"`
}

func newStorageCommand(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Upload and resolve content on IPFS",
	}

	var name string
	put := &cobra.Command{
		Use:   "put <file>",
		Short: "Upload a file and print its content identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.NewValidationError("file", err.Error())
			}
			if name == "" {
				name = filepath.Base(args[0])
			}

			id, err := app.Storage.PutNamed(cmd.Context(), name, data)
			if err != nil {
				return err
			}
			return s.renderUpload(uploadOutput{Cid: id.String(), URI: id.URI(), URL: app.Storage.ResolveURL(id.String()), Size: len(data)})
		},
	}
	put.Flags().StringVar(&name, "name", "", "Name recorded by the pinning service (default: file name)")

	putJSON := &cobra.Command{
		Use:   "put-json <file>",
		Short: "Upload a JSON document in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.NewValidationError("file", err.Error())
			}
			var doc any
			if err := json.Unmarshal(data, &doc); err != nil {
				return errors.NewDecodeError("json", "", err)
			}
			id, err := app.Storage.PutJSON(cmd.Context(), doc)
			if err != nil {
				return err
			}
			return s.renderUpload(uploadOutput{Cid: id.String(), URI: id.URI(), URL: app.Storage.ResolveURL(id.String()), Size: len(data)})
		},
	}

	mirror := &cobra.Command{
		Use:   "mirror <file>",
		Short: "Copy a file to Arweave, tagged with its IPFS identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.NewValidationError("file", err.Error())
			}
			id, err := storage.ComputeCID(data)
			if err != nil {
				return err
			}
			receipt, err := app.Storage.Mirror(cmd.Context(), data, id)
			if err != nil {
				return err
			}
			return s.renderUpload(uploadOutput{Cid: id.String(), URI: id.URI(), URL: app.Storage.ResolveURL(id.String()), Size: len(data), Mirror: receipt})
		},
	}

	urlCmd := &cobra.Command{
		Use:   "url <cid>",
		Short: "Print the gateway URL of an identifier without fetching it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			fmt.Fprintln(s.out, app.Storage.ResolveURL(args[0]))
			return nil
		},
	}

	var output string
	get := &cobra.Command{
		Use:   "get <cid>",
		Short: "Download content through the gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			id, err := storage.ParseCID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := s.readContext(cmd)
			defer cancel()

			data, err := app.Storage.Fetch(ctx, id.String())
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = s.out.Write(data)
				return err
			}
			return os.WriteFile(output, data, 0644)
		},
	}
	get.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")

	var pinName string
	pin := &cobra.Command{
		Use:   "pin <cid>",
		Short: "Pin an existing identifier on the configured backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			id, err := storage.ParseCID(args[0])
			if err != nil {
				return err
			}
			resp, err := app.Storage.Pin(cmd.Context(), id.String(), pinName)
			if err != nil {
				return err
			}
			return s.renderKV(resp, [][2]string{{"Cid", resp.Cid}, {"Name", resp.Name}})
		},
	}
	pin.Flags().StringVar(&pinName, "name", "", "Pin name")

	unpin := &cobra.Command{
		Use:   "unpin <cid>",
		Short: "Remove a pin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			id, err := storage.ParseCID(args[0])
			if err != nil {
				return err
			}
			if err := app.Storage.Unpin(cmd.Context(), id.String()); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Unpinned %s\n", id)
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status <cid>",
		Short: "Show the pin status of an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			id, err := storage.ParseCID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := s.readContext(cmd)
			defer cancel()

			st, err := app.Storage.PinStatus(ctx, id.String())
			if err != nil {
				return err
			}
			return s.renderKV(st, [][2]string{
				{"Cid", st.Cid},
				{"Name", st.Name},
				{"Status", st.Status},
				{"Type", st.Type},
				{"Size", strconv.FormatInt(st.Size, 10)},
			})
		},
	}

	available := &cobra.Command{
		Use:   "available <cid>",
		Short: "Check whether the gateway serves an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			ctx, cancel := s.readContext(cmd)
			defer cancel()

			ok := app.Storage.IsAvailable(ctx, args[0])
			return s.renderKV(map[string]any{"cid": args[0], "available": ok}, [][2]string{
				{"Cid", args[0]},
				{"Available", strconv.FormatBool(ok)},
			})
		},
	}

	health := &cobra.Command{
		Use:   "health",
		Short: "Check the upload backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			ctx, cancel := s.readContext(cmd)
			defer cancel()

			if err := app.Storage.Health(ctx); err != nil {
				return err
			}
			fmt.Fprintln(s.out, "Storage backend healthy")
			return nil
		},
	}

	cmd.AddCommand(put, putJSON, mirror, urlCmd, get, pin, unpin, status, available, health)
	return cmd
}

func (s *state) renderUpload(out uploadOutput) error {
	rows := [][2]string{
		{"Cid", out.Cid},
		{"URI", out.URI},
		{"URL", out.URL},
		{"Size", strconv.Itoa(out.Size)},
	}
	if out.Mirror != nil {
		rows = append(rows, [2]string{"Arweave", out.Mirror.URL})
	}
	return s.renderKV(out, rows)
}
