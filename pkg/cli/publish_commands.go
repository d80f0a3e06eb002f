package cli

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"github.com/montybasquiart/sihiri-build/pkg/metadata"
	"github.com/montybasquiart/sihiri-build/pkg/publish"
)

func newPublishCommand(s *state) *cobra.Command {
	var (
		f               metadataFlags
		royalty         uint64
		nonTransferable bool
		dryRun          bool
	)

	cmd := &cobra.Command{
		Use:   "publish <file>",
		Short: "Upload a work with its metadata and mint its ownership NFT",
		Long: `Upload the media file, assemble and upload its metadata document, then
ask the wallet to approve the mint. With --dry-run the pipeline stops
after the uploads.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			media, err := os.ReadFile(args[0])
			if err != nil {
				return errors.NewValidationError("file", err.Error())
			}
			attrs, err := f.pairs()
			if err != nil {
				return err
			}

			req := publish.Request{
				Media:           media,
				MediaName:       filepath.Base(args[0]),
				Name:            f.name,
				Description:     f.description,
				MediaType:       metadata.MediaType(f.mediaType),
				Tags:            publish.SplitTags(f.tags),
				Attributes:      attrs,
				License:         f.license,
				NonTransferable: nonTransferable,
			}
			if cmd.Flags().Changed("royalty") {
				req.RoyaltyPercent = &royalty
			}

			var res *publish.Result
			if dryRun {
				res, err = app.Publisher.Prepare(cmd.Context(), req)
			} else {
				res, err = app.Publisher.Publish(cmd.Context(), req)
			}
			if err != nil {
				return err
			}
			return s.renderPublish(app, res)
		},
	}

	f.register(cmd)
	cmd.Flags().Uint64Var(&royalty, "royalty", publish.DefaultRoyaltyPercent, "Royalty percent paid to the creator on resale (0-100)")
	cmd.Flags().BoolVar(&nonTransferable, "non-transferable", false, "Mint a token that cannot be transferred")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Upload media and metadata but do not mint")
	return cmd
}

func (s *state) renderPublish(app *App, res *publish.Result) error {
	rows := [][2]string{
		{"Media", app.Storage.ResolveURL(res.MediaCID.String())},
		{"Metadata", res.MetadataURI},
	}
	if res.Mint != nil {
		rows = append(rows, [2]string{"Mint", res.Mint.Status.String()})
		if res.Mint.Receipt != nil {
			rows = append(rows, [2]string{"Transaction", res.Mint.Receipt.TxID})
			if res.Mint.Receipt.ExplorerURL != "" {
				rows = append(rows, [2]string{"Explorer", res.Mint.Receipt.ExplorerURL})
			}
		}
	} else {
		rows = append(rows, [2]string{"Mint", "skipped"})
	}
	rows = append(rows, [2]string{"Attributes", strconv.Itoa(len(res.Metadata.Attributes))})
	return s.renderKV(res, rows)
}
