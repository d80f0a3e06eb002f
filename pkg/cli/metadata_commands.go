package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"github.com/montybasquiart/sihiri-build/pkg/metadata"
	"github.com/montybasquiart/sihiri-build/pkg/publish"
)

// metadataFlags are the document fields shared by metadata build and publish.
type metadataFlags struct {
	name        string
	description string
	mediaType   string
	tags        string
	attrs       []string
	license     string
}

func (f *metadataFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.name, "name", "", "Title of the work")
	flags.StringVar(&f.description, "description", "", "Description of the work")
	flags.StringVar(&f.mediaType, "media-type", "", "image, video, audio, 3d or other")
	flags.StringVar(&f.tags, "tags", "", "Comma-separated tags")
	flags.StringArrayVar(&f.attrs, "attr", nil, "Attribute as trait=value (repeatable)")
	flags.StringVar(&f.license, "license", "", "License (default "+metadata.DefaultLicense+")")
}

// pairs parses the --attr flags.
func (f *metadataFlags) pairs() ([]metadata.Attribute, error) {
	var attrs []metadata.Attribute
	var violations []errors.Violation
	for i, raw := range f.attrs {
		trait, value, ok := cutPair(raw)
		if !ok {
			violations = append(violations, errors.Violation{
				Field:   fmt.Sprintf("attr[%d]", i),
				Message: "must be trait=value",
			})
			continue
		}
		attrs = append(attrs, metadata.Attribute{TraitType: trait, Value: value})
	}
	if len(violations) > 0 {
		return nil, errors.NewValidationErrors(violations)
	}
	return attrs, nil
}

// attributes returns --attr pairs followed by one "tag" trait per tag.
func (f *metadataFlags) attributes() ([]metadata.Attribute, error) {
	attrs, err := f.pairs()
	if err != nil {
		return nil, err
	}
	for _, tag := range publish.SplitTags(f.tags) {
		attrs = append(attrs, metadata.Attribute{TraitType: publish.TagTrait, Value: tag})
	}
	return attrs, nil
}

func newMetadataCommand(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Build and read NFT metadata documents",
	}

	var (
		f         metadataFlags
		image     string
		animation string
		creator   string
		upload    bool
	)
	build := &cobra.Command{
		Use:   "build",
		Short: "Assemble a metadata document, optionally uploading it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			if creator == "" {
				creator, _ = app.Contracts.SessionAddress()
			}
			attrs, err := f.attributes()
			if err != nil {
				return err
			}

			doc, err := metadata.Assemble(metadata.Fields{
				Name:         f.name,
				Description:  f.description,
				ImageCID:     image,
				AnimationCID: animation,
				MediaType:    metadata.MediaType(f.mediaType),
				Attributes:   attrs,
				Creator:      creator,
				License:      f.license,
			})
			if err != nil {
				return err
			}
			if !upload {
				return printJSON(s.out, doc)
			}

			id, err := app.Storage.PutJSON(cmd.Context(), doc)
			if err != nil {
				return err
			}
			return s.renderUpload(uploadOutput{Cid: id.String(), URI: id.URI(), URL: app.Storage.ResolveURL(id.String())})
		},
	}
	f.register(build)
	build.Flags().StringVar(&image, "image", "", "Content identifier of the primary media")
	build.Flags().StringVar(&animation, "animation", "", "Content identifier of the playable media")
	build.Flags().StringVar(&creator, "creator", "", "Creator address (default: signed-in address)")
	build.Flags().BoolVar(&upload, "upload", false, "Store the document and print its identifier")

	show := &cobra.Command{
		Use:   "show <cid>",
		Short: "Fetch and validate a stored metadata document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			ctx, cancel := s.readContext(cmd)
			defer cancel()

			data, err := app.Storage.Fetch(ctx, args[0])
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

	cmd.AddCommand(build, show)
	return cmd
}

func (s *state) renderMetadata(app *App, doc *metadata.NFTMetadata) error {
	return s.render(doc, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Name:\t%s\n", doc.Name)
		fmt.Fprintf(tw, "Description:\t%s\n", doc.Description)
		fmt.Fprintf(tw, "Media type:\t%s\n", doc.MediaType)
		fmt.Fprintf(tw, "Image:\t%s\n", app.Storage.ResolveURL(doc.Image))
		if doc.AnimationURL != "" {
			fmt.Fprintf(tw, "Animation:\t%s\n", app.Storage.ResolveURL(doc.AnimationURL))
		}
		fmt.Fprintf(tw, "Creator:\t%s\n", doc.Creator)
		fmt.Fprintf(tw, "License:\t%s\n", doc.License)
		fmt.Fprintf(tw, "Created:\t%s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
		for _, a := range doc.Attributes {
			fmt.Fprintf(tw, "  %s:\t%v\n", a.TraitType, a.Value)
		}
	})
}

// cutPair splits key=value, trimming both sides.
func cutPair(raw string) (string, string, bool) {
	k, v, ok := strings.Cut(raw, "=")
	k, v = strings.TrimSpace(k), strings.TrimSpace(v)
	return k, v, ok && k != ""
}
