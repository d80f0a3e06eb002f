// Package publish runs the creator flow end to end: store the media, assemble
// and store its metadata document, then ask the wallet to mint a token that
// points at the document.
package publish

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/montybasquiart/sihiri-build/pkg/contracts"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"github.com/montybasquiart/sihiri-build/pkg/metadata"
	"github.com/montybasquiart/sihiri-build/pkg/storage"
)

const (
	// DefaultRoyaltyPercent is applied when a request leaves royalty unset.
	DefaultRoyaltyPercent uint64 = 10

	// MaxMediaSize caps a single media upload.
	MaxMediaSize = 100 << 20

	// TagTrait is the attribute trait type used for free-form tags.
	TagTrait = "tag"
)

// Request describes one work to publish.
type Request struct {
	Media         []byte
	MediaName     string
	Name          string
	Description   string
	MediaType     metadata.MediaType // detected from Media when empty
	Tags          []string
	Attributes    []metadata.Attribute
	License       string
	MediaSpecific map[string]any
	Components    []metadata.Component

	// RoyaltyPercent defaults to DefaultRoyaltyPercent when nil.
	RoyaltyPercent  *uint64
	NonTransferable bool
}

// Result reports every artifact the pipeline produced. Mint is nil when the
// pipeline stopped before the wallet step.
type Result struct {
	MediaCID    storage.CID           `json:"media_cid"`
	MetadataCID storage.CID           `json:"metadata_cid"`
	MetadataURI string                `json:"metadata_uri"`
	Metadata    *metadata.NFTMetadata `json:"metadata"`
	Mint        *contracts.Result     `json:"mint,omitempty"`
}

// Publisher wires storage, metadata assembly and minting together.
type Publisher struct {
	storage   *storage.Client
	adapter   *contracts.Adapter
	assembler *metadata.Assembler
	logger    *zap.Logger
}

// New creates a Publisher. A nil assembler uses the wall clock.
func New(store *storage.Client, adapter *contracts.Adapter, assembler *metadata.Assembler, logger *zap.Logger) *Publisher {
	if assembler == nil {
		assembler = metadata.NewAssembler(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{storage: store, adapter: adapter, assembler: assembler, logger: logger}
}

// Prepare stores the media and the metadata document without minting.
func (p *Publisher) Prepare(ctx context.Context, req Request) (*Result, error) {
	creator, ok := p.adapter.SessionAddress()
	if !ok {
		return nil, errors.NewUnauthorizedError("sign in before publishing")
	}
	if len(req.Media) == 0 {
		return nil, errors.NewValidationError("media", "is required")
	}
	if len(req.Media) > MaxMediaSize {
		return nil, errors.NewValidationError("media", fmt.Sprintf("exceeds %d bytes", MaxMediaSize))
	}

	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = DetectMediaType(req.Media)
	}

	// Validate everything except the image before uploading anything.
	fields := metadata.Fields{
		Name:          req.Name,
		Description:   req.Description,
		MediaType:     mediaType,
		Attributes:    attributes(req),
		Creator:       creator,
		License:       req.License,
		MediaSpecific: req.MediaSpecific,
		Components:    req.Components,
	}
	localCID, err := storage.ComputeCID(req.Media)
	if err != nil {
		return nil, err
	}
	precheck := fields
	precheck.ImageCID = localCID.String()
	if _, err := p.assembler.Assemble(precheck); err != nil {
		return nil, err
	}

	mediaCID, err := p.storage.PutNamed(ctx, req.MediaName, req.Media)
	if err != nil {
		return nil, fmt.Errorf("store media: %w", err)
	}
	p.logger.Info("Media stored", zap.String("cid", mediaCID.String()), zap.Int("size", len(req.Media)))

	fields.ImageCID = mediaCID.String()
	if mediaType == metadata.MediaVideo || mediaType == metadata.MediaAudio || mediaType == metadata.Media3D {
		fields.AnimationCID = mediaCID.String()
	}
	doc, err := p.assembler.Assemble(fields)
	if err != nil {
		return nil, err
	}

	metaCID, err := p.storage.PutJSON(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("store metadata: %w", err)
	}
	p.logger.Info("Metadata stored", zap.String("cid", metaCID.String()))

	return &Result{
		MediaCID:    mediaCID,
		MetadataCID: metaCID,
		MetadataURI: metaCID.URI(),
		Metadata:    doc,
	}, nil
}

// Publish runs Prepare and then requests the mint. A wallet rejection is not
// an error: the result carries Mint.Status == contracts.StatusCancelled and
// the stored content stays addressable.
func (p *Publisher) Publish(ctx context.Context, req Request) (*Result, error) {
	royalty := DefaultRoyaltyPercent
	if req.RoyaltyPercent != nil {
		royalty = *req.RoyaltyPercent
	}
	if royalty > contracts.MaxRoyaltyPercent {
		return nil, errors.NewValidationError("royaltyPercent", fmt.Sprintf("must be between 0 and %d", contracts.MaxRoyaltyPercent))
	}

	res, err := p.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	mint, err := p.adapter.NFT().Mint(ctx, res.MetadataURI, royalty, !req.NonTransferable)
	if err != nil {
		return res, fmt.Errorf("mint: %w", err)
	}
	res.Mint = mint
	if mint.Status == contracts.StatusCancelled {
		p.logger.Info("Mint cancelled in wallet", zap.String("metadata", res.MetadataURI))
	}
	return res, nil
}

func attributes(req Request) []metadata.Attribute {
	attrs := make([]metadata.Attribute, 0, len(req.Attributes)+len(req.Tags))
	attrs = append(attrs, req.Attributes...)
	for _, tag := range req.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			attrs = append(attrs, metadata.Attribute{TraitType: TagTrait, Value: tag})
		}
	}
	return attrs
}

// DetectMediaType sniffs data and maps its MIME family onto a media type.
func DetectMediaType(data []byte) metadata.MediaType {
	mime := http.DetectContentType(data)
	switch {
	case strings.HasPrefix(mime, "image/"):
		return metadata.MediaImage
	case strings.HasPrefix(mime, "video/"):
		return metadata.MediaVideo
	case strings.HasPrefix(mime, "audio/"), mime == "application/ogg":
		return metadata.MediaAudio
	case strings.HasPrefix(mime, "model/"):
		return metadata.Media3D
	default:
		return metadata.MediaOther
	}
}

// SplitTags parses a comma separated tag list.
func SplitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
