// Package metadata assembles and reads the NFT metadata documents that minted
// tokens point at.
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/montybasquiart/sihiri-build/pkg/clarity"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"github.com/montybasquiart/sihiri-build/pkg/storage"
)

// SchemaVersion is the document version written by Assemble. Readers reject
// anything newer.
const SchemaVersion = 1

// DefaultLicense applies when no license is given.
const DefaultLicense = "CC-BY-4.0"

// MediaType classifies the primary media of a token.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
	Media3D    MediaType = "3d"
	MediaOther MediaType = "other"
)

// MediaTypes lists every accepted media type.
var MediaTypes = []MediaType{MediaImage, MediaVideo, MediaAudio, Media3D, MediaOther}

// Valid reports whether m is one of MediaTypes.
func (m MediaType) Valid() bool {
	for _, t := range MediaTypes {
		if m == t {
			return true
		}
	}
	return false
}

// Attribute is one trait of a token. Assembled and decoded documents hold
// numeric values as json.Number.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// Component references a sub-work of a composite token.
type Component struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
	Role string `json:"role,omitempty"`
}

// NFTMetadata is the stored metadata document. Once written it is never
// changed; an edit is a new document with a new identifier.
type NFTMetadata struct {
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Image         string         `json:"image"`
	AnimationURL  string         `json:"animation_url,omitempty"`
	MediaType     MediaType      `json:"media_type"`
	Attributes    []Attribute    `json:"attributes"`
	Creator       string         `json:"creator"`
	License       string         `json:"license"`
	CreatedAt     time.Time      `json:"created_at"`
	Version       int            `json:"version"`
	MediaSpecific map[string]any `json:"media_specific,omitempty"`
	Components    []Component    `json:"components,omitempty"`
}

// Fields are the inputs to Assemble.
type Fields struct {
	Name          string
	Description   string
	ImageCID      string
	AnimationCID  string
	MediaType     MediaType
	Attributes    []Attribute
	Creator       string
	License       string
	MediaSpecific map[string]any
	Components    []Component
}

// Assembler builds metadata documents with an injectable clock.
type Assembler struct {
	now func() time.Time
}

// NewAssembler returns an assembler using now for created_at. A nil now
// uses time.Now.
func NewAssembler(now func() time.Time) *Assembler {
	if now == nil {
		now = time.Now
	}
	return &Assembler{now: now}
}

// Assemble validates fields and builds a document with the wall clock.
func Assemble(fields Fields) (*NFTMetadata, error) {
	return NewAssembler(nil).Assemble(fields)
}

// Assemble validates fields and builds a document. It reports every invalid
// or missing field in a single ValidationError and performs no I/O.
func (a *Assembler) Assemble(fields Fields) (*NFTMetadata, error) {
	var violations []errors.Violation
	add := func(field, msg string) {
		violations = append(violations, errors.Violation{Field: field, Message: msg})
	}

	if strings.TrimSpace(fields.Name) == "" {
		add("name", "is required")
	}
	if strings.TrimSpace(fields.Description) == "" {
		add("description", "is required")
	}

	var image, animation storage.CID
	if fields.ImageCID == "" {
		add("image", "is required")
	} else if id, err := storage.ParseCID(fields.ImageCID); err != nil {
		add("image", "is not a valid content identifier")
	} else {
		image = id
	}
	if fields.AnimationCID != "" {
		if id, err := storage.ParseCID(fields.AnimationCID); err != nil {
			add("animation_url", "is not a valid content identifier")
		} else {
			animation = id
		}
	}

	if fields.Creator == "" {
		add("creator", "is required")
	} else if p, err := clarity.ParsePrincipal(fields.Creator); err != nil || p.IsContract() {
		add("creator", "must be a standard Stacks address")
	}

	switch {
	case fields.MediaType == "":
		add("media_type", "is required")
	case !fields.MediaType.Valid():
		add("media_type", fmt.Sprintf("must be one of %s", joinMediaTypes()))
	}

	attributes := make([]Attribute, len(fields.Attributes))
	for i, attr := range fields.Attributes {
		if strings.TrimSpace(attr.TraitType) == "" {
			add(fmt.Sprintf("attributes[%d].trait_type", i), "is required")
		}
		v, err := jsonValue(attr.Value)
		if err != nil {
			add(fmt.Sprintf("attributes[%d].value", i), "is not JSON-encodable")
		}
		attributes[i] = Attribute{TraitType: attr.TraitType, Value: v}
	}
	var mediaSpecific map[string]any
	if len(fields.MediaSpecific) > 0 {
		mediaSpecific = make(map[string]any, len(fields.MediaSpecific))
		for k, raw := range fields.MediaSpecific {
			v, err := jsonValue(raw)
			if err != nil {
				add("media_specific."+k, "is not JSON-encodable")
			}
			mediaSpecific[k] = v
		}
	}
	for i, c := range fields.Components {
		if c.Name == "" {
			add(fmt.Sprintf("components[%d].name", i), "is required")
		}
		if c.URI == "" {
			add(fmt.Sprintf("components[%d].uri", i), "is required")
		}
	}

	if len(violations) > 0 {
		return nil, errors.NewValidationErrors(violations)
	}

	license := fields.License
	if license == "" {
		license = DefaultLicense
	}

	doc := &NFTMetadata{
		Name:        fields.Name,
		Description: fields.Description,
		Image:       image.URI(),
		MediaType:   fields.MediaType,
		Attributes:  attributes,
		Creator:     fields.Creator,
		License:     license,
		CreatedAt:   a.now().UTC().Truncate(time.Second),
		Version:     SchemaVersion,
	}
	if animation != "" {
		doc.AnimationURL = animation.URI()
	}
	doc.MediaSpecific = mediaSpecific
	if len(fields.Components) > 0 {
		doc.Components = append([]Component(nil), fields.Components...)
	}
	return doc, nil
}

// jsonValue returns v as it reads back from its own JSON encoding, with
// numbers kept as json.Number. The result shares no memory with v.
func jsonValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := decodeNumbers(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeNumbers(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(out)
}

// UnmarshalJSON decodes numbers in attribute values and media_specific as
// json.Number, matching what Assemble produces.
func (m *NFTMetadata) UnmarshalJSON(data []byte) error {
	type plain NFTMetadata
	return decodeNumbers(data, (*plain)(m))
}

func joinMediaTypes() string {
	names := make([]string, len(MediaTypes))
	for i, t := range MediaTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// Decode parses a stored document. Documents written by a newer schema are
// rejected with UnsupportedVersionError.
func Decode(data []byte) (*NFTMetadata, error) {
	var head struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, errors.NewDecodeError("nft metadata", "", err)
	}
	if head.Version == nil {
		return nil, errors.NewDecodeError("nft metadata", "metadata document has no version", nil)
	}
	if *head.Version > SchemaVersion {
		return nil, errors.NewUnsupportedVersionError("nft metadata", *head.Version, SchemaVersion)
	}

	var doc NFTMetadata
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewDecodeError("nft metadata", "", err)
	}
	return &doc, nil
}

// ImageCID returns the identifier behind the image reference.
func (m *NFTMetadata) ImageCID() string {
	return strings.TrimPrefix(m.Image, storage.URIScheme)
}
