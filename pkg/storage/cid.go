package storage

import (
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"github.com/multiformats/go-multihash"
)

// URIScheme prefixes content identifiers embedded in contracts and metadata.
const URIScheme = "ipfs://"

// CID is an opaque content identifier. Identical payloads always map to the
// same CID.
type CID string

func (c CID) String() string { return string(c) }

// URI returns the ipfs:// form of the identifier.
func (c CID) URI() string { return FormatURI(string(c)) }

// trimScheme removes a leading ipfs:// if present.
func trimScheme(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), URIScheme)
}

// FormatURI returns id as ipfs://<cid>. An empty id yields "".
func FormatURI(id string) string {
	clean := trimScheme(id)
	if clean == "" {
		return ""
	}
	return URIScheme + clean
}

// ParseCID validates a v0 or v1 identifier, with or without the ipfs://
// scheme, and returns it in its canonical string form.
func ParseCID(s string) (CID, error) {
	clean := trimScheme(s)
	if clean == "" {
		return "", errors.NewValidationError("cid", "is required")
	}
	// A path below the root (ipfs://<cid>/file.json) keeps its suffix.
	root, rest, _ := strings.Cut(clean, "/")

	c, err := cid.Decode(root)
	if err != nil {
		return "", errors.NewValidationError("cid", err.Error())
	}
	if rest != "" {
		return CID(c.String() + "/" + rest), nil
	}
	return CID(c.String()), nil
}

// ComputeCID returns the CIDv1 (raw codec, sha2-256) of data. Kubo produces
// the same identifier for single-block uploads with cid-version=1.
func ComputeCID(data []byte) (CID, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", errors.NewInternalError("failed to hash content", err)
	}
	return CID(cid.NewCidV1(cid.Raw, mh).String()), nil
}
