// Package storage stores and addresses content on IPFS, with optional
// best-effort mirroring to Arweave.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/montybasquiart/sihiri-build/pkg/arweave"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"github.com/montybasquiart/sihiri-build/pkg/ipfs"
	"go.uber.org/zap"
)

// DefaultGateway is the public IPFS path gateway.
const DefaultGateway = "https://ipfs.io/ipfs/"

// Mirrorer uploads a copy of content to secondary storage.
type Mirrorer interface {
	Upload(ctx context.Context, data []byte, tags map[string]string) (*arweave.UploadResponse, error)
	GatewayURL(txID string) string
}

// Config holds content storage client configuration
type Config struct {
	// Gateway is prefixed to identifiers by ResolveURL (e.g., "https://ipfs.io/ipfs/")
	Gateway string

	// BackendName labels the upload backend in logs and errors
	BackendName string

	// Mirror enables best-effort mirroring of Put uploads
	Mirror bool
}

// MirrorReceipt records where a mirrored copy lives.
type MirrorReceipt struct {
	Primary CID    `json:"primary"`
	ID      string `json:"id"`
	URL     string `json:"url"`
}

// Client is the content storage adapter
type Client struct {
	backend     ipfs.IPFSClient
	mirror      Mirrorer
	backendName string
	gateway     string
	mirrorOn    bool
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a storage client. backend may be nil, in which case
// every upload fails with a StorageUnavailableError; mirror may be nil when
// mirroring is disabled.
func NewClient(cfg Config, backend ipfs.IPFSClient, mirror Mirrorer, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	gateway := cfg.Gateway
	if gateway == "" {
		gateway = DefaultGateway
	}
	return &Client{
		backend:     backend,
		mirror:      mirror,
		backendName: cfg.BackendName,
		gateway:     gateway,
		mirrorOn:    cfg.Mirror && mirror != nil,
		httpClient:  &http.Client{}, // gateway reads are bounded by ctx only
		logger:      logger,
	}
}

// Gateway returns the configured gateway prefix.
func (c *Client) Gateway() string {
	return c.gateway
}

// Backend returns the upload backend, or nil when uninitialized.
func (c *Client) Backend() ipfs.IPFSClient {
	return c.backend
}

// Put stores data and returns its identifier. Storing the same bytes twice
// returns the same identifier. When mirroring is enabled the data is also
// sent to secondary storage; mirror failures are logged, never returned.
func (c *Client) Put(ctx context.Context, data []byte) (CID, error) {
	return c.PutNamed(ctx, "", data)
}

// PutNamed is Put with a file name recorded by the backend.
func (c *Client) PutNamed(ctx context.Context, name string, data []byte) (CID, error) {
	id, err := c.add(ctx, name, data)
	if err != nil {
		return "", err
	}

	if c.mirrorOn {
		if _, err := c.Mirror(ctx, data, id); err != nil {
			c.logger.Warn("Mirror upload failed, primary upload kept",
				zap.String("cid", string(id)),
				zap.Error(err))
		}
	}
	return id, nil
}

// PutJSON serializes doc deterministically and stores it. Struct fields keep
// their declared order and map keys are sorted, so equal documents map to
// equal identifiers.
func (c *Client) PutJSON(ctx context.Context, doc any) (CID, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", errors.NewValidationError("document", fmt.Sprintf("not serializable: %v", err))
	}
	return c.add(ctx, "metadata.json", data)
}

func (c *Client) add(ctx context.Context, name string, data []byte) (CID, error) {
	if c.backend == nil {
		return "", errors.NewStorageUnavailableError(c.backendName, nil)
	}
	if name == "" {
		name = "blob"
	}

	resp, err := c.backend.Add(ctx, bytes.NewReader(data), name)
	if err != nil {
		c.logger.Error("Upload failed",
			zap.String("backend", c.backendName),
			zap.Int("size", len(data)),
			zap.Error(err))
		return "", err
	}

	c.logger.Info("Content stored",
		zap.String("cid", resp.Cid),
		zap.String("backend", c.backendName),
		zap.Int("size", len(data)))

	return CID(resp.Cid), nil
}

// Mirror uploads data to secondary storage, tagged with its primary
// identifier.
func (c *Client) Mirror(ctx context.Context, data []byte, primary CID) (*MirrorReceipt, error) {
	if c.mirror == nil {
		return nil, errors.NewStorageUnavailableError("arweave", nil)
	}

	tags := map[string]string{
		"Content-Type": http.DetectContentType(data),
		"IPFS-CID":     string(primary),
		"App-Name":     "SiHiRi",
	}
	resp, err := c.mirror.Upload(ctx, data, tags)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Content mirrored",
		zap.String("cid", string(primary)),
		zap.String("arweave_id", resp.ID))

	return &MirrorReceipt{Primary: primary, ID: resp.ID, URL: c.mirror.GatewayURL(resp.ID)}, nil
}

// ResolveURL returns the gateway URL for id. It does not check that the
// content exists. An empty id yields "".
func (c *Client) ResolveURL(id string) string {
	clean := trimScheme(id)
	if clean == "" {
		return ""
	}
	return c.gateway + clean
}

// Fetch downloads the content behind id through the gateway.
func (c *Client) Fetch(ctx context.Context, id string) ([]byte, error) {
	u := c.ResolveURL(id)
	if u == "" {
		return nil, errors.NewValidationError("cid", "is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.NewValidationError("cid", err.Error())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError("ipfs-gateway", "fetch failed", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, errors.NewNotFoundError("content", trimScheme(id))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewNetworkError("ipfs-gateway", "failed to read response body", resp.StatusCode, err)
	}
	return data, nil
}

// FetchJSON downloads and decodes the JSON document behind id into out.
func (c *Client) FetchJSON(ctx context.Context, id string, out any) error {
	data, err := c.Fetch(ctx, id)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.NewDecodeError("json", "", err)
	}
	return nil
}

// IsAvailable reports whether the gateway serves id. Transport failures
// count as unavailable.
func (c *Client) IsAvailable(ctx context.Context, id string) bool {
	u := c.ResolveURL(id)
	if u == "" {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Availability check failed", zap.String("cid", id), zap.Error(err))
		return false
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

// Pin asks the backend to pin an existing identifier.
func (c *Client) Pin(ctx context.Context, id, name string) (*ipfs.PinResponse, error) {
	if c.backend == nil {
		return nil, errors.NewStorageUnavailableError(c.backendName, nil)
	}
	return c.backend.Pin(ctx, trimScheme(id), name)
}

// PinStatus reports the backend's pin state for id.
func (c *Client) PinStatus(ctx context.Context, id string) (*ipfs.PinStatus, error) {
	if c.backend == nil {
		return nil, errors.NewStorageUnavailableError(c.backendName, nil)
	}
	return c.backend.PinStatus(ctx, trimScheme(id))
}

// Unpin removes the backend's pin for id.
func (c *Client) Unpin(ctx context.Context, id string) error {
	if c.backend == nil {
		return errors.NewStorageUnavailableError(c.backendName, nil)
	}
	return c.backend.Unpin(ctx, trimScheme(id))
}

// Health checks the upload backend.
func (c *Client) Health(ctx context.Context) error {
	if c.backend == nil {
		return errors.NewStorageUnavailableError(c.backendName, nil)
	}
	return c.backend.Health(ctx)
}

// Close releases the backend.
func (c *Client) Close(ctx context.Context) error {
	if c.backend == nil {
		return nil
	}
	return c.backend.Close(ctx)
}
