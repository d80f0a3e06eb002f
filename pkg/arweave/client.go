// Package arweave mirrors content to Arweave through a bundler node.
package arweave

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"go.uber.org/zap"
)

// Default endpoints
const (
	DefaultGateway    = "https://arweave.net/"
	DefaultBundlerURL = "https://node2.bundlr.network"
)

// TagHeaderPrefix prefixes every tag sent to the bundler.
const TagHeaderPrefix = "X-Tag-"

// Config holds configuration for the bundler client
type Config struct {
	Gateway    string
	BundlerURL string
	Timeout    time.Duration
}

// Client uploads data items to a bundler
type Client struct {
	gateway    string
	bundlerURL string
	httpClient *http.Client
	logger     *zap.Logger
}

// UploadResponse is the bundler's receipt for a data item
type UploadResponse struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// NewClient creates a bundler client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	gateway := cfg.Gateway
	if gateway == "" {
		gateway = DefaultGateway
	}
	bundler := cfg.BundlerURL
	if bundler == "" {
		bundler = DefaultBundlerURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		gateway:    gateway,
		bundlerURL: strings.TrimRight(bundler, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Upload posts data to {bundler}/bundle/tx. Tags are sent as X-Tag-<name>
// headers except Content-Type, which is sent as is.
func (c *Client) Upload(ctx context.Context, data []byte, tags map[string]string) (*UploadResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.bundlerURL+"/bundle/tx", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create bundler request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.EqualFold(name, "Content-Type") {
			req.Header.Set("Content-Type", tags[name])
			continue
		}
		req.Header.Set(TagHeaderPrefix+name, tags[name])
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError("arweave", "bundler upload failed", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.NewNetworkError("arweave",
			fmt.Sprintf("bundler upload failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			resp.StatusCode, nil)
	}

	var result UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewDecodeError("bundler response", "", err)
	}
	if result.ID == "" {
		return nil, errors.NewDecodeError("bundler response", "bundler response missing id", nil)
	}

	c.logger.Debug("Uploaded data item to bundler",
		zap.String("id", result.ID),
		zap.Int("size", len(data)))

	return &result, nil
}

// GatewayURL returns the gateway URL of the transaction.
func (c *Client) GatewayURL(txID string) string {
	return GatewayURL(c.gateway, txID)
}

// GatewayURL joins gateway and txID. An empty txID yields "".
func GatewayURL(gateway, txID string) string {
	if txID == "" {
		return ""
	}
	if !strings.HasSuffix(gateway, "/") {
		gateway += "/"
	}
	return gateway + txID
}
