package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"go.uber.org/zap"
)

// IPFSClient defines the interface for IPFS upload and pinning backends
type IPFSClient interface {
	Add(ctx context.Context, reader io.Reader, name string) (*AddResponse, error)
	Pin(ctx context.Context, cid string, name string) (*PinResponse, error)
	PinStatus(ctx context.Context, cid string) (*PinStatus, error)
	Unpin(ctx context.Context, cid string) error
	Health(ctx context.Context) error
	Close(ctx context.Context) error
}

// Pin states reported by PinStatus
const (
	StatusPinned   = "pinned"
	StatusUnpinned = "unpinned"
)

// Client talks to a Kubo node through its HTTP RPC API
type Client struct {
	apiURL     string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds configuration for the Kubo client
type Config struct {
	// APIURL is the base URL of the Kubo RPC API (e.g., "http://localhost:5001")
	// If empty, defaults to "http://localhost:5001"
	APIURL string

	// Timeout is the timeout for client operations
	// If zero, defaults to 60 seconds
	Timeout time.Duration
}

// PinStatus represents the status of a pinned CID
type PinStatus struct {
	Cid    string `json:"cid"`
	Name   string `json:"name,omitempty"`
	Status string `json:"status"` // "pinned" or "unpinned"
	Type   string `json:"type,omitempty"`
	Size   int64  `json:"size,omitempty"`
}

// AddResponse represents the response from adding content to IPFS
type AddResponse struct {
	Name string `json:"name"`
	Cid  string `json:"cid"`
	Size int64  `json:"size"`
}

// PinResponse represents the response from pinning a CID
type PinResponse struct {
	Cid  string `json:"cid"`
	Name string `json:"name"`
}

// kuboAddChunk is one NDJSON line of /api/v0/add
type kuboAddChunk struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

// kuboError is the error body returned by the RPC API
type kuboError struct {
	Message string `json:"Message"`
	Code    int    `json:"Code"`
}

// NewClient creates a new Kubo client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = "http://localhost:5001"
	}
	if _, err := url.Parse(apiURL); err != nil {
		return nil, errors.NewConfigurationError("storage.ipfs.api_url", err.Error())
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		apiURL:     strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// rpc issues a POST against /api/v0/<command>. Kubo rejects GET on every
// RPC endpoint.
func (c *Client) rpc(ctx context.Context, command string, params url.Values, body io.Reader, contentType string) (*http.Response, error) {
	reqURL := c.apiURL + "/api/v0/" + command
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", command, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError("ipfs", fmt.Sprintf("%s request failed", command), 0, err)
	}
	return resp, nil
}

// Health checks that the node answers /api/v0/version
func (c *Client) Health(ctx context.Context) error {
	_, err := c.Version(ctx)
	return err
}

// Version returns the Kubo version string
func (c *Client) Version(ctx context.Context) (string, error) {
	resp, err := c.rpc(ctx, "version", nil, nil, "")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError("version", resp)
	}

	var v struct {
		Version string `json:"Version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return "", errors.NewDecodeError("ipfs version", "", err)
	}
	return v.Version, nil
}

// Add adds content to IPFS as a CIDv1 and pins it
func (c *Client) Add(ctx context.Context, reader io.Reader, name string) (*AddResponse, error) {
	// Track original size by reading into memory first
	// This allows us to return the actual byte count, not the DAG size
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	originalSize := int64(len(data))

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to copy data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	params := url.Values{}
	params.Set("pin", "true")
	params.Set("cid-version", "1")

	resp, err := c.rpc(ctx, "add", params, &buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("add", resp)
	}

	// Kubo streams NDJSON; drain it and keep the last object.
	dec := json.NewDecoder(resp.Body)
	var last kuboAddChunk
	for {
		var chunk kuboAddChunk
		if err := dec.Decode(&chunk); err != nil {
			if stderrors.Is(err, io.EOF) {
				break
			}
			return nil, errors.NewDecodeError("ipfs add response", "", err)
		}
		last = chunk
	}

	if last.Hash == "" {
		return nil, errors.NewDecodeError("ipfs add response", "add response missing CID", nil)
	}

	result := &AddResponse{
		Name: last.Name,
		Cid:  last.Hash,
		Size: originalSize,
	}
	if result.Name == "" {
		result.Name = name
	}

	c.logger.Debug("Added content to IPFS",
		zap.String("cid", result.Cid),
		zap.Int64("size", result.Size))

	return result, nil
}

// Pin pins a CID recursively
func (c *Client) Pin(ctx context.Context, cid string, name string) (*PinResponse, error) {
	params := url.Values{}
	params.Set("arg", cid)

	resp, err := c.rpc(ctx, "pin/add", params, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("pin/add", resp)
	}

	var result struct {
		Pins []string `json:"Pins"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewDecodeError("ipfs pin response", "", err)
	}

	pinned := cid
	if len(result.Pins) > 0 {
		pinned = result.Pins[0]
	}
	return &PinResponse{Cid: pinned, Name: name}, nil
}

// PinStatus reports whether a CID is pinned on the node
func (c *Client) PinStatus(ctx context.Context, cid string) (*PinStatus, error) {
	params := url.Values{}
	params.Set("arg", cid)
	params.Set("type", "recursive")

	resp, err := c.rpc(ctx, "pin/ls", params, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Kubo answers 500 with "... is not pinned" for unknown pins.
		body, _ := io.ReadAll(resp.Body)
		var kerr kuboError
		if json.Unmarshal(body, &kerr) == nil && strings.Contains(kerr.Message, "not pinned") {
			return &PinStatus{Cid: cid, Status: StatusUnpinned}, nil
		}
		return nil, errors.NewNetworkError("ipfs",
			fmt.Sprintf("pin/ls failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			resp.StatusCode, nil)
	}

	var result struct {
		Keys map[string]struct {
			Type string `json:"Type"`
		} `json:"Keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewDecodeError("ipfs pin/ls response", "", err)
	}

	status := &PinStatus{Cid: cid, Status: StatusUnpinned}
	for key, info := range result.Keys {
		status.Cid = key
		status.Status = StatusPinned
		status.Type = info.Type
	}
	return status, nil
}

// Unpin removes a pin from a CID
func (c *Client) Unpin(ctx context.Context, cid string) error {
	params := url.Values{}
	params.Set("arg", cid)

	resp, err := c.rpc(ctx, "pin/rm", params, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError("pin/rm", resp)
	}
	return nil
}

// Close closes the IPFS client connection
func (c *Client) Close(ctx context.Context) error {
	// HTTP client doesn't need explicit closing
	return nil
}

// statusError turns an unexpected HTTP status into a NetworkError carrying
// the response body.
func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(body))

	var kerr kuboError
	if json.Unmarshal(body, &kerr) == nil && kerr.Message != "" {
		msg = kerr.Message
	}
	return errors.NewNetworkError("ipfs",
		fmt.Sprintf("%s failed with status %d: %s", op, resp.StatusCode, msg),
		resp.StatusCode, nil)
}
