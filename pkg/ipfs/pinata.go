package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
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

// DefaultPinataAPIURL is the hosted Pinata API.
const DefaultPinataAPIURL = "https://api.pinata.cloud"

// PinataClient uploads and pins through the Pinata pinning service
type PinataClient struct {
	apiURL     string
	apiKey     string
	secretKey  string
	httpClient *http.Client
	logger     *zap.Logger
}

// PinataConfig holds configuration for the Pinata client
type PinataConfig struct {
	APIURL    string
	APIKey    string
	SecretKey string
	Timeout   time.Duration
}

type pinataPinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

type pinataPinList struct {
	Count int `json:"count"`
	Rows  []struct {
		IpfsPinHash string `json:"ipfs_pin_hash"`
		Size        int64  `json:"size"`
		Metadata    struct {
			Name string `json:"name"`
		} `json:"metadata"`
	} `json:"rows"`
}

// NewPinataClient creates a Pinata client. Both keys are required.
func NewPinataClient(cfg PinataConfig, logger *zap.Logger) (*PinataClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		return nil, errors.NewConfigurationError("storage.ipfs.pinata_api_key", "pinata api key and secret are required")
	}

	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = DefaultPinataAPIURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &PinataClient{
		apiURL:     strings.TrimRight(apiURL, "/"),
		apiKey:     cfg.APIKey,
		secretKey:  cfg.SecretKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

func (c *PinataClient) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create pinata request: %w", err)
	}
	req.Header.Set("pinata_api_key", c.apiKey)
	req.Header.Set("pinata_secret_api_key", c.secretKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError("pinata", fmt.Sprintf("%s %s failed", method, path), 0, err)
	}
	return resp, nil
}

// Health checks the API keys against /data/testAuthentication
func (c *PinataClient) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/data/testAuthentication", nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return errors.NewConfigurationError("storage.ipfs.pinata_api_key", "pinata rejected the api keys")
	}
	if resp.StatusCode != http.StatusOK {
		return pinataStatusError("testAuthentication", resp)
	}
	return nil
}

// Add uploads content with pinFileToIPFS as a CIDv1
func (c *PinataClient) Add(ctx context.Context, reader io.Reader, name string) (*AddResponse, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to copy data: %w", err)
	}
	if err := writer.WriteField("pinataOptions", `{"cidVersion":1}`); err != nil {
		return nil, fmt.Errorf("failed to write options: %w", err)
	}
	if name != "" {
		meta, _ := json.Marshal(map[string]string{"name": name})
		if err := writer.WriteField("pinataMetadata", string(meta)); err != nil {
			return nil, fmt.Errorf("failed to write metadata: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/pinning/pinFileToIPFS", &buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, pinataStatusError("pinFileToIPFS", resp)
	}

	var result pinataPinResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewDecodeError("pinata pin response", "", err)
	}
	if result.IpfsHash == "" {
		return nil, errors.NewDecodeError("pinata pin response", "pin response missing CID", nil)
	}

	c.logger.Debug("Pinned content on Pinata",
		zap.String("cid", result.IpfsHash),
		zap.Int64("pin_size", result.PinSize))

	return &AddResponse{Name: name, Cid: result.IpfsHash, Size: int64(len(data))}, nil
}

// Pin asks Pinata to pin content that already exists on the network
func (c *PinataClient) Pin(ctx context.Context, cid string, name string) (*PinResponse, error) {
	body := map[string]any{"hashToPin": cid}
	if name != "" {
		body["pinataMetadata"] = map[string]string{"name": name}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pin request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/pinning/pinByHash", bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, pinataStatusError("pinByHash", resp)
	}
	return &PinResponse{Cid: cid, Name: name}, nil
}

// PinStatus looks the CID up in the account's pin list
func (c *PinataClient) PinStatus(ctx context.Context, cid string) (*PinStatus, error) {
	q := url.Values{}
	q.Set("hashContains", cid)
	q.Set("status", "pinned")

	resp, err := c.do(ctx, http.MethodGet, "/data/pinList?"+q.Encode(), nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, pinataStatusError("pinList", resp)
	}

	var list pinataPinList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, errors.NewDecodeError("pinata pin list", "", err)
	}

	for _, row := range list.Rows {
		if row.IpfsPinHash == cid {
			return &PinStatus{Cid: cid, Name: row.Metadata.Name, Status: StatusPinned, Size: row.Size}, nil
		}
	}
	return &PinStatus{Cid: cid, Status: StatusUnpinned}, nil
}

// Unpin removes the CID from the account
func (c *PinataClient) Unpin(ctx context.Context, cid string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/pinning/unpin/"+url.PathEscape(cid), nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return pinataStatusError("unpin", resp)
	}
	return nil
}

// Close is a no-op
func (c *PinataClient) Close(ctx context.Context) error {
	return nil
}

func pinataStatusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return errors.NewNetworkError("pinata",
		fmt.Sprintf("%s failed with status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body))),
		resp.StatusCode, nil)
}
