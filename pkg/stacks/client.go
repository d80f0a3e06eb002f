package stacks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/montybasquiart/sihiri-build/pkg/clarity"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"go.uber.org/zap"
)

const serviceName = "stacks-node"

// NodeClient defines the node API operations used by the contract adapter
type NodeClient interface {
	CallReadOnly(ctx context.Context, contract clarity.Principal, function, sender string, args []clarity.Value) (*ReadOnlyResult, error)
	BroadcastTransaction(ctx context.Context, raw []byte) (string, error)
	Info(ctx context.Context) (*NodeInfo, error)
}

// Client talks to a Stacks node HTTP API
type Client struct {
	apiURL     string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds configuration for the node client
type Config struct {
	// APIURL is the node API base URL (e.g., "http://localhost:3999")
	APIURL string

	// Timeout bounds each request. Zero means no timeout; callers bound
	// latency through the context instead.
	Timeout time.Duration
}

// readOnlyRequest is the body of a read-only call
type readOnlyRequest struct {
	Sender    string   `json:"sender"`
	Arguments []string `json:"arguments"`
}

// ReadOnlyResult is the node's answer to a read-only call
type ReadOnlyResult struct {
	Okay   bool   `json:"okay"`
	Result string `json:"result,omitempty"` // hex-encoded Clarity value when Okay
	Cause  string `json:"cause,omitempty"`  // runtime error when not Okay
}

// NodeInfo is the subset of /v2/info the CLI reports
type NodeInfo struct {
	PeerVersion        uint32 `json:"peer_version"`
	NetworkID          uint32 `json:"network_id"`
	ParentNetworkID    uint32 `json:"parent_network_id"`
	StacksTipHeight    uint64 `json:"stacks_tip_height"`
	BurnBlockHeight    uint64 `json:"burn_block_height"`
	ServerVersion      string `json:"server_version"`
	StacksTip          string `json:"stacks_tip"`
	StacksTipConsensus string `json:"stacks_tip_consensus_hash"`
}

// broadcastRejection is the error body of POST /v2/transactions
type broadcastRejection struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
	TxID   string `json:"txid"`
}

// NewClient creates a node API client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIURL == "" {
		return nil, errors.NewConfigurationError("networks.api_url", "node API URL is empty")
	}
	if _, err := url.Parse(cfg.APIURL); err != nil {
		return nil, errors.NewConfigurationError("networks.api_url", err.Error())
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

// APIURL returns the node base URL
func (c *Client) APIURL() string {
	return c.apiURL
}

// CallReadOnly evaluates a read-only function without creating a transaction
func (c *Client) CallReadOnly(ctx context.Context, contract clarity.Principal, function, sender string, args []clarity.Value) (*ReadOnlyResult, error) {
	if !contract.IsContract() {
		return nil, errors.NewValidationError("contract", "must be a contract principal")
	}

	encoded := make([]string, 0, len(args))
	for i, arg := range args {
		h, err := clarity.EncodeHex(arg)
		if err != nil {
			return nil, errors.NewValidationError(fmt.Sprintf("args[%d]", i), err.Error())
		}
		encoded = append(encoded, h)
	}

	body, err := json.Marshal(readOnlyRequest{Sender: sender, Arguments: encoded})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal read-only request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/contracts/call-read/%s/%s/%s",
		c.apiURL, contract.Address(), url.PathEscape(contract.Name), url.PathEscape(function))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create read-only request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError(serviceName, "read-only call failed", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.NewNetworkError(serviceName,
			fmt.Sprintf("read-only call failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			resp.StatusCode, nil)
	}

	var result ReadOnlyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewDecodeError("read-only response", "", err)
	}

	c.logger.Debug("Read-only call completed",
		zap.String("contract", contract.String()),
		zap.String("function", function),
		zap.Bool("okay", result.Okay))

	return &result, nil
}

// BroadcastTransaction submits a signed, serialized transaction and returns its id
func (c *Client) BroadcastTransaction(ctx context.Context, raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", errors.NewValidationError("transaction", "must not be empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/v2/transactions", bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to create broadcast request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NewNetworkError(serviceName, "broadcast failed", 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", errors.NewNetworkError(serviceName, "failed to read broadcast response", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		var rejection broadcastRejection
		if json.Unmarshal(body, &rejection) == nil && rejection.Reason != "" {
			return "", errors.NewNetworkError(serviceName,
				fmt.Sprintf("transaction rejected: %s (%s)", rejection.Reason, rejection.Error),
				resp.StatusCode, nil)
		}
		return "", errors.NewNetworkError(serviceName,
			fmt.Sprintf("broadcast failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			resp.StatusCode, nil)
	}

	var txID string
	if err := json.Unmarshal(body, &txID); err != nil {
		return "", errors.NewDecodeError("broadcast response", "", err)
	}

	c.logger.Info("Transaction broadcast", zap.String("txid", txID))
	return txID, nil
}

// Info returns the node's /v2/info summary
func (c *Client) Info(ctx context.Context) (*NodeInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/v2/info", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create info request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError(serviceName, "info request failed", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewNetworkError(serviceName,
			fmt.Sprintf("info request failed with status %d", resp.StatusCode), resp.StatusCode, nil)
	}

	var info NodeInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.NewDecodeError("node info", "", err)
	}
	return &info, nil
}

// ExplorerTxURL links a transaction in the block explorer for the given chain.
func ExplorerTxURL(explorerURL, txID, chain string) string {
	if explorerURL == "" || txID == "" {
		return ""
	}
	if !strings.HasPrefix(txID, "0x") {
		txID = "0x" + txID
	}
	u := strings.TrimRight(explorerURL, "/") + "/txid/" + txID
	if chain != "" {
		u += "?chain=" + url.QueryEscape(chain)
	}
	return u
}
