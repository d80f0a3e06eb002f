package stacks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/montybasquiart/sihiri-build/pkg/clarity"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"go.uber.org/zap"
)

const deployer = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"

func TestNewClient(t *testing.T) {
	t.Run("requires api url", func(t *testing.T) {
		_, err := NewClient(Config{}, zap.NewNop())
		if !errors.IsConfiguration(err) {
			t.Errorf("Expected configuration error, got %v", err)
		}
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		c, err := NewClient(Config{APIURL: "http://localhost:3999/"}, nil)
		if err != nil {
			t.Fatalf("NewClient: %v", err)
		}
		if c.APIURL() != "http://localhost:3999" {
			t.Errorf("Unexpected API URL %q", c.APIURL())
		}
	})
}

func TestClient_CallReadOnly(t *testing.T) {
	contract := clarity.MustParsePrincipal(deployer + ".nft-ownership")

	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("Expected POST, got %s", r.Method)
			}
			want := "/v2/contracts/call-read/" + deployer + "/nft-ownership/get-owner"
			if r.URL.Path != want {
				t.Errorf("Expected path %s, got %s", want, r.URL.Path)
			}

			var body readOnlyRequest
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Sender != deployer {
				t.Errorf("Expected sender %s, got %s", deployer, body.Sender)
			}
			if len(body.Arguments) != 1 || body.Arguments[0] != "0x0100000000000000000000000000000001" {
				t.Errorf("Unexpected arguments %v", body.Arguments)
			}

			json.NewEncoder(w).Encode(ReadOnlyResult{Okay: true, Result: "0x0703"})
		}))
		defer server.Close()

		c, _ := NewClient(Config{APIURL: server.URL}, zap.NewNop())
		res, err := c.CallReadOnly(context.Background(), contract, "get-owner", deployer, []clarity.Value{clarity.NewUInt(1)})
		if err != nil {
			t.Fatalf("CallReadOnly: %v", err)
		}
		if !res.Okay || res.Result != "0x0703" {
			t.Errorf("Unexpected result %+v", res)
		}
	})

	t.Run("runtime failure is returned as data", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(ReadOnlyResult{Okay: false, Cause: "Unchecked(NoSuchContract)"})
		}))
		defer server.Close()

		c, _ := NewClient(Config{APIURL: server.URL}, zap.NewNop())
		res, err := c.CallReadOnly(context.Background(), contract, "get-owner", deployer, nil)
		if err != nil {
			t.Fatalf("CallReadOnly: %v", err)
		}
		if res.Okay || res.Cause == "" {
			t.Errorf("Expected cause, got %+v", res)
		}
	})

	t.Run("http error is a network error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "node syncing", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		c, _ := NewClient(Config{APIURL: server.URL}, zap.NewNop())
		_, err := c.CallReadOnly(context.Background(), contract, "get-owner", deployer, nil)
		if !errors.IsNetwork(err) {
			t.Fatalf("Expected network error, got %v", err)
		}
		var netErr *errors.NetworkError
		errors.As(err, &netErr)
		if netErr.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("Expected upstream status 503, got %d", netErr.StatusCode)
		}
	})

	t.Run("malformed body is a decode error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not json"))
		}))
		defer server.Close()

		c, _ := NewClient(Config{APIURL: server.URL}, zap.NewNop())
		_, err := c.CallReadOnly(context.Background(), contract, "get-owner", deployer, nil)
		if !errors.IsDecode(err) {
			t.Errorf("Expected decode error, got %v", err)
		}
	})

	t.Run("unreachable node", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		c, _ := NewClient(Config{APIURL: url}, zap.NewNop())
		_, err := c.CallReadOnly(context.Background(), contract, "get-owner", deployer, nil)
		if !errors.IsNetwork(err) {
			t.Errorf("Expected network error, got %v", err)
		}
	})

	t.Run("rejects standard principal", func(t *testing.T) {
		c, _ := NewClient(Config{APIURL: "http://localhost:1"}, zap.NewNop())
		_, err := c.CallReadOnly(context.Background(), clarity.MustParsePrincipal(deployer), "f", deployer, nil)
		if !errors.IsValidation(err) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})
}

func TestClient_BroadcastTransaction(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v2/transactions" {
				t.Errorf("Unexpected path %s", r.URL.Path)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/octet-stream" {
				t.Errorf("Unexpected content type %s", ct)
			}
			body, _ := io.ReadAll(r.Body)
			if string(body) != "\x80\x80" {
				t.Errorf("Unexpected body %x", body)
			}
			w.Write([]byte(`"0xabc"`))
		}))
		defer server.Close()

		c, _ := NewClient(Config{APIURL: server.URL}, zap.NewNop())
		txID, err := c.BroadcastTransaction(context.Background(), []byte{0x80, 0x80})
		if err != nil {
			t.Fatalf("BroadcastTransaction: %v", err)
		}
		if txID != "0xabc" {
			t.Errorf("Expected 0xabc, got %s", txID)
		}
	})

	t.Run("rejection reason surfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"transaction rejected","reason":"BadNonce","txid":"0xabc"}`))
		}))
		defer server.Close()

		c, _ := NewClient(Config{APIURL: server.URL}, zap.NewNop())
		_, err := c.BroadcastTransaction(context.Background(), []byte{0x80})
		if err == nil || !errors.IsNetwork(err) {
			t.Fatalf("Expected network error, got %v", err)
		}
		if got := err.Error(); !strings.Contains(got, "BadNonce") {
			t.Errorf("Expected reason in %q", got)
		}
	})

	t.Run("empty transaction", func(t *testing.T) {
		c, _ := NewClient(Config{APIURL: "http://localhost:1"}, zap.NewNop())
		if _, err := c.BroadcastTransaction(context.Background(), nil); !errors.IsValidation(err) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})
}

func TestClient_Info(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"peer_version":402653189,"network_id":2147483648,"stacks_tip_height":42,"server_version":"stacks-node 2.4"}`))
	}))
	defer server.Close()

	c, _ := NewClient(Config{APIURL: server.URL}, zap.NewNop())
	info, err := c.Info(context.Background())
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.NetworkID != 2147483648 || info.StacksTipHeight != 42 {
		t.Errorf("Unexpected info %+v", info)
	}
}

func TestExplorerTxURL(t *testing.T) {
	got := ExplorerTxURL("https://explorer.stacks.co/", "abc", "testnet")
	if got != "https://explorer.stacks.co/txid/0xabc?chain=testnet" {
		t.Errorf("Unexpected URL %s", got)
	}
	if ExplorerTxURL("", "abc", "") != "" {
		t.Error("Expected empty URL without explorer")
	}
}
