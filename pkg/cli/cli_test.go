package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montybasquiart/sihiri-build/pkg/clarity"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"github.com/montybasquiart/sihiri-build/pkg/storage"
)

const deployer = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"

type harness struct {
	t       *testing.T
	dir     string
	config  string
	session string
}

// newHarness isolates HOME and writes a config for the local network with the
// in-memory pinning backend. nodeURL may be empty when no read reaches the node.
func newHarness(t *testing.T, nodeURL string) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, key := range []string{"SIHIRI_HOME", "SIHIRI_NETWORK", "NEXT_PUBLIC_NETWORK", "PINATA_API_KEY", "PINATA_SECRET_KEY", "SIHIRI_IPFS_API_URL", "SIHIRI_ARWEAVE_ENABLED", "DEBUG_MODE"} {
		t.Setenv(key, "")
	}
	t.Setenv("MOCK_BLOCKCHAIN_CALLS", "true")

	if nodeURL == "" {
		nodeURL = "http://127.0.0.1:3999"
	}
	cfg := fmt.Sprintf(`network: local
networks:
  local:
    api_url: %s
    explorer_url: http://localhost:8000
    network_id: 2147483648
storage:
  ipfs:
    gateway: http://127.0.0.1:1/ipfs/
    pinning_service: memory
  arweave:
    enabled: false
logging:
  level: error
`, nodeURL)
	path := filepath.Join(dir, "sihiri.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	return &harness{t: t, dir: dir, config: path, session: filepath.Join(dir, "session.json")}
}

func (h *harness) run(args ...string) (string, string, error) {
	h.t.Helper()
	root := NewRootCommand(BuildInfo{Version: "1.2.3", Commit: "abc123"})
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", h.config, "--session", h.session}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func (h *harness) writeFile(name string, data []byte) string {
	h.t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(h.t, os.WriteFile(path, data, 0o600))
	return path
}

func TestVersion(t *testing.T) {
	h := newHarness(t, "")

	out, _, err := h.run("version")
	require.NoError(t, err)
	assert.Equal(t, "sihiri 1.2.3 (commit abc123)\n", out)

	out, _, err = h.run("version", "--format", "json")
	require.NoError(t, err)
	var info BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.2.3", info.Version)
}

func TestUnknownFormat(t *testing.T) {
	h := newHarness(t, "")

	_, _, err := h.run("version", "--format", "xml")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestNetworkContracts(t *testing.T) {
	h := newHarness(t, "")

	out, _, err := h.run("network", "contracts", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, deployer)
	assert.Contains(t, out, "nft-ownership")
}

func TestNetworkOverrideRejectsUnknown(t *testing.T) {
	h := newHarness(t, "")

	_, _, err := h.run("network", "contracts", "--network", "devnet")
	require.Error(t, err)
}

func TestAuthFlow(t *testing.T) {
	h := newHarness(t, "")

	out, _, err := h.run("auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not authenticated")

	out, stderr, err := h.run("auth", "login")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Waiting for wallet approval")
	assert.Contains(t, out, "Simulated Creator")
	assert.FileExists(t, h.session)

	out, _, err = h.run("auth", "whoami", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Simulated Creator"`)

	out, _, err = h.run("auth", "logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out\n", out)

	out, _, err = h.run("auth", "status", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"authenticated": false}`, out)
}

func TestStoragePutMatchesComputedCID(t *testing.T) {
	h := newHarness(t, "")
	data := []byte("a small work of art")
	path := h.writeFile("art.txt", data)

	out, _, err := h.run("storage", "put", path, "--format", "json")
	require.NoError(t, err)

	var upload uploadOutput
	require.NoError(t, json.Unmarshal([]byte(out), &upload))
	want, err := storage.ComputeCID(data)
	require.NoError(t, err)
	assert.Equal(t, want.String(), upload.Cid)
	assert.Equal(t, "ipfs://"+want.String(), upload.URI)
	assert.Equal(t, len(data), upload.Size)
	assert.Nil(t, upload.Mirror)
}

func TestStoragePutMissingFile(t *testing.T) {
	h := newHarness(t, "")

	_, _, err := h.run("storage", "put", filepath.Join(h.dir, "nope.bin"))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestStorageURL(t *testing.T) {
	h := newHarness(t, "")
	id, err := storage.ComputeCID([]byte("x"))
	require.NoError(t, err)

	out, _, err := h.run("storage", "url", "ipfs://"+id.String())
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:1/ipfs/"+id.String()+"\n", out)
}

func TestMetadataBuildReportsAllFields(t *testing.T) {
	h := newHarness(t, "")

	_, _, err := h.run("metadata", "build", "--creator", deployer)
	require.Error(t, err)
	require.True(t, errors.IsValidation(err))

	var verr *errors.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := verr.Fields()
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "image")
}

func TestPublishRequiresSession(t *testing.T) {
	h := newHarness(t, "")
	path := h.writeFile("song.mp3", []byte("ID3 not really audio"))

	_, _, err := h.run("publish", path, "--name", "Song", "--dry-run")
	require.Error(t, err)
	assert.True(t, errors.IsUnauthorized(err))
}

func TestPublishDryRun(t *testing.T) {
	h := newHarness(t, "")
	_, _, err := h.run("auth", "login")
	require.NoError(t, err)

	media := []byte("\x89PNG\r\n\x1a\nnot a real image")
	path := h.writeFile("cover.png", media)

	out, _, err := h.run("publish", path,
		"--name", "Cover",
		"--description", "Album cover",
		"--tags", "art, cover",
		"--dry-run",
		"--format", "json")
	require.NoError(t, err)

	var res struct {
		MediaCID    string          `json:"media_cid"`
		MetadataURI string          `json:"metadata_uri"`
		Mint        json.RawMessage `json:"mint"`
		Metadata    struct {
			Name  string `json:"name"`
			Image string `json:"image"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))

	want, err := storage.ComputeCID(media)
	require.NoError(t, err)
	assert.Equal(t, want.String(), res.MediaCID)
	assert.Equal(t, "ipfs://"+want.String(), res.Metadata.Image)
	assert.Equal(t, "Cover", res.Metadata.Name)
	assert.True(t, strings.HasPrefix(res.MetadataURI, "ipfs://"))
	assert.Empty(t, res.Mint)
}

func TestNFTLastReadsNode(t *testing.T) {
	var calls []string
	node := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		result, err := clarity.EncodeHex(clarity.Ok(clarity.NewUInt(7)))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"okay": true, "result": result})
	}))
	defer node.Close()

	h := newHarness(t, node.URL)

	out, _, err := h.run("nft", "last")
	require.NoError(t, err)
	assert.Equal(t, "Last token:  7\n", out)

	out, _, err = h.run("nft", "last", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"last_token_id": 7}`, out)

	require.Len(t, calls, 2)
	assert.Equal(t, "/v2/contracts/call-read/"+deployer+"/nft-ownership/get-last-token-id", calls[0])
}

func TestNFTNodeFailure(t *testing.T) {
	node := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer node.Close()

	h := newHarness(t, node.URL)

	_, _, err := h.run("nft", "last")
	require.Error(t, err)
	assert.True(t, errors.IsNetwork(err))
}

func TestNFTShowRejectsBadID(t *testing.T) {
	h := newHarness(t, "")

	_, _, err := h.run("nft", "show", "first")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestConfigInitAndValidate(t *testing.T) {
	h := newHarness(t, "")

	out, _, err := h.run("config", "init")
	require.NoError(t, err)
	path := filepath.Join(h.dir, ".sihiri", DefaultConfigName)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	_, _, err = h.run("config", "init")
	require.Error(t, err, "init must refuse to overwrite without --force")

	_, _, err = h.run("config", "init", "--force")
	require.NoError(t, err)

	out, _, err = h.run("config", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "valid")

	bad := h.writeFile("bad.yaml", []byte("network: devnet\n"))
	_, _, err = h.run("config", "validate", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network")
}

func TestInvalidConfigIsConfigurationError(t *testing.T) {
	h := newHarness(t, "")
	data, err := os.ReadFile(h.config)
	require.NoError(t, err)
	broken := strings.Replace(string(data), "level: error", "level: loud", 1)
	require.NoError(t, os.WriteFile(h.config, []byte(broken), 0o600))

	_, _, err = h.run("network", "contracts")
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))
	assert.Contains(t, err.Error(), "logging.level")
	assert.Equal(t, ExitConfig, ExitCode(err))

	bad := h.writeFile("bad.yaml", []byte("network: devnet\n"))
	_, _, err = h.run("config", "validate", bad)
	assert.True(t, errors.IsConfiguration(err))
}

func TestConfigShowRedactsKeys(t *testing.T) {
	h := newHarness(t, "")
	t.Setenv("PINATA_API_KEY", "key-123")
	t.Setenv("PINATA_SECRET_KEY", "secret-456")

	out, _, err := h.run("config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "key-123")
	assert.NotContains(t, out, "secret-456")
	assert.Contains(t, out, "network: local")
}
