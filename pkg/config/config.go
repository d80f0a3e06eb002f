package config

import "time"

// Network names understood by the registry.
const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
	NetworkLocal   = "local"
)

// Logical contract names.
const (
	ContractNFTOwnership = "nftOwnership"
	ContractIdentity     = "identity"
	ContractRoyalty      = "royalty"
	ContractMarketplace  = "marketplace"
)

// LogicalContracts lists every logical contract name in a stable order.
var LogicalContracts = []string{
	ContractNFTOwnership,
	ContractIdentity,
	ContractRoyalty,
	ContractMarketplace,
}

// Config represents the main configuration for the sihiri client and API
type Config struct {
	Network   string                     `yaml:"network"`   // Active network, overridden by SIHIRI_NETWORK / NEXT_PUBLIC_NETWORK
	Networks  map[string]NetworkConfig   `yaml:"networks"`  // Node endpoints per network
	Contracts map[string]ContractsConfig `yaml:"contracts"` // Deployed contracts per network
	Storage   StorageConfig              `yaml:"storage"`
	API       APIConfig                  `yaml:"api"`
	Wallet    WalletConfig               `yaml:"wallet"`
	Logging   LoggingConfig              `yaml:"logging"`
	Features  FeatureFlags               `yaml:"features"`
}

// NetworkConfig describes one Stacks network
type NetworkConfig struct {
	APIURL      string `yaml:"api_url"`      // Stacks node API (e.g., "http://localhost:3999")
	ExplorerURL string `yaml:"explorer_url"` // Block explorer base URL
	NetworkID   uint32 `yaml:"network_id"`   // Chain id (1 mainnet, 0x80000000 testnet)
}

// ContractsConfig maps logical contract names to "ADDRESS.contract-name".
// An empty value means the contract is not deployed on that network.
type ContractsConfig struct {
	NFTOwnership string `yaml:"nft_ownership"`
	Identity     string `yaml:"identity"`
	Royalty      string `yaml:"royalty"`
	Marketplace  string `yaml:"marketplace"`
}

// Lookup returns the configured contract identifier for a logical name.
func (c ContractsConfig) Lookup(logicalName string) (string, bool) {
	switch logicalName {
	case ContractNFTOwnership:
		return c.NFTOwnership, true
	case ContractIdentity:
		return c.Identity, true
	case ContractRoyalty:
		return c.Royalty, true
	case ContractMarketplace:
		return c.Marketplace, true
	default:
		return "", false
	}
}

// StorageConfig contains content storage configuration
type StorageConfig struct {
	IPFS    IPFSConfig    `yaml:"ipfs"`
	Arweave ArweaveConfig `yaml:"arweave"`
}

// IPFSConfig contains primary content-addressed storage configuration
type IPFSConfig struct {
	// Gateway is prefixed to content identifiers to build HTTP URLs
	Gateway string `yaml:"gateway"`

	// PinningService selects the upload backend: "pinata", "kubo" or "memory"
	PinningService string `yaml:"pinning_service"`

	// APIURL is the Kubo HTTP API URL (e.g., "http://localhost:5001")
	APIURL string `yaml:"api_url"`

	// PinataAPIURL is the Pinata API base URL
	PinataAPIURL string `yaml:"pinata_api_url"`

	// Pinata credentials, normally supplied through PINATA_API_KEY / PINATA_SECRET_KEY
	PinataAPIKey    string `yaml:"pinata_api_key"`
	PinataSecretKey string `yaml:"pinata_secret_key"`

	// Timeout for uploads to the pinning backend. Gateway fetches are
	// bounded only by the caller's context. If zero, defaults to 60 seconds
	Timeout time.Duration `yaml:"timeout"`
}

// ArweaveConfig contains secondary permanent-storage configuration
type ArweaveConfig struct {
	Enabled    bool          `yaml:"enabled"`     // Mirror every primary upload (best effort)
	Gateway    string        `yaml:"gateway"`     // e.g., "https://arweave.net/"
	BundlerURL string        `yaml:"bundler_url"` // Bundler upload endpoint base
	Timeout    time.Duration `yaml:"timeout"`
}

// APIConfig contains the HTTP API server configuration
type APIConfig struct {
	ListenAddr      string        `yaml:"listen_addr"` // Address to listen on (e.g., ":8080")
	BaseURL         string        `yaml:"base_url"`    // Public URL, used in links returned to clients
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	MaxUploadSize   int64         `yaml:"max_upload_size"` // In bytes
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// WalletConfig describes how the CLI presents itself to the wallet
type WalletConfig struct {
	AppName    string   `yaml:"app_name"`
	AppIcon    string   `yaml:"app_icon"`
	ConnectURL string   `yaml:"connect_url"` // Wallet web page receiving auth and transaction requests
	Scopes     []string `yaml:"scopes"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Format     string `yaml:"format"`      // json, console
	OutputFile string `yaml:"output_file"` // Empty for stderr
}

// FeatureFlags are development switches
type FeatureFlags struct {
	Debug               bool `yaml:"debug"`                 // DEBUG_MODE
	MockBlockchainCalls bool `yaml:"mock_blockchain_calls"` // MOCK_BLOCKCHAIN_CALLS; swaps the wallet for a simulator
}

// ActiveNetwork returns the endpoints of the configured network.
func (c *Config) ActiveNetwork() (NetworkConfig, bool) {
	n, ok := c.Networks[c.Network]
	return n, ok
}

const localDeployer = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Network: NetworkTestnet,
		Networks: map[string]NetworkConfig{
			NetworkMainnet: {
				APIURL:      "https://stacks-node-api.mainnet.stacks.co",
				ExplorerURL: "https://explorer.stacks.co",
				NetworkID:   1,
			},
			NetworkTestnet: {
				APIURL:      "https://stacks-node-api.testnet.stacks.co",
				ExplorerURL: "https://explorer.testnet.stacks.co",
				NetworkID:   2147483648,
			},
			NetworkLocal: {
				APIURL:      "http://localhost:3999",
				ExplorerURL: "http://localhost:8000",
				NetworkID:   2147483648, // same as testnet
			},
		},
		Contracts: map[string]ContractsConfig{
			NetworkMainnet: {}, // not deployed yet
			NetworkTestnet: {}, // not deployed yet
			NetworkLocal: {
				NFTOwnership: localDeployer + ".nft-ownership",
				Identity:     localDeployer + ".identity",
				Royalty:      localDeployer + ".royalty",
				Marketplace:  localDeployer + ".marketplace",
			},
		},
		Storage: StorageConfig{
			IPFS: IPFSConfig{
				Gateway:        "https://ipfs.io/ipfs/",
				PinningService: "pinata",
				APIURL:         "http://localhost:5001",
				PinataAPIURL:   "https://api.pinata.cloud",
				Timeout:        60 * time.Second,
			},
			Arweave: ArweaveConfig{
				Enabled:    true,
				Gateway:    "https://arweave.net/",
				BundlerURL: "https://node2.bundlr.network",
				Timeout:    60 * time.Second,
			},
		},
		API: APIConfig{
			ListenAddr:      ":8080",
			BaseURL:         "http://localhost:8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute,
			MaxUploadSize:   100 << 20, // 100MB
			ShutdownTimeout: 10 * time.Second,
		},
		Wallet: WalletConfig{
			AppName:    "SiHiRi",
			AppIcon:    "/assets/sihiri-logo.svg",
			ConnectURL: "https://app.leather.io/connect",
			Scopes:     []string{"store_write", "publish_data"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
