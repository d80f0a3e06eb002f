package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvNetwork         = "SIHIRI_NETWORK"
	EnvNetworkFallback = "NEXT_PUBLIC_NETWORK"
	EnvPinataAPIKey    = "PINATA_API_KEY"
	EnvPinataSecretKey = "PINATA_SECRET_KEY"
	EnvIPFSAPIURL      = "SIHIRI_IPFS_API_URL"
	EnvArweaveEnabled  = "SIHIRI_ARWEAVE_ENABLED"
	EnvDebugMode       = "DEBUG_MODE"
	EnvMockBlockchain  = "MOCK_BLOCKCHAIN_CALLS"
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load reads the YAML file at path on top of Default and applies the process
// environment. A missing file is not an error when path is empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := DecodeStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides config values from environment variables.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if v, ok := nonEmpty(lookup, EnvNetwork); ok {
		c.Network = strings.ToLower(v)
	} else if v, ok := nonEmpty(lookup, EnvNetworkFallback); ok {
		c.Network = strings.ToLower(v)
	}

	if v, ok := nonEmpty(lookup, EnvPinataAPIKey); ok {
		c.Storage.IPFS.PinataAPIKey = v
	}
	if v, ok := nonEmpty(lookup, EnvPinataSecretKey); ok {
		c.Storage.IPFS.PinataSecretKey = v
	}
	if v, ok := nonEmpty(lookup, EnvIPFSAPIURL); ok {
		c.Storage.IPFS.APIURL = v
	}

	flags := []struct {
		key string
		dst *bool
	}{
		{EnvArweaveEnabled, &c.Storage.Arweave.Enabled},
		{EnvDebugMode, &c.Features.Debug},
		{EnvMockBlockchain, &c.Features.MockBlockchainCalls},
	}
	for _, f := range flags {
		v, ok := nonEmpty(lookup, f.key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", f.key, v, err)
		}
		*f.dst = b
	}
	return nil
}

func nonEmpty(lookup LookupFunc, key string) (string, bool) {
	v, ok := lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}
