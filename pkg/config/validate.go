package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/montybasquiart/sihiri-build/pkg/config/validate"
)

// ValidationError represents a single validation error with context.
type ValidationError = validate.ValidationError

// Validate performs comprehensive validation of the entire config.
// It aggregates all errors and returns them, allowing the caller to print all issues at once.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateNetworks()...)
	errs = append(errs, c.validateContracts()...)
	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateAPI()...)
	errs = append(errs, c.validateLogging()...)
	errs = append(errs, c.validateCrossFields()...)

	return errs
}

func isKnownNetwork(name string) bool {
	switch name {
	case NetworkMainnet, NetworkTestnet, NetworkLocal:
		return true
	}
	return false
}

// sortedKeys keeps error output stable across runs.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Config) validateNetworks() []error {
	var errs []error

	if !isKnownNetwork(c.Network) {
		errs = append(errs, ValidationError{
			Path:    "network",
			Message: fmt.Sprintf("invalid value %q", c.Network),
			Hint:    "allowed values: mainnet, testnet, local",
		})
	} else if _, ok := c.Networks[c.Network]; !ok {
		errs = append(errs, ValidationError{
			Path:    "networks." + c.Network,
			Message: "active network has no endpoint configuration",
		})
	}

	for _, name := range sortedKeys(c.Networks) {
		n := c.Networks[name]
		path := "networks." + name
		if !isKnownNetwork(name) {
			errs = append(errs, ValidationError{
				Path:    path,
				Message: "unknown network",
				Hint:    "allowed values: mainnet, testnet, local",
			})
			continue
		}
		if err := validate.ValidateHTTPURL(n.APIURL); err != nil {
			errs = append(errs, ValidationError{Path: path + ".api_url", Message: err.Error()})
		}
		if n.ExplorerURL != "" {
			if err := validate.ValidateHTTPURL(n.ExplorerURL); err != nil {
				errs = append(errs, ValidationError{Path: path + ".explorer_url", Message: err.Error()})
			}
		}
		if n.NetworkID == 0 {
			errs = append(errs, ValidationError{
				Path:    path + ".network_id",
				Message: "must not be zero",
				Hint:    "1 for mainnet, 2147483648 for testnet and local",
			})
		}
	}

	return errs
}

func (c *Config) validateContracts() []error {
	var errs []error

	yamlKeys := map[string]string{
		ContractNFTOwnership: "nft_ownership",
		ContractIdentity:     "identity",
		ContractRoyalty:      "royalty",
		ContractMarketplace:  "marketplace",
	}

	for _, network := range sortedKeys(c.Contracts) {
		if _, ok := c.Networks[network]; !ok {
			errs = append(errs, ValidationError{
				Path:    "contracts." + network,
				Message: "no matching entry under networks",
			})
			continue
		}
		set := c.Contracts[network]
		for _, logical := range LogicalContracts {
			id, _ := set.Lookup(logical)
			if id == "" {
				// not deployed; lookups fail at resolve time
				continue
			}
			path := fmt.Sprintf("contracts.%s.%s", network, yamlKeys[logical])
			mainnet, err := validate.ValidateContractID(id)
			if err != nil {
				errs = append(errs, ValidationError{
					Path:    path,
					Message: fmt.Sprintf("invalid contract identifier %q: %v", id, err),
					Hint:    "expected ADDRESS.contract-name",
				})
				continue
			}
			if mainnet != (network == NetworkMainnet) {
				errs = append(errs, ValidationError{
					Path:    path,
					Message: fmt.Sprintf("address version does not match network %s", network),
					Hint:    "mainnet uses SP/SM addresses, testnet and local use ST/SN",
				})
			}
		}
	}

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error
	ipfs := c.Storage.IPFS

	if err := validate.ValidateHTTPURL(ipfs.Gateway); err != nil {
		errs = append(errs, ValidationError{Path: "storage.ipfs.gateway", Message: err.Error()})
	} else if !strings.HasSuffix(ipfs.Gateway, "/") {
		errs = append(errs, ValidationError{
			Path:    "storage.ipfs.gateway",
			Message: "must end with /",
			Hint:    "identifiers are appended verbatim, e.g. https://ipfs.io/ipfs/",
		})
	}

	switch ipfs.PinningService {
	case "pinata":
		if err := validate.ValidateHTTPURL(ipfs.PinataAPIURL); err != nil {
			errs = append(errs, ValidationError{Path: "storage.ipfs.pinata_api_url", Message: err.Error()})
		}
	case "kubo":
		if err := validate.ValidateHTTPURL(ipfs.APIURL); err != nil {
			errs = append(errs, ValidationError{Path: "storage.ipfs.api_url", Message: err.Error()})
		}
	case "memory":
	default:
		errs = append(errs, ValidationError{
			Path:    "storage.ipfs.pinning_service",
			Message: fmt.Sprintf("invalid value %q", ipfs.PinningService),
			Hint:    "allowed values: pinata, kubo, memory",
		})
	}

	if ipfs.Timeout < 0 {
		errs = append(errs, ValidationError{
			Path:    "storage.ipfs.timeout",
			Message: fmt.Sprintf("must be >= 0; got %s", ipfs.Timeout),
		})
	}

	ar := c.Storage.Arweave
	if ar.Enabled {
		if err := validate.ValidateHTTPURL(ar.Gateway); err != nil {
			errs = append(errs, ValidationError{Path: "storage.arweave.gateway", Message: err.Error()})
		}
		if err := validate.ValidateHTTPURL(ar.BundlerURL); err != nil {
			errs = append(errs, ValidationError{Path: "storage.arweave.bundler_url", Message: err.Error()})
		}
	}

	return errs
}

func (c *Config) validateAPI() []error {
	var errs []error

	if err := validate.ValidateListenAddr(c.API.ListenAddr); err != nil {
		errs = append(errs, ValidationError{
			Path:    "api.listen_addr",
			Message: err.Error(),
			Hint:    "e.g. :8080 or 127.0.0.1:8080",
		})
	}
	if c.API.MaxUploadSize <= 0 {
		errs = append(errs, ValidationError{
			Path:    "api.max_upload_size",
			Message: fmt.Sprintf("must be > 0; got %d", c.API.MaxUploadSize),
		})
	}

	return errs
}

func (c *Config) validateLogging() []error {
	var errs []error
	log := c.Logging

	switch log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Path:    "logging.level",
			Message: fmt.Sprintf("invalid value %q", log.Level),
			Hint:    "allowed values: debug, info, warn, error",
		})
	}

	switch log.Format {
	case "console", "json":
	default:
		errs = append(errs, ValidationError{
			Path:    "logging.format",
			Message: fmt.Sprintf("invalid value %q", log.Format),
			Hint:    "allowed values: console, json",
		})
	}

	if log.OutputFile != "" {
		if dir := filepath.Dir(log.OutputFile); dir != "." {
			if err := validate.ValidateDirWritable(dir); err != nil {
				errs = append(errs, ValidationError{
					Path:    "logging.output_file",
					Message: err.Error(),
					Hint:    "the parent directory must exist and be writable",
				})
			}
		}
	}

	return errs
}

func (c *Config) validateCrossFields() []error {
	var errs []error

	if c.Features.MockBlockchainCalls && c.Network == NetworkMainnet {
		errs = append(errs, ValidationError{
			Path:    "features.mock_blockchain_calls",
			Message: "not allowed on mainnet",
		})
	}

	return errs
}
