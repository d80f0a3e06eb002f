// Package registry resolves logical contract names to deployed contracts on
// the active Stacks network. The table is loaded once from configuration and
// never changes for the lifetime of the process.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/montybasquiart/sihiri-build/pkg/clarity"
	"github.com/montybasquiart/sihiri-build/pkg/config"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"go.uber.org/zap"
)

// NetworkProfile describes one Stacks network
type NetworkProfile struct {
	Name        string `json:"name"`
	APIURL      string `json:"api_url"`
	ExplorerURL string `json:"explorer_url"`
	NetworkID   uint32 `json:"network_id"`
}

// IsMainnet reports whether the profile is the production chain.
func (p NetworkProfile) IsMainnet() bool {
	return p.Name == config.NetworkMainnet
}

// AddressVersion returns the single-sig address version used on this network.
func (p NetworkProfile) AddressVersion() byte {
	if p.IsMainnet() {
		return clarity.AddressVersionMainnetSingleSig
	}
	return clarity.AddressVersionTestnetSingleSig
}

// SessionKey is the network name a wallet session stores addresses under.
// Local devnets share testnet addresses.
func (p NetworkProfile) SessionKey() string {
	if p.IsMainnet() {
		return config.NetworkMainnet
	}
	return config.NetworkTestnet
}

// ContractReference is a deployed contract
type ContractReference struct {
	LogicalName string            `json:"logical_name"`
	Network     string            `json:"network"`
	Address     string            `json:"address"`
	OnChainName string            `json:"contract_name"`
	Principal   clarity.Principal `json:"-"`
}

// ID returns "ADDRESS.contract-name".
func (r ContractReference) ID() string {
	return r.Address + "." + r.OnChainName
}

type contractKey struct {
	logical string
	network string
}

// Registry is an immutable lookup table of networks and contracts
type Registry struct {
	active    NetworkProfile
	profiles  map[string]NetworkProfile
	contracts map[contractKey]ContractReference
}

// New builds the registry from configuration. The active network comes from
// cfg.Network, which config.Load already resolved from the environment.
func New(cfg *config.Config, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Registry{
		profiles:  make(map[string]NetworkProfile, len(cfg.Networks)),
		contracts: make(map[contractKey]ContractReference),
	}

	for name, n := range cfg.Networks {
		r.profiles[name] = NetworkProfile{
			Name:        name,
			APIURL:      n.APIURL,
			ExplorerURL: n.ExplorerURL,
			NetworkID:   n.NetworkID,
		}
	}

	active, err := ParseNetworkName(cfg.Network)
	if err != nil {
		return nil, errors.NewConfigurationError("network", err.Error())
	}
	profile, ok := r.profiles[active]
	if !ok {
		return nil, errors.NewConfigurationError("networks."+active, "active network has no endpoint configuration")
	}
	r.active = profile

	for network, set := range cfg.Contracts {
		for _, logical := range config.LogicalContracts {
			id, _ := set.Lookup(logical)
			if id == "" {
				continue
			}
			p, err := clarity.ParsePrincipal(id)
			if err != nil || !p.IsContract() {
				msg := "expected ADDRESS.contract-name"
				if err != nil {
					msg = err.Error()
				}
				return nil, errors.NewConfigurationError(fmt.Sprintf("contracts.%s.%s", network, logical), msg)
			}
			r.contracts[contractKey{logical: logical, network: network}] = ContractReference{
				LogicalName: logical,
				Network:     network,
				Address:     p.Address(),
				OnChainName: p.Name,
				Principal:   p,
			}
		}
	}

	logger.Info("Contract registry loaded",
		zap.String("network", r.active.Name),
		zap.String("api_url", r.active.APIURL),
		zap.Int("contracts", len(r.contracts)))

	return r, nil
}

// Resolve returns the contract deployed under logicalName on network.
// A missing or empty mapping is a configuration error.
func (r *Registry) Resolve(logicalName, network string) (ContractReference, error) {
	ref, ok := r.contracts[contractKey{logical: logicalName, network: network}]
	if !ok {
		return ContractReference{}, errors.NewConfigurationError(
			fmt.Sprintf("contracts.%s.%s", network, logicalName),
			"contract not deployed on this network")
	}
	return ref, nil
}

// ResolveActive resolves logicalName on the active network.
func (r *Registry) ResolveActive(logicalName string) (ContractReference, error) {
	return r.Resolve(logicalName, r.active.Name)
}

// Active returns the network selected at startup.
func (r *Registry) Active() NetworkProfile {
	return r.active
}

// Profile returns the named network profile.
func (r *Registry) Profile(name string) (NetworkProfile, error) {
	p, ok := r.profiles[name]
	if !ok {
		return NetworkProfile{}, errors.NewConfigurationError("networks."+name, "network not configured")
	}
	return p, nil
}

// Networks lists configured network names in sorted order.
func (r *Registry) Networks() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Contracts lists every deployed contract on network, ordered by logical name.
func (r *Registry) Contracts(network string) []ContractReference {
	var refs []ContractReference
	for _, logical := range config.LogicalContracts {
		if ref, ok := r.contracts[contractKey{logical: logical, network: network}]; ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// ParseNetworkName normalizes and validates a network selector.
func ParseNetworkName(s string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case config.NetworkMainnet, config.NetworkTestnet, config.NetworkLocal:
		return name, nil
	default:
		return "", errors.NewValidationError("network", fmt.Sprintf("unknown network %q (want mainnet, testnet or local)", s))
	}
}
