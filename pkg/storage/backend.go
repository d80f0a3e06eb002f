package storage

import (
	"github.com/montybasquiart/sihiri-build/pkg/arweave"
	"github.com/montybasquiart/sihiri-build/pkg/config"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"github.com/montybasquiart/sihiri-build/pkg/ipfs"
	"go.uber.org/zap"
)

// Backend names accepted by storage.ipfs.pinning_service
const (
	BackendPinata = "pinata"
	BackendKubo   = "kubo"
	BackendMemory = "memory"
)

// NewBackend builds the upload backend selected by cfg. Pinata is only used
// when both keys are present; otherwise the Kubo API is used.
func NewBackend(cfg config.IPFSConfig, logger *zap.Logger) (ipfs.IPFSClient, string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.PinningService {
	case BackendMemory:
		return NewMemoryBackend(), BackendMemory, nil

	case BackendPinata, "":
		if cfg.PinataAPIKey != "" && cfg.PinataSecretKey != "" {
			client, err := ipfs.NewPinataClient(ipfs.PinataConfig{
				APIURL:    cfg.PinataAPIURL,
				APIKey:    cfg.PinataAPIKey,
				SecretKey: cfg.PinataSecretKey,
				Timeout:   cfg.Timeout,
			}, logger)
			if err != nil {
				return nil, "", err
			}
			return client, BackendPinata, nil
		}
		logger.Info("Pinata credentials not set, using the Kubo API",
			zap.String("api_url", cfg.APIURL))
		fallthrough

	case BackendKubo:
		client, err := ipfs.NewClient(ipfs.Config{APIURL: cfg.APIURL, Timeout: cfg.Timeout}, logger)
		if err != nil {
			return nil, "", err
		}
		return client, BackendKubo, nil

	default:
		return nil, "", errors.NewConfigurationError("storage.ipfs.pinning_service",
			"must be one of pinata, kubo, memory")
	}
}

// New wires a storage client from configuration. A backend that cannot be
// built leaves the client uninitialized; uploads then fail with
// StorageUnavailableError while URL resolution keeps working.
func New(cfg config.StorageConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	backend, name, err := NewBackend(cfg.IPFS, logger)
	if err != nil {
		logger.Error("Storage backend not initialized", zap.Error(err))
		backend = nil
		name = cfg.IPFS.PinningService
	}

	var mirror Mirrorer
	if cfg.Arweave.Enabled {
		mirror = arweave.NewClient(arweave.Config{
			Gateway:    cfg.Arweave.Gateway,
			BundlerURL: cfg.Arweave.BundlerURL,
			Timeout:    cfg.Arweave.Timeout,
		}, logger)
	}

	return NewClient(Config{
		Gateway:     cfg.IPFS.Gateway,
		BackendName: name,
		Mirror:      cfg.Arweave.Enabled,
	}, backend, mirror, logger)
}
