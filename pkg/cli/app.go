// Package cli implements the sihiri command line: one cobra command tree over
// the registry, contract, storage, metadata, session and publish adapters.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/montybasquiart/sihiri-build/pkg/auth"
	"github.com/montybasquiart/sihiri-build/pkg/config"
	"github.com/montybasquiart/sihiri-build/pkg/contracts"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"github.com/montybasquiart/sihiri-build/pkg/logging"
	"github.com/montybasquiart/sihiri-build/pkg/metadata"
	"github.com/montybasquiart/sihiri-build/pkg/publish"
	"github.com/montybasquiart/sihiri-build/pkg/registry"
	"github.com/montybasquiart/sihiri-build/pkg/stacks"
	"github.com/montybasquiart/sihiri-build/pkg/storage"
	"github.com/montybasquiart/sihiri-build/pkg/wallet"
)

// Wallet is both halves of the user-gated flow: sign-in and transaction
// approval.
type Wallet interface {
	auth.Authenticator
	contracts.Wallet
}

// Options are the global flags.
type Options struct {
	ConfigPath  string
	Network     string
	Format      string
	Timeout     time.Duration
	SessionPath string
	Verbose     bool
}

// App holds the adapters one invocation works with. It is built once, on the
// first command that needs it.
type App struct {
	Config    *config.Config
	Logger    *logging.ColoredLogger
	Registry  *registry.Registry
	Node      *stacks.Client
	Storage   *storage.Client
	Session   *auth.Session
	Wallet    Wallet
	Contracts *contracts.Adapter
	Publisher *publish.Publisher
}

// NewApp loads configuration and wires every adapter.
func NewApp(opts Options) (*App, error) {
	path := opts.ConfigPath
	if path == "" {
		if p, err := config.DefaultPath(DefaultConfigName); err == nil {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if opts.Network != "" {
		name, err := registry.ParseNetworkName(opts.Network)
		if err != nil {
			return nil, err
		}
		cfg.Network = name
	}
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, joinConfigErrors(errs)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	zl := logger.Logger

	reg, err := registry.New(cfg, zl)
	if err != nil {
		return nil, err
	}

	node, err := stacks.NewClient(stacks.Config{APIURL: reg.Active().APIURL, Timeout: opts.Timeout}, zl)
	if err != nil {
		return nil, err
	}

	store, err := auth.NewSessionStore(opts.SessionPath)
	if err != nil {
		return nil, err
	}
	session := auth.NewSession(store, zl)
	if err := session.Restore(); err != nil {
		logger.ComponentWarn(logging.ComponentAuth, "Ignoring unreadable session", zap.Error(err))
	}

	var w Wallet
	if cfg.Features.MockBlockchainCalls {
		sim, err := wallet.NewSimulatedWallet(zl)
		if err != nil {
			return nil, err
		}
		logger.ComponentWarn(logging.ComponentWallet, "Mock blockchain calls enabled, transactions are simulated")
		w = sim
	} else {
		w = wallet.NewBrowserWallet(cfg.Wallet, zl)
	}

	content := storage.New(cfg.Storage, zl)
	adapter := contracts.NewAdapter(reg, node, w, session, zl)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Registry:  reg,
		Node:      node,
		Storage:   content,
		Session:   session,
		Wallet:    w,
		Contracts: adapter,
		Publisher: publish.New(content, adapter, metadata.NewAssembler(nil), zl),
	}, nil
}

func newLogger(cfg config.LoggingConfig) (*logging.ColoredLogger, error) {
	opts := logging.Options{
		Level:  logging.ParseLevel(cfg.Level),
		Format: cfg.Format,
	}
	if cfg.OutputFile != "" {
		return logging.NewFileLogger(logging.ComponentCLI, cfg.OutputFile, opts)
	}
	opts.Colors = cfg.Format != logging.FormatJSON && isTerminal(os.Stderr)
	return logging.New(logging.ComponentCLI, opts), nil
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// joinConfigErrors folds every validation problem into one
// ConfigurationError.
func joinConfigErrors(errs []error) error {
	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		lines = append(lines, "  - "+e.Error())
	}
	return errors.NewConfigurationError("", "invalid configuration:\n"+strings.Join(lines, "\n"))
}

// Close flushes the logger.
func (a *App) Close() {
	_ = a.Logger.Sync()
}
