// Package gateway exposes read access to the marketplace contracts and the
// content storage adapter over HTTP. State-changing contract calls need a
// user's wallet and are not served here.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/montybasquiart/sihiri-build/pkg/config"
	"github.com/montybasquiart/sihiri-build/pkg/contracts"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"github.com/montybasquiart/sihiri-build/pkg/logging"
	"github.com/montybasquiart/sihiri-build/pkg/metadata"
	"github.com/montybasquiart/sihiri-build/pkg/registry"
	"github.com/montybasquiart/sihiri-build/pkg/stacks"
	"github.com/montybasquiart/sihiri-build/pkg/storage"
)

// Dependencies are the adapters the gateway serves.
type Dependencies struct {
	Registry  *registry.Registry
	Node      stacks.NodeClient
	Storage   *storage.Client
	Contracts *contracts.Adapter
}

// Gateway is the HTTP front of the library
type Gateway struct {
	cfg       config.APIConfig
	deps      Dependencies
	logger    *logging.ColoredLogger
	assembler *metadata.Assembler
	version   string
	startedAt time.Time
	router    chi.Router
}

// New creates a gateway. All dependencies are required.
func New(cfg config.APIConfig, deps Dependencies, logger *logging.ColoredLogger, version string) (*Gateway, error) {
	if deps.Registry == nil || deps.Node == nil || deps.Storage == nil || deps.Contracts == nil {
		return nil, errors.NewConfigurationError("gateway", "registry, node, storage and contracts are required")
	}

	if logger == nil {
		var err error
		logger, err = logging.NewColoredLogger(logging.ComponentGateway, true)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	g := &Gateway{
		cfg:       cfg,
		deps:      deps,
		logger:    logger,
		assembler: metadata.NewAssembler(nil),
		version:   version,
		startedAt: time.Now(),
	}
	g.router = g.buildRouter()
	return g, nil
}

// Routes returns the http.Handler with all routes and middleware configured
func (g *Gateway) Routes() http.Handler {
	return g.router
}

// Serve listens on the configured address until ctx is cancelled, then shuts
// down gracefully within ShutdownTimeout.
func (g *Gateway) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:         g.cfg.ListenAddr,
		Handler:      g.router,
		ReadTimeout:  g.cfg.ReadTimeout,
		WriteTimeout: g.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		g.logger.ComponentInfo(logging.ComponentGateway, "HTTP API listening",
			zap.String("listen_addr", g.cfg.ListenAddr),
			zap.String("network", g.deps.Registry.Active().Name))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := g.cfg.ShutdownTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	g.logger.ComponentInfo(logging.ComponentGateway, "Shutting down HTTP API")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func (g *Gateway) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(g.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(browserHeaders)

	r.Get("/health", g.healthHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", g.healthHandler)
		r.Get("/version", g.versionHandler)
		r.Get("/status", g.statusHandler)

		r.Route("/storage", func(r chi.Router) {
			r.Post("/upload", g.storageUploadHandler)
			r.Post("/metadata", g.storageMetadataHandler)
			r.Post("/pin", g.storagePinHandler)
			r.Get("/{cid}", g.storageGetHandler)
			r.Delete("/{cid}", g.storageUnpinHandler)
			r.Get("/{cid}/url", g.storageURLHandler)
			r.Get("/{cid}/available", g.storageAvailableHandler)
			r.Get("/{cid}/status", g.storageStatusHandler)
		})

		r.Route("/nft", func(r chi.Router) {
			r.Get("/last", g.nftLastHandler)
			r.Get("/owner/{address}", g.nftByOwnerHandler)
			r.Get("/{id}", g.nftTokenHandler)
			r.Get("/{id}/metadata", g.nftMetadataHandler)
			r.Get("/{id}/owned-by/{address}", g.nftOwnedByHandler)
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/me", g.userMeHandler)
			r.Get("/username/{username}", g.userByUsernameHandler)
			r.Get("/{address}/profile", g.userProfileHandler)
			r.Get("/{address}/verified", g.userVerifiedHandler)
		})

		r.Route("/marketplace", func(r chi.Router) {
			r.Get("/listings/{id}", g.listingHandler)
			r.Get("/auctions/{id}", g.auctionHandler)
			r.Get("/auctions/{id}/highest-bid", g.highestBidHandler)
			r.Get("/sellers/{address}/listings", g.sellerListingsHandler)
			r.Get("/sellers/{address}/auctions", g.sellerAuctionsHandler)
			r.Get("/tokens/{id}/listed", g.tokenListedHandler)
		})

		r.Route("/royalties", func(r chi.Router) {
			r.Get("/payments/last", g.lastPaymentHandler)
			r.Get("/payments/{id}", g.paymentHandler)
			r.Get("/creators/{address}/earnings", g.creatorEarningsHandler)
			r.Get("/creators/{address}/tokens/{id}/earnings", g.creatorTokenEarningsHandler)
		})
	})

	return r
}
