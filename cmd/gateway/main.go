// Command gateway runs the read-only HTTP API as a standalone daemon.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/montybasquiart/sihiri-build/pkg/cli"
	"github.com/montybasquiart/sihiri-build/pkg/gateway"
	"github.com/montybasquiart/sihiri-build/pkg/logging"
)

var version = "dev"

func main() {
	flags := parseGatewayFlags()

	app, err := cli.NewApp(flags.opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	cfg := app.Config.API
	if flags.listen != "" {
		cfg.ListenAddr = flags.listen
	}

	g, err := gateway.New(cfg, gateway.Dependencies{
		Registry:  app.Registry,
		Node:      app.Node,
		Storage:   app.Storage,
		Contracts: app.Contracts,
	}, app.Logger, version)
	if err != nil {
		app.Logger.ComponentError(logging.ComponentGateway, "failed to initialize gateway", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := g.Serve(ctx); err != nil {
		app.Logger.ComponentError(logging.ComponentGateway, "HTTP server error", zap.Error(err))
		os.Exit(1)
	}
	app.Logger.ComponentInfo(logging.ComponentGateway, "Gateway shutdown complete")
}
