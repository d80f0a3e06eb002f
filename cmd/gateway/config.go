package main

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/montybasquiart/sihiri-build/pkg/cli"
)

type gatewayFlags struct {
	opts   cli.Options
	listen string
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

// parseGatewayFlags reads flags and environment variables.
// Priority: flags > env > config file.
func parseGatewayFlags() gatewayFlags {
	var f gatewayFlags
	flag.StringVar(&f.opts.ConfigPath, "config", getEnvDefault("SIHIRI_CONFIG", ""), "Path to a YAML config file")
	flag.StringVar(&f.opts.Network, "network", "", "Network to serve: mainnet, testnet or local")
	flag.StringVar(&f.listen, "addr", getEnvDefault("GATEWAY_ADDR", ""), "HTTP listen address (e.g., :8080)")
	flag.DurationVar(&f.opts.Timeout, "node-timeout", 30*time.Second, "Timeout for requests to the Stacks node")
	flag.BoolVar(&f.opts.Verbose, "verbose", false, "Enable debug logging")
	flag.Parse()
	return f
}
