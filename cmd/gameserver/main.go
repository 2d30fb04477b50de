// Package main provides the skirmish game server: an HTTP API for game
// sessions plus a gRPC health endpoint.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/cory-johannsen/skirmish/internal/config"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx := context.Background()
	lifecycle, cleanup, err := initializeLifecycle(ctx, cfg)
	if err != nil {
		log.Fatalf("initializing server: %v", err)
	}

	log.Printf("game server initialized [%s] http=%s health=%s",
		time.Since(start), cfg.Server.Addr(), cfg.Server.HealthAddr())

	runErr := lifecycle.Run(ctx)
	cleanup()
	if runErr != nil {
		log.Fatalf("server exited with error: %v", runErr)
	}
}
