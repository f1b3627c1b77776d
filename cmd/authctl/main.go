// Command authctl issues and revokes access tokens for the mutation API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cafecrawl/backend/internal/infrastructure/auth"
	"github.com/cafecrawl/backend/internal/infrastructure/cache"
	"github.com/cafecrawl/backend/internal/infrastructure/config"
	"github.com/cafecrawl/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{Level: "warn", Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	ctx := context.Background()
	cli := &cli{jwt: auth.NewJWTService(cfg.JWT), out: os.Stdout}

	command, args := os.Args[1], os.Args[2:]
	if command == "revoke" || command == "logout-all" {
		// Revocations must reach the shared store to affect running servers.
		blacklist, err := cache.NewBlacklistFactory(cfg.Redis,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(false),
		).Create(ctx)
		if err != nil {
			log.Fatal("Token blacklist unavailable", zap.Error(err))
		}
		defer blacklist.Close()
		if blacklist.Client == nil {
			log.Fatal("Revocation requires redis.enabled = true")
		}
		cli.blacklist = blacklist
	}

	if err := cli.run(ctx, command, args); err != nil {
		fmt.Fprintf(os.Stderr, "authctl %s: %v\n", command, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`cafecrawl access token tool

Usage:
  authctl issue -sub <user-id> [-ttl <duration>]   Sign an access token
  authctl revoke -token <jwt>                       Revoke one token until it expires
  authctl logout-all -sub <user-id>                 Revoke every token issued to a user so far

JWT and Redis settings come from config.toml or CAFECRAWL_* variables.`)
}
