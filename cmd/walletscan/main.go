// Package main wires the walletscan pipeline: configuration, telemetry,
// logging, the per-chain node clients, classification, exporters, and the CLI.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gabapcia/walletscan/internal/classify"
	"github.com/gabapcia/walletscan/internal/config"
	"github.com/gabapcia/walletscan/internal/handlers/cli"
	"github.com/gabapcia/walletscan/internal/infra/blockchain/ethereum"
	"github.com/gabapcia/walletscan/internal/infra/explorer/etherscan"
	"github.com/gabapcia/walletscan/internal/infra/storage/csvfile"
	"github.com/gabapcia/walletscan/internal/infra/storage/redis"
	"github.com/gabapcia/walletscan/internal/infra/storage/sqlite"
	"github.com/gabapcia/walletscan/internal/pkg/logger"
	"github.com/gabapcia/walletscan/internal/pkg/telemetry"
	"github.com/gabapcia/walletscan/internal/pkg/transport/http"
	"github.com/gabapcia/walletscan/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/walletscan/internal/scanproc"
	"github.com/gabapcia/walletscan/internal/txenrich"
	"github.com/gabapcia/walletscan/internal/walletregistry"
)

const serviceName = "walletscan"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	if cfg.TelemetryEnabled {
		shutdown, err := telemetry.Init(ctx, serviceName)
		if err != nil {
			log.Fatalf("initializing telemetry: %v", err)
		}
		defer shutdown(context.Background())
	}

	if err := logger.Init(logger.WithLevel(cfg.LogLevel)); err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if err := run(ctx, cfg); err != nil {
		logger.Error(ctx, "walletscan terminated with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	selected, err := cfg.SelectedChains()
	if err != nil {
		return err
	}

	redisClient, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	registry := walletregistry.New(redisClient)

	var (
		chains    = make([]scanproc.Chain, 0, len(selected))
		fleet     = ethereum.NewFleet()
		endpoints = make(map[string]etherscan.Endpoint, len(selected))
	)
	for _, chain := range selected {
		node := ethereum.NewClient(jsonrpc.NewClient(chain.RPCURL(cfg.InfuraProjectID)))
		fleet.Register(chain.Name, node)

		chains = append(chains, scanproc.Chain{
			Network:     chain.Name,
			DisplayName: chain.DisplayName,
			ChainID:     chain.ChainID,
			Node:        node,
		})

		if chain.ExplorerAPI != "" {
			endpoints[chain.Name] = etherscan.Endpoint{
				BaseURL: chain.ExplorerAPI,
				APIKey:  cfg.ExplorerAPIKeys[chain.Name],
			}
		}
	}

	explorer := etherscan.NewClient(http.NewClient(), endpoints)

	// A fresh classifier per run keeps the contract and token caches
	// run-scoped.
	newAssembler := func() *txenrich.Assembler {
		classifier := classify.New(
			explorer,
			fleet,
			classify.DefaultCategoryKeywords(),
			classify.NewExchangeDirectory(classify.DefaultExchangeTables()),
		)
		return txenrich.NewAssembler(classifier, classifier, classifier)
	}

	scanner := scanproc.New(chains, newAssembler,
		scanproc.WithExporters(csvfile.New(cfg.OutputDir), sqlite.New(cfg.OutputDir)),
		scanproc.WithWalletDirectory(registry),
	)

	return cli.Run(ctx, registry, scanner, fleet)
}
