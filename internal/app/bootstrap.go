package app

import (
	"log/slog"

	"geohasher/internal/infra"
	"geohasher/internal/service"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Index   *infra.IndexPriceClient
	Service *service.GeohashService
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads .env and the config file, sets up logging and wires the service.
// A missing config file falls back to defaults.
func (b *Bootstrap) Initialize(configPath string) error {
	// 1. Environment
	if err := infra.LoadDotEnv(".env"); err != nil {
		return err
	}

	// 2. Load Config
	cfg, err := infra.LoadConfigOrDefault(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 3. Setup Logger
	slog.SetDefault(infra.NewLogger(cfg))
	slog.Debug("Configuration loaded",
		slog.String("path", configPath),
		slog.String("index_url", cfg.Index.URL),
		slog.Int("precision", cfg.Geohash.Precision),
	)

	// 4. Index price source and pipeline
	b.Index = infra.NewIndexPriceClientWithConfig(cfg)
	b.Service = service.NewGeohashService(b.Index, cfg.Geohash.Precision)

	return nil
}

// Shutdown logs the metrics collected during the run.
func (b *Bootstrap) Shutdown() {
	snap := infra.GlobalMetrics.Snapshot()
	slog.Debug("Run finished",
		slog.Uint64("fetches", snap.FetchesTotal),
		slog.Uint64("fetch_failures", snap.FetchFailures),
		slog.Uint64("parse_failures", snap.ParseFailures),
		slog.Uint64("retries", snap.RetriesTotal),
		slog.Uint64("computations", snap.Computations),
		slog.Int64("avg_fetch_latency_ns", snap.AvgLatencyNs),
	)
}
