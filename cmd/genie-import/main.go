// Package main provides the dat import tool: it decodes an empires*.dat file,
// writes one YAML file per section and optionally stores snapshots and runs
// an inspection script.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/cory-johannsen/genie/internal/config"
	"github.com/cory-johannsen/genie/internal/genie/loader"
	"github.com/cory-johannsen/genie/internal/importer"
	"github.com/cory-johannsen/genie/internal/importer/empires"
	"github.com/cory-johannsen/genie/internal/observability"
	"github.com/cory-johannsen/genie/internal/scripting"
	"github.com/cory-johannsen/genie/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/genie.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}
	logger.Info("done", zap.Duration("elapsed", time.Since(start)))
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	v, err := cfg.Input.GameVersion()
	if err != nil {
		return err
	}
	logger.Info("importing dat file",
		zap.String("path", cfg.Input.Path),
		zap.String("version", v.String()),
		zap.Bool("lazy", cfg.Reader.Lazy),
	)

	src := empires.NewSource(v,
		empires.WithCompressed(cfg.Input.Compressed),
		empires.WithLazy(cfg.Reader.Lazy),
		empires.WithBlocks(cfg.Input.Blocks),
		empires.WithLogger(observability.For(logger, observability.ComponentReader)),
	)
	ds, err := importer.New(src, observability.For(logger, observability.ComponentImporter)).Run(cfg.Input.Path, cfg.Export.Dir)
	if err != nil {
		return err
	}

	if cfg.Database.Enabled {
		if err := store(ctx, cfg.Database, ds, observability.For(logger, observability.ComponentStore)); err != nil {
			return err
		}
	}

	if cfg.Export.Script != "" {
		return inspect(cfg, ds, logger)
	}
	return nil
}

func store(ctx context.Context, dbCfg config.DatabaseConfig, ds *importer.Dataset, logger *zap.Logger) error {
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := postgres.NewSnapshotRepository(pool.DB()).Save(ctx, ds); err != nil {
		return fmt.Errorf("storing snapshot: %w", err)
	}
	logger.Info("snapshot stored",
		zap.String("run_id", ds.RunID.String()),
		zap.String("digest", ds.Digest),
		zap.Int("sections", len(ds.Sections)),
		zap.Duration("elapsed", time.Since(dbStart)),
	)
	return nil
}

func inspect(cfg config.Config, ds *importer.Dataset, logger *zap.Logger) error {
	script, err := os.ReadFile(cfg.Export.Script)
	if err != nil {
		return fmt.Errorf("reading inspection script: %w", err)
	}

	reg := prometheus.NewRegistry()
	var cache *loader.Cache
	if cfg.Reader.Lazy {
		if cache, err = loader.NewCache(cfg.Reader.LoaderCacheSize, reg, observability.For(logger, observability.ComponentLoader)); err != nil {
			return err
		}
	}

	lines, err := scripting.NewInspector(cache, observability.For(logger, observability.ComponentScript)).Inspect(string(script), ds.Sections, cfg.Export.ScriptInstructionLimit)
	for _, line := range lines {
		fmt.Fprintln(os.Stdout, line)
	}
	if err != nil {
		return err
	}

	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gathering loader metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			v := m.GetCounter().GetValue() + m.GetGauge().GetValue()
			logger.Info("loader metric", zap.String("name", mf.GetName()), zap.Float64("value", v))
		}
	}
	return nil
}
