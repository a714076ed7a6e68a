package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/accidents/internal/config"
	"github.com/JonMunkholm/accidents/internal/core"
	_ "github.com/JonMunkholm/accidents/internal/core/tables" // Register all tables
	"github.com/JonMunkholm/accidents/internal/export"
	"github.com/JonMunkholm/accidents/internal/logging"
	"github.com/JonMunkholm/accidents/internal/rawcsv"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, runID := logging.WithRunID(ctx)

	if err := run(ctx, cfg); err != nil {
		logger := logging.FromContext(ctx)
		if errors.Is(err, context.Canceled) {
			logger.Warn("build interrupted")
		} else {
			logger.Error("build failed", "run_id", runID, "code", core.MapError(err).Code,
				"message", core.FormatUserError(err), "error", err)
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.FromContext(ctx)

	logger.Info("configuration loaded",
		"raw_dir", cfg.Paths.RawDirPath(),
		"years", cfg.Build.Years,
		"output", cfg.Paths.OutputPath(),
		"postgres", cfg.Export.DatabaseURL != "",
		"sqlite", cfg.Export.SQLitePath != "",
	)
	logger.Debug("effective configuration", "config", cfg.String())
	logger.Info("tables registered", "count", core.TableCount())

	builder := core.NewBuilder(core.Options{
		RawDir:         cfg.Paths.RawDirPath(),
		DictionaryPath: cfg.Paths.DictionaryPath(),
		Years:          cfg.Build.Years,
		Parallelism:    cfg.Build.Parallelism,
		CSV: rawcsv.Options{
			Delimiter:    cfg.Raw.DelimiterRune(),
			Encoding:     cfg.Raw.Encoding,
			SanitizeUTF8: cfg.Raw.SanitizeUTF8,
		},
	})

	res, err := builder.Build(ctx)
	if err != nil {
		return err
	}
	res.Report.Log(logger)

	if res.Report.Empty {
		logger.Warn("nothing written", "code", core.CodeEmptyResult, "message", core.FormatUserError(core.ErrEmptyResult))
		return nil
	}

	sinks := []export.Sink{&export.ParquetSink{
		Path:         cfg.Paths.OutputPath(),
		Compression:  cfg.Parquet.Compression,
		RowGroupSize: cfg.Parquet.RowGroupSize,
	}}

	if cfg.Export.DatabaseURL != "" {
		pool, err := export.Connect(ctx, cfg.Export.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		sinks = append(sinks, export.NewPostgresSink(pool, cfg.Export.PostgresTable))
	}
	if cfg.Export.SQLitePath != "" {
		sinks = append(sinks, &export.SQLiteSink{
			Path:  cfg.Paths.Resolve(cfg.Export.SQLitePath),
			Table: cfg.Export.SQLiteTable,
		})
	}

	dataset := export.PrepareColumns(res.Dataset, cfg.Export.TextColumns)
	if err := export.WriteAll(ctx, dataset, sinks...); err != nil {
		return err
	}

	logger.Info("dataset build complete", "rows", res.Report.Rows, "columns", res.Report.Columns, "path", cfg.Paths.OutputPath())
	return nil
}
