package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"extsort/pkg/config"
	"extsort/pkg/sorter"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		inputPath  = flag.String("input", "", "input file path (one u64 per line)")
		outputPath = flag.String("output", "", "output file path")
		batchSize  = flag.Int("batch", 0, "values per in-memory batch, overrides config")
		workers    = flag.Int("workers", 0, "concurrent spill workers, overrides config")
		configPath = flag.String("config", "extsort.yaml", "config file path")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	initLogger(&cfg)

	if *batchSize > 0 {
		cfg.Sort.BatchSize = *batchSize
	}
	if *workers > 0 {
		cfg.Sort.Workers = *workers
	}

	if *inputPath == "" || *outputPath == "" {
		fmt.Fprintln(os.Stderr, "both -input and -output are required")
		flag.Usage()
		os.Exit(2)
	}

	start := time.Now()
	s := sorter.New(cfg.Sort, nil)
	if err := s.SortFile(ctx, *inputPath, *outputPath); err != nil {
		slog.Error("sort failed", "input", *inputPath, "error", err)
		os.Exit(1)
	}

	slog.Info("sort finished",
		"input", *inputPath,
		"output", *outputPath,
		"batch", cfg.Sort.BatchSize,
		"took", time.Since(start),
	)
}
