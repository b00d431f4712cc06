package sorter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"extsort/pkg/config"
	"extsort/pkg/merger"
	"extsort/pkg/metrics"
	"extsort/pkg/producer"
	"extsort/pkg/runstore"
	"extsort/pkg/sorterrors"
	"extsort/pkg/stream"
)

// Sorter runs the full external sort pipeline: batch the input, sort and
// spill each batch as a run, k-way merge all runs into the output, clean
// the runs up.
type Sorter struct {
	cfg       config.SortConfig
	collector metrics.Collector
}

// New builds a Sorter. A nil collector disables metrics.
func New(cfg config.SortConfig, collector metrics.Collector) *Sorter {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Sorter{cfg: cfg, collector: collector}
}

// SortFile sorts the newline-delimited u64 values of inputPath into
// outputPath.
func (s *Sorter) SortFile(ctx context.Context, inputPath, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", sorterrors.ErrInput, inputPath, err)
	}
	defer func() {
		if cerr := in.Close(); cerr != nil {
			slog.Warn("failed to close input file", "path", inputPath, "error", cerr)
		}
	}()

	return s.Sort(ctx, stream.NewLineReader(in), outputPath)
}

// Sort drains src and atomically publishes the sorted stream at
// outputPath: the destination either holds the complete ascending
// sequence or is left untouched. Every run spilled along the way is
// removed before Sort returns, on success and on every failure path.
func (s *Sorter) Sort(ctx context.Context, src producer.Source, outputPath string) (err error) {
	defer func(start time.Time) {
		status := "ok"
		if err != nil {
			status = "error"
		}
		s.collector.IncCounter(metrics.SortsTotal, map[string]string{"status": status}, 1)
	}(time.Now())

	// config errors are rejected before any I/O happens
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	store, err := runstore.New(filepath.Dir(outputPath))
	if err != nil {
		return err
	}
	defer func() {
		if derr := store.DestroyAll(); derr != nil {
			if err == nil {
				err = derr
			} else {
				// secondary condition, must not mask the primary error
				slog.Warn("failed to clean up runs after abort", "error", derr)
			}
		}
	}()

	prod, err := producer.New(store, s.cfg, s.collector)
	if err != nil {
		return err
	}
	if err := prod.Produce(ctx, src); err != nil {
		return fmt.Errorf("failed to produce runs: %w", err)
	}

	out, err := stream.NewAtomicFile(outputPath)
	if err != nil {
		return err
	}
	defer out.Discard()

	runs := store.Runs()
	sources := make([]merger.Source, len(runs))
	var total uint64
	for i, r := range runs {
		sources[i] = r
		total += r.Len()
	}

	start := time.Now()
	sink := stream.NewLineWriter(out)
	if err := merger.Merge(ctx, sources, sink); err != nil {
		return fmt.Errorf("failed to merge %d runs: %w", len(runs), err)
	}
	if err := sink.Flush(); err != nil {
		return err
	}
	if err := out.Commit(); err != nil {
		return err
	}

	s.collector.IncCounter(metrics.ValuesMerged, nil, float64(total))
	s.collector.ObserveHistogram(metrics.MergeSeconds, nil, time.Since(start).Seconds())

	slog.Debug("sort pipeline finished", "runs", len(runs), "values", total, "output", outputPath)
	return nil
}
