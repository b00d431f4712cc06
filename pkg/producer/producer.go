package producer

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"extsort/pkg/config"
	"extsort/pkg/metrics"
	"extsort/pkg/runstore"
	"extsort/pkg/types"
)

// Source yields the raw value stream to be sorted; ok is false once the
// stream is exhausted.
type Source interface {
	Next() (types.Value, bool, error)
}

// Producer reads the input in fixed-size batches, sorts each batch in
// memory and spills it as one sealed run. Concatenating all runs
// reproduces the input multiset exactly.
type Producer struct {
	store     *runstore.Store
	batchSize int
	workers   int
	collector metrics.Collector
}

func New(store *runstore.Store, cfg config.SortConfig, collector metrics.Collector) (*Producer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if collector == nil {
		collector = metrics.Nop{}
	}

	return &Producer{
		store:     store,
		batchSize: cfg.BatchSize,
		workers:   max(cfg.Workers, 1),
		collector: collector,
	}, nil
}

// Produce drains src, spilling one run per full batch plus one for any
// non-empty leftover. Empty input produces zero runs.
func (p *Producer) Produce(ctx context.Context, src Source) error {
	if p.workers > 1 {
		return p.produceConcurrent(ctx, src)
	}

	batch := make([]types.Value, 0, p.batchSize)
	for {
		v, ok, err := src.Next()
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if !ok {
			break
		}

		batch = append(batch, v)
		if len(batch) == p.batchSize {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := p.spill(batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		return p.spill(batch)
	}
	return nil
}

// produceConcurrent fans full batches out to spill workers. Batches are
// independent, so spill order does not matter; the first failure cancels
// the group.
func (p *Producer) produceConcurrent(ctx context.Context, src Source) error {
	g, ctx := errgroup.WithContext(ctx)
	batches := make(chan []types.Value, p.workers)

	for i := 0; i < p.workers; i++ {
		g.Go(func() error {
			for batch := range batches {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := p.spill(batch); err != nil {
					return err
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(batches)

		batch := make([]types.Value, 0, p.batchSize)
		for {
			v, ok, err := src.Next()
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			if !ok {
				break
			}

			batch = append(batch, v)
			if len(batch) == p.batchSize {
				select {
				case batches <- batch:
				case <-ctx.Done():
					return ctx.Err()
				}
				batch = make([]types.Value, 0, p.batchSize)
			}
		}

		if len(batch) > 0 {
			select {
			case batches <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	return g.Wait()
}

// spill sorts the batch in place and writes it out as one fully-written,
// sealed run. Values carry no identity beyond their magnitude, so an
// unstable sort suffices.
func (p *Producer) spill(batch []types.Value) error {
	start := time.Now()
	slices.Sort(batch)

	run, err := p.store.Create()
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	for _, v := range batch {
		if err := run.Append(v); err != nil {
			return fmt.Errorf("failed to write run %d: %w", run.ID(), err)
		}
	}
	if err := run.Seal(); err != nil {
		return fmt.Errorf("failed to seal run %d: %w", run.ID(), err)
	}

	p.collector.IncCounter(metrics.RunsCreated, nil, 1)
	p.collector.IncCounter(metrics.ValuesSpilled, nil, float64(len(batch)))
	p.collector.ObserveHistogram(metrics.SpillSeconds, nil, time.Since(start).Seconds())

	return nil
}
