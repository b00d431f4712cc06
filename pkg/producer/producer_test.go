package producer

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extsort/pkg/config"
	"extsort/pkg/runstore"
	"extsort/pkg/sorterrors"
	"extsort/pkg/types"
)

// sliceSource implements Source over an in-memory slice.
type sliceSource struct {
	values []types.Value
	pos    int
	failAt int // fail when pos reaches failAt, -1 disables
}

func newSliceSource(values ...types.Value) *sliceSource {
	return &sliceSource{values: values, failAt: -1}
}

func (s *sliceSource) Next() (types.Value, bool, error) {
	if s.failAt >= 0 && s.pos == s.failAt {
		return 0, false, errors.New("source broke")
	}
	if s.pos >= len(s.values) {
		return 0, false, nil
	}
	v := s.values[s.pos]
	s.pos++
	return v, true, nil
}

func newProducer(t *testing.T, batchSize, workers int) (*Producer, *runstore.Store) {
	t.Helper()

	store, err := runstore.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.DestroyAll())
	})

	p, err := New(store, config.SortConfig{BatchSize: batchSize, Workers: workers}, nil)
	require.NoError(t, err)
	return p, store
}

// drain reads a sealed run to the end.
func drain(t *testing.T, r *runstore.Run) []types.Value {
	t.Helper()

	var out []types.Value
	for {
		v, ok, err := r.Next()
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

func TestProduce_Batching(t *testing.T) {
	p, store := newProducer(t, 3, 1)
	input := []types.Value{9, 1, 8, 2, 7, 3, 6, 4, 5, 0}

	require.NoError(t, p.Produce(context.Background(), newSliceSource(input...)))

	runs := store.Runs()
	require.Len(t, runs, 4)

	// each run is individually sorted; the leftover batch became a run
	var all []types.Value
	wantLens := []uint64{3, 3, 3, 1}
	for i, r := range runs {
		assert.Equal(t, wantLens[i], r.Len())
		vals := drain(t, r)
		assert.True(t, slices.IsSorted(vals), "run %d not sorted: %v", i, vals)
		all = append(all, vals...)
	}

	// union of runs reproduces the input multiset
	slices.Sort(all)
	want := slices.Clone(input)
	slices.Sort(want)
	assert.Equal(t, want, all)
}

func TestProduce_EmptyInput(t *testing.T) {
	p, store := newProducer(t, 4, 1)

	require.NoError(t, p.Produce(context.Background(), newSliceSource()))
	assert.Zero(t, store.Len(), "empty input must produce zero runs, not one empty run")
}

func TestProduce_BatchSizeOne(t *testing.T) {
	p, store := newProducer(t, 1, 1)

	require.NoError(t, p.Produce(context.Background(), newSliceSource(3, 1, 2)))
	assert.Equal(t, 3, store.Len())
}

func TestProduce_ExactBatchMultiple(t *testing.T) {
	p, store := newProducer(t, 2, 1)

	require.NoError(t, p.Produce(context.Background(), newSliceSource(4, 3, 2, 1)))
	assert.Equal(t, 2, store.Len())
}

func TestNew_InvalidBatchSize(t *testing.T) {
	store, err := runstore.New(t.TempDir())
	require.NoError(t, err)

	for _, batch := range []int{0, -1} {
		_, err := New(store, config.SortConfig{BatchSize: batch, Workers: 1}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, sorterrors.ErrConfig)
	}
	assert.Zero(t, store.Len(), "rejected config must not touch storage")
}

func TestProduce_SourceError(t *testing.T) {
	p, store := newProducer(t, 10, 1)

	src := newSliceSource(make([]types.Value, 100)...)
	src.failAt = 42

	err := p.Produce(context.Background(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source broke")

	// runs spilled before the failure stay registered for cleanup
	assert.Equal(t, 4, store.Len())
}

func TestProduce_Concurrent(t *testing.T) {
	p, store := newProducer(t, 32, 4)

	input := make([]types.Value, 1000)
	for i := range input {
		input[i] = types.Value(len(input) - i)
	}

	require.NoError(t, p.Produce(context.Background(), newSliceSource(input...)))

	// 31 full batches + leftover of 8
	runs := store.Runs()
	require.Len(t, runs, 32)

	var all []types.Value
	for _, r := range runs {
		vals := drain(t, r)
		assert.True(t, slices.IsSorted(vals))
		all = append(all, vals...)
	}
	slices.Sort(all)
	want := slices.Clone(input)
	slices.Sort(want)
	assert.Equal(t, want, all)
}

func TestProduce_ConcurrentSourceError(t *testing.T) {
	p, _ := newProducer(t, 8, 4)

	src := newSliceSource(make([]types.Value, 200)...)
	src.failAt = 100

	err := p.Produce(context.Background(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source broke")
}

func TestProduce_Cancelled(t *testing.T) {
	p, _ := newProducer(t, 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Produce(ctx, newSliceSource(1, 2, 3))
	assert.ErrorIs(t, err, context.Canceled)
}
