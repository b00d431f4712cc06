package runstore

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extsort/pkg/sorterrors"
	"extsort/pkg/types"
)

func runFiles(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), RunFilePrefix) {
			names = append(names, e.Name())
		}
	}
	return names
}

func TestStore_CreateSealRead(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	run, err := store.Create()
	require.NoError(t, err)
	assert.Equal(t, types.RunID(0), run.ID())

	for _, v := range []types.Value{1, 2, 3} {
		require.NoError(t, run.Append(v))
	}
	require.NoError(t, run.Seal())
	assert.Equal(t, uint64(3), run.Len())

	var got []types.Value
	for {
		v, ok, err := run.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []types.Value{1, 2, 3}, got)

	// drained run stays drained
	_, ok, err := run.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_OrdinalIDs(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		run, err := store.Create()
		require.NoError(t, err)
		require.Equal(t, types.RunID(i), run.ID())
	}

	runs := store.Runs()
	require.Len(t, runs, 5)
	for i, r := range runs {
		assert.Equal(t, types.RunID(i), r.ID())
	}
}

func TestRun_AppendAfterSeal(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	run, err := store.Create()
	require.NoError(t, err)
	require.NoError(t, run.Seal())

	err = run.Append(1)
	require.Error(t, err)
	assert.ErrorIs(t, err, sorterrors.ErrStorage)
}

func TestRun_ReadBeforeSeal(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	run, err := store.Create()
	require.NoError(t, err)

	_, _, err = run.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, sorterrors.ErrStorage)
}

func TestStore_DestroyAll(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		run, err := store.Create()
		require.NoError(t, err)
		require.NoError(t, run.Append(types.Value(i)))
		require.NoError(t, run.Seal())
	}
	require.Len(t, runFiles(t, dir), 3)

	require.NoError(t, store.DestroyAll())
	assert.Empty(t, runFiles(t, dir))
	assert.Zero(t, store.Len())

	// idempotent
	require.NoError(t, store.DestroyAll())
}

func TestStore_DestroyUnsealedRuns(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	run, err := store.Create()
	require.NoError(t, err)
	require.NoError(t, run.Append(42))
	// never sealed, simulating an abort mid-spill

	require.NoError(t, store.DestroyAll())
	assert.Empty(t, runFiles(t, dir))
}

func TestStore_CreateAfterDestroy(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.DestroyAll())

	_, err = store.Create()
	require.Error(t, err)
	assert.ErrorIs(t, err, sorterrors.ErrStorage)
	assert.ErrorIs(t, err, ErrDestroyed)
}

func TestStore_NamespacesDoNotCollide(t *testing.T) {
	dir := t.TempDir()

	a, err := New(dir)
	require.NoError(t, err)
	b, err := New(dir)
	require.NoError(t, err)

	// same ordinal in both stores must map to different files
	ra, err := a.Create()
	require.NoError(t, err)
	rb, err := b.Create()
	require.NoError(t, err)
	require.Equal(t, ra.ID(), rb.ID())
	require.Len(t, runFiles(t, dir), 2)

	// destroying one invocation leaves the other's runs alone
	require.NoError(t, a.DestroyAll())
	assert.Len(t, runFiles(t, dir), 1)
	require.NoError(t, b.DestroyAll())
	assert.Empty(t, runFiles(t, dir))
}
