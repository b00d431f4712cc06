package runstore

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/zhangyunhao116/skipmap"

	"extsort/pkg/sorterrors"
	"extsort/pkg/types"
)

// RunFilePrefix starts the file name of every run this package creates.
const RunFilePrefix = "sort_temp_file_"

// Store owns every run spilled during one pipeline invocation and
// guarantees their removal on both success and failure paths. Run files
// are namespaced with a per-invocation UUID so concurrent process
// instances sharing a directory never collide.
//
// Create may be called from concurrent producer workers; the registry is
// a skipmap keyed by run ordinal, so Runs() yields creation order.
type Store struct {
	dir       string
	namespace string
	nextID    atomic.Uint64
	runs      *skipmap.Uint64Map[*Run]
	destroyed atomic.Bool
}

// New opens a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty run directory", sorterrors.ErrStorage)
	}
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("%w: create run directory: %v", sorterrors.ErrStorage, err)
	}

	return &Store{
		dir:       dir,
		namespace: uuid.NewString(),
		runs:      skipmap.NewUint64[*Run](),
	}, nil
}

// Create materializes a fresh, empty, writable run in the store directory.
func (s *Store) Create() (*Run, error) {
	if s.destroyed.Load() {
		return nil, fmt.Errorf("%w: %w", sorterrors.ErrStorage, ErrDestroyed)
	}

	id := s.nextID.Add(1) - 1
	path := filepath.Join(s.dir, fmt.Sprintf("%s%s_%d.txt", RunFilePrefix, s.namespace, id))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("%w: create run %d: %v", sorterrors.ErrStorage, id, err)
	}

	run := &Run{
		id:   types.RunID(id),
		path: path,
		file: file,
		w:    bufio.NewWriterSize(file, runBufferSize),
	}
	s.runs.Store(id, run)

	return run, nil
}

// Runs returns all runs created so far, in ordinal order.
func (s *Store) Runs() []*Run {
	out := make([]*Run, 0, s.runs.Len())
	s.runs.Range(func(_ uint64, r *Run) bool {
		out = append(out, r)
		return true
	})
	return out
}

// Len reports the number of runs created so far.
func (s *Store) Len() int {
	return s.runs.Len()
}

// DestroyAll removes every run this store created. It is idempotent and
// best-effort: the registry is always drained, and per-run removal
// failures are joined into a single secondary error for the caller to
// report without masking whatever aborted the pipeline.
func (s *Store) DestroyAll() error {
	s.destroyed.Store(true)

	var errs []error
	s.runs.Range(func(id uint64, r *Run) bool {
		if err := r.remove(); err != nil {
			errs = append(errs, fmt.Errorf("run %d: %w", id, err))
		}
		s.runs.Delete(id)
		return true
	})

	if len(errs) > 0 {
		return fmt.Errorf("%w: destroy runs: %v", sorterrors.ErrStorage, errors.Join(errs...))
	}
	return nil
}
