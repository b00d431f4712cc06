package runstore

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"extsort/pkg/sorterrors"
	"extsort/pkg/types"
)

const runBufferSize = 256 * 1024

// Run is a single spill file: append-only until Seal, then a sequential
// reader. A run is written by exactly one producer goroutine and read by
// the merger, never both at once.
type Run struct {
	id     types.RunID
	path   string
	length uint64

	file   *os.File
	w      *bufio.Writer
	sc     *bufio.Scanner
	sealed bool
	buf    []byte
}

func (r *Run) ID() types.RunID {
	return r.id
}

// Len reports the number of values appended so far.
func (r *Run) Len() uint64 {
	return r.length
}

// Append writes one value as a decimal line.
func (r *Run) Append(v types.Value) error {
	if r.sealed {
		return fmt.Errorf("%w: append to run %d: %w", sorterrors.ErrStorage, r.id, ErrSealed)
	}

	r.buf = strconv.AppendUint(r.buf[:0], v, 10)
	r.buf = append(r.buf, '\n')
	if _, err := r.w.Write(r.buf); err != nil {
		return fmt.Errorf("%w: write run %d: %v", sorterrors.ErrStorage, r.id, err)
	}
	r.length++

	return nil
}

// Seal flushes the run to disk and reopens it for sequential reads. After
// Seal the run's content is complete and immutable.
func (r *Run) Seal() error {
	if r.sealed {
		return fmt.Errorf("%w: seal run %d: %w", sorterrors.ErrStorage, r.id, ErrSealed)
	}

	if err := r.w.Flush(); err != nil {
		return fmt.Errorf("%w: flush run %d: %v", sorterrors.ErrStorage, r.id, err)
	}
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("%w: close run %d: %v", sorterrors.ErrStorage, r.id, err)
	}

	file, err := os.Open(r.path)
	if err != nil {
		r.file = nil
		return fmt.Errorf("%w: reopen run %d: %v", sorterrors.ErrStorage, r.id, err)
	}

	r.file = file
	r.w = nil
	r.sc = bufio.NewScanner(bufio.NewReaderSize(file, runBufferSize))
	r.sealed = true

	return nil
}

// Next yields the run's values in stored order; ok is false once the run
// is drained.
func (r *Run) Next() (types.Value, bool, error) {
	if !r.sealed {
		return 0, false, fmt.Errorf("%w: read run %d: %w", sorterrors.ErrStorage, r.id, ErrNotSealed)
	}

	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return 0, false, fmt.Errorf("%w: read run %d: %v", sorterrors.ErrStorage, r.id, err)
		}
		return 0, false, nil
	}

	v, err := strconv.ParseUint(r.sc.Text(), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: corrupt run %d: %v", sorterrors.ErrStorage, r.id, err)
	}
	return v, true, nil
}

// remove closes whatever handle is open and unlinks the file. A run that
// is already gone from disk is not an error.
func (r *Run) remove() error {
	if r.file != nil {
		_ = r.file.Close()
		r.file = nil
	}
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
