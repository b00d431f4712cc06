package stream

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"extsort/pkg/sorterrors"
)

// AtomicFile writes to a same-directory temporary file and publishes it
// under the destination name on Commit. Until Commit succeeds the
// destination is never touched, so a failed invocation leaves no partial
// output behind.
type AtomicFile struct {
	dest string
	tmp  *os.File
	done bool
}

func NewAtomicFile(dest string) (*AtomicFile, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("%w: create temp output: %v", sorterrors.ErrOutput, err)
	}
	return &AtomicFile{dest: dest, tmp: tmp}, nil
}

func (a *AtomicFile) Write(p []byte) (int, error) {
	return a.tmp.Write(p)
}

// Commit syncs the temp file and renames it over the destination.
func (a *AtomicFile) Commit() error {
	if err := a.tmp.Sync(); err != nil {
		a.Discard()
		return fmt.Errorf("%w: sync output: %v", sorterrors.ErrOutput, err)
	}
	if err := a.tmp.Close(); err != nil {
		a.Discard()
		return fmt.Errorf("%w: close output: %v", sorterrors.ErrOutput, err)
	}
	if err := os.Rename(a.tmp.Name(), a.dest); err != nil {
		a.Discard()
		return fmt.Errorf("%w: publish output: %v", sorterrors.ErrOutput, err)
	}
	a.done = true

	if err := syncDir(filepath.Dir(a.dest)); err != nil {
		slog.Warn("failed to sync output directory", "dir", filepath.Dir(a.dest), "error", err)
	}
	return nil
}

// Discard removes the temp file. Safe to defer alongside Commit: after a
// successful Commit it is a no-op.
func (a *AtomicFile) Discard() {
	if a.done {
		return
	}
	_ = a.tmp.Close()
	if err := os.Remove(a.tmp.Name()); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove temp output", "path", a.tmp.Name(), "error", err)
	}
	a.done = true
}

// syncDir best-effort fsync of the parent directory to persist the rename.
func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("failed to close directory after sync", "dir", dir, "error", cerr)
		}
	}()
	return f.Sync()
}
