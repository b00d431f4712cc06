package stream

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"extsort/pkg/sorterrors"
	"extsort/pkg/types"
)

const writeBufferSize = 256 * 1024

// LineWriter writes values as decimal lines. Flush must be called before
// the underlying writer is finalized.
type LineWriter struct {
	w   *bufio.Writer
	buf []byte
}

func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: bufio.NewWriterSize(w, writeBufferSize)}
}

func (l *LineWriter) Write(v types.Value) error {
	l.buf = strconv.AppendUint(l.buf[:0], v, 10)
	l.buf = append(l.buf, '\n')
	if _, err := l.w.Write(l.buf); err != nil {
		return fmt.Errorf("%w: write value: %v", sorterrors.ErrOutput, err)
	}
	return nil
}

func (l *LineWriter) Flush() error {
	if err := l.w.Flush(); err != nil {
		return fmt.Errorf("%w: flush output: %v", sorterrors.ErrOutput, err)
	}
	return nil
}
