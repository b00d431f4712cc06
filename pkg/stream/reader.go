package stream

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"extsort/pkg/sorterrors"
	"extsort/pkg/types"
)

const maxLineBytes = 1 << 16

// LineReader yields u64 values from a newline-delimited text stream,
// one value per line.
type LineReader struct {
	sc   *bufio.Scanner
	line uint64
}

func NewLineReader(r io.Reader) *LineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 4096), maxLineBytes)
	return &LineReader{sc: sc}
}

// Next returns the next value; ok is false once the stream is exhausted.
func (l *LineReader) Next() (types.Value, bool, error) {
	if !l.sc.Scan() {
		if err := l.sc.Err(); err != nil {
			return 0, false, fmt.Errorf("%w: read after line %d: %v", sorterrors.ErrInput, l.line, err)
		}
		return 0, false, nil
	}
	l.line++

	v, err := strconv.ParseUint(l.sc.Text(), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: line %d: %v", sorterrors.ErrInput, l.line, err)
	}
	return v, true, nil
}
