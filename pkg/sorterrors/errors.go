package sorterrors

import "errors"

// Error kinds of the sort pipeline. Every error surfaced by the pipeline
// wraps exactly one of these, so callers can classify with errors.Is.
var (
	// ErrConfig covers invalid configuration, rejected before any I/O.
	ErrConfig = errors.New("extsort: invalid configuration")

	// ErrInput covers unreadable or malformed input.
	ErrInput = errors.New("extsort: input failed")

	// ErrStorage covers failures creating, writing or reading a run.
	ErrStorage = errors.New("extsort: run storage failed")

	// ErrOutput covers failures writing the final output.
	ErrOutput = errors.New("extsort: output failed")
)
