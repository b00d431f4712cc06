package types

// Value is the only sortable unit: an unsigned 64-bit integer, totally
// ordered by numeric value.
type Value = uint64

// RunID identifies a spilled run within a single pipeline invocation.
// IDs are ordinal (0, 1, 2, ...) in creation order.
type RunID uint64
