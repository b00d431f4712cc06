package merger

import (
	"container/heap"
	"context"
	"fmt"

	"extsort/pkg/types"
)

// cancelCheckInterval bounds how many values are emitted between context
// checks in the merge loop.
const cancelCheckInterval = 4096

// Source yields one sorted ascending sequence, a value at a time; ok is
// false once the source is drained. On-disk runs and in-memory fakes both
// satisfy it.
type Source interface {
	Next() (types.Value, bool, error)
}

// Sink receives the merged ascending stream.
type Sink interface {
	Write(v types.Value) error
}

// Merge streams the union of k individually sorted sources into sink in
// ascending order, preserving multiplicity, with O(n log k) comparisons.
// Zero sources produce an empty stream and no error.
//
// Correctness: the frontier always holds the smallest unconsumed value of
// every still-open source, and each source is internally sorted, so the
// extracted minimum can never be undercut by a later value.
func Merge(ctx context.Context, sources []Source, sink Sink) error {
	fr := make(frontier, 0, len(sources))
	for ord, src := range sources {
		v, ok, err := src.Next()
		if err != nil {
			return fmt.Errorf("failed to prime source %d: %w", ord, err)
		}
		if ok {
			fr = append(fr, entry{value: v, ord: ord})
		}
	}
	heap.Init(&fr)

	var emitted uint64
	for fr.Len() > 0 {
		if emitted%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		head := fr[0]
		if err := sink.Write(head.value); err != nil {
			return fmt.Errorf("failed to write merged value: %w", err)
		}
		emitted++

		v, ok, err := sources[head.ord].Next()
		if err != nil {
			return fmt.Errorf("failed to advance source %d: %w", head.ord, err)
		}
		if ok {
			// replace the extracted head in place and sift
			fr[0] = entry{value: v, ord: head.ord}
			heap.Fix(&fr, 0)
		} else {
			heap.Pop(&fr)
		}
	}

	return nil
}
