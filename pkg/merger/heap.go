package merger

import "extsort/pkg/types"

// entry is one frontier slot: the current head value of a still-open
// source, tagged with that source's ordinal.
type entry struct {
	value types.Value
	ord   int
}

// frontier is a min-heap over (head value, source ordinal). The ordinal
// carries no ordering meaning; it only breaks ties between equal heads so
// extraction is total and deterministic.
type frontier []entry

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].value != f[j].value {
		return f[i].value < f[j].value
	}
	return f[i].ord < f[j].ord
}

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x any) { *f = append(*f, x.(entry)) }

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	it := old[n-1]
	*f = old[:n-1]
	return it
}
