package metrics

// Collector captures counters, gauges and histograms.
type Collector interface {
	IncCounter(name string, labels map[string]string, delta float64)
	SetGauge(name string, labels map[string]string, value float64)
	ObserveHistogram(name string, labels map[string]string, value float64)
}

// Metric names recorded by the sort pipeline.
const (
	RunsCreated   = "extsort_runs_created_total"
	ValuesSpilled = "extsort_values_spilled_total"
	ValuesMerged  = "extsort_values_merged_total"
	SpillSeconds  = "extsort_spill_duration_seconds"
	MergeSeconds  = "extsort_merge_duration_seconds"
	SortsTotal    = "extsort_sorts_total"
)

// Nop discards every observation.
type Nop struct{}

func (Nop) IncCounter(string, map[string]string, float64)       {}
func (Nop) SetGauge(string, map[string]string, float64)         {}
func (Nop) ObserveHistogram(string, map[string]string, float64) {}
