package resolve

import "sync/atomic"

// Metrics tracks cascade outcomes per stage.
type Metrics struct {
	total         atomic.Int64
	stageFailures atomic.Int64
	panics        atomic.Int64

	delegate   atomic.Int64
	intent     atomic.Int64
	semantic   atomic.Int64
	keyword    atomic.Int64
	generic    atomic.Int64
	noProducts atomic.Int64
	minimal    atomic.Int64
}

// NewMetrics creates a metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) recordResolved(stageName string) {
	switch stageName {
	case StageDelegate:
		m.delegate.Add(1)
	case StageIntent:
		m.intent.Add(1)
	case StageSemantic:
		m.semantic.Add(1)
	case StageKeyword:
		m.keyword.Add(1)
	case StageGeneric:
		m.generic.Add(1)
	case StageNoProducts:
		m.noProducts.Add(1)
	}
}

// Snapshot returns current counter values keyed by name.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"total":          m.total.Load(),
		"stage_failures": m.stageFailures.Load(),
		"panics":         m.panics.Load(),
		StageDelegate:    m.delegate.Load(),
		StageIntent:      m.intent.Load(),
		StageSemantic:    m.semantic.Load(),
		StageKeyword:     m.keyword.Load(),
		StageGeneric:     m.generic.Load(),
		StageNoProducts:  m.noProducts.Load(),
		"minimal":        m.minimal.Load(),
	}
}
