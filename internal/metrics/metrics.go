// Package metrics wires bulk-construction counters into Prometheus:
// package-scoped metric objects, registered once against whatever
// Registerer the caller supplies. Nothing is registered, and no global
// default registry is touched, unless a caller explicitly opts in via
// WithMetrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder collects counters and gauges describing a bulk
// construction. A nil *Recorder is safe to call methods on; every
// method is a no-op in that case, so core code never needs a nil
// check before recording.
type Recorder struct {
	BlocksWritten prometheus.Counter
	ChainBlocks   prometheus.Histogram
	TreeHeight    prometheus.Gauge
	Entries       prometheus.Gauge
}

// NewRecorder builds a Recorder and, if reg is non-nil, registers its
// metrics against it.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		BlocksWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "blockbtree",
			Name:      "blocks_written_total",
			Help:      "Number of data-chain blocks written during bulk construction (node blocks and META are not counted).",
		}),
		ChainBlocks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "blockbtree",
			Name:      "data_chain_blocks",
			Help:      "Number of data blocks per constructed data chain.",
			Buckets:   prometheus.LinearBuckets(1, 1, 16),
		}),
		TreeHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "blockbtree",
			Name:      "tree_height",
			Help:      "Number of node layers in the most recently constructed tree.",
		}),
		Entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "blockbtree",
			Name:      "entries",
			Help:      "Number of (key, payload) entries in the most recently constructed tree.",
		}),
	}
	if reg != nil {
		reg.MustRegister(r.BlocksWritten, r.ChainBlocks, r.TreeHeight, r.Entries)
	}
	return r
}

func (r *Recorder) AddBlocksWritten(n int) {
	if r == nil {
		return
	}
	r.BlocksWritten.Add(float64(n))
}

func (r *Recorder) ObserveChainBlocks(n int) {
	if r == nil {
		return
	}
	r.ChainBlocks.Observe(float64(n))
}

func (r *Recorder) SetTreeHeight(h uint64) {
	if r == nil {
		return
	}
	r.TreeHeight.Set(float64(h))
}

func (r *Recorder) SetEntries(n int) {
	if r == nil {
		return
	}
	r.Entries.Set(float64(n))
}
