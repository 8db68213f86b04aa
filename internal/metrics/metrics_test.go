package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestNewRecorderRegistersAgainstSuppliedRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.AddBlocksWritten(3)
	r.ObserveChainBlocks(3)
	r.SetTreeHeight(2)
	r.SetEntries(10)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	found := map[string]*dto.MetricFamily{}
	for _, f := range families {
		found[f.GetName()] = f
	}
	require.Contains(t, found, "blockbtree_blocks_written_total")
	require.Contains(t, found, "blockbtree_tree_height")
}

func TestNilRecorderMethodsAreNoOps(t *testing.T) {
	var r *Recorder
	r.AddBlocksWritten(1)
	r.ObserveChainBlocks(1)
	r.SetTreeHeight(1)
	r.SetEntries(1)
}

func TestNewRecorderWithNilRegistererDoesNotPanic(t *testing.T) {
	r := NewRecorder(nil)
	r.AddBlocksWritten(5)
}
