package blockbtree

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"blockbtree/internal/metrics"
)

// constructConfig collects the options a ConstructOption can set. It
// is unexported; callers only ever see ConstructOption values.
type constructConfig struct {
	logger  *logrus.Logger
	metrics *metrics.Recorder
}

// ConstructOption configures a call to Construct.
type ConstructOption func(*constructConfig)

// WithLogger attaches a logrus.Logger that Construct uses to log the
// entry count (at debug level) before building data chains and the
// final root, height, and entry count (at info level) once the tree is
// built. Individual chain lengths and node layers are not logged.
// Construct is silent (no logging at all) if this option is not
// supplied.
func WithLogger(logger *logrus.Logger) ConstructOption {
	return func(c *constructConfig) {
		c.logger = logger
	}
}

// WithMetrics registers bulk-construction counters (data-chain blocks
// written, chain-length histogram, tree height, entry count) against
// reg. Pass
// prometheus.DefaultRegisterer to use the global registry, or a
// prometheus.NewRegistry() for an isolated one. Metrics recording is a
// no-op if this option is not supplied.
func WithMetrics(reg prometheus.Registerer) ConstructOption {
	return func(c *constructConfig) {
		c.metrics = metrics.NewRecorder(reg)
	}
}

func newConstructConfig(opts []ConstructOption) *constructConfig {
	c := &constructConfig{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
