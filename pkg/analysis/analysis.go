// Package analysis computes the steady-state operating point of a power
// tree: per-node and per-edge currents, powers and losses for one scenario,
// plus advisory warnings for margin and compatibility violations.
//
// Node and edge values depend on each other (a converter's input depends on
// downstream demand, edge currents depend on upstream voltage), so the
// engine reconciles them with a fixed, ordered sequence of passes rather
// than iterating to a convergence tolerance: the passes are order-sensitive
// and bounded by construction once the graph is topologically sorted.
// Designs containing a cycle are not evaluated; the result is zero-valued
// with a single global warning.
//
// The engine is synchronous and single-threaded, performs no I/O, and keeps
// no state between invocations: results are a pure function of the design
// and scenario.
package analysis

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/qiongwang-oai/powertree/pkg/design"
	"github.com/qiongwang-oai/powertree/pkg/observability"
)

// Option configures a computation.
type Option func(*options)

type options struct {
	logger   *log.Logger
	scenario design.Scenario
}

// WithLogger routes the engine's diagnostics through the given logger.
// Without it the engine stays silent.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithScenario overrides the design's own scenario selection for this
// computation. The design itself is not mutated.
func WithScenario(sc design.Scenario) Option {
	return func(o *options) { o.scenario = sc }
}

func buildOptions(d *design.Design, opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	if o.scenario == "" {
		o.scenario = d.Scenario
	}
	if o.scenario == "" {
		o.scenario = design.ScenarioTypical
	}
	return o
}

// Compute returns the full per-node and per-edge operating point of the
// design under one scenario. The design is treated as read-only; embedded
// subsystem designs are deep-cloned before their recursive evaluation, so
// concurrent computations over the same design are safe as long as nobody
// mutates it.
func Compute(d *design.Design, opts ...Option) *Result {
	o := buildOptions(d, opts)

	observability.Engine().OnComputeStart(d.Name, string(o.scenario))
	start := time.Now()
	res := computeAtDepth(d, o.scenario, o.logger, 0)
	observability.Engine().OnComputeComplete(d.Name, string(o.scenario), d.NodeCount(), time.Since(start))

	return res
}

// DeepAggregates returns load power and loss totals recursively summed
// across all nested subsystems, with child contributions scaled by each
// subsystem's paralleled-instance count. It computes every nesting level
// with the same scenario selection rules as Compute.
func DeepAggregates(d *design.Design, opts ...Option) Aggregates {
	o := buildOptions(d, opts)

	observability.Engine().OnAggregateStart(d.Name, string(o.scenario))
	start := time.Now()
	agg := deepAggregates(d, o.scenario, o.logger, 0)
	observability.Engine().OnAggregateComplete(d.Name, string(o.scenario), time.Since(start))

	return agg
}
