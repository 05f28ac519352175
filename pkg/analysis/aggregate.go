package analysis

import (
	"github.com/charmbracelet/log"

	"github.com/qiongwang-oai/powertree/pkg/design"
)

// deepAggregates computes one design level and folds in the recursively
// aggregated figures of every embedded subsystem, each scaled by its
// paralleled-instance count. Load power is counted where the loads actually
// live, never at the subsystem node, so nothing is double-counted across
// levels. Cycles zero out the affected level like in Compute.
func deepAggregates(d *design.Design, sc design.Scenario, logger *log.Logger, depth int) Aggregates {
	res := computeAtDepth(d, sc, logger, depth)

	var agg Aggregates
	for _, n := range d.Nodes() {
		nr := res.Nodes[n.ID]
		switch p := n.Params.(type) {
		case *design.Load:
			if p.Critical {
				agg.CriticalLoadPower += nr.PIn
			} else {
				agg.NonCriticalLoadPower += nr.PIn
			}
		case *design.Converter, *design.DualConverter:
			agg.ConverterLoss += nr.Loss
		case *design.Bus:
			agg.EdgeLoss += nr.Loss
		case *design.Subsystem:
			if p.Inner == nil || depth+1 >= maxSubsystemDepth {
				continue
			}
			emb := prepareEmbedded(p, sc)
			child := deepAggregates(emb.clone, sc, logger, depth+1)
			k := instances(p.NumParalleled)
			agg.CriticalLoadPower += k * child.CriticalLoadPower
			agg.NonCriticalLoadPower += k * child.NonCriticalLoadPower
			agg.ConverterLoss += k * child.ConverterLoss
			agg.EdgeLoss += k * child.EdgeLoss
		}
	}
	for _, e := range d.Edges() {
		agg.EdgeLoss += res.Edges[e.ID].PLoss
	}
	agg.TotalLoadPower = agg.CriticalLoadPower + agg.NonCriticalLoadPower
	return agg
}
