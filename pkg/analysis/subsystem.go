package analysis

import (
	"fmt"
	"math"

	"github.com/qiongwang-oai/powertree/pkg/design"
)

// portFigure captures one subsystem input port's figures resolved from the
// embedded design's own computation. Two power figures are kept: downstream
// is what the port's immediate children draw, withLosses additionally
// carries the port's own wiring losses. Edge attribution uses downstream;
// parent-side supply accounting uses withLosses.
type portFigure struct {
	id         string
	vout       float64
	downstream float64
	withLosses float64
}

// embeddedDesign is a subsystem's inner design prepared for evaluation: a
// deep clone with the parent's scenario propagated and every input port
// turned into a source at its effective voltage.
type embeddedDesign struct {
	clone *design.Design
	ports []portFigure
}

// prepareEmbedded clones the inner design for one evaluation. A port whose
// own voltage is unset falls back to the subsystem's nominal-input
// override. Ports are returned in design order, which makes the ambiguity
// tie-break below deterministic.
func prepareEmbedded(sub *design.Subsystem, sc design.Scenario) embeddedDesign {
	clone := sub.Inner.Clone()
	clone.Scenario = sc
	var ports []portFigure
	for _, pn := range clone.Nodes() {
		si, ok := pn.Params.(*design.SubsystemInput)
		if !ok {
			continue
		}
		v := si.Vout
		if v <= 0 && sub.InputVNom != nil {
			v = *sub.InputVNom
		}
		pn.Params = &design.Source{Vout: v}
		ports = append(ports, portFigure{id: pn.ID, vout: v})
	}
	return embeddedDesign{clone: clone, ports: ports}
}

// evalSubsystem resolves a subsystem node by recursively computing its
// embedded design and folding the totals back, scaled by the paralleled
// instance count. The per-port figures stay on the evaluator for the edge
// attribution of later passes; the recursion happens exactly once per
// computation. A missing embedded design and over-deep nesting both
// degrade to an empty design with a node warning.
func (ev *evaluator) evalSubsystem(n *design.Node, sub *design.Subsystem) {
	nr := ev.res.Nodes[n.ID]
	if sub.Inner == nil {
		ev.warn(n.ID, "subsystem has no embedded design")
		return
	}
	if ev.depth+1 >= maxSubsystemDepth {
		ev.warn(n.ID, fmt.Sprintf("subsystem nesting deeper than %d levels; treating as empty", maxSubsystemDepth))
		return
	}

	emb := prepareEmbedded(sub, ev.scenario)
	subRes := computeAtDepth(emb.clone, ev.scenario, ev.logger, ev.depth+1)
	for _, w := range subRes.GlobalWarnings {
		ev.warn(n.ID, "embedded design: "+w)
	}

	for i := range emb.ports {
		p := &emb.ports[i]
		pr := subRes.Nodes[p.id]
		var losses float64
		for _, e := range emb.clone.Outgoing(p.id) {
			losses += subRes.Edges[e.ID].PLoss
		}
		p.downstream = pr.POut
		p.withLosses = pr.POut + losses
	}
	ev.ports[n.ID] = emb.ports

	count := instances(sub.NumParalleled)
	var total float64
	for _, p := range emb.ports {
		total += p.withLosses
	}
	total *= count

	nr.PIn, nr.POut = total, total
	vnom := subsystemNominalV(sub, emb.ports)
	nr.IIn = safeDiv(total, vnom)
	nr.IOut = nr.IIn
}

// subsystemNominalV picks the voltage behind the subsystem node's own
// input-current estimate and its port compatibility check: the explicit
// override first, then the first port that carries a voltage.
func subsystemNominalV(sub *design.Subsystem, ports []portFigure) float64 {
	if sub.InputVNom != nil && *sub.InputVNom > 0 {
		return *sub.InputVNom
	}
	for _, p := range ports {
		if p.vout > 0 {
			return p.vout
		}
	}
	return 0
}

// matchPort attributes a parent-side edge to one of a subsystem's input
// ports: by handle when it names a port, otherwise by the port whose
// configured voltage sits numerically closest to the parent's supplied
// voltage. A single port always matches regardless of voltage. An exact
// distance tie is ambiguous; it is flagged on the subsystem node and
// resolved to the port declared first.
func (ev *evaluator) matchPort(child *design.Node, e design.Edge) (portFigure, bool) {
	ports := ev.ports[child.ID]
	if len(ports) == 0 {
		return portFigure{}, false
	}
	if len(ports) == 1 {
		return ports[0], true
	}
	if e.ToHandle != "" && e.ToHandle != design.HandleInput {
		for _, p := range ports {
			if p.id == e.ToHandle {
				return p, true
			}
		}
	}

	vUp := ev.upstreamVoltage(e)
	best := 0
	bestDist := math.Abs(ports[0].vout - vUp)
	tie := false
	for i := 1; i < len(ports); i++ {
		dist := math.Abs(ports[i].vout - vUp)
		switch {
		case dist < bestDist-epsilon:
			best, bestDist, tie = i, dist, false
		case math.Abs(dist-bestDist) <= epsilon:
			tie = true
		}
	}
	if tie {
		ev.warn(child.ID, fmt.Sprintf("edge %s matches multiple input ports at the same voltage distance; using port %s", e.ID, ports[best].id))
	}
	return ports[best], true
}
