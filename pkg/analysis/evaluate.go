package analysis

import (
	"fmt"

	"github.com/qiongwang-oai/powertree/pkg/design"
)

// evalNode computes a node's operating point from its children's figures.
// Callers iterate in reverse topological order so consumers are already
// evaluated.
func (ev *evaluator) evalNode(n *design.Node) {
	switch p := n.Params.(type) {
	case *design.Load:
		ev.evalLoad(n, p)
	case *design.Converter:
		ev.evalConverter(n, p)
	case *design.DualConverter:
		ev.evalDual(n, p)
	case *design.Bus:
		ev.evalBus(n, p)
	case *design.Subsystem:
		ev.evalSubsystem(n, p)
	case *design.Source:
		ev.evalSource(n, p)
	case *design.SubsystemInput:
		ev.evalPort(n, p)
	}
}

// evalLoad selects the scenario current, scales it by the paralleled count
// and derives power at the required voltage. Loads are pass-through sinks:
// output mirrors input.
func (ev *evaluator) evalLoad(n *design.Node, l *design.Load) {
	nr := ev.res.Nodes[n.ID]
	i := ev.scenarioCurrent(l) * instances(l.NumParalleled)
	p := l.Vreq * i
	nr.IIn, nr.IOut = i, i
	nr.PIn, nr.POut = p, p
}

// scenarioCurrent picks the load current for the active scenario. Typical
// and maximum currents are scaled by their utilization percentages; idle
// uses the explicit idle current or a fixed fraction of typical.
func (ev *evaluator) scenarioCurrent(l *design.Load) float64 {
	switch ev.scenario {
	case design.ScenarioMax:
		return l.IMax * utilization(l.UtilMaxPct)
	case design.ScenarioIdle:
		if l.IIdle != nil {
			return *l.IIdle
		}
		return idleFraction * l.ITyp
	default:
		return l.ITyp * utilization(l.UtilTypPct)
	}
}

func (ev *evaluator) evalConverter(n *design.Node, c *design.Converter) {
	ev.evalConverterOutputs(n, c)
	nr := ev.res.Nodes[n.ID]
	nr.IIn = safeDiv(nr.PIn, vinNominal(c.VinMin, c.VinMax))
}

// evalConverterOutputs derives the output side from downstream demand plus
// output-edge losses, resolves efficiency at that operating point and
// rescales the input power. Input current is left untouched so the
// edge-derived figure survives the finalization pass.
func (ev *evaluator) evalConverterOutputs(n *design.Node, c *design.Converter) {
	nr := ev.res.Nodes[n.ID]
	var pout, iout float64
	for _, e := range ev.d.Outgoing(n.ID) {
		pout += ev.attributedPower(e) + ev.res.Edges[e.ID].PLoss
		iout += ev.res.Edges[e.ID].I
	}
	if !ev.edgesResolved {
		iout = safeDiv(pout, c.Vout)
	}
	eff, warn := resolveEfficiency(c.Efficiency, operatingPoint{
		POut: pout, IOut: iout,
		PoutMax: c.PoutMax, IoutMax: c.IoutMax,
		Phases: c.PhaseCount,
	})
	if warn != "" {
		ev.warn(n.ID, warn)
	}
	nr.POut, nr.IOut = pout, iout
	nr.PIn = safeDiv(pout, eff)
	nr.Loss = nr.PIn - pout
}

func (ev *evaluator) evalDual(n *design.Node, dc *design.DualConverter) {
	ev.evalDualOutputs(n, dc)
	nr := ev.res.Nodes[n.ID]
	nr.IIn = safeDiv(nr.PIn, vinNominal(dc.VinMin, dc.VinMax))
}

// evalDualOutputs evaluates every output branch independently, matching
// outgoing edges to branches by handle, then sums the branches into the
// node-level totals.
func (ev *evaluator) evalDualOutputs(n *design.Node, dc *design.DualConverter) {
	nr := ev.res.Nodes[n.ID]
	if len(dc.Outputs) == 0 {
		ev.warn(n.ID, "dual-output converter has no output branches")
		return
	}

	type demand struct{ pout, iout float64 }
	perBranch := make([]demand, len(dc.Outputs))
	for _, e := range ev.d.Outgoing(n.ID) {
		bi, exact := branchFor(dc, e.FromHandle)
		if !exact {
			if e.FromHandle != "" {
				ev.warn(n.ID, fmt.Sprintf("edge %s names unknown output branch %q; using branch %q", e.ID, e.FromHandle, dc.Outputs[bi].ID))
			} else {
				ev.warn(n.ID, fmt.Sprintf("edge %s does not name an output branch; using branch %q", e.ID, dc.Outputs[bi].ID))
			}
		}
		perBranch[bi].pout += ev.attributedPower(e) + ev.res.Edges[e.ID].PLoss
		perBranch[bi].iout += ev.res.Edges[e.ID].I
	}

	var pout, iout, pin float64
	for bi, b := range dc.Outputs {
		poutB, ioutB := perBranch[bi].pout, perBranch[bi].iout
		if !ev.edgesResolved {
			ioutB = safeDiv(poutB, b.Vout)
		}
		eff, warn := resolveEfficiency(b.Efficiency, operatingPoint{
			POut: poutB, IOut: ioutB,
			PoutMax: b.PoutMax, IoutMax: b.IoutMax,
			Phases: b.PhaseCount,
		})
		if warn != "" {
			ev.warn(n.ID, fmt.Sprintf("branch %q: %s", b.ID, warn))
		}
		br := nr.Branches[b.ID]
		br.POut, br.IOut = poutB, ioutB
		br.PIn = safeDiv(poutB, eff)
		br.Efficiency = eff
		pout += poutB
		iout += ioutB
		pin += br.PIn
	}
	nr.POut, nr.IOut, nr.PIn = pout, iout, pin
	nr.Loss = pin - pout
}

func (ev *evaluator) evalBus(n *design.Node, b *design.Bus) {
	ev.evalBusOutputs(n, b)
	nr := ev.res.Nodes[n.ID]
	nr.IIn = nr.IOut
}

// evalBusOutputs treats the bus as an inline resistor: output power is
// downstream demand plus output-edge losses, the bus's own loss is I
// squared R, and input power carries both.
func (ev *evaluator) evalBusOutputs(n *design.Node, b *design.Bus) {
	nr := ev.res.Nodes[n.ID]
	var pout, iout float64
	for _, e := range ev.d.Outgoing(n.ID) {
		pout += ev.attributedPower(e) + ev.res.Edges[e.ID].PLoss
		iout += ev.res.Edges[e.ID].I
	}
	if !ev.edgesResolved {
		iout = safeDiv(pout, b.VBus)
	}
	loss := iout * iout * b.ResistanceMilliOhm / 1000
	nr.POut, nr.IOut = pout, iout
	nr.Loss = loss
	nr.PIn = pout + loss
}

// evalSource sums the resolved currents on outgoing edges. Before edges are
// resolved this is zero; the input refresh recomputes it once currents
// exist. Input mirrors output: the figures describe what the source must
// ingest from outside the tree.
func (ev *evaluator) evalSource(n *design.Node, s *design.Source) {
	nr := ev.res.Nodes[n.ID]
	var iout float64
	for _, e := range ev.d.Outgoing(n.ID) {
		iout += ev.res.Edges[e.ID].I
	}
	pout := iout * s.Vout
	nr.IOut, nr.POut = iout, pout
	nr.IIn, nr.PIn = iout, pout
}

// evalPort handles a SubsystemInput analyzed standalone: it acts as a
// source whose reported output additionally carries the resistive losses of
// its immediate outgoing edges, so the port reflects what it must supply
// including wiring loss.
func (ev *evaluator) evalPort(n *design.Node, si *design.SubsystemInput) {
	nr := ev.res.Nodes[n.ID]
	var iout, losses float64
	for _, e := range ev.d.Outgoing(n.ID) {
		iout += ev.res.Edges[e.ID].I
		losses += ev.res.Edges[e.ID].PLoss
	}
	pout := iout*si.Vout + losses
	nr.IOut, nr.POut = iout, pout
	nr.IIn, nr.PIn = iout, pout
}

// attributedPower returns the input power the edge's child presents on this
// edge. A child with several feeds presents its full input power on each
// one, which deliberately double-counts redundant supplies so every feed is
// sized to carry the whole draw. Subsystem children present the matched
// input port's downstream power scaled by the instance count.
func (ev *evaluator) attributedPower(e design.Edge) float64 {
	child, ok := ev.d.Node(e.To)
	if !ok {
		return 0
	}
	if sub, isSub := child.Params.(*design.Subsystem); isSub {
		f, ok := ev.matchPort(child, e)
		if !ok {
			return 0
		}
		return f.downstream * instances(sub.NumParalleled)
	}
	return ev.res.Nodes[e.To].PIn
}

// upstreamVoltage reads the parent's type-specific output voltage for an
// edge: the regulated output for sources, ports and converters, the
// selected branch for dual converters, the nominal rail for buses.
func (ev *evaluator) upstreamVoltage(e design.Edge) float64 {
	parent, ok := ev.d.Node(e.From)
	if !ok {
		return 0
	}
	switch p := parent.Params.(type) {
	case *design.Source:
		return p.Vout
	case *design.SubsystemInput:
		return p.Vout
	case *design.Converter:
		return p.Vout
	case *design.DualConverter:
		if len(p.Outputs) == 0 {
			return 0
		}
		bi, _ := branchFor(p, e.FromHandle)
		return p.Outputs[bi].Vout
	case *design.Bus:
		return p.VBus
	}
	return 0
}

// branchFor selects the output branch an edge handle attaches to. When the
// handle names a branch, or the converter has a single branch and the
// handle is empty, the match is exact. Otherwise the first branch stands
// in; callers decide whether the fallback deserves a warning.
func branchFor(dc *design.DualConverter, handle string) (idx int, exact bool) {
	if handle != "" {
		for i, b := range dc.Outputs {
			if b.ID == handle {
				return i, true
			}
		}
		return 0, false
	}
	if len(dc.Outputs) == 1 {
		return 0, true
	}
	return 0, false
}

// vinNominal estimates a converter's input voltage from its acceptable
// window: the midpoint when both bounds are set, otherwise whichever bound
// exists. Used until the input refresh reconciles against edge currents.
func vinNominal(vmin, vmax float64) float64 {
	switch {
	case vmin > 0 && vmax > 0:
		return (vmin + vmax) / 2
	case vmax > 0:
		return vmax
	default:
		return vmin
	}
}
