package analysis

import (
	"fmt"
	"math"

	"github.com/qiongwang-oai/powertree/pkg/design"
)

// applyWarnings runs the advisory checks once all values are final. Checks
// only append messages to the owning node; computed values never change.
func (ev *evaluator) applyWarnings() {
	m := ev.d.Margins
	for _, n := range ev.d.Nodes() {
		nr := ev.res.Nodes[n.ID]
		switch p := n.Params.(type) {
		case *design.Source:
			ev.checkSource(n, p, nr)
		case *design.Load:
			ev.checkLoad(n, p, nr, m)
		case *design.Converter:
			ev.checkLimits(n.ID, "", nr.IOut, nr.POut, p.IoutMax, p.PoutMax, m)
		case *design.DualConverter:
			for _, b := range p.Outputs {
				br := nr.Branches[b.ID]
				prefix := fmt.Sprintf("branch %q: ", b.ID)
				ev.checkLimits(n.ID, prefix, br.IOut, br.POut, b.IoutMax, b.PoutMax, m)
			}
		}
	}
	ev.checkEdgeVoltages(m)
}

// checkSource applies the rated-limit margins against the combined capacity
// of all paralleled units, then the redundancy shortfall check: in N+1
// operation the remaining units must carry the whole demand after one unit
// is lost. Ratings are per unit; a source with no ratings is skipped.
func (ev *evaluator) checkSource(n *design.Node, s *design.Source, nr *NodeResult) {
	m := ev.d.Margins
	count := instances(s.Count)
	ev.checkLimits(n.ID, "", nr.IOut, nr.POut, count*s.IoutMax, count*s.PoutMax, m)

	if s.Redundancy != design.RedundancyNPlus1 || s.Count <= 1 {
		return
	}
	capacity := s.PoutMax
	if capacity <= 0 && s.IoutMax > 0 {
		capacity = s.Vout * s.IoutMax
	}
	if capacity <= 0 {
		return
	}
	remaining := float64(s.Count-1) * capacity
	if remaining < nr.POut {
		ev.warn(n.ID, fmt.Sprintf("redundancy shortfall: losing one of %d units leaves %.4gW of capacity for %.4gW of demand",
			s.Count, remaining, nr.POut))
	}
}

// checkLimits warns when output figures exceed the rated limits net of the
// configured margin headroom. Zero limits mean unrated and are skipped.
func (ev *evaluator) checkLimits(nodeID, prefix string, iout, pout, ioutMax, poutMax float64, m design.Margins) {
	if ioutMax > 0 {
		allowed := ioutMax * (1 - m.CurrentPct/100)
		if iout > allowed {
			ev.warn(nodeID, fmt.Sprintf("%soutput current %.4gA exceeds %.4gA (rated %.4gA minus %.4g%% margin)",
				prefix, iout, allowed, ioutMax, m.CurrentPct))
		}
	}
	if poutMax > 0 {
		allowed := poutMax * (1 - m.PowerPct/100)
		if pout > allowed {
			ev.warn(nodeID, fmt.Sprintf("%soutput power %.4gW exceeds %.4gW (rated %.4gW minus %.4g%% margin)",
				prefix, pout, allowed, poutMax, m.PowerPct))
		}
	}
}

// checkLoad warns when the delivered upstream voltage, edge drops included,
// sags below the required voltage minus the load's margin. The load's own
// margin override wins over the design default. Unfed loads are skipped.
func (ev *evaluator) checkLoad(n *design.Node, l *design.Load, nr *NodeResult, m design.Margins) {
	if len(ev.d.Incoming(n.ID)) == 0 {
		return
	}
	marginPct := l.VoltageMarginPct
	if marginPct <= 0 {
		marginPct = m.VoltageMarginPct
	}
	floor := l.Vreq * (1 - marginPct/100)
	if nr.VUpstream < floor {
		ev.warn(n.ID, fmt.Sprintf("upstream voltage %.4gV below %.4gV (required %.4gV minus %.4g%% margin)",
			nr.VUpstream, floor, l.Vreq, marginPct))
	}
}

// checkEdgeVoltages verifies per edge that the parent's supplied voltage
// suits the child: inside a converter's input window, matching a load's
// required voltage, a bus's rail voltage or a subsystem's matched port
// voltage. It also flags edges whose resistive drop eats more than the
// configured share of the supply. All warnings land on the child.
func (ev *evaluator) checkEdgeVoltages(m design.Margins) {
	for _, e := range ev.d.Edges() {
		vUp := ev.upstreamVoltage(e)
		er := ev.res.Edges[e.ID]
		if m.VoltageDropPct > 0 && vUp > epsilon && er.VDrop > vUp*m.VoltageDropPct/100 {
			ev.warn(e.To, fmt.Sprintf("edge %s drops %.4gV, more than %.4g%% of the %.4gV supply",
				e.ID, er.VDrop, m.VoltageDropPct, vUp))
		}
		if vUp <= epsilon {
			continue
		}
		child, ok := ev.d.Node(e.To)
		if !ok {
			continue
		}
		switch c := child.Params.(type) {
		case *design.Converter:
			ev.checkWindow(child.ID, vUp, c.VinMin, c.VinMax)
		case *design.DualConverter:
			ev.checkWindow(child.ID, vUp, c.VinMin, c.VinMax)
		case *design.Load:
			if c.Vreq > 0 && mismatch(vUp, c.Vreq) {
				ev.warn(child.ID, fmt.Sprintf("supplied %.4gV does not match required %.4gV", vUp, c.Vreq))
			}
		case *design.Bus:
			if c.VBus > 0 && mismatch(vUp, c.VBus) {
				ev.warn(child.ID, fmt.Sprintf("supplied %.4gV does not match the %.4gV rail", vUp, c.VBus))
			}
		case *design.Subsystem:
			if f, ok := ev.matchPort(child, e); ok && f.vout > 0 && mismatch(vUp, f.vout) {
				ev.warn(child.ID, fmt.Sprintf("supplied %.4gV does not match input port %s at %.4gV", vUp, f.id, f.vout))
			}
		}
	}
}

// checkWindow warns when a supplied voltage falls outside a converter's
// acceptable input window. Zero bounds are unspecified and skipped.
func (ev *evaluator) checkWindow(nodeID string, vUp, vmin, vmax float64) {
	if vmin > 0 && vUp < vmin {
		ev.warn(nodeID, fmt.Sprintf("input voltage %.4gV below the %.4gV minimum", vUp, vmin))
	}
	if vmax > 0 && vUp > vmax {
		ev.warn(nodeID, fmt.Sprintf("input voltage %.4gV above the %.4gV maximum", vUp, vmax))
	}
}

// mismatch reports whether two nominal voltages differ beyond float noise.
func mismatch(a, b float64) bool { return math.Abs(a-b) > 1e-6 }
