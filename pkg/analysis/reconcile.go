package analysis

import (
	"github.com/charmbracelet/log"

	"github.com/qiongwang-oai/powertree/pkg/design"
)

// evaluator holds the scratch state of one computation: the design under
// analysis, the result being filled, and the per-subsystem port figures
// needed to attribute parent-side edge power. All scratch lives here keyed
// by node ID; domain nodes are never annotated.
type evaluator struct {
	d        *design.Design
	scenario design.Scenario
	logger   *log.Logger
	depth    int

	res   *Result
	order []string
	// edgesResolved flips after the first edge pass; before that, output
	// currents fall back to power over voltage instead of edge sums.
	edgesResolved bool
	// ports holds per-port figures for every subsystem node, in port
	// design order.
	ports map[string][]portFigure
	// warned dedupes advisory messages per node; corrective passes
	// re-derive the same conditions and must not duplicate entries.
	warned map[string]map[string]struct{}
}

// computeAtDepth runs the full pass sequence on one design level. Depth
// tracks subsystem recursion for the runaway-embedding guard.
func computeAtDepth(d *design.Design, sc design.Scenario, logger *log.Logger, depth int) *Result {
	logger.Debug("computing operating point",
		"design", d.Name, "scenario", string(sc),
		"nodes", d.NodeCount(), "edges", d.EdgeCount(), "depth", depth)

	res := newResult(d, sc)
	order, hasCycle := topoOrder(d)
	if hasCycle {
		res.HasCycle = true
		res.GlobalWarnings = append(res.GlobalWarnings, "design contains a cycle; computation skipped")
		logger.Warn("cycle detected; skipping computation", "design", d.Name, "nodes", d.NodeCount())
		return res
	}
	res.Order = order

	ev := &evaluator{
		d:        d,
		scenario: sc,
		logger:   logger,
		depth:    depth,
		res:      res,
		order:    order,
		ports:    make(map[string][]portFigure),
		warned:   make(map[string]map[string]struct{}),
	}

	ev.initialPass()
	ev.resolveEdges()
	ev.reviseNodes()
	ev.resolveEdges()
	ev.refreshInputs()
	ev.finalizeNodes()
	ev.computeTotals()
	ev.applyWarnings()

	logger.Debug("computation complete",
		"design", d.Name,
		"loadPower", res.Totals.LoadPower,
		"sourceInput", res.Totals.SourceInput,
		"efficiency", res.Totals.OverallEfficiency)
	return res
}

// initialPass forms the first bottom-up estimate: consumers before
// suppliers, so every node sees its children's provisional input power.
// Subsystems recurse here, exactly once per computation.
func (ev *evaluator) initialPass() {
	for i := len(ev.order) - 1; i >= 0; i-- {
		n, _ := ev.d.Node(ev.order[i])
		ev.evalNode(n)
	}
}

// resolveEdges derives each edge's current from the child's attributed
// input power divided by the parent's output voltage, then the resistive
// drop and loss. It also refreshes each fed node's delivered upstream
// voltage; with several feeds the lowest delivered voltage wins.
func (ev *evaluator) resolveEdges() {
	seen := make(map[string]bool)
	for _, e := range ev.d.Edges() {
		er := ev.res.Edges[e.ID]
		vUp := ev.upstreamVoltage(e)
		r := e.Resistance()
		er.I = safeDiv(ev.attributedPower(e), vUp)
		er.VDrop = er.I * r
		er.PLoss = er.I * er.I * r

		delivered := vUp - er.VDrop
		cr := ev.res.Nodes[e.To]
		if !seen[e.To] || delivered < cr.VUpstream {
			cr.VUpstream = delivered
			seen[e.To] = true
		}
	}
	ev.edgesResolved = true
}

// reviseNodes re-derives converter, dual-converter and bus figures now that
// edge currents and losses exist, bottom-up so refined child figures feed
// their parents within the same pass.
func (ev *evaluator) reviseNodes() {
	for i := len(ev.order) - 1; i >= 0; i-- {
		n, _ := ev.d.Node(ev.order[i])
		switch p := n.Params.(type) {
		case *design.Converter:
			ev.evalConverter(n, p)
		case *design.DualConverter:
			ev.evalDual(n, p)
		case *design.Bus:
			ev.evalBus(n, p)
		}
	}
}

// refreshInputs replaces the estimated input currents of converters, dual
// converters and buses with the sum of currents on their input-handle
// edges, then refreshes source and port output figures from the now-known
// edge currents.
func (ev *evaluator) refreshInputs() {
	for _, n := range ev.d.Nodes() {
		switch n.Params.(type) {
		case *design.Converter, *design.DualConverter, *design.Bus:
			var iin float64
			for _, e := range ev.d.Incoming(n.ID) {
				if isInputHandle(e.ToHandle) {
					iin += ev.res.Edges[e.ID].I
				}
			}
			ev.res.Nodes[n.ID].IIn = iin
		}
	}
	for _, n := range ev.d.Nodes() {
		switch p := n.Params.(type) {
		case *design.Source:
			ev.evalSource(n, p)
		case *design.SubsystemInput:
			ev.evalPort(n, p)
		}
	}
}

// finalizeNodes recomputes converter, dual-converter and bus output metrics
// once more from the stable edge currents. Input currents keep their
// edge-derived values from the input refresh.
func (ev *evaluator) finalizeNodes() {
	for i := len(ev.order) - 1; i >= 0; i-- {
		n, _ := ev.d.Node(ev.order[i])
		switch p := n.Params.(type) {
		case *design.Converter:
			ev.evalConverterOutputs(n, p)
		case *design.DualConverter:
			ev.evalDualOutputs(n, p)
		case *design.Bus:
			ev.evalBusOutputs(n, p)
		}
	}
}

// computeTotals sums design-level power: loads and embedded subsystems on
// the demand side, sources and input ports on the supply side.
func (ev *evaluator) computeTotals() {
	var loadP, srcP float64
	for _, n := range ev.d.Nodes() {
		nr := ev.res.Nodes[n.ID]
		switch n.Params.(type) {
		case *design.Load, *design.Subsystem:
			loadP += nr.PIn
		case *design.Source, *design.SubsystemInput:
			srcP += nr.POut
		}
	}
	t := Totals{LoadPower: loadP, SourceInput: srcP}
	if srcP > epsilon {
		t.OverallEfficiency = loadP / srcP
	}
	ev.res.Totals = t
}

// warn attaches an advisory message to a node, once.
func (ev *evaluator) warn(nodeID, msg string) {
	set, ok := ev.warned[nodeID]
	if !ok {
		set = make(map[string]struct{})
		ev.warned[nodeID] = set
	}
	if _, dup := set[msg]; dup {
		return
	}
	set[msg] = struct{}{}
	nr := ev.res.Nodes[nodeID]
	nr.Warnings = append(nr.Warnings, msg)
}

func isInputHandle(h string) bool { return h == "" || h == design.HandleInput }
