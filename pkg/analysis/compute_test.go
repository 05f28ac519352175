package analysis_test

import (
	"math"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/qiongwang-oai/powertree/pkg/analysis"
	"github.com/qiongwang-oai/powertree/pkg/design"
	"github.com/qiongwang-oai/powertree/pkg/observability"
)

func fp(v float64) *float64 { return &v }

func approx(a, b float64) bool { return math.Abs(a-b) <= 1e-9 }

func hasWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

// singleChain is a source feeding one load over a lossless edge.
func singleChain() *design.Design {
	d := design.New("chain")
	d.AddNode(design.Node{ID: "src", Params: &design.Source{Vout: 5}})
	d.AddNode(design.Node{ID: "load", Params: &design.Load{Vreq: 5, ITyp: 2}})
	d.AddEdge(design.Edge{ID: "e1", From: "src", To: "load"})
	return d
}

func TestComputeSingleChain(t *testing.T) {
	res := analysis.Compute(singleChain())

	if res.HasCycle {
		t.Fatal("HasCycle = true, want false")
	}
	if !slices.Equal(res.Order, []string{"src", "load"}) {
		t.Errorf("Order = %v, want [src load]", res.Order)
	}

	load := res.Nodes["load"]
	if !approx(load.PIn, 10) || !approx(load.POut, 10) {
		t.Errorf("load power in/out = %v/%v, want 10/10", load.PIn, load.POut)
	}
	if !approx(load.IIn, 2) {
		t.Errorf("load.IIn = %v, want 2", load.IIn)
	}
	if !approx(load.VUpstream, 5) {
		t.Errorf("load.VUpstream = %v, want 5", load.VUpstream)
	}

	src := res.Nodes["src"]
	if !approx(src.POut, 10) || !approx(src.IOut, 2) {
		t.Errorf("src out = %vW/%vA, want 10W/2A", src.POut, src.IOut)
	}
	if !approx(res.Edges["e1"].I, 2) {
		t.Errorf("edge current = %v, want 2", res.Edges["e1"].I)
	}

	if !approx(res.Totals.LoadPower, 10) || !approx(res.Totals.SourceInput, 10) {
		t.Errorf("totals = %+v, want 10W in and out", res.Totals)
	}
	if !approx(res.Totals.OverallEfficiency, 1) {
		t.Errorf("OverallEfficiency = %v, want 1", res.Totals.OverallEfficiency)
	}
	for id, nr := range res.Nodes {
		if len(nr.Warnings) != 0 {
			t.Errorf("node %s warnings = %v, want none", id, nr.Warnings)
		}
	}
}

func TestComputeConverterChain(t *testing.T) {
	d := design.New("converter-chain")
	d.AddNode(design.Node{ID: "src", Params: &design.Source{Vout: 12}})
	d.AddNode(design.Node{ID: "conv", Params: &design.Converter{
		VinMin: 10, VinMax: 14, Vout: 5,
		Efficiency: design.FixedEfficiency(0.9),
	}})
	d.AddNode(design.Node{ID: "load", Params: &design.Load{Vreq: 5, ITyp: 2}})
	d.AddEdge(design.Edge{ID: "e1", From: "src", To: "conv"})
	d.AddEdge(design.Edge{ID: "e2", From: "conv", To: "load"})

	res := analysis.Compute(d)

	conv := res.Nodes["conv"]
	wantPIn := 10 / 0.9
	if !approx(conv.POut, 10) || !approx(conv.PIn, wantPIn) {
		t.Errorf("conv power out/in = %v/%v, want 10/%v", conv.POut, conv.PIn, wantPIn)
	}
	if !approx(conv.Loss, wantPIn-10) {
		t.Errorf("conv.Loss = %v, want %v", conv.Loss, wantPIn-10)
	}
	if !approx(conv.IOut, 2) {
		t.Errorf("conv.IOut = %v, want 2", conv.IOut)
	}
	// Input current comes from the resolved feed edge, not the nominal estimate.
	if !approx(conv.IIn, res.Edges["e1"].I) {
		t.Errorf("conv.IIn = %v, want edge current %v", conv.IIn, res.Edges["e1"].I)
	}
	if !approx(conv.IIn, wantPIn/12) {
		t.Errorf("conv.IIn = %v, want %v", conv.IIn, wantPIn/12)
	}

	if !approx(res.Nodes["src"].POut, wantPIn) {
		t.Errorf("src.POut = %v, want %v", res.Nodes["src"].POut, wantPIn)
	}
	if !approx(res.Totals.OverallEfficiency, 0.9) {
		t.Errorf("OverallEfficiency = %v, want 0.9", res.Totals.OverallEfficiency)
	}
	for id, nr := range res.Nodes {
		if len(nr.Warnings) != 0 {
			t.Errorf("node %s warnings = %v, want none", id, nr.Warnings)
		}
	}
}

func TestComputeCycle(t *testing.T) {
	d := design.New("cyclic")
	d.AddNode(design.Node{ID: "a", Params: &design.Bus{VBus: 12}})
	d.AddNode(design.Node{ID: "b", Params: &design.Bus{VBus: 12}})
	d.AddEdge(design.Edge{ID: "e1", From: "a", To: "b"})
	d.AddEdge(design.Edge{ID: "e2", From: "b", To: "a"})

	res := analysis.Compute(d)

	if !res.HasCycle {
		t.Fatal("HasCycle = false, want true")
	}
	if len(res.GlobalWarnings) != 1 {
		t.Fatalf("GlobalWarnings = %v, want exactly one", res.GlobalWarnings)
	}
	if !strings.Contains(res.GlobalWarnings[0], "cycle") {
		t.Errorf("GlobalWarnings[0] = %q, want it to mention the cycle", res.GlobalWarnings[0])
	}
	if len(res.Order) != 0 {
		t.Errorf("Order = %v, want empty", res.Order)
	}
	for id, nr := range res.Nodes {
		if nr.PIn != 0 || nr.POut != 0 || nr.IIn != 0 || nr.IOut != 0 || nr.Loss != 0 {
			t.Errorf("node %s = %+v, want zero values", id, nr)
		}
	}
	for id, er := range res.Edges {
		if er.I != 0 || er.VDrop != 0 || er.PLoss != 0 {
			t.Errorf("edge %s = %+v, want zero values", id, er)
		}
	}
}

func TestComputeEmptyDesign(t *testing.T) {
	res := analysis.Compute(design.New("empty"))
	if res.HasCycle || len(res.GlobalWarnings) != 0 {
		t.Errorf("empty design: HasCycle = %v, GlobalWarnings = %v", res.HasCycle, res.GlobalWarnings)
	}
	if res.Totals != (analysis.Totals{}) {
		t.Errorf("Totals = %+v, want zero", res.Totals)
	}
}

func TestComputeScenarios(t *testing.T) {
	build := func() *design.Design {
		d := design.New("scenarios")
		d.AddNode(design.Node{ID: "src", Params: &design.Source{Vout: 5}})
		d.AddNode(design.Node{ID: "load", Params: &design.Load{
			Vreq: 5,
			ITyp: 2, UtilTypPct: 50,
			IMax: 4, UtilMaxPct: 75,
		}})
		d.AddEdge(design.Edge{From: "src", To: "load"})
		return d
	}

	tests := []struct {
		name     string
		scenario design.Scenario
		want     float64
	}{
		{"TypicalAppliesUtilization", design.ScenarioTypical, 5},
		{"MaxAppliesUtilization", design.ScenarioMax, 15},
		{"IdleDefaultsToFractionOfTypical", design.ScenarioIdle, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := analysis.Compute(build(), analysis.WithScenario(tt.scenario))
			if res.Scenario != tt.scenario {
				t.Errorf("Scenario = %q, want %q", res.Scenario, tt.scenario)
			}
			if got := res.Nodes["load"].PIn; !approx(got, tt.want) {
				t.Errorf("load.PIn = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("ExplicitIdleZero", func(t *testing.T) {
		d := build()
		n, _ := d.Node("load")
		n.Params.(*design.Load).IIdle = fp(0)
		res := analysis.Compute(d, analysis.WithScenario(design.ScenarioIdle))
		if got := res.Nodes["load"].PIn; got != 0 {
			t.Errorf("load.PIn = %v, want 0 for explicit zero idle current", got)
		}
	})

	t.Run("DesignScenarioUsedByDefault", func(t *testing.T) {
		d := build()
		d.Scenario = design.ScenarioMax
		res := analysis.Compute(d)
		if res.Scenario != design.ScenarioMax {
			t.Errorf("Scenario = %q, want %q", res.Scenario, design.ScenarioMax)
		}
		if got := res.Nodes["load"].PIn; !approx(got, 15) {
			t.Errorf("load.PIn = %v, want 15", got)
		}
	})
}

func TestComputeParalleledLoad(t *testing.T) {
	d := design.New("paralleled")
	d.AddNode(design.Node{ID: "src", Params: &design.Source{Vout: 5}})
	d.AddNode(design.Node{ID: "load", Params: &design.Load{Vreq: 5, ITyp: 2, NumParalleled: 4}})
	d.AddEdge(design.Edge{From: "src", To: "load"})

	res := analysis.Compute(d)
	if got := res.Nodes["load"].PIn; !approx(got, 40) {
		t.Errorf("load.PIn = %v, want 40", got)
	}
	if got := res.Nodes["load"].IIn; !approx(got, 8) {
		t.Errorf("load.IIn = %v, want 8", got)
	}
}

func TestComputeMultiFeed(t *testing.T) {
	d := design.New("multi-feed")
	d.AddNode(design.Node{ID: "srcA", Params: &design.Source{Vout: 5}})
	d.AddNode(design.Node{ID: "srcB", Params: &design.Source{Vout: 4.8}})
	d.AddNode(design.Node{ID: "load", Params: &design.Load{Vreq: 5, ITyp: 2}})
	d.AddEdge(design.Edge{ID: "eA", From: "srcA", To: "load"})
	d.AddEdge(design.Edge{ID: "eB", From: "srcB", To: "load"})

	res := analysis.Compute(d)

	// Each feed carries the full draw so either can supply the load alone.
	if got := res.Edges["eA"].I; !approx(got, 2) {
		t.Errorf("eA.I = %v, want 2", got)
	}
	if got := res.Edges["eB"].I; !approx(got, 10.0/4.8) {
		t.Errorf("eB.I = %v, want %v", got, 10.0/4.8)
	}
	if got := res.Nodes["srcA"].POut; !approx(got, 10) {
		t.Errorf("srcA.POut = %v, want 10", got)
	}
	if got := res.Nodes["srcB"].POut; !approx(got, 10) {
		t.Errorf("srcB.POut = %v, want 10", got)
	}

	// The weakest feed decides the delivered voltage.
	load := res.Nodes["load"]
	if !approx(load.VUpstream, 4.8) {
		t.Errorf("load.VUpstream = %v, want 4.8", load.VUpstream)
	}
	if !approx(res.Totals.SourceInput, 20) {
		t.Errorf("SourceInput = %v, want 20", res.Totals.SourceInput)
	}
	if !hasWarning(load.Warnings, "does not match required") {
		t.Errorf("load.Warnings = %v, want a voltage mismatch for the 4.8V feed", load.Warnings)
	}
	if !hasWarning(load.Warnings, "upstream voltage") {
		t.Errorf("load.Warnings = %v, want a margin warning at 4.8V delivered", load.Warnings)
	}
}

func TestComputeDualConverter(t *testing.T) {
	d := design.New("dual")
	d.AddNode(design.Node{ID: "src", Params: &design.Source{Vout: 48}})
	d.AddNode(design.Node{ID: "dual", Params: &design.DualConverter{
		VinMin: 40, VinMax: 56,
		Outputs: []design.OutputBranch{
			{ID: "a", Vout: 12, Efficiency: design.FixedEfficiency(0.95)},
			{ID: "b", Vout: 5, Efficiency: design.FixedEfficiency(0.95)},
		},
	}})
	d.AddNode(design.Node{ID: "load12", Params: &design.Load{Vreq: 12, ITyp: 1}})
	d.AddNode(design.Node{ID: "load5", Params: &design.Load{Vreq: 5, ITyp: 2}})
	d.AddEdge(design.Edge{ID: "e0", From: "src", To: "dual"})
	d.AddEdge(design.Edge{ID: "e1", From: "dual", To: "load12", FromHandle: "a"})
	d.AddEdge(design.Edge{ID: "e2", From: "dual", To: "load5", FromHandle: "b"})

	res := analysis.Compute(d)
	dual := res.Nodes["dual"]

	a, b := dual.Branches["a"], dual.Branches["b"]
	if a == nil || b == nil {
		t.Fatalf("Branches = %v, want entries for a and b", dual.Branches)
	}
	if !approx(a.POut, 12) || !approx(a.IOut, 1) || !approx(a.PIn, 12/0.95) {
		t.Errorf("branch a = %+v, want 12W out, 1A, %vW in", a, 12/0.95)
	}
	if !approx(b.POut, 10) || !approx(b.IOut, 2) || !approx(b.PIn, 10/0.95) {
		t.Errorf("branch b = %+v, want 10W out, 2A, %vW in", b, 10/0.95)
	}
	if a.Efficiency != 0.95 || b.Efficiency != 0.95 {
		t.Errorf("branch efficiencies = %v/%v, want 0.95", a.Efficiency, b.Efficiency)
	}
	if a.Vout != 12 || b.Vout != 5 {
		t.Errorf("branch voltages = %v/%v, want 12/5", a.Vout, b.Vout)
	}

	wantPIn := 12/0.95 + 10/0.95
	if !approx(dual.POut, 22) || !approx(dual.IOut, 3) || !approx(dual.PIn, wantPIn) {
		t.Errorf("dual = %vW/%vA out, %vW in; want 22/3/%v", dual.POut, dual.IOut, dual.PIn, wantPIn)
	}
	if !approx(dual.Loss, wantPIn-22) {
		t.Errorf("dual.Loss = %v, want %v", dual.Loss, wantPIn-22)
	}
	if !approx(dual.IIn, wantPIn/48) {
		t.Errorf("dual.IIn = %v, want %v", dual.IIn, wantPIn/48)
	}
	if !approx(res.Totals.OverallEfficiency, 0.95) {
		t.Errorf("OverallEfficiency = %v, want 0.95", res.Totals.OverallEfficiency)
	}
	if len(dual.Warnings) != 0 {
		t.Errorf("dual.Warnings = %v, want none", dual.Warnings)
	}
}

func TestComputeBusLoss(t *testing.T) {
	d := design.New("bus")
	d.AddNode(design.Node{ID: "src", Params: &design.Source{Vout: 12}})
	d.AddNode(design.Node{ID: "bus", Params: &design.Bus{VBus: 12, ResistanceMilliOhm: 10}})
	d.AddNode(design.Node{ID: "load", Params: &design.Load{Vreq: 12, ITyp: 2}})
	d.AddEdge(design.Edge{ID: "e1", From: "src", To: "bus"})
	d.AddEdge(design.Edge{ID: "e2", From: "bus", To: "load"})

	res := analysis.Compute(d)
	bus := res.Nodes["bus"]

	if !approx(bus.IOut, 2) || !approx(bus.POut, 24) {
		t.Errorf("bus out = %vA/%vW, want 2A/24W", bus.IOut, bus.POut)
	}
	if !approx(bus.Loss, 0.04) {
		t.Errorf("bus.Loss = %v, want 0.04", bus.Loss)
	}
	if !approx(bus.PIn, 24.04) {
		t.Errorf("bus.PIn = %v, want 24.04", bus.PIn)
	}
	if !approx(bus.IIn, 24.04/12) {
		t.Errorf("bus.IIn = %v, want %v", bus.IIn, 24.04/12)
	}
	if !approx(res.Nodes["src"].POut, 24.04) {
		t.Errorf("src.POut = %v, want 24.04", res.Nodes["src"].POut)
	}
	for id, nr := range res.Nodes {
		if len(nr.Warnings) != 0 {
			t.Errorf("node %s warnings = %v, want none", id, nr.Warnings)
		}
	}
}

func TestComputeEdgeResistance(t *testing.T) {
	d := design.New("edge-r")
	d.AddNode(design.Node{ID: "src", Params: &design.Source{Vout: 5}})
	d.AddNode(design.Node{ID: "load", Params: &design.Load{Vreq: 5, ITyp: 2}})
	d.AddEdge(design.Edge{ID: "e1", From: "src", To: "load", ResistanceMilliOhm: 10})

	res := analysis.Compute(d)
	e := res.Edges["e1"]

	if !approx(e.I, 2) {
		t.Errorf("edge current = %v, want 2", e.I)
	}
	if !approx(e.VDrop, 0.02) {
		t.Errorf("edge VDrop = %v, want 0.02", e.VDrop)
	}
	if !approx(e.PLoss, 0.04) {
		t.Errorf("edge PLoss = %v, want 0.04", e.PLoss)
	}
	if got := res.Nodes["load"].VUpstream; !approx(got, 4.98) {
		t.Errorf("load.VUpstream = %v, want 4.98", got)
	}
	// Sources report the power they push at their own terminals.
	if got := res.Nodes["src"].POut; !approx(got, 10) {
		t.Errorf("src.POut = %v, want 10", got)
	}
}

func TestComputeInputHandleFiltering(t *testing.T) {
	// A non-input handle keeps its edge current out of the converter's IIn.
	d := design.New("handles")
	d.AddNode(design.Node{ID: "src1", Params: &design.Source{Vout: 12}})
	d.AddNode(design.Node{ID: "src2", Params: &design.Source{Vout: 12}})
	d.AddNode(design.Node{ID: "conv", Params: &design.Converter{
		VinMin: 10, VinMax: 14, Vout: 5,
		Efficiency: design.FixedEfficiency(1),
	}})
	d.AddNode(design.Node{ID: "load", Params: &design.Load{Vreq: 5, ITyp: 2}})
	d.AddEdge(design.Edge{ID: "e1", From: "src1", To: "conv", ToHandle: design.HandleInput})
	d.AddEdge(design.Edge{ID: "e2", From: "src2", To: "conv", ToHandle: "sense"})
	d.AddEdge(design.Edge{ID: "e3", From: "conv", To: "load"})

	res := analysis.Compute(d)

	if got := res.Edges["e1"].I; !approx(got, 10.0/12) {
		t.Errorf("e1.I = %v, want %v", got, 10.0/12)
	}
	if got := res.Edges["e2"].I; !approx(got, 10.0/12) {
		t.Errorf("e2.I = %v, want %v", got, 10.0/12)
	}
	if got := res.Nodes["conv"].IIn; !approx(got, 10.0/12) {
		t.Errorf("conv.IIn = %v, want only the input-handle edge current %v", got, 10.0/12)
	}
}

func TestComputePortStandalone(t *testing.T) {
	// An input port analyzed standalone supplies its children and carries
	// its own edge losses, unlike a source.
	d := design.New("port")
	d.AddNode(design.Node{ID: "port", Params: &design.SubsystemInput{Vout: 5}})
	d.AddNode(design.Node{ID: "load", Params: &design.Load{Vreq: 5, ITyp: 2}})
	d.AddEdge(design.Edge{ID: "e1", From: "port", To: "load", ResistanceMilliOhm: 50})

	res := analysis.Compute(d)

	if got := res.Edges["e1"].PLoss; !approx(got, 0.2) {
		t.Errorf("edge PLoss = %v, want 0.2", got)
	}
	port := res.Nodes["port"]
	if !approx(port.POut, 10.2) {
		t.Errorf("port.POut = %v, want 10.2", port.POut)
	}
	if !approx(res.Totals.SourceInput, 10.2) {
		t.Errorf("SourceInput = %v, want 10.2", res.Totals.SourceInput)
	}
	if !approx(res.Totals.LoadPower, 10) {
		t.Errorf("LoadPower = %v, want 10", res.Totals.LoadPower)
	}
}

// richDesign exercises every node kind in one tree.
func richDesign() *design.Design {
	inner := design.New("inner")
	inner.AddNode(design.Node{ID: "p1", Params: &design.SubsystemInput{Vout: 5}})
	inner.AddNode(design.Node{ID: "il", Params: &design.Load{Vreq: 5, ITyp: 1, Critical: true}})
	inner.AddEdge(design.Edge{From: "p1", To: "il"})

	d := design.New("rich")
	d.AddNode(design.Node{ID: "src", Params: &design.Source{Vout: 48, IoutMax: 10, PoutMax: 480, Count: 2, Redundancy: design.RedundancyNPlus1}})
	d.AddNode(design.Node{ID: "dual", Params: &design.DualConverter{
		VinMin: 40, VinMax: 56,
		Outputs: []design.OutputBranch{
			{ID: "hi", Vout: 12, Efficiency: design.FixedEfficiency(0.96)},
			{ID: "lo", Vout: 5, Efficiency: design.FixedEfficiency(0.92)},
		},
	}})
	d.AddNode(design.Node{ID: "bus", Params: &design.Bus{VBus: 12, ResistanceMilliOhm: 5}})
	d.AddNode(design.Node{ID: "conv", Params: &design.Converter{
		VinMin: 10, VinMax: 14, Vout: 1.8, PoutMax: 50,
		Efficiency: design.Efficiency{Points: []design.CurvePoint{
			{LoadPct: fp(10), Value: 0.85},
			{LoadPct: fp(50), Value: 0.92},
			{LoadPct: fp(100), Value: 0.9},
		}},
	}})
	d.AddNode(design.Node{ID: "cpu", Params: &design.Load{Vreq: 1.8, ITyp: 10, IMax: 18, Critical: true}})
	d.AddNode(design.Node{ID: "aux", Params: &design.Load{Vreq: 5, ITyp: 0.5, IIdle: fp(0.1)}})
	d.AddNode(design.Node{ID: "sub", Params: &design.Subsystem{Inner: inner, NumParalleled: 2}})
	d.AddEdge(design.Edge{ID: "e1", From: "src", To: "dual"})
	d.AddEdge(design.Edge{ID: "e2", From: "dual", To: "bus", FromHandle: "hi", ResistanceMilliOhm: 2})
	d.AddEdge(design.Edge{ID: "e3", From: "bus", To: "conv"})
	d.AddEdge(design.Edge{ID: "e4", From: "conv", To: "cpu", ResistanceMilliOhm: 1})
	d.AddEdge(design.Edge{ID: "e5", From: "dual", To: "aux", FromHandle: "lo"})
	d.AddEdge(design.Edge{ID: "e6", From: "dual", To: "sub", FromHandle: "lo"})
	return d
}

func TestComputeIdempotent(t *testing.T) {
	d := richDesign()
	first := analysis.Compute(d)
	second := analysis.Compute(d)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated computation over an unmodified design differs")
	}

	third := analysis.Compute(d, analysis.WithScenario(design.ScenarioMax))
	if reflect.DeepEqual(first, third) {
		t.Error("max scenario result equals typical result; scenario not applied")
	}
}

func TestComputeDoesNotMutateDesign(t *testing.T) {
	d := richDesign()
	nodesBefore := d.NodeCount()
	edgesBefore := d.EdgeCount()
	scenarioBefore := d.Scenario

	analysis.Compute(d)

	if d.NodeCount() != nodesBefore || d.EdgeCount() != edgesBefore {
		t.Errorf("design shape changed: %d/%d nodes, %d/%d edges",
			d.NodeCount(), nodesBefore, d.EdgeCount(), edgesBefore)
	}
	if d.Scenario != scenarioBefore {
		t.Errorf("design scenario changed to %q", d.Scenario)
	}
	n, _ := d.Node("sub")
	if inner := n.Params.(*design.Subsystem).Inner; inner.NodeCount() != 2 {
		t.Errorf("embedded design mutated: %d nodes", inner.NodeCount())
	}
	for _, pn := range n.Params.(*design.Subsystem).Inner.Nodes() {
		if pn.ID == "p1" {
			if _, ok := pn.Params.(*design.SubsystemInput); !ok {
				t.Errorf("embedded port p1 changed kind to %v", pn.Kind())
			}
		}
	}
}

type recordingEngineHooks struct {
	observability.NoopEngineHooks
	computes   int
	aggregates int
	lastDesign string
	lastNodes  int
}

func (h *recordingEngineHooks) OnComputeComplete(design, scenario string, nodeCount int, _ time.Duration) {
	h.computes++
	h.lastDesign = design
	h.lastNodes = nodeCount
}

func (h *recordingEngineHooks) OnAggregateComplete(design, scenario string, _ time.Duration) {
	h.aggregates++
	h.lastDesign = design
}

func TestComputeFiresEngineHooks(t *testing.T) {
	hooks := &recordingEngineHooks{}
	observability.SetEngineHooks(hooks)
	defer observability.Reset()

	d := singleChain()
	analysis.Compute(d)
	analysis.DeepAggregates(d)

	if hooks.computes != 1 {
		t.Errorf("computes = %d, want 1", hooks.computes)
	}
	if hooks.aggregates != 1 {
		t.Errorf("aggregates = %d, want 1", hooks.aggregates)
	}
	if hooks.lastDesign != d.Name {
		t.Errorf("design = %q, want %q", hooks.lastDesign, d.Name)
	}
}
