package analysis_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/qiongwang-oai/powertree/pkg/analysis"
	"github.com/qiongwang-oai/powertree/pkg/design"
)

// innerWithLoad is an embedded design with one input port feeding one load.
func innerWithLoad(portV, vreq, ityp float64) *design.Design {
	d := design.New("inner")
	d.AddNode(design.Node{ID: "port", Params: &design.SubsystemInput{Vout: portV}})
	d.AddNode(design.Node{ID: "load", Params: &design.Load{Vreq: vreq, ITyp: ityp}})
	d.AddEdge(design.Edge{From: "port", To: "load"})
	return d
}

func TestSubsystemScaling(t *testing.T) {
	d := design.New("scaled")
	d.AddNode(design.Node{ID: "src", Params: &design.Source{Vout: 5}})
	d.AddNode(design.Node{ID: "sub", Params: &design.Subsystem{
		Inner:         innerWithLoad(5, 5, 2),
		NumParalleled: 3,
	}})
	d.AddEdge(design.Edge{ID: "e1", From: "src", To: "sub"})

	res := analysis.Compute(d)
	sub := res.Nodes["sub"]

	// One instance draws 10W; three instances in parallel draw 30W.
	if !approx(sub.PIn, 30) || !approx(sub.POut, 30) {
		t.Errorf("sub power = %v/%v, want 30/30", sub.PIn, sub.POut)
	}
	if !approx(sub.IIn, 6) {
		t.Errorf("sub.IIn = %v, want 6", sub.IIn)
	}
	if got := res.Edges["e1"].I; !approx(got, 6) {
		t.Errorf("feed current = %v, want 6", got)
	}
	if !approx(res.Nodes["src"].POut, 30) {
		t.Errorf("src.POut = %v, want 30", res.Nodes["src"].POut)
	}
	if !approx(res.Totals.LoadPower, 30) || !approx(res.Totals.OverallEfficiency, 1) {
		t.Errorf("totals = %+v, want 30W at unity efficiency", res.Totals)
	}
	if len(sub.Warnings) != 0 {
		t.Errorf("sub.Warnings = %v, want none", sub.Warnings)
	}
}

func TestSubsystemInnerLossesCounted(t *testing.T) {
	// Wiring loss inside the embedded design shows up in the subsystem's
	// demand even though the edge itself is invisible to the parent.
	inner := design.New("inner")
	inner.AddNode(design.Node{ID: "port", Params: &design.SubsystemInput{Vout: 5}})
	inner.AddNode(design.Node{ID: "load", Params: &design.Load{Vreq: 5, ITyp: 2}})
	inner.AddEdge(design.Edge{From: "port", To: "load", ResistanceMilliOhm: 50})

	d := design.New("outer")
	d.AddNode(design.Node{ID: "src", Params: &design.Source{Vout: 5}})
	d.AddNode(design.Node{ID: "sub", Params: &design.Subsystem{Inner: inner}})
	d.AddEdge(design.Edge{From: "src", To: "sub"})

	res := analysis.Compute(d)
	if got := res.Nodes["sub"].PIn; !approx(got, 10.2) {
		t.Errorf("sub.PIn = %v, want 10.2 with inner wiring loss", got)
	}
}

func TestSubsystemPortMatching(t *testing.T) {
	// Two ports at distinct voltages with their own loads.
	makeInner := func() *design.Design {
		d := design.New("inner")
		d.AddNode(design.Node{ID: "p5", Params: &design.SubsystemInput{Vout: 5}})
		d.AddNode(design.Node{ID: "p12", Params: &design.SubsystemInput{Vout: 12}})
		d.AddNode(design.Node{ID: "l5", Params: &design.Load{Vreq: 5, ITyp: 1}})
		d.AddNode(design.Node{ID: "l12", Params: &design.Load{Vreq: 12, ITyp: 1}})
		d.AddEdge(design.Edge{From: "p5", To: "l5"})
		d.AddEdge(design.Edge{From: "p12", To: "l12"})
		return d
	}

	t.Run("NearestVoltageWins", func(t *testing.T) {
		d := design.New("outer")
		d.AddNode(design.Node{ID: "src12", Params: &design.Source{Vout: 12}})
		d.AddNode(design.Node{ID: "src5", Params: &design.Source{Vout: 5}})
		d.AddNode(design.Node{ID: "sub", Params: &design.Subsystem{Inner: makeInner()}})
		d.AddEdge(design.Edge{ID: "e12", From: "src12", To: "sub"})
		d.AddEdge(design.Edge{ID: "e5", From: "src5", To: "sub"})

		res := analysis.Compute(d)
		// e12 carries the 12V port's 12W at 12V, e5 the 5V port's 5W at 5V.
		if got := res.Edges["e12"].I; !approx(got, 1) {
			t.Errorf("e12.I = %v, want 1", got)
		}
		if got := res.Edges["e5"].I; !approx(got, 1) {
			t.Errorf("e5.I = %v, want 1", got)
		}
		if ws := res.Nodes["sub"].Warnings; len(ws) != 0 {
			t.Errorf("sub.Warnings = %v, want none", ws)
		}
	})

	t.Run("HandleNamesPort", func(t *testing.T) {
		d := design.New("outer")
		d.AddNode(design.Node{ID: "src", Params: &design.Source{Vout: 12}})
		d.AddNode(design.Node{ID: "sub", Params: &design.Subsystem{Inner: makeInner()}})
		d.AddEdge(design.Edge{ID: "e1", From: "src", To: "sub", ToHandle: "p12"})

		res := analysis.Compute(d)
		if got := res.Edges["e1"].I; !approx(got, 1) {
			t.Errorf("e1.I = %v, want the named port's 12W at 12V", got)
		}
	})
}

func TestSubsystemPortTieBreak(t *testing.T) {
	// Two ports at the same voltage: the match is ambiguous, the first
	// declared port wins and the ambiguity is flagged once.
	inner := design.New("inner")
	inner.AddNode(design.Node{ID: "p1", Params: &design.SubsystemInput{Vout: 5}})
	inner.AddNode(design.Node{ID: "p2", Params: &design.SubsystemInput{Vout: 5}})
	inner.AddNode(design.Node{ID: "l1", Params: &design.Load{Vreq: 5, ITyp: 1}})
	inner.AddNode(design.Node{ID: "l2", Params: &design.Load{Vreq: 5, ITyp: 2}})
	inner.AddEdge(design.Edge{From: "p1", To: "l1"})
	inner.AddEdge(design.Edge{From: "p2", To: "l2"})

	d := design.New("outer")
	d.AddNode(design.Node{ID: "src", Params: &design.Source{Vout: 5}})
	d.AddNode(design.Node{ID: "sub", Params: &design.Subsystem{Inner: inner}})
	d.AddEdge(design.Edge{ID: "e1", From: "src", To: "sub"})

	res := analysis.Compute(d)
	sub := res.Nodes["sub"]

	// The edge carries p1's 5W; the subsystem node still accounts for both ports.
	if got := res.Edges["e1"].I; !approx(got, 1) {
		t.Errorf("e1.I = %v, want 1 (first declared port)", got)
	}
	if !approx(sub.PIn, 15) {
		t.Errorf("sub.PIn = %v, want 15", sub.PIn)
	}

	var ambiguous int
	for _, w := range sub.Warnings {
		if strings.Contains(w, "matches multiple input ports") {
			ambiguous++
			if !strings.Contains(w, "using port p1") {
				t.Errorf("warning = %q, want it to name port p1", w)
			}
		}
	}
	if ambiguous != 1 {
		t.Errorf("ambiguity warnings = %d (%v), want exactly one", ambiguous, sub.Warnings)
	}
}

func TestSubsystemInputVNomFallback(t *testing.T) {
	d := design.New("outer")
	d.AddNode(design.Node{ID: "src", Params: &design.Source{Vout: 5}})
	d.AddNode(design.Node{ID: "sub", Params: &design.Subsystem{
		Inner:     innerWithLoad(0, 5, 2),
		InputVNom: fp(5),
	}})
	d.AddEdge(design.Edge{ID: "e1", From: "src", To: "sub"})

	res := analysis.Compute(d)
	sub := res.Nodes["sub"]

	if !approx(sub.PIn, 10) {
		t.Errorf("sub.PIn = %v, want 10", sub.PIn)
	}
	if !approx(sub.IIn, 2) {
		t.Errorf("sub.IIn = %v, want 2 at the nominal 5V", sub.IIn)
	}
	if got := res.Edges["e1"].I; !approx(got, 2) {
		t.Errorf("e1.I = %v, want 2", got)
	}
}

func TestSubsystemWithoutInner(t *testing.T) {
	d := design.New("outer")
	d.AddNode(design.Node{ID: "src", Params: &design.Source{Vout: 5}})
	d.AddNode(design.Node{ID: "sub", Params: &design.Subsystem{}})
	d.AddEdge(design.Edge{ID: "e1", From: "src", To: "sub"})

	res := analysis.Compute(d)
	sub := res.Nodes["sub"]

	if sub.PIn != 0 {
		t.Errorf("sub.PIn = %v, want 0", sub.PIn)
	}
	if got := res.Edges["e1"].I; got != 0 {
		t.Errorf("e1.I = %v, want 0", got)
	}
	if !hasWarning(sub.Warnings, "no embedded design") {
		t.Errorf("sub.Warnings = %v, want a missing-design warning", sub.Warnings)
	}
}

func TestSubsystemInnerCyclePropagates(t *testing.T) {
	inner := design.New("inner")
	inner.AddNode(design.Node{ID: "port", Params: &design.SubsystemInput{Vout: 5}})
	inner.AddNode(design.Node{ID: "a", Params: &design.Bus{VBus: 5}})
	inner.AddNode(design.Node{ID: "b", Params: &design.Bus{VBus: 5}})
	inner.AddEdge(design.Edge{From: "port", To: "a"})
	inner.AddEdge(design.Edge{From: "a", To: "b"})
	inner.AddEdge(design.Edge{From: "b", To: "a"})

	d := design.New("outer")
	d.AddNode(design.Node{ID: "src", Params: &design.Source{Vout: 5}})
	d.AddNode(design.Node{ID: "sub", Params: &design.Subsystem{Inner: inner}})
	d.AddEdge(design.Edge{From: "src", To: "sub"})

	res := analysis.Compute(d)
	sub := res.Nodes["sub"]

	if res.HasCycle {
		t.Error("outer design reported a cycle; only the embedded design has one")
	}
	if !hasWarning(sub.Warnings, "embedded design") {
		t.Errorf("sub.Warnings = %v, want the embedded cycle surfaced", sub.Warnings)
	}
	if sub.PIn != 0 {
		t.Errorf("sub.PIn = %v, want 0 for an unevaluated embedded design", sub.PIn)
	}
}

// nestedChain builds n subsystem levels with a 10W load at the bottom.
func nestedChain(levels int) *design.Design {
	d := design.New(fmt.Sprintf("level-%d", levels))
	if levels == 0 {
		d.AddNode(design.Node{ID: "port", Params: &design.SubsystemInput{Vout: 5}})
		d.AddNode(design.Node{ID: "load", Params: &design.Load{Vreq: 5, ITyp: 2}})
		d.AddEdge(design.Edge{From: "port", To: "load"})
		return d
	}
	d.AddNode(design.Node{ID: "port", Params: &design.SubsystemInput{Vout: 5}})
	d.AddNode(design.Node{ID: "sub", Params: &design.Subsystem{Inner: nestedChain(levels - 1)}})
	d.AddEdge(design.Edge{From: "port", To: "sub"})
	return d
}

func TestSubsystemNesting(t *testing.T) {
	t.Run("ShallowChainCarriesLoad", func(t *testing.T) {
		res := analysis.Compute(nestedChain(2))
		if !approx(res.Totals.LoadPower, 10) {
			t.Errorf("LoadPower = %v, want 10", res.Totals.LoadPower)
		}
	})

	t.Run("DepthCapTerminates", func(t *testing.T) {
		// Deeper than the nesting cap: the computation must finish and the
		// levels below the cap contribute nothing.
		res := analysis.Compute(nestedChain(70))
		if res.Totals.LoadPower != 0 {
			t.Errorf("LoadPower = %v, want 0 beyond the nesting cap", res.Totals.LoadPower)
		}
	})
}
