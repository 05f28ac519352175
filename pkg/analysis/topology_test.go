package analysis

import (
	"slices"
	"testing"

	"github.com/qiongwang-oai/powertree/pkg/design"
)

func TestTopoOrder(t *testing.T) {
	// src → conv → load
	d := design.New("order")
	d.AddNode(design.Node{ID: "load", Params: &design.Load{Vreq: 5, ITyp: 1}})
	d.AddNode(design.Node{ID: "conv", Params: &design.Converter{Vout: 5}})
	d.AddNode(design.Node{ID: "src", Params: &design.Source{Vout: 12}})
	d.AddEdge(design.Edge{From: "src", To: "conv"})
	d.AddEdge(design.Edge{From: "conv", To: "load"})

	order, hasCycle := topoOrder(d)
	if hasCycle {
		t.Fatal("hasCycle = true, want false")
	}
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	if pos["src"] > pos["conv"] || pos["conv"] > pos["load"] {
		t.Errorf("order = %v, want src before conv before load", order)
	}
}

func TestTopoOrderDeterministic(t *testing.T) {
	// Unconnected roots come out in insertion order, every time.
	d := design.New("roots")
	d.AddNode(design.Node{ID: "b", Params: &design.Source{Vout: 5}})
	d.AddNode(design.Node{ID: "a", Params: &design.Source{Vout: 5}})
	d.AddNode(design.Node{ID: "c", Params: &design.Source{Vout: 5}})

	want := []string{"b", "a", "c"}
	for i := 0; i < 5; i++ {
		order, hasCycle := topoOrder(d)
		if hasCycle {
			t.Fatal("hasCycle = true, want false")
		}
		if !slices.Equal(order, want) {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestTopoOrderParallelEdges(t *testing.T) {
	// Two edges between the same pair must not look like a cycle.
	d := design.New("parallel")
	d.AddNode(design.Node{ID: "a", Params: &design.Source{Vout: 5}})
	d.AddNode(design.Node{ID: "b", Params: &design.Load{Vreq: 5, ITyp: 1}})
	d.AddEdge(design.Edge{ID: "e1", From: "a", To: "b"})
	d.AddEdge(design.Edge{ID: "e2", From: "a", To: "b"})

	order, hasCycle := topoOrder(d)
	if hasCycle {
		t.Fatal("hasCycle = true, want false")
	}
	if !slices.Equal(order, []string{"a", "b"}) {
		t.Errorf("order = %v, want [a b]", order)
	}
}

func TestTopoOrderCycles(t *testing.T) {
	tests := []struct {
		name  string
		build func() *design.Design
	}{
		{
			name: "SelfLoop",
			build: func() *design.Design {
				d := design.New("self")
				d.AddNode(design.Node{ID: "a", Params: &design.Bus{VBus: 12}})
				d.AddEdge(design.Edge{From: "a", To: "a"})
				return d
			},
		},
		{
			name: "TwoNode",
			build: func() *design.Design {
				d := design.New("two")
				d.AddNode(design.Node{ID: "a", Params: &design.Bus{VBus: 12}})
				d.AddNode(design.Node{ID: "b", Params: &design.Bus{VBus: 12}})
				d.AddEdge(design.Edge{From: "a", To: "b"})
				d.AddEdge(design.Edge{From: "b", To: "a"})
				return d
			},
		},
		{
			name: "CycleWithTail",
			build: func() *design.Design {
				d := design.New("tail")
				d.AddNode(design.Node{ID: "src", Params: &design.Source{Vout: 12}})
				d.AddNode(design.Node{ID: "a", Params: &design.Bus{VBus: 12}})
				d.AddNode(design.Node{ID: "b", Params: &design.Bus{VBus: 12}})
				d.AddEdge(design.Edge{From: "src", To: "a"})
				d.AddEdge(design.Edge{From: "a", To: "b"})
				d.AddEdge(design.Edge{From: "b", To: "a"})
				return d
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, hasCycle := topoOrder(tt.build())
			if !hasCycle {
				t.Error("hasCycle = false, want true")
			}
		})
	}
}

func TestTopoOrderEmpty(t *testing.T) {
	order, hasCycle := topoOrder(design.New("empty"))
	if hasCycle {
		t.Error("hasCycle = true for empty design")
	}
	if len(order) != 0 {
		t.Errorf("order = %v, want empty", order)
	}
}
