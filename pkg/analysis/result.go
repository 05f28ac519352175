package analysis

import "github.com/qiongwang-oai/powertree/pkg/design"

// Result is the full operating point of one design under one scenario.
// It is a pure function of the design and scenario: computing twice on an
// unmodified design yields identical results. Callers should treat it as a
// read-only snapshot; the engine never retains a reference after returning.
type Result struct {
	// Design echoes the analyzed design's name.
	Design string
	// Scenario is the operating scenario the result was computed under.
	Scenario design.Scenario
	// Nodes maps node ID to its computed metrics. Every node in the design
	// has an entry, zero-valued when the design contains a cycle.
	Nodes map[string]*NodeResult
	// Edges maps edge ID to its computed metrics. Every edge in the design
	// has an entry, zero-valued when the design contains a cycle.
	Edges map[string]*EdgeResult
	// Totals are the design-level power figures.
	Totals Totals
	// Order lists node IDs in topological order (supplies before consumers).
	// Empty when the design contains a cycle.
	Order []string
	// HasCycle reports whether a cycle prevented numeric evaluation.
	HasCycle bool
	// GlobalWarnings are design-level advisories not owned by any node.
	GlobalWarnings []string
}

// NodeResult is the computed operating point of one node.
type NodeResult struct {
	// Kind echoes the node's kind so reports can render without a design lookup.
	Kind design.Kind
	// PIn and POut are input and output power in watts.
	PIn  float64
	POut float64
	// IIn and IOut are input and output current in amperes. For a
	// DualOutputConverter, IOut sums the per-branch currents and is a
	// reporting convenience; the branches regulate different voltages.
	IIn  float64
	IOut float64
	// VUpstream is the voltage delivered by the node's feeds after edge
	// drops; with several feeds the lowest delivered voltage wins. Zero for
	// nodes without incoming edges.
	VUpstream float64
	// Loss is the power dissipated inside the node in watts: conversion loss
	// for converters, resistive loss for buses, zero otherwise.
	Loss float64
	// Warnings are the advisory messages attached by the warning pass and by
	// degenerate-configuration fallbacks. They never alter computed values.
	Warnings []string
	// Branches holds per-branch metrics for DualOutputConverter nodes,
	// keyed by branch ID. Nil for every other kind.
	Branches map[string]*BranchResult
}

// BranchResult is the computed operating point of one DualOutputConverter
// output branch.
type BranchResult struct {
	// Vout echoes the branch's regulated voltage.
	Vout float64
	// POut and IOut are the branch's output power and current.
	POut float64
	IOut float64
	// PIn is the input power the branch claims from the shared input.
	PIn float64
	// Efficiency is the resolved conversion efficiency at the operating point.
	Efficiency float64
}

// EdgeResult is the computed operating point of one interconnect.
type EdgeResult struct {
	// From and To echo the edge's endpoints.
	From string
	To   string
	// I is the edge current in amperes.
	I float64
	// VDrop is the resistive voltage drop in volts.
	VDrop float64
	// PLoss is the resistive dissipation in watts.
	PLoss float64
}

// Totals are the design-level power figures for one computation.
type Totals struct {
	// LoadPower sums the input power of every load and embedded subsystem.
	LoadPower float64
	// SourceInput sums the output power of every source and input port.
	SourceInput float64
	// OverallEfficiency is LoadPower over SourceInput, or zero when the
	// design draws nothing.
	OverallEfficiency float64
}

// Aggregates are recursively summed totals across all nested subsystems,
// produced by DeepAggregates for rollup reporting.
type Aggregates struct {
	// CriticalLoadPower and NonCriticalLoadPower split the deep load power
	// by the loads' critical flag.
	CriticalLoadPower    float64
	NonCriticalLoadPower float64
	// TotalLoadPower is the sum of the two splits.
	TotalLoadPower float64
	// ConverterLoss sums conversion losses across all levels.
	ConverterLoss float64
	// EdgeLoss sums resistive losses of interconnects and buses across all levels.
	EdgeLoss float64
}

// newResult allocates a zero-valued result shaped after the design: one
// entry per node and edge, with per-branch entries for dual converters.
func newResult(d *design.Design, sc design.Scenario) *Result {
	res := &Result{
		Design:   d.Name,
		Scenario: sc,
		Nodes:    make(map[string]*NodeResult, d.NodeCount()),
		Edges:    make(map[string]*EdgeResult, d.EdgeCount()),
	}
	for _, n := range d.Nodes() {
		nr := &NodeResult{Kind: n.Kind()}
		if dc, ok := n.Params.(*design.DualConverter); ok {
			nr.Branches = make(map[string]*BranchResult, len(dc.Outputs))
			for _, b := range dc.Outputs {
				nr.Branches[b.ID] = &BranchResult{Vout: b.Vout}
			}
		}
		res.Nodes[n.ID] = nr
	}
	for _, e := range d.Edges() {
		res.Edges[e.ID] = &EdgeResult{From: e.From, To: e.To}
	}
	return res
}
