// Package design defines the power-tree data model: a directed graph of
// sources, converters, buses, loads and embedded subsystems, connected by
// resistive edges. The model is purely structural; all electrical analysis
// lives in pkg/analysis.
package design

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNilParams is returned by [Design.AddNode] when the node carries no
	// parameter payload. Every node must have a concrete Params value.
	ErrNilParams = errors.New("node params must not be nil")

	// ErrDuplicateNodeID is returned by [Design.AddNode] when a node with
	// the same ID already exists. Node IDs must be unique within a design.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDuplicateEdgeID is returned by [Design.AddEdge] when an edge with
	// the same ID already exists.
	ErrDuplicateEdgeID = errors.New("duplicate edge ID")

	// ErrUnknownSourceNode is returned by [Design.AddEdge] when the From
	// node does not exist in the design.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Design.AddEdge] when the To
	// node does not exist in the design.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeEndpoint is returned by [Design.Validate] when an edge
	// references a node that doesn't exist. This indicates model corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrDuplicateBranchID is returned by [Design.Validate] when a
	// DualConverter declares two output branches with the same ID, which
	// would make edge attachment ambiguous.
	ErrDuplicateBranchID = errors.New("duplicate output branch ID")

	// ErrUnknownScenario is returned by [ParseScenario] for anything other
	// than the three supported operating scenarios.
	ErrUnknownScenario = errors.New("unknown scenario")
)

// Scenario selects which operating point a computation evaluates.
type Scenario string

const (
	// ScenarioTypical evaluates loads at their typical draw.
	ScenarioTypical Scenario = "typical"
	// ScenarioMax evaluates loads at their maximum draw.
	ScenarioMax Scenario = "max"
	// ScenarioIdle evaluates loads at their idle draw.
	ScenarioIdle Scenario = "idle"
)

// ParseScenario converts a user-supplied string into a Scenario.
// Matching is case-insensitive. Returns ErrUnknownScenario otherwise.
func ParseScenario(s string) (Scenario, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "typical", "typ":
		return ScenarioTypical, nil
	case "max", "maximum":
		return ScenarioMax, nil
	case "idle":
		return ScenarioIdle, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScenario, s)
}

// Margins are the design-level default margin percentages consulted by the
// advisory warning pass. Individual nodes may override some of them.
type Margins struct {
	// CurrentPct warns when output current exceeds the rated limit minus
	// this percentage of headroom.
	CurrentPct float64
	// PowerPct warns when output power exceeds the rated limit minus this
	// percentage of headroom.
	PowerPct float64
	// VoltageDropPct warns when an edge drops more than this percentage of
	// its upstream voltage.
	VoltageDropPct float64
	// VoltageMarginPct warns when a load's upstream supply sits closer to
	// the required voltage than this percentage.
	VoltageMarginPct float64
}

// DefaultMargins returns the margin percentages a fresh design starts with.
func DefaultMargins() Margins {
	return Margins{
		CurrentPct:       10,
		PowerPct:         10,
		VoltageDropPct:   5,
		VoltageMarginPct: 3,
	}
}

// Design is a power tree: nodes connected by directed, optionally resistive
// edges, plus the scenario and warning margins the analysis should use.
// Nodes and edges keep their insertion order, which makes analysis output
// deterministic for a given design.
//
// The zero value is not usable - use New to create a valid Design.
// Design is not safe for concurrent mutation without external
// synchronization; concurrent reads are fine once construction is done.
type Design struct {
	// Name labels the design in reports and rendered output.
	Name string
	// Scenario is the operating point used when the caller doesn't override it.
	Scenario Scenario
	// Margins are the design-level warning margins.
	Margins Margins

	nodes     map[string]*Node
	order     []string
	edges     []Edge
	edgeIndex map[string]int
	outgoing  map[string][]int // node ID -> indices into edges
	incoming  map[string][]int
}

// New creates an empty design with the typical scenario and default margins.
func New(name string) *Design {
	return &Design{
		Name:      name,
		Scenario:  ScenarioTypical,
		Margins:   DefaultMargins(),
		nodes:     make(map[string]*Node),
		edgeIndex: make(map[string]int),
		outgoing:  make(map[string][]int),
		incoming:  make(map[string][]int),
	}
}

// AddNode adds a node to the design and returns its ID. An empty ID is
// replaced with a fresh UUID, so imported designs keep their identifiers
// while hand-built ones don't have to invent any.
//
// Returns ErrNilParams if the node has no parameter payload, or
// ErrDuplicateNodeID if the ID is already taken.
func (d *Design) AddNode(n Node) (string, error) {
	if n.Params == nil {
		return "", ErrNilParams
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if _, exists := d.nodes[n.ID]; exists {
		return "", fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
	}
	node := &n
	d.nodes[node.ID] = node
	d.order = append(d.order, node.ID)
	return node.ID, nil
}

// AddEdge adds a directed edge between two existing nodes and returns its
// ID. An empty ID is replaced with a fresh UUID.
//
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode when an endpoint is
// missing, or ErrDuplicateEdgeID if the ID is already taken. Multiple edges
// between the same nodes are allowed; redundant feeds depend on it.
func (d *Design) AddEdge(e Edge) (string, error) {
	if _, ok := d.nodes[e.From]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSourceNode, e.From)
	}
	if _, ok := d.nodes[e.To]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTargetNode, e.To)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if _, exists := d.edgeIndex[e.ID]; exists {
		return "", fmt.Errorf("%w: %s", ErrDuplicateEdgeID, e.ID)
	}
	idx := len(d.edges)
	d.edges = append(d.edges, e)
	d.edgeIndex[e.ID] = idx
	d.outgoing[e.From] = append(d.outgoing[e.From], idx)
	d.incoming[e.To] = append(d.incoming[e.To], idx)
	return e.ID, nil
}

// Node returns the node with the given ID and true, or nil and false if not
// found. The returned pointer refers to the actual node in the design.
func (d *Design) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order. The returned slice contains
// pointers to the actual node structs, so modifications affect the design.
func (d *Design) Nodes() []*Node {
	nodes := make([]*Node, 0, len(d.order))
	for _, id := range d.order {
		nodes = append(nodes, d.nodes[id])
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (d *Design) Edges() []Edge { return slices.Clone(d.edges) }

// Edge returns the edge with the given ID and true, or a zero edge and
// false if not found.
func (d *Design) Edge(id string) (Edge, bool) {
	idx, ok := d.edgeIndex[id]
	if !ok {
		return Edge{}, false
	}
	return d.edges[idx], true
}

// Outgoing returns copies of the edges leaving the node, in insertion order.
func (d *Design) Outgoing(id string) []Edge { return d.edgesAt(d.outgoing[id]) }

// Incoming returns copies of the edges arriving at the node, in insertion order.
func (d *Design) Incoming(id string) []Edge { return d.edgesAt(d.incoming[id]) }

func (d *Design) edgesAt(indices []int) []Edge {
	if len(indices) == 0 {
		return nil
	}
	out := make([]Edge, len(indices))
	for i, idx := range indices {
		out[i] = d.edges[idx]
	}
	return out
}

// NodeCount returns the number of nodes in the design.
func (d *Design) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the design.
func (d *Design) EdgeCount() int { return len(d.edges) }

// Validate checks structural integrity and returns nil if the design is
// analyzable. It verifies that every edge connects existing nodes, that
// every node carries parameters, that DualConverter branch IDs are unique,
// and it recurses into embedded subsystem designs.
//
// Validation is purely structural. Electrical concerns such as overloads,
// voltage mismatches or cycles are reported by the analysis as warnings,
// not errors, so that a questionable design can still be inspected.
func (d *Design) Validate() error {
	for _, e := range d.edges {
		if _, ok := d.nodes[e.From]; !ok {
			return fmt.Errorf("edge %s: from %q: %w", e.ID, e.From, ErrInvalidEdgeEndpoint)
		}
		if _, ok := d.nodes[e.To]; !ok {
			return fmt.Errorf("edge %s: to %q: %w", e.ID, e.To, ErrInvalidEdgeEndpoint)
		}
	}
	for _, id := range d.order {
		n := d.nodes[id]
		if n.Params == nil {
			return fmt.Errorf("node %s: %w", id, ErrNilParams)
		}
		switch p := n.Params.(type) {
		case *DualConverter:
			seen := make(map[string]struct{}, len(p.Outputs))
			for _, b := range p.Outputs {
				if _, dup := seen[b.ID]; dup {
					return fmt.Errorf("node %s: branch %q: %w", id, b.ID, ErrDuplicateBranchID)
				}
				seen[b.ID] = struct{}{}
			}
		case *Subsystem:
			if p.Inner == nil {
				continue
			}
			if err := p.Inner.Validate(); err != nil {
				return fmt.Errorf("subsystem %s: %w", id, err)
			}
		}
	}
	return nil
}
