package design

// Kind identifies which of the closed set of node types a node is.
// Every node carries exactly one Params payload, and the payload's
// concrete type determines the kind.
type Kind int

const (
	// KindSource is an ideal voltage source feeding the tree.
	KindSource Kind = iota
	// KindLoad is a terminal consumer drawing a scenario-dependent current.
	KindLoad
	// KindConverter is a single-output voltage converter with an efficiency model.
	KindConverter
	// KindDualConverter is a converter with multiple independent output branches.
	KindDualConverter
	// KindBus is a resistive distribution rail that passes power through.
	KindBus
	// KindSubsystem embeds a complete child design as a single reusable block.
	KindSubsystem
	// KindSubsystemInput is a named input port inside an embedded design.
	// When the embedded design is analyzed on its own, the port acts as a source.
	KindSubsystemInput
)

// String returns the lowercase name of the kind. The names double as the
// type discriminators used by the JSON codec in pkg/designio.
func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindLoad:
		return "load"
	case KindConverter:
		return "converter"
	case KindDualConverter:
		return "dual_converter"
	case KindBus:
		return "bus"
	case KindSubsystem:
		return "subsystem"
	case KindSubsystemInput:
		return "subsystem_input"
	}
	return "unknown"
}

// Params carries a node's kind-specific parameters. The set of implementations
// is closed: one pointer type per Kind, all defined in this package. Consumers
// dispatch with a type switch over those pointer types; the compiler then has
// the full case list in view.
type Params interface {
	kind() Kind
}

// Source is an ideal voltage source. It feeds the tree at a fixed output
// voltage and reports the current its children draw.
type Source struct {
	// Vout is the output voltage in volts.
	Vout float64
	// IoutMax is the rated output current limit in amperes. Zero means unrated.
	IoutMax float64
	// PoutMax is the rated output power limit in watts. Zero means unrated.
	PoutMax float64
	// Redundancy selects how paralleled units share load. Empty means RedundancyN.
	Redundancy Redundancy
	// Count is the number of paralleled physical units. Zero or one means a
	// single unit.
	Count int
}

// Load is a terminal consumer. It draws a current chosen by the active
// scenario, optionally scaled by a utilization percentage and a paralleled
// instance count.
type Load struct {
	// Vreq is the required supply voltage in volts.
	Vreq float64
	// ITyp is the typical-scenario current draw in amperes.
	ITyp float64
	// IMax is the maximum-scenario current draw in amperes.
	IMax float64
	// IIdle is the idle-scenario current draw in amperes. When nil, the idle
	// scenario estimates the draw as a fixed fraction of ITyp. An explicit
	// zero means the load truly draws nothing at idle.
	IIdle *float64
	// UtilTypPct and UtilMaxPct scale the typical and maximum currents as
	// percentages. Zero means 100 (fully utilized).
	UtilTypPct float64
	UtilMaxPct float64
	// NumParalleled multiplies the draw by an instance count. Zero or one
	// means a single instance.
	NumParalleled int
	// Critical marks the load as critical for the deep aggregation split.
	Critical bool
	// VoltageMarginPct overrides the design-level supply margin for this load.
	// Zero means the design default applies.
	VoltageMarginPct float64
}

// Converter is a single-output voltage converter. Its input power is the
// output power divided by the resolved efficiency at the operating point.
type Converter struct {
	// VinMin and VinMax bound the acceptable input voltage in volts.
	// Zero bounds are treated as unspecified.
	VinMin float64
	VinMax float64
	// Vout is the regulated output voltage in volts.
	Vout float64
	// IoutMax is the rated output current limit in amperes. Zero means unrated.
	IoutMax float64
	// PoutMax is the rated output power limit in watts. Zero means unrated.
	PoutMax float64
	// Efficiency models the conversion efficiency.
	Efficiency Efficiency
	// PhaseCount is the number of interleaved phases. Zero or one means a
	// single phase.
	PhaseCount int
}

// DualConverter is a converter with multiple independent output branches
// sharing one input. Each branch regulates its own voltage and resolves its
// own efficiency; the node's input power is the sum of the per-branch inputs.
type DualConverter struct {
	// VinMin and VinMax bound the acceptable input voltage in volts.
	VinMin float64
	VinMax float64
	// Outputs lists the output branches in declaration order. Edges select a
	// branch by naming its ID in the edge's FromHandle.
	Outputs []OutputBranch
}

// OutputBranch is one output of a DualConverter.
type OutputBranch struct {
	// ID names the branch. Edge FromHandle values refer to it.
	ID string
	// Vout is the branch's regulated output voltage in volts.
	Vout float64
	// IoutMax is the branch's rated output current limit in amperes.
	IoutMax float64
	// PoutMax is the branch's rated output power limit in watts.
	PoutMax float64
	// Efficiency models the branch's conversion efficiency.
	Efficiency Efficiency
	// PhaseCount is the branch's interleaved phase count.
	PhaseCount int
}

// Bus is a resistive distribution rail. It passes power through at a nominal
// voltage and dissipates I squared R in its own resistance.
type Bus struct {
	// VBus is the nominal rail voltage in volts.
	VBus float64
	// ResistanceMilliOhm is the rail's series resistance in milliohms.
	ResistanceMilliOhm float64
}

// Subsystem embeds a complete child design as one block in the parent tree.
// The embedded design's SubsystemInput ports become the block's input pins.
type Subsystem struct {
	// Inner is the embedded design. A nil Inner yields zero draw and a
	// node warning rather than an error.
	Inner *Design
	// NumParalleled multiplies the embedded design's draw by an instance
	// count. Zero or one means a single instance.
	NumParalleled int
	// InputVNom optionally fixes the nominal input voltage used when the
	// embedded design's ports carry no voltage of their own.
	InputVNom *float64
}

// SubsystemInput is an input port inside an embedded design. When the design
// runs standalone the port behaves as a source at Vout; when embedded, the
// parent attaches edges to it.
type SubsystemInput struct {
	// Vout is the port's nominal voltage in volts. Zero defers to the
	// enclosing Subsystem's InputVNom.
	Vout float64
}

func (*Source) kind() Kind         { return KindSource }
func (*Load) kind() Kind           { return KindLoad }
func (*Converter) kind() Kind      { return KindConverter }
func (*DualConverter) kind() Kind  { return KindDualConverter }
func (*Bus) kind() Kind            { return KindBus }
func (*Subsystem) kind() Kind      { return KindSubsystem }
func (*SubsystemInput) kind() Kind { return KindSubsystemInput }

// Redundancy selects how paralleled source units share load.
type Redundancy string

const (
	// RedundancyN shares load across all units with no reserve.
	RedundancyN Redundancy = "N"
	// RedundancyNPlus1 keeps one unit in reserve; the remaining units must
	// carry the full load on their own.
	RedundancyNPlus1 Redundancy = "N+1"
)

// Node is one element of a power tree. Its behavior is entirely determined
// by the concrete type held in Params.
//
// The zero value is not usable: Params must be non-nil before the node is
// added to a Design.
type Node struct {
	ID     string // Unique identifier within the design
	Name   string // Display name (may be empty; falls back to ID)
	Params Params // Kind-specific parameters (never nil after AddNode)
}

// Kind reports the node's kind, derived from its Params payload.
func (n *Node) Kind() Kind { return n.Params.kind() }

// Label returns the display name, falling back to the ID when unnamed.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}
