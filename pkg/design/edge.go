package design

// HandleInput is the conventional ToHandle naming a node's input side.
// Edges whose ToHandle is empty or HandleInput count toward the target's
// input current; any other ToHandle on a non-subsystem target is ignored
// by the input bookkeeping.
const HandleInput = "input"

// Edge is a directed connection carrying power from a parent node to a
// child node. An edge may name a specific handle on either side: FromHandle
// selects an output branch on a DualConverter, ToHandle selects an input
// port on a Subsystem.
type Edge struct {
	ID   string // Unique identifier within the design
	From string // Parent node ID
	To   string // Child node ID
	// FromHandle names the parent-side attachment point. For DualConverter
	// parents it selects the output branch by branch ID.
	FromHandle string
	// ToHandle names the child-side attachment point. For Subsystem children
	// it selects the input port by port node ID.
	ToHandle string
	// ResistanceMilliOhm is the interconnect's series resistance in milliohms.
	// Zero means an ideal connection.
	ResistanceMilliOhm float64
}

// Resistance returns the interconnect resistance in ohms.
func (e Edge) Resistance() float64 { return e.ResistanceMilliOhm / 1000.0 }
