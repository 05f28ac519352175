package design

// Basis selects which rated maximum an efficiency curve is normalized
// against when converting an operating point to a percent-of-rated position.
type Basis string

const (
	// BasisOutputPower normalizes against the converter's rated output power.
	BasisOutputPower Basis = "output_power"
	// BasisOutputCurrent normalizes against the converter's rated output current.
	BasisOutputCurrent Basis = "output_current"
)

// Efficiency models a converter's conversion efficiency. With no curve
// points it is a fixed value; with points it is a piecewise-linear curve
// over a normalized 0 to 100 percent-of-rated-load position.
type Efficiency struct {
	// Fixed is the constant efficiency in (0,1]. Consulted only when Points
	// is empty. Zero means unspecified; the analysis falls back to a
	// conservative default and flags the node.
	Fixed float64
	// Basis selects the rated maximum the curve is normalized against.
	// Empty defaults to BasisOutputPower. Ignored when Points is empty.
	Basis Basis
	// Points describe the curve. Each point is positioned either by an
	// explicit percent-of-rated-load or by an absolute output current that
	// the analysis normalizes against the rated maximum.
	Points []CurvePoint
	// PerPhase marks the curve as specified per interleaved phase. The
	// analysis divides the operating point and the rated maxima by the
	// converter's phase count before normalizing.
	PerPhase bool
}

// IsCurve reports whether the model carries curve points.
func (e Efficiency) IsCurve() bool { return len(e.Points) > 0 }

// CurvePoint is one point of a piecewise-linear efficiency curve. Exactly
// one of LoadPct or Current should be set; points with neither are ignored.
type CurvePoint struct {
	// LoadPct positions the point at a percent of the rated maximum (0..100).
	LoadPct *float64
	// Current positions the point at an absolute output current in amperes.
	Current *float64
	// Value is the efficiency at this point, in (0,1].
	Value float64
}

// FixedEfficiency is a convenience constructor for a constant-efficiency model.
func FixedEfficiency(value float64) Efficiency { return Efficiency{Fixed: value} }

// clone returns a deep copy, including the points and their pointer positions.
func (e Efficiency) clone() Efficiency {
	cp := e
	if len(e.Points) > 0 {
		cp.Points = make([]CurvePoint, len(e.Points))
		for i, p := range e.Points {
			cp.Points[i] = p
			cp.Points[i].LoadPct = clonePtr(p.LoadPct)
			cp.Points[i].Current = clonePtr(p.Current)
		}
	}
	return cp
}
