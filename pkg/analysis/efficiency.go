package analysis

import (
	"sort"

	"github.com/qiongwang-oai/powertree/pkg/design"
)

// operatingPoint carries the output figures and ratings an efficiency curve
// is evaluated against.
type operatingPoint struct {
	POut    float64
	IOut    float64
	PoutMax float64
	IoutMax float64
	Phases  int
}

// curvePoint is a normalized efficiency curve point: position as a percent
// of the rated maximum, and the efficiency value there.
type curvePoint struct {
	pct   float64
	value float64
}

// resolveEfficiency evaluates an efficiency model at an operating point and
// returns a scalar in (0,1]. A non-empty warning reports that a degenerate
// configuration forced the conservative default.
//
// Per-phase models divide both the operating point and the rated maxima by
// the phase count before normalizing, so curves specified for a single phase
// of an interleaved converter line up with the per-phase ratings.
func resolveEfficiency(m design.Efficiency, op operatingPoint) (eff float64, warning string) {
	pout, iout := op.POut, op.IOut
	poutMax, ioutMax := op.PoutMax, op.IoutMax
	if m.PerPhase && op.Phases > 1 {
		phases := float64(op.Phases)
		pout /= phases
		iout /= phases
		poutMax /= phases
		ioutMax /= phases
	}

	if !m.IsCurve() {
		if m.Fixed > 0 {
			return m.Fixed, ""
		}
		return defaultEfficiency, "efficiency not configured; assuming 90%"
	}

	basis := m.Basis
	if basis == "" {
		basis = design.BasisOutputPower
	}
	var ratedMax, operating float64
	switch basis {
	case design.BasisOutputCurrent:
		ratedMax, operating = ioutMax, iout
	default:
		ratedMax, operating = poutMax, pout
	}
	if ratedMax <= epsilon {
		return defaultEfficiency, "efficiency curve has no usable rated maximum; assuming 90%"
	}

	pts := normalizeCurve(m.Points, ioutMax)
	if len(pts) == 0 {
		return defaultEfficiency, "efficiency curve has no usable points; assuming 90%"
	}

	loadPct := clampPct(safeDiv(operating, ratedMax) * 100)
	eff = interpolate(pts, loadPct)
	if eff <= 0 {
		return defaultEfficiency, "efficiency curve resolves to a non-positive value; assuming 90%"
	}
	return eff, ""
}

// normalizeCurve converts curve points onto the shared percent-of-rated
// scale and sorts them ascending by position. Points positioned by absolute
// current need a usable rated current; points with no position are dropped.
// Positions are not clamped; only the query is, so a curve extending past
// 100% still shapes the interpolation at full load.
func normalizeCurve(points []design.CurvePoint, ioutMax float64) []curvePoint {
	pts := make([]curvePoint, 0, len(points))
	for _, p := range points {
		switch {
		case p.LoadPct != nil:
			pts = append(pts, curvePoint{pct: *p.LoadPct, value: p.Value})
		case p.Current != nil:
			if ioutMax <= epsilon {
				continue
			}
			pts = append(pts, curvePoint{pct: *p.Current / ioutMax * 100, value: p.Value})
		}
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].pct < pts[j].pct })
	return pts
}

// interpolate evaluates a sorted curve at the query position. Queries below
// the first breakpoint take the first point's value, queries above the last
// take the last point's value, and anything between is linear.
func interpolate(pts []curvePoint, query float64) float64 {
	if query <= pts[0].pct {
		return pts[0].value
	}
	last := pts[len(pts)-1]
	if query >= last.pct {
		return last.value
	}
	for i := 0; i < len(pts)-1; i++ {
		lo, hi := pts[i], pts[i+1]
		if query > hi.pct {
			continue
		}
		span := hi.pct - lo.pct
		if span <= epsilon {
			return hi.value
		}
		frac := (query - lo.pct) / span
		return lo.value + (hi.value-lo.value)*frac
	}
	return last.value
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
