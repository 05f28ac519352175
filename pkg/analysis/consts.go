package analysis

const (
	// epsilon is the shared near-zero floor. Every division in the engine
	// clamps its denominator to at least this value so computed metrics stay
	// finite even for degenerate inputs.
	epsilon = 1e-9

	// defaultEfficiency substitutes for missing or unusable efficiency
	// configurations. Deliberately conservative.
	defaultEfficiency = 0.9

	// idleFraction estimates a load's idle draw as a fraction of its typical
	// current when no explicit idle current is configured.
	idleFraction = 0.2

	// maxSubsystemDepth bounds subsystem nesting. Embeddings deeper than
	// this are treated as empty designs; the cap guards against runaway or
	// self-referential embedding, which the per-level cycle check cannot see.
	maxSubsystemDepth = 64
)

// safeDiv divides num by den with the denominator floored at epsilon.
func safeDiv(num, den float64) float64 {
	if den < epsilon {
		den = epsilon
	}
	return num / den
}

// instances normalizes a paralleled count: zero or negative means one.
func instances(n int) float64 {
	if n < 1 {
		return 1
	}
	return float64(n)
}

// utilization converts a percentage into a scale factor. Zero or negative
// means fully utilized.
func utilization(pct float64) float64 {
	if pct <= 0 {
		return 1
	}
	return pct / 100
}
