package catalog

// SigmaClipParams is the (multiplier, tolerance) pair controlling the
// iterative sigma-clipping loop in the order-based pass (spec §4.3.4).
// Sigma-clip-family columns fail registration with
// MissingSigmaClipParamsError when this is unset (MaxIters == 0).
type SigmaClipParams struct {
	Multiplier float64 // k in "farther than k*sigma"
	Tolerance  float64 // epsilon: stop when the change in sigma drops below this
	MaxIters   int      // hard cap on clip iterations
}

// Set reports whether the sigma-clip parameters have been configured.
func (s SigmaClipParams) Set() bool { return s.MaxIters > 0 }

// DefaultSigmaClipParams mirrors common gnuastro defaults: 3-sigma
// clipping, 0.1% tolerance, capped at 100 iterations.
func DefaultSigmaClipParams() SigmaClipParams {
	return SigmaClipParams{Multiplier: 3.0, Tolerance: 0.001, MaxIters: 100}
}

// FracMaxParams holds the two user-supplied fractions-of-maximum (spec
// §4.3.4, "Fraction-of-maximum sets"), each in (0,1].
type FracMaxParams struct {
	Frac1, Frac2 float64
}

// Params bundles the run-level configuration the registry and pass engine
// need (spec §6 `params`). It is passed as an immutable value into the
// driver; no package-level mutable state is kept.
type Params struct {
	Zeropoint          float64
	Cpscorr            float64
	SpatialResolution  float64
	SigmaClip          SigmaClipParams
	FracMax            FracMaxParams
	NumThreads         int
	RNGSeed            uint64
	UpperLimitEnabled  bool
	Variance           bool // std image is already variance, not stddev
}

// DefaultParams returns sane defaults for ad-hoc/demo runs. Real pipelines
// are expected to supply their own Params, derived from upstream
// configuration (out of scope for this core per spec §1).
func DefaultParams() Params {
	return Params{
		Zeropoint:         0,
		Cpscorr:           1,
		SpatialResolution: 1,
		SigmaClip:         DefaultSigmaClipParams(),
		FracMax:           FracMaxParams{Frac1: 0.25, Frac2: 0.5},
		NumThreads:        1,
		RNGSeed:           1,
	}
}
