package spc

import "math"

// Tabular CUSUM defaults: reference slack k = 0.5σ (tuned for detecting a
// 1σ shift) and decision interval h = 5σ.
const (
	DefaultCUSUMK = 0.5
	DefaultCUSUMH = 5.0
)

// CUSUMOptions configures the cumulative-sum scan
type CUSUMOptions struct {
	// Target is the process target (center) value. When TargetSet is
	// false the series grand mean is used.
	Target    float64
	TargetSet bool

	// K is the reference slack in sigma units; 0 means DefaultCUSUMK
	K float64

	// H is the decision interval in sigma units; 0 means DefaultCUSUMH
	H float64

	// Sigma is the standard deviation of the plotted values. When
	// SigmaSet is false it must be estimated by the caller beforehand;
	// a zero sigma is accepted (a constant series) and disables slack.
	Sigma    float64
	SigmaSet bool
}

// CUSUMPoint carries the upper and lower cumulative sums after one value
type CUSUMPoint struct {
	Index     int     `json:"index"`
	Upper     float64 `json:"upper"` // S⁺
	Lower     float64 `json:"lower"` // S⁻
	Violation bool    `json:"violation"`
}

// CUSUMResult is the outcome of a cumulative-sum scan
type CUSUMResult struct {
	Target   float64      `json:"target"`
	Sigma    float64      `json:"sigma"`
	K        float64      `json:"k"`
	H        float64      `json:"h"`
	Interval float64      `json:"interval"` // decision interval h·σ in value units
	Points   []CUSUMPoint `json:"points"`
}

// ComputeCUSUM runs a tabular CUSUM over the ordered values:
//
//	S⁺ᵢ = max(0, S⁺ᵢ₋₁ + xᵢ − target − k·σ)
//	S⁻ᵢ = min(0, S⁻ᵢ₋₁ + xᵢ − target + k·σ)
//
// A point violates when either sum crosses the decision interval h·σ. The
// sums are inherently sequential; the scan is a single ordered pass.
func ComputeCUSUM(values []float64, opts CUSUMOptions) (*CUSUMResult, error) {
	if !opts.SigmaSet {
		return nil, NewError(CodeInvalidRequest, "CUSUM requires a process sigma estimate")
	}

	target := opts.Target
	if !opts.TargetSet {
		if len(values) == 0 {
			return nil, NewError(CodeInvalidTarget,
				"CUSUM target not supplied and cannot be estimated from an empty series")
		}
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		target = sum / float64(len(values))
	}
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return nil, NewError(CodeInvalidTarget, "CUSUM target is not a finite number").
			WithDetail("target", target)
	}

	k := opts.K
	if k == 0 {
		k = DefaultCUSUMK
	}
	h := opts.H
	if h == 0 {
		h = DefaultCUSUMH
	}
	slack := k * opts.Sigma
	interval := h * opts.Sigma

	result := &CUSUMResult{
		Target:   target,
		Sigma:    opts.Sigma,
		K:        k,
		H:        h,
		Interval: interval,
		Points:   make([]CUSUMPoint, len(values)),
	}

	var upper, lower float64
	for i, v := range values {
		upper = math.Max(0, upper+v-target-slack)
		lower = math.Min(0, lower+v-target+slack)
		result.Points[i] = CUSUMPoint{
			Index:     i,
			Upper:     upper,
			Lower:     lower,
			Violation: upper > interval || lower < -interval,
		}
	}

	return result, nil
}
