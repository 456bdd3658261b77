package spc

import (
	"errors"
	"math"
	"testing"
)

func TestComputeCUSUM_Recurrences(t *testing.T) {
	// Hand-computed with target 10, sigma 1, k 0.5, h 5:
	//   x=11: S⁺ = max(0, 0+11-10-0.5) = 0.5,  S⁻ = min(0, 0+11-10+0.5) = 0
	//   x=12: S⁺ = max(0, 0.5+12-10-0.5) = 2,  S⁻ = 0
	//   x=8:  S⁺ = max(0, 2+8-10-0.5) = 0,     S⁻ = min(0, 0+8-10+0.5) = -1.5
	result, err := ComputeCUSUM([]float64{11, 12, 8}, CUSUMOptions{
		Target: 10, TargetSet: true,
		Sigma: 1, SigmaSet: true,
	})
	if err != nil {
		t.Fatalf("ComputeCUSUM returned error: %v", err)
	}

	want := []struct{ upper, lower float64 }{
		{0.5, 0},
		{2, 0},
		{0, -1.5},
	}
	for i, w := range want {
		p := result.Points[i]
		if !almostEqual(p.Upper, w.upper) || !almostEqual(p.Lower, w.lower) {
			t.Errorf("point %d: S⁺=%v S⁻=%v, want S⁺=%v S⁻=%v", i, p.Upper, p.Lower, w.upper, w.lower)
		}
		if p.Violation {
			t.Errorf("point %d flagged below the decision interval", i)
		}
	}
	if result.K != DefaultCUSUMK || result.H != DefaultCUSUMH {
		t.Errorf("defaults not applied: k=%v h=%v", result.K, result.H)
	}
	if !almostEqual(result.Interval, 5) {
		t.Errorf("interval = %v, want 5", result.Interval)
	}
}

func TestComputeCUSUM_DetectsSustainedShift(t *testing.T) {
	// On-target noise-free values accumulate nothing; a sustained +0.5σ
	// shift walks the upper sum over the decision interval while the
	// pre-shift points stay clean. k is below the shift so each shifted
	// value contributes a positive increment.
	values := make([]float64, 0, 70)
	for i := 0; i < 40; i++ {
		values = append(values, 10)
	}
	for i := 0; i < 30; i++ {
		values = append(values, 10.5)
	}

	result, err := ComputeCUSUM(values, CUSUMOptions{
		Target: 10, TargetSet: true,
		Sigma: 1, SigmaSet: true,
		K:     0.25,
		H:     4,
	})
	if err != nil {
		t.Fatalf("ComputeCUSUM returned error: %v", err)
	}

	firstViolation := -1
	for _, p := range result.Points {
		if p.Violation {
			firstViolation = p.Index
			break
		}
	}
	// Each shifted value adds 0.5-0.25 = 0.25, so the sum crosses h=4
	// strictly after the 16th shifted point.
	if firstViolation != 56 {
		t.Errorf("first violation at index %d, want 56", firstViolation)
	}
	for _, p := range result.Points[:40] {
		if p.Violation || p.Upper != 0 || p.Lower != 0 {
			t.Errorf("pre-shift point %d accumulated: %+v", p.Index, p)
		}
	}
	for _, p := range result.Points[firstViolation:] {
		if !p.Violation {
			t.Errorf("point %d after the crossing is not flagged", p.Index)
		}
	}
}

func TestComputeCUSUM_NoShiftStaysQuiet(t *testing.T) {
	// Symmetric noise around target with amplitude under the slack never
	// accumulates.
	values := make([]float64, 40)
	for i := range values {
		if i%2 == 0 {
			values[i] = 10.2
		} else {
			values[i] = 9.8
		}
	}
	result, err := ComputeCUSUM(values, CUSUMOptions{
		Target: 10, TargetSet: true,
		Sigma: 1, SigmaSet: true,
	})
	if err != nil {
		t.Fatalf("ComputeCUSUM returned error: %v", err)
	}
	for _, p := range result.Points {
		if p.Violation {
			t.Errorf("on-target point %d flagged", p.Index)
		}
	}
}

func TestComputeCUSUM_TargetFromMean(t *testing.T) {
	result, err := ComputeCUSUM([]float64{9, 10, 11}, CUSUMOptions{Sigma: 1, SigmaSet: true})
	if err != nil {
		t.Fatalf("ComputeCUSUM returned error: %v", err)
	}
	if !almostEqual(result.Target, 10) {
		t.Errorf("estimated target = %v, want 10", result.Target)
	}
}

func TestComputeCUSUM_InvalidTarget(t *testing.T) {
	_, err := ComputeCUSUM(nil, CUSUMOptions{Sigma: 1, SigmaSet: true})
	if !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("empty series: error = %v, want ErrInvalidTarget", err)
	}

	_, err = ComputeCUSUM([]float64{1, 2}, CUSUMOptions{
		Target: math.NaN(), TargetSet: true,
		Sigma: 1, SigmaSet: true,
	})
	if !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("NaN target: error = %v, want ErrInvalidTarget", err)
	}

	_, err = ComputeCUSUM([]float64{1, 2}, CUSUMOptions{
		Target: math.Inf(1), TargetSet: true,
		Sigma: 1, SigmaSet: true,
	})
	if !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("Inf target: error = %v, want ErrInvalidTarget", err)
	}
}

func TestComputeCUSUM_RequiresSigma(t *testing.T) {
	_, err := ComputeCUSUM([]float64{1, 2, 3}, CUSUMOptions{Target: 2, TargetSet: true})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
}

func TestComputeCUSUM_ZeroSigma(t *testing.T) {
	// A constant series has sigma 0; slack and interval collapse and any
	// departure from target violates immediately.
	result, err := ComputeCUSUM([]float64{10, 10, 10.1}, CUSUMOptions{
		Target: 10, TargetSet: true,
		SigmaSet: true,
	})
	if err != nil {
		t.Fatalf("ComputeCUSUM returned error: %v", err)
	}
	if result.Points[1].Violation {
		t.Error("on-target point flagged with zero sigma")
	}
	if !result.Points[2].Violation {
		t.Error("off-target point not flagged with zero sigma")
	}
}
