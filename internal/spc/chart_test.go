package spc

import (
	"errors"
	"reflect"
	"testing"
)

// repeat builds a measurement series from (value, count) pairs
func repeat(pairs ...float64) []float64 {
	var out []float64
	for i := 0; i < len(pairs); i += 2 {
		for n := 0; n < int(pairs[i+1]); n++ {
			out = append(out, pairs[i])
		}
	}
	return out
}

func TestCompute_UnknownChartType(t *testing.T) {
	_, err := Compute(Request{ChartType: "np"})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
}

func TestXbarR_StableProcess(t *testing.T) {
	// An all-identical series collapses the limits onto the center line.
	// Every point classifies as exactly-on-center and no rule fires.
	result, err := Compute(Request{
		ChartType:    ChartXbarR,
		Values:       repeat(10, 25),
		SubgroupSize: 5,
	})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	if len(result.Axes) != 2 {
		t.Fatalf("axes = %d, want 2", len(result.Axes))
	}
	means := result.Axes[0]
	if means.Name != "means" {
		t.Errorf("primary axis name = %q, want means", means.Name)
	}
	if len(means.Points) != 5 {
		t.Fatalf("means points = %d, want 5", len(means.Points))
	}
	for _, p := range means.Points {
		if p.Zone != ZoneCenter {
			t.Errorf("point %d zone = %s, want center", p.Index, p.Zone)
		}
		if len(p.Violations) != 0 {
			t.Errorf("point %d violations = %v, want none", p.Index, p.Violations)
		}
	}
	if !result.Summary.InControl {
		t.Error("stable process reported out of control")
	}
	if result.Summary.GrandMean != 10 || result.Summary.MeanRange != 0 {
		t.Errorf("summary = %+v, want grand mean 10 and mean range 0", result.Summary)
	}
}

func TestXbarR_SinglePointBeyondLimits(t *testing.T) {
	// Historical limits place the final subgroup mean of 13.5 past the
	// upper limit of 13. Only that point is flagged.
	result, err := Compute(Request{
		ChartType:    ChartXbarR,
		Values:       repeat(10, 8, 13.5, 2),
		SubgroupSize: 2,
		Given:        &GivenLimits{Center: 10, Upper: 13, Lower: 7},
	})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	means := result.Axes[0]
	if len(means.Points) != 5 {
		t.Fatalf("means points = %d, want 5", len(means.Points))
	}
	for _, p := range means.Points[:4] {
		if len(p.Violations) != 0 {
			t.Errorf("point %d violations = %v, want none", p.Index, p.Violations)
		}
	}
	last := means.Points[4]
	if last.Zone != ZoneBeyondUpper {
		t.Errorf("last point zone = %s, want beyond_upper", last.Zone)
	}
	if !reflect.DeepEqual(last.Violations, []RuleID{RuleBeyondLimits}) {
		t.Errorf("last point violations = %v, want [beyond_limits]", last.Violations)
	}
	if result.Summary.InControl {
		t.Error("out-of-limit point not reflected in summary")
	}
}

func TestXbarR_EightSameSideRun(t *testing.T) {
	// Eight subgroup means at 10.5 sit just above the historical center
	// without leaving zone C. Rule 4 fires on the 8th, nothing else.
	result, err := Compute(Request{
		ChartType:    ChartXbarR,
		Values:       repeat(10.5, 16, 9.5, 2),
		SubgroupSize: 2,
		Given:        &GivenLimits{Center: 10, Upper: 13, Lower: 7},
	})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	means := result.Axes[0]
	if len(means.Points) != 9 {
		t.Fatalf("means points = %d, want 9", len(means.Points))
	}
	for _, p := range means.Points {
		if p.Index == 7 {
			if !reflect.DeepEqual(p.Violations, []RuleID{RuleEightSameSide}) {
				t.Errorf("point 7 violations = %v, want [eight_same_side]", p.Violations)
			}
			continue
		}
		if len(p.Violations) != 0 {
			t.Errorf("point %d violations = %v, want none", p.Index, p.Violations)
		}
	}
}

func TestXbarR_ExtendedRulesOptIn(t *testing.T) {
	// The same run evaluated with only the beyond-limits rule stays clean:
	// overriding the rule set disables the defaults.
	result, err := Compute(Request{
		ChartType:    ChartXbarR,
		Values:       repeat(10.5, 16, 9.5, 2),
		SubgroupSize: 2,
		Given:        &GivenLimits{Center: 10, Upper: 13, Lower: 7},
		Rules:        []RuleID{RuleBeyondLimits},
	})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if !result.Summary.InControl {
		t.Error("run flagged with the zone rules disabled")
	}
}

func TestXbarS_KnownLimits(t *testing.T) {
	result, err := Compute(Request{
		ChartType:    ChartXbarS,
		Values:       []float64{1, 2, 3, 4},
		SubgroupSize: 2,
	})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if len(result.Axes) != 2 || result.Axes[1].Name != "stddevs" {
		t.Fatalf("axes = %+v, want means and stddevs", result.Axes)
	}
	if !almostEqual(result.Summary.GrandMean, 2.5) {
		t.Errorf("grand mean = %v, want 2.5", result.Summary.GrandMean)
	}
	if result.Summary.MeanStdDev == 0 {
		t.Error("mean stddev missing from summary")
	}
}

func TestPChart_VaryingLots(t *testing.T) {
	result, err := Compute(Request{
		ChartType: ChartP,
		Lots: []Lot{
			{Size: 50, Defectives: 5},
			{Size: 100, Defectives: 5},
			{Size: 50, Defectives: 5},
		},
	})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	if len(result.Axes) != 1 {
		t.Fatalf("axes = %d, want 1", len(result.Axes))
	}
	axis := result.Axes[0]
	if axis.Name != "proportions" {
		t.Errorf("axis name = %q, want proportions", axis.Name)
	}
	if !almostEqual(result.Summary.PBar, 0.075) {
		t.Errorf("p̄ = %v, want 0.075", result.Summary.PBar)
	}

	wantValues := []float64{0.1, 0.05, 0.1}
	for i, p := range axis.Points {
		if !almostEqual(p.Value, wantValues[i]) {
			t.Errorf("point %d value = %v, want %v", i, p.Value, wantValues[i])
		}
		if p.Limits == nil {
			t.Errorf("point %d missing per-lot limits", i)
			continue
		}
		if p.Limits.Lower != 0 {
			t.Errorf("point %d lower limit = %v, want 0", i, p.Limits.Lower)
		}
	}
	if axis.Points[0].Limits.Upper == axis.Points[1].Limits.Upper {
		t.Error("per-lot limits did not vary with lot size")
	}
	if !result.Summary.InControl {
		t.Error("in-limit lots reported out of control")
	}
}

func TestPChart_FlagsExcessDefectives(t *testing.T) {
	result, err := Compute(Request{
		ChartType: ChartP,
		Lots: []Lot{
			{Size: 100, Defectives: 5},
			{Size: 100, Defectives: 5},
			{Size: 100, Defectives: 30},
			{Size: 100, Defectives: 5},
		},
	})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	axis := result.Axes[0]
	for i, p := range axis.Points {
		wantFlag := i == 2
		if (len(p.Violations) > 0) != wantFlag {
			t.Errorf("point %d violations = %v, flagged want %v", i, p.Violations, wantFlag)
		}
	}
	if result.Summary.InControl {
		t.Error("excess defectives not reflected in summary")
	}
}

func TestPChart_Errors(t *testing.T) {
	_, err := Compute(Request{ChartType: ChartP})
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("no lots: error = %v, want ErrInsufficientData", err)
	}

	_, err = Compute(Request{
		ChartType: ChartP,
		Lots:      []Lot{{Size: 100, Defectives: 5}},
		Rules:     []RuleID{RuleEightSameSide},
	})
	if !errors.Is(err, ErrInapplicableRule) {
		t.Errorf("zone rule: error = %v, want ErrInapplicableRule", err)
	}
}

func TestCUSUM_DetectsSmallSustainedShift(t *testing.T) {
	// Subgroups of two identical measurements make the subgroup means
	// reproduce the underlying level exactly: 40 on-target means followed
	// by 30 means shifted up half a sigma.
	sigma := 1.0
	target := 10.0
	result, err := Compute(Request{
		ChartType:    ChartCUSUM,
		Values:       repeat(10, 80, 10.5, 60),
		SubgroupSize: 2,
		Given:        &GivenLimits{Center: 10.25, Upper: 13, Lower: 7},
		Target:       &target,
		Sigma:        &sigma,
		K:            0.25,
		H:            4,
	})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	if result.CUSUM == nil {
		t.Fatal("CUSUM result missing")
	}
	if len(result.CUSUM.Points) != 70 {
		t.Fatalf("CUSUM points = %d, want 70", len(result.CUSUM.Points))
	}

	firstViolation := -1
	for _, p := range result.CUSUM.Points {
		if p.Violation {
			firstViolation = p.Index
			break
		}
	}
	// Each shifted mean adds (0.5 - 0.25)σ to the upper sum; crossing
	// h = 4 takes 17 shifted subgroups.
	if firstViolation != 56 {
		t.Errorf("first violation at index %d, want 56", firstViolation)
	}

	// The companion axes stay clean: no mean leaves the historical limits
	for _, axis := range result.Axes {
		if !axis.InControl {
			t.Errorf("companion axis %q out of control", axis.Name)
		}
	}
	if result.Summary.InControl {
		t.Error("CUSUM signal not reflected in summary")
	}
}

func TestCUSUM_NoShiftStaysInControl(t *testing.T) {
	sigma := 1.0
	target := 10.0
	result, err := Compute(Request{
		ChartType:    ChartCUSUM,
		Values:       repeat(10, 80),
		SubgroupSize: 2,
		Given:        &GivenLimits{Center: 10, Upper: 13, Lower: 7},
		Target:       &target,
		Sigma:        &sigma,
	})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	for _, p := range result.CUSUM.Points {
		if p.Violation || p.Upper != 0 || p.Lower != 0 {
			t.Errorf("on-target point %d accumulated: %+v", p.Index, p)
		}
	}
	if !result.Summary.InControl {
		t.Error("on-target process reported out of control")
	}
}

func TestCUSUM_RejectsZoneRules(t *testing.T) {
	_, err := Compute(Request{
		ChartType:    ChartCUSUM,
		Values:       repeat(10, 20),
		SubgroupSize: 2,
		Rules:        []RuleID{RuleTwoOfThreeZoneA},
	})
	if !errors.Is(err, ErrInapplicableRule) {
		t.Errorf("error = %v, want ErrInapplicableRule", err)
	}
}

func TestXbarR_RejectsCUSUMSignalRule(t *testing.T) {
	_, err := Compute(Request{
		ChartType:    ChartXbarR,
		Values:       repeat(10, 20),
		SubgroupSize: 2,
		Rules:        []RuleID{RuleCUSUMSignal},
	})
	if !errors.Is(err, ErrInapplicableRule) {
		t.Errorf("error = %v, want ErrInapplicableRule", err)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	req := Request{
		ChartType:    ChartXbarR,
		Values:       []float64{9.8, 10.2, 10.1, 9.9, 10.4, 9.6, 10.3, 9.7, 10.0, 10.0},
		SubgroupSize: 2,
	}
	first, err := Compute(req)
	if err != nil {
		t.Fatalf("first computation failed: %v", err)
	}
	second, err := Compute(req)
	if err != nil {
		t.Fatalf("second computation failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated computation of the same request differs")
	}
}

func TestCompute_DefaultSubgroupSize(t *testing.T) {
	result, err := Compute(Request{
		ChartType: ChartXbarR,
		Values:    repeat(10, 25),
	})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if result.Summary.SubgroupSize != DefaultSubgroupSize {
		t.Errorf("subgroup size = %d, want default %d", result.Summary.SubgroupSize, DefaultSubgroupSize)
	}
}
