package spc

import (
	"errors"
	"math"
	"testing"
)

func TestSubgroupStatistics(t *testing.T) {
	s := Subgroup{Measurements: []Measurement{{Value: 11}, {Value: 13}, {Value: 15}}}

	if got := s.Mean(); got != 13 {
		t.Errorf("Mean() = %v, want 13", got)
	}
	if got := s.Range(); got != 4 {
		t.Errorf("Range() = %v, want 4", got)
	}
	if got := s.StdDev(); got != 2 {
		t.Errorf("StdDev() = %v, want 2 (sample std)", got)
	}
}

func TestSubgroupStdDev_SingleMeasurement(t *testing.T) {
	s := Subgroup{Measurements: []Measurement{{Value: 5}}}
	if got := s.StdDev(); got != 0 {
		t.Errorf("StdDev() of single measurement = %v, want 0", got)
	}
}

func TestGroupMeasurements_FixedSize(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}
	groups, err := GroupMeasurements(values, nil, 2, PartialDrop)
	if err != nil {
		t.Fatalf("GroupMeasurements returned error: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 subgroups, got %d", len(groups))
	}
	for i, g := range groups {
		if g.Index != i {
			t.Errorf("subgroup %d has index %d", i, g.Index)
		}
		if g.Size() != 2 {
			t.Errorf("subgroup %d has size %d, want 2", i, g.Size())
		}
	}
	if got := groups[1].Mean(); got != 3.5 {
		t.Errorf("subgroup 1 mean = %v, want 3.5", got)
	}
}

func TestGroupMeasurements_PartialPolicies(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7}

	// Default (drop): trailing partial discarded
	groups, err := GroupMeasurements(values, nil, 3, "")
	if err != nil {
		t.Fatalf("drop policy returned error: %v", err)
	}
	if len(groups) != 2 {
		t.Errorf("drop policy: expected 2 subgroups, got %d", len(groups))
	}

	// Keep: trailing partial retained as-is
	groups, err = GroupMeasurements(values, nil, 3, PartialKeep)
	if err != nil {
		t.Fatalf("keep policy returned error: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("keep policy: expected 3 subgroups, got %d", len(groups))
	}
	if groups[2].Size() != 1 {
		t.Errorf("keep policy: trailing subgroup size = %d, want 1", groups[2].Size())
	}

	// Error: non-multiple lengths rejected
	_, err = GroupMeasurements(values, nil, 3, PartialError)
	if err == nil {
		t.Fatal("error policy: expected error for non-multiple length, got nil")
	}
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("error policy: error = %v, want ErrInvalidRequest", err)
	}
}

func TestGroupMeasurements_RejectsIndividuals(t *testing.T) {
	_, err := GroupMeasurements([]float64{1, 2, 3}, nil, 1, PartialDrop)
	if err == nil {
		t.Fatal("expected error for subgroup size 1, got nil")
	}
	if !errors.Is(err, ErrInvalidSubgroupSize) {
		t.Errorf("error = %v, want ErrInvalidSubgroupSize", err)
	}
}

func TestGroupMeasurements_TimeOffsets(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	offsets := []float64{0, 10, 20, 30}

	groups, err := GroupMeasurements(values, offsets, 2, PartialDrop)
	if err != nil {
		t.Fatalf("GroupMeasurements returned error: %v", err)
	}
	m := groups[1].Measurements[0]
	if !m.HasOffset || m.Offset != 20 {
		t.Errorf("measurement offset = (%v, %v), want (20, true)", m.Offset, m.HasOffset)
	}
}

func TestGroupMeasurements_UnorderedTimeAxis(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	offsets := []float64{0, 10, 5, 30}

	_, err := GroupMeasurements(values, offsets, 2, PartialDrop)
	if err == nil {
		t.Fatal("expected error for unordered time axis, got nil")
	}
	if !errors.Is(err, ErrUnorderedTimeAxis) {
		t.Errorf("error = %v, want ErrUnorderedTimeAxis", err)
	}
	var spcErr *Error
	if !errors.As(err, &spcErr) {
		t.Fatal("error is not an *Error")
	}
	if spcErr.Details["index"] != 2 {
		t.Errorf("offending index = %v, want 2", spcErr.Details["index"])
	}
}

func TestGroupMeasurements_EqualOffsetsAllowed(t *testing.T) {
	// Non-decreasing, not strictly increasing: ties are fine
	offsets := []float64{0, 10, 10, 30}
	if err := ValidateTimeAxis(offsets); err != nil {
		t.Errorf("ValidateTimeAxis allowed ties, got error: %v", err)
	}
}

func TestGroupMeasurements_LengthMismatch(t *testing.T) {
	_, err := GroupMeasurements([]float64{1, 2, 3, 4}, []float64{0, 1}, 2, PartialDrop)
	if err == nil {
		t.Fatal("expected error for offsets/values length mismatch, got nil")
	}
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
}

func TestGroupLots(t *testing.T) {
	lots, err := GroupLots([]Lot{{Size: 50, Defectives: 5}, {Size: 100, Defectives: 5}})
	if err != nil {
		t.Fatalf("GroupLots returned error: %v", err)
	}
	if len(lots) != 2 {
		t.Fatalf("expected 2 lots, got %d", len(lots))
	}
	if got := lots[0].Proportion(); got != 0.1 {
		t.Errorf("lot 0 proportion = %v, want 0.1", got)
	}
	if got := lots[1].Proportion(); math.Abs(got-0.05) > 1e-12 {
		t.Errorf("lot 1 proportion = %v, want 0.05", got)
	}
}

func TestGroupLots_Invalid(t *testing.T) {
	cases := []struct {
		name string
		lots []Lot
	}{
		{"zero size", []Lot{{Size: 0, Defectives: 0}}},
		{"negative defectives", []Lot{{Size: 10, Defectives: -1}}},
		{"defectives exceed size", []Lot{{Size: 10, Defectives: 11}}},
	}
	for _, tc := range cases {
		if _, err := GroupLots(tc.lots); err == nil {
			t.Errorf("%s: expected error, got nil", tc.name)
		}
	}
}
