package spc

import "fmt"

// PartialPolicy governs the final incomplete subgroup when the series length
// is not a multiple of the subgroup size
type PartialPolicy string

const (
	// PartialDrop discards the trailing partial subgroup. This is the
	// default for all chart types.
	PartialDrop PartialPolicy = "drop"
	// PartialKeep keeps the trailing partial subgroup as-is
	PartialKeep PartialPolicy = "keep"
	// PartialError rejects series whose length is not a multiple of the
	// subgroup size
	PartialError PartialPolicy = "error"
)

// IsValidPartialPolicy checks if a policy string is supported
func IsValidPartialPolicy(p string) bool {
	switch PartialPolicy(p) {
	case PartialDrop, PartialKeep, PartialError:
		return true
	}
	return false
}

// ValidateTimeAxis verifies that time offsets are monotonically
// non-decreasing. The engine never resorts a series.
func ValidateTimeAxis(offsets []float64) error {
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return NewError(CodeUnorderedTimeAxis,
				fmt.Sprintf("time offset at index %d (%g) precedes offset at index %d (%g)", i, offsets[i], i-1, offsets[i-1])).
				WithDetail("index", i)
		}
	}
	return nil
}

// GroupMeasurements partitions an ordered measurement series into subgroups
// of the given size. offsets may be nil; when present it must parallel
// values and be monotonically non-decreasing.
//
// Subgroup sizes below 2 are rejected: ranges and standard deviations are
// undefined for individuals, and the engine never silently degrades to
// individuals-chart semantics.
func GroupMeasurements(values, offsets []float64, size int, policy PartialPolicy) ([]Subgroup, error) {
	if size < MinSubgroupSize {
		return nil, NewError(CodeInvalidSubgroupSize,
			fmt.Sprintf("subgroup size %d is below the minimum of %d", size, MinSubgroupSize)).
			WithDetail("subgroup_size", size)
	}
	if offsets != nil && len(offsets) != len(values) {
		return nil, NewError(CodeInvalidRequest,
			fmt.Sprintf("offsets length %d does not match values length %d", len(offsets), len(values)))
	}
	if err := ValidateTimeAxis(offsets); err != nil {
		return nil, err
	}
	if policy == "" {
		policy = PartialDrop
	}

	remainder := len(values) % size
	if remainder != 0 && policy == PartialError {
		return nil, NewError(CodeInvalidRequest,
			fmt.Sprintf("series length %d is not a multiple of subgroup size %d", len(values), size)).
			WithDetail("remainder", remainder)
	}

	var groups []Subgroup
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			if policy == PartialDrop {
				break
			}
			end = len(values)
		}
		members := make([]Measurement, 0, end-start)
		for i := start; i < end; i++ {
			m := Measurement{Value: values[i]}
			if offsets != nil {
				m.Offset = offsets[i]
				m.HasOffset = true
			}
			members = append(members, m)
		}
		groups = append(groups, Subgroup{
			Index:        len(groups),
			Measurements: members,
		})
	}

	return groups, nil
}

// Lot describes one inspection lot for a P-attribute chart. Lot sizes may
// vary between lots.
type Lot struct {
	Size       int `json:"size"`
	Defectives int `json:"defectives"`
}

// GroupLots converts inspection lots into attribute subgroups, validating
// each lot on the way.
func GroupLots(lots []Lot) ([]Subgroup, error) {
	groups := make([]Subgroup, 0, len(lots))
	for i, lot := range lots {
		if lot.Size < 1 {
			return nil, NewError(CodeInvalidRequest,
				fmt.Sprintf("lot %d has size %d; lots must contain at least one inspected unit", i, lot.Size)).
				WithDetail("index", i)
		}
		if lot.Defectives < 0 || lot.Defectives > lot.Size {
			return nil, NewError(CodeInvalidRequest,
				fmt.Sprintf("lot %d has %d defectives for size %d", i, lot.Defectives, lot.Size)).
				WithDetail("index", i)
		}
		groups = append(groups, Subgroup{
			Index:      i,
			LotSize:    lot.Size,
			Defectives: lot.Defectives,
		})
	}
	return groups, nil
}
