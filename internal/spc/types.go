package spc

import "math"

// ChartType identifies the control chart strategy
type ChartType string

const (
	ChartXbarR ChartType = "xbar_r"
	ChartXbarS ChartType = "xbar_s"
	ChartCUSUM ChartType = "cusum"
	ChartP     ChartType = "p"
)

// ValidChartTypes returns all supported chart types
func ValidChartTypes() []ChartType {
	return []ChartType{ChartXbarR, ChartXbarS, ChartCUSUM, ChartP}
}

// IsValidChartType checks if a chart type string is supported
func IsValidChartType(ct string) bool {
	for _, t := range ValidChartTypes() {
		if string(t) == ct {
			return true
		}
	}
	return false
}

// Measurement is a single numeric observation with an optional time offset
// (seconds since series start, normalized by the ingestion layer).
// Immutable once ingested.
type Measurement struct {
	Value     float64
	Offset    float64
	HasOffset bool
}

// Subgroup is an ordered, non-empty batch of measurements treated as one
// sampling unit. For P-attribute charts a subgroup is an inspection lot
// described by LotSize and Defectives instead of raw measurements.
// Subgroups are created once during grouping and never mutated.
type Subgroup struct {
	Index        int
	Measurements []Measurement

	// Attribute lot fields (P charts only)
	LotSize    int
	Defectives int
}

// Size returns the number of measurements (or the lot size for P charts)
func (s *Subgroup) Size() int {
	if len(s.Measurements) > 0 {
		return len(s.Measurements)
	}
	return s.LotSize
}

// Mean returns the subgroup mean
func (s *Subgroup) Mean() float64 {
	if len(s.Measurements) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range s.Measurements {
		sum += m.Value
	}
	return sum / float64(len(s.Measurements))
}

// Range returns max - min of the subgroup values
func (s *Subgroup) Range() float64 {
	if len(s.Measurements) == 0 {
		return 0
	}
	lo, hi := s.Measurements[0].Value, s.Measurements[0].Value
	for _, m := range s.Measurements[1:] {
		if m.Value < lo {
			lo = m.Value
		}
		if m.Value > hi {
			hi = m.Value
		}
	}
	return hi - lo
}

// StdDev returns the sample standard deviation (n-1 divisor) of the subgroup.
// Returns 0 for fewer than two measurements.
func (s *Subgroup) StdDev() float64 {
	n := len(s.Measurements)
	if n < 2 {
		return 0
	}
	mean := s.Mean()
	sumSq := 0.0
	for _, m := range s.Measurements {
		diff := m.Value - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// Proportion returns the proportion defective for an attribute lot
func (s *Subgroup) Proportion() float64 {
	if s.LotSize == 0 {
		return 0
	}
	return float64(s.Defectives) / float64(s.LotSize)
}

// ControlLimits holds the center line and the 3-sigma control limits for one
// chart axis. The 1σ and 2σ zone boundaries are derived proportionally from
// the limits, so a clamped lower limit keeps the zones below center
// compressed accordingly.
//
// Invariant: Lower <= Center <= Upper.
type ControlLimits struct {
	Center float64 `json:"center"`
	Upper  float64 `json:"upper"`
	Lower  float64 `json:"lower"`
}

// UpperZone returns the boundary k sigma units above center (k = 1..3)
func (cl ControlLimits) UpperZone(k int) float64 {
	return cl.Center + (cl.Upper-cl.Center)*float64(k)/3.0
}

// LowerZone returns the boundary k sigma units below center (k = 1..3)
func (cl ControlLimits) LowerZone(k int) float64 {
	return cl.Center + (cl.Lower-cl.Center)*float64(k)/3.0
}

// Validate checks the limit ordering invariant
func (cl ControlLimits) Validate() error {
	if cl.Lower > cl.Center || cl.Center > cl.Upper {
		return NewError(CodeInvalidRequest, "control limits must satisfy lower <= center <= upper").
			WithDetail("center", cl.Center).
			WithDetail("upper", cl.Upper).
			WithDetail("lower", cl.Lower)
	}
	return nil
}

// floorLower clamps the lower limit at zero for statistics that cannot be
// negative (ranges, standard deviations, proportions)
func (cl ControlLimits) floorLower() ControlLimits {
	if cl.Lower < 0 {
		cl.Lower = 0
	}
	return cl
}

// Zone classifies a plotted point relative to its control limits. The region
// between center and a control limit is divided into three bands per side:
// C (0-1σ), B (1-2σ) and A (2-3σ).
type Zone string

const (
	ZoneBeyondUpper Zone = "beyond_upper"
	ZoneAAbove      Zone = "a_above"
	ZoneBAbove      Zone = "b_above"
	ZoneCAbove      Zone = "c_above"
	ZoneCenter      Zone = "center"
	ZoneCBelow      Zone = "c_below"
	ZoneBBelow      Zone = "b_below"
	ZoneABelow      Zone = "a_below"
	ZoneBeyondLower Zone = "beyond_lower"
)

// Classify assigns a value to its zone. A value lying exactly on a zone
// boundary belongs to the inner zone, so crossing a control limit requires a
// strictly greater (or smaller) value.
func (cl ControlLimits) Classify(v float64) Zone {
	switch {
	case v > cl.Upper:
		return ZoneBeyondUpper
	case v > cl.UpperZone(2):
		return ZoneAAbove
	case v > cl.UpperZone(1):
		return ZoneBAbove
	case v > cl.Center:
		return ZoneCAbove
	case v == cl.Center:
		return ZoneCenter
	case v < cl.Lower:
		return ZoneBeyondLower
	case v < cl.LowerZone(2):
		return ZoneABelow
	case v < cl.LowerZone(1):
		return ZoneBBelow
	default:
		return ZoneCBelow
	}
}

// side returns +1 above center, -1 below, 0 exactly on center
func (z Zone) side() int {
	switch z {
	case ZoneBeyondUpper, ZoneAAbove, ZoneBAbove, ZoneCAbove:
		return 1
	case ZoneBeyondLower, ZoneABelow, ZoneBBelow, ZoneCBelow:
		return -1
	default:
		return 0
	}
}

// band returns the distance band from center: 0 = zone C (or center),
// 1 = zone B, 2 = zone A, 3 = beyond the control limit
func (z Zone) band() int {
	switch z {
	case ZoneBeyondUpper, ZoneBeyondLower:
		return 3
	case ZoneAAbove, ZoneABelow:
		return 2
	case ZoneBAbove, ZoneBBelow:
		return 1
	default:
		return 0
	}
}

// PlottedPoint is one charted statistic with its zone classification and the
// rules it violates. Violations are attached exactly once, by the evaluator.
type PlottedPoint struct {
	Index      int      `json:"index"`
	Value      float64  `json:"value"`
	Zone       Zone     `json:"zone,omitempty"`
	Violations []RuleID `json:"violations,omitempty"`

	// Limits is set only for charts with per-point limits
	// (P-attribute with varying lot sizes)
	Limits *ControlLimits `json:"limits,omitempty"`
}
