package models

import "github.com/spcgrid/spcgrid/internal/spc"

// LimitsSpec carries externally supplied control limits for the primary axis
type LimitsSpec struct {
	Center float64 `json:"center"`
	Upper  float64 `json:"upper"`
	Lower  float64 `json:"lower"`
}

// ChartRequest represents a chart computation request
type ChartRequest struct {
	// Variables charts (xbar_r, xbar_s, cusum)
	Values        []float64 `json:"values,omitempty"`
	Offsets       []float64 `json:"offsets,omitempty"`
	SubgroupSize  int       `json:"subgroup_size,omitempty"`
	PartialPolicy string    `json:"partial_policy,omitempty"` // drop (default), keep, error

	// P-attribute charts
	Lots []spc.Lot `json:"lots,omitempty"`

	// Rules overrides the chart type's default rule set
	Rules []string `json:"rules,omitempty"`

	// Limits supplies historical control limits instead of deriving them
	Limits *LimitsSpec `json:"limits,omitempty"`

	// CUSUM parameters
	Target *float64 `json:"target,omitempty"`
	K      float64  `json:"k,omitempty"`
	H      float64  `json:"h,omitempty"`
	Sigma  *float64 `json:"sigma,omitempty"`
}

// ToEngine converts the wire request into an engine request for the given
// chart type
func (r *ChartRequest) ToEngine(chartType spc.ChartType) spc.Request {
	req := spc.Request{
		ChartType:    chartType,
		Values:       r.Values,
		Offsets:      r.Offsets,
		SubgroupSize: r.SubgroupSize,
		Partial:      spc.PartialPolicy(r.PartialPolicy),
		Lots:         r.Lots,
		Target:       r.Target,
		K:            r.K,
		H:            r.H,
		Sigma:        r.Sigma,
	}

	if r.Rules != nil {
		req.Rules = make([]spc.RuleID, len(r.Rules))
		for i, id := range r.Rules {
			req.Rules[i] = spc.RuleID(id)
		}
	}

	if r.Limits != nil {
		req.Given = &spc.GivenLimits{
			Center: r.Limits.Center,
			Upper:  r.Limits.Upper,
			Lower:  r.Limits.Lower,
		}
	}

	return req
}
