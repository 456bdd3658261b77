package spc

import "fmt"

// DefaultSubgroupSize is used when a request does not specify one
const DefaultSubgroupSize = 5

// Request describes one chart computation. The engine treats it as
// read-only; parallel computations over the same request share nothing
// mutable.
type Request struct {
	ChartType ChartType `json:"chart_type"`

	// Variables charts (X̄-R, X̄-S, CUSUM)
	Values       []float64     `json:"values,omitempty"`
	Offsets      []float64     `json:"offsets,omitempty"`
	SubgroupSize int           `json:"subgroup_size,omitempty"`
	Partial      PartialPolicy `json:"partial_policy,omitempty"`

	// P-attribute charts
	Lots []Lot `json:"lots,omitempty"`

	// Rules overrides the default enabled rule set for the primary axis.
	// Nil means chart-type defaults.
	Rules []RuleID `json:"rules,omitempty"`

	// Given supplies historical control limits for the primary axis
	Given *GivenLimits `json:"limits,omitempty"`

	// CUSUM parameters. Target nil means estimate from the series mean;
	// K and H are in sigma units, 0 means the defaults; Sigma overrides
	// the derived sigma of the plotted values.
	Target *float64 `json:"target,omitempty"`
	K      float64  `json:"k,omitempty"`
	H      float64  `json:"h,omitempty"`
	Sigma  *float64 `json:"sigma,omitempty"`
}

// Axis is one charted statistic series with its limits and flagged points
type Axis struct {
	Name      string         `json:"name"`
	Limits    ControlLimits  `json:"limits"`
	Points    []PlottedPoint `json:"points"`
	InControl bool           `json:"in_control"`
}

// Summary carries the grand statistics for display by the rendering layer
type Summary struct {
	Subgroups    int     `json:"subgroups"`
	SubgroupSize int     `json:"subgroup_size,omitempty"`
	GrandMean    float64 `json:"grand_mean,omitempty"`
	MeanRange    float64 `json:"mean_range,omitempty"`
	MeanStdDev   float64 `json:"mean_stddev,omitempty"`
	PBar         float64 `json:"p_bar,omitempty"`
	Sigma        float64 `json:"sigma_estimate,omitempty"`
	InControl    bool    `json:"in_control"`
}

// Result is the structured outcome of one chart computation
type Result struct {
	ChartType ChartType    `json:"chart_type"`
	Axes      []Axis       `json:"axes"`
	CUSUM     *CUSUMResult `json:"cusum,omitempty"`
	Summary   Summary      `json:"summary"`
}

// ChartStrategy selects the subgroup statistics, limit formulas and
// applicable rules for one chart type. The pipeline (group, derive limits,
// classify, evaluate) dispatches through this interface rather than
// branching on type throughout.
type ChartStrategy interface {
	// Type returns the chart type identifier
	Type() ChartType

	// Compute runs the full pipeline for one request
	Compute(req Request) (*Result, error)
}

var strategyRegistry = make(map[ChartType]ChartStrategy)

// RegisterStrategy adds a chart strategy to the registry
func RegisterStrategy(s ChartStrategy) {
	strategyRegistry[s.Type()] = s
}

// StrategyFor returns the strategy for a chart type
func StrategyFor(ct ChartType) (ChartStrategy, error) {
	if s, ok := strategyRegistry[ct]; ok {
		return s, nil
	}
	return nil, NewError(CodeInvalidRequest, fmt.Sprintf("unknown chart type: %s", ct)).
		WithDetail("chart_type", string(ct))
}

// Compute dispatches a request to its chart strategy
func Compute(req Request) (*Result, error) {
	strategy, err := StrategyFor(req.ChartType)
	if err != nil {
		return nil, err
	}
	return strategy.Compute(req)
}

// buildAxis classifies values against limits and runs the evaluator over the
// resulting points
func buildAxis(name string, values []float64, limits ControlLimits, eval *Evaluator) Axis {
	points := make([]PlottedPoint, len(values))
	for i, v := range values {
		points[i] = PlottedPoint{
			Index: i,
			Value: v,
			Zone:  limits.Classify(v),
		}
	}
	eval.Evaluate(points)
	return Axis{
		Name:      name,
		Limits:    limits,
		Points:    points,
		InControl: axisInControl(points),
	}
}

func axisInControl(points []PlottedPoint) bool {
	for i := range points {
		if len(points[i].Violations) > 0 {
			return false
		}
	}
	return true
}

func subgroupSize(req Request) int {
	if req.SubgroupSize > 0 {
		return req.SubgroupSize
	}
	return DefaultSubgroupSize
}

// subgroupMeans extracts the per-subgroup statistic series
func subgroupMeans(subgroups []Subgroup) []float64 {
	out := make([]float64, len(subgroups))
	for i := range subgroups {
		out[i] = subgroups[i].Mean()
	}
	return out
}

func subgroupRanges(subgroups []Subgroup) []float64 {
	out := make([]float64, len(subgroups))
	for i := range subgroups {
		out[i] = subgroups[i].Range()
	}
	return out
}

func subgroupStdDevs(subgroups []Subgroup) []float64 {
	out := make([]float64, len(subgroups))
	for i := range subgroups {
		out[i] = subgroups[i].StdDev()
	}
	return out
}
