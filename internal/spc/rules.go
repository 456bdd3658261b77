package spc

import "fmt"

// RuleID identifies a Western Electric (or extended Nelson) rule
type RuleID string

const (
	// Classic Western Electric set, enabled by default for X̄ charts
	RuleBeyondLimits    RuleID = "beyond_limits"       // single point beyond 3σ
	RuleTwoOfThreeZoneA RuleID = "two_of_three_zone_a" // 2 of 3 in zone A or beyond, same side
	RuleFourOfFiveZoneB RuleID = "four_of_five_zone_b" // 4 of 5 in zone B or beyond, same side
	RuleEightSameSide   RuleID = "eight_same_side"     // 8 consecutive on one side of center

	// Extended rules, disabled unless requested
	RuleTrendOfSix          RuleID = "trend_of_six"          // 6 steadily increasing or decreasing
	RuleFourteenAlternating RuleID = "fourteen_alternating"  // 14 alternating up and down
	RuleFifteenZoneC        RuleID = "fifteen_zone_c"        // 15 consecutive within 1σ of center
	RuleEightBeyondZoneC    RuleID = "eight_beyond_zone_c"   // 8 consecutive beyond 1σ of center

	// CUSUM decision-interval analog of rule 1
	RuleCUSUMSignal RuleID = "cusum_signal"
)

// Rule evaluates one pattern over the ordered plotted points of a chart
// axis. Each rule is an independent single left-to-right pass holding only a
// bounded trailing window; ZoneBased rules are undefined for chart types
// without zones (CUSUM, P-attribute) and must not be applied to them.
type Rule interface {
	// ID returns the rule identifier
	ID() RuleID

	// ZoneBased reports whether the rule depends on zone classification
	// or run-of-center semantics that only X̄ charts define
	ZoneBased() bool

	// Evaluate returns the indices of violating points
	Evaluate(points []PlottedPoint) []int
}

// Registry holds the available rules
var ruleRegistry = make(map[RuleID]Rule)

// RegisterRule adds a rule to the registry
func RegisterRule(rule Rule) {
	ruleRegistry[rule.ID()] = rule
}

// GetRule returns a rule by identifier
func GetRule(id RuleID) (Rule, error) {
	if rule, ok := ruleRegistry[id]; ok {
		return rule, nil
	}
	return nil, NewError(CodeInvalidRequest, fmt.Sprintf("unknown rule: %s", id)).
		WithDetail("rule", string(id))
}

// ListRules returns the identifiers of all registered rules
func ListRules() []RuleID {
	ids := make([]RuleID, 0, len(ruleRegistry))
	for id := range ruleRegistry {
		ids = append(ids, id)
	}
	return ids
}

// DefaultXbarRules is the default enabled set for X̄ chart axes: the four
// classic Western Electric rules. Extended rules must be requested
// explicitly since not all practitioners apply them.
func DefaultXbarRules() []RuleID {
	return []RuleID{RuleBeyondLimits, RuleTwoOfThreeZoneA, RuleFourOfFiveZoneB, RuleEightSameSide}
}

func init() {
	RegisterRule(beyondLimitsRule{})
	RegisterRule(windowRule{id: RuleTwoOfThreeZoneA, window: 3, needed: 2, minBand: 2})
	RegisterRule(windowRule{id: RuleFourOfFiveZoneB, window: 5, needed: 4, minBand: 1})
	RegisterRule(sameSideRunRule{})
	RegisterRule(trendRule{})
	RegisterRule(alternatingRule{})
	RegisterRule(bandRunRule{id: RuleFifteenZoneC, length: 15, maxBand: 0})
	RegisterRule(bandRunRule{id: RuleEightBeyondZoneC, length: 8, minBand: 1})
	RegisterRule(cusumSignalRule{})
}

// beyondLimitsRule flags any point strictly beyond the upper or lower
// control limit (rule 1). The only rule defined for every chart type.
type beyondLimitsRule struct{}

func (beyondLimitsRule) ID() RuleID      { return RuleBeyondLimits }
func (beyondLimitsRule) ZoneBased() bool { return false }

func (beyondLimitsRule) Evaluate(points []PlottedPoint) []int {
	var violations []int
	for i, p := range points {
		if p.Zone.band() == 3 {
			violations = append(violations, i)
		}
	}
	return violations
}

// windowRule implements the fixed-window rules (2 of 3 in zone A, 4 of 5 in
// zone B). For every window of `window` consecutive points, if at least
// `needed` of them sit in band >= minBand on the same side of center, the
// most recent point of the window is flagged.
type windowRule struct {
	id      RuleID
	window  int
	needed  int
	minBand int
}

func (r windowRule) ID() RuleID      { return r.id }
func (r windowRule) ZoneBased() bool { return true }

func (r windowRule) Evaluate(points []PlottedPoint) []int {
	var violations []int
	for end := r.window - 1; end < len(points); end++ {
		above, below := 0, 0
		for i := end - r.window + 1; i <= end; i++ {
			if points[i].Zone.band() < r.minBand {
				continue
			}
			switch points[i].Zone.side() {
			case 1:
				above++
			case -1:
				below++
			}
		}
		if above >= r.needed || below >= r.needed {
			violations = append(violations, end)
		}
	}
	return violations
}

// sameSideRunRule implements rule 4: eight consecutive points on the same
// side of center. The 8th point of a run is flagged and every subsequent
// point stays flagged while the run persists; a point on the opposite side
// (or exactly on center) resets the run.
type sameSideRunRule struct{}

func (sameSideRunRule) ID() RuleID      { return RuleEightSameSide }
func (sameSideRunRule) ZoneBased() bool { return true }

func (sameSideRunRule) Evaluate(points []PlottedPoint) []int {
	var violations []int
	runSide, runLen := 0, 0
	for i, p := range points {
		side := p.Zone.side()
		if side != 0 && side == runSide {
			runLen++
		} else {
			runSide = side
			runLen = 1
			if side == 0 {
				runLen = 0
			}
		}
		if runLen >= 8 {
			violations = append(violations, i)
		}
	}
	return violations
}

// trendRule flags runs of six or more steadily increasing or decreasing
// points. Equal consecutive values break the trend.
type trendRule struct{}

func (trendRule) ID() RuleID      { return RuleTrendOfSix }
func (trendRule) ZoneBased() bool { return true }

func (trendRule) Evaluate(points []PlottedPoint) []int {
	var violations []int
	dir, runLen := 0, 1
	for i := 1; i < len(points); i++ {
		d := 0
		if points[i].Value > points[i-1].Value {
			d = 1
		} else if points[i].Value < points[i-1].Value {
			d = -1
		}
		if d != 0 && d == dir {
			runLen++
		} else {
			dir = d
			runLen = 2
			if d == 0 {
				runLen = 1
			}
		}
		if runLen >= 6 {
			violations = append(violations, i)
		}
	}
	return violations
}

// alternatingRule flags runs of fourteen or more points alternating up and
// down. Equal consecutive values break the alternation.
type alternatingRule struct{}

func (alternatingRule) ID() RuleID      { return RuleFourteenAlternating }
func (alternatingRule) ZoneBased() bool { return true }

func (alternatingRule) Evaluate(points []PlottedPoint) []int {
	var violations []int
	prevDir, runLen := 0, 1
	for i := 1; i < len(points); i++ {
		d := 0
		if points[i].Value > points[i-1].Value {
			d = 1
		} else if points[i].Value < points[i-1].Value {
			d = -1
		}
		if d != 0 && d == -prevDir {
			runLen++
		} else if d != 0 {
			runLen = 2
		} else {
			runLen = 1
		}
		prevDir = d
		if runLen >= 14 {
			violations = append(violations, i)
		}
	}
	return violations
}

// bandRunRule implements the zone-C run rules: a run of `length` consecutive
// points whose band stays within maxBand (rule "15 in zone C") or at or
// beyond minBand on either side (rule "8 beyond zone C"). The point
// completing the run is flagged and flagging continues while it persists.
type bandRunRule struct {
	id      RuleID
	length  int
	minBand int
	maxBand int
}

func (r bandRunRule) ID() RuleID      { return r.id }
func (r bandRunRule) ZoneBased() bool { return true }

func (r bandRunRule) matches(p PlottedPoint) bool {
	band := p.Zone.band()
	if r.minBand > 0 {
		// beyond-zone-C style: the point must be off center as well
		return band >= r.minBand && p.Zone.side() != 0
	}
	return band <= r.maxBand
}

func (r bandRunRule) Evaluate(points []PlottedPoint) []int {
	var violations []int
	runLen := 0
	for i, p := range points {
		if r.matches(p) {
			runLen++
		} else {
			runLen = 0
		}
		if runLen >= r.length {
			violations = append(violations, i)
		}
	}
	return violations
}

// cusumSignalRule is the decision-interval signal of the CUSUM scan. It is
// registered so rule discovery covers every identifier the engine can emit;
// the running sums it checks live in the CUSUM result rather than the
// plotted points, so the point evaluator rejects it as inapplicable.
type cusumSignalRule struct{}

func (cusumSignalRule) ID() RuleID                           { return RuleCUSUMSignal }
func (cusumSignalRule) ZoneBased() bool                      { return false }
func (cusumSignalRule) Evaluate(points []PlottedPoint) []int { return nil }

// Evaluator runs a configured rule set over one chart axis, writing
// violations into a result arena parallel to the point sequence. It is
// read-only over the points' values and zones.
type Evaluator struct {
	rules []Rule
}

// NewEvaluator builds an evaluator for the given rule identifiers.
// zoned reports whether the target axis defines zones; requesting a
// zone-based rule for a zoneless axis fails rather than silently skipping.
func NewEvaluator(ids []RuleID, zoned bool) (*Evaluator, error) {
	rules := make([]Rule, 0, len(ids))
	for _, id := range ids {
		rule, err := GetRule(id)
		if err != nil {
			return nil, err
		}
		if id == RuleCUSUMSignal {
			return nil, NewError(CodeInapplicableRule,
				"rule cusum_signal is evaluated by the CUSUM scan, not over plotted points").
				WithDetail("rule", string(id))
		}
		if rule.ZoneBased() && !zoned {
			return nil, NewError(CodeInapplicableRule,
				fmt.Sprintf("rule %s is not defined for chart types without zone classification", id)).
				WithDetail("rule", string(id))
		}
		rules = append(rules, rule)
	}
	return &Evaluator{rules: rules}, nil
}

// Evaluate attaches rule violations to the plotted points. Each rule scans
// independently; a point may accumulate several rule identifiers. Points are
// written exactly once per rule.
func (e *Evaluator) Evaluate(points []PlottedPoint) {
	arena := make([][]RuleID, len(points))
	for _, rule := range e.rules {
		for _, i := range rule.Evaluate(points) {
			arena[i] = append(arena[i], rule.ID())
		}
	}
	for i := range points {
		points[i].Violations = arena[i]
	}
}
