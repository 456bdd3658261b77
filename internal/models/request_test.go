package models

import (
	"reflect"
	"testing"

	"github.com/spcgrid/spcgrid/internal/spc"
)

func TestChartRequest_ToEngine(t *testing.T) {
	target := 10.0
	req := &ChartRequest{
		Values:        []float64{1, 2, 3, 4},
		Offsets:       []float64{0, 1, 2, 3},
		SubgroupSize:  2,
		PartialPolicy: "keep",
		Rules:         []string{"beyond_limits", "trend_of_six"},
		Limits:        &LimitsSpec{Center: 10, Upper: 13, Lower: 7},
		Target:        &target,
		K:             0.25,
		H:             4,
	}

	engineReq := req.ToEngine(spc.ChartXbarR)

	if engineReq.ChartType != spc.ChartXbarR {
		t.Errorf("Expected chart type xbar_r, got %s", engineReq.ChartType)
	}
	if !reflect.DeepEqual(engineReq.Values, req.Values) {
		t.Errorf("Values not carried over: %v", engineReq.Values)
	}
	if engineReq.SubgroupSize != 2 {
		t.Errorf("Expected subgroup size 2, got %d", engineReq.SubgroupSize)
	}
	if engineReq.Partial != spc.PartialKeep {
		t.Errorf("Expected partial policy keep, got %s", engineReq.Partial)
	}
	if !reflect.DeepEqual(engineReq.Rules, []spc.RuleID{spc.RuleBeyondLimits, spc.RuleTrendOfSix}) {
		t.Errorf("Rules not converted: %v", engineReq.Rules)
	}
	if engineReq.Given == nil {
		t.Fatal("Expected given limits")
	}
	if engineReq.Given.Center != 10 || engineReq.Given.Upper != 13 || engineReq.Given.Lower != 7 {
		t.Errorf("Given limits not carried over: %+v", engineReq.Given)
	}
	if engineReq.Target == nil || *engineReq.Target != 10 {
		t.Error("Target not carried over")
	}
	if engineReq.K != 0.25 || engineReq.H != 4 {
		t.Errorf("CUSUM parameters not carried over: k=%v h=%v", engineReq.K, engineReq.H)
	}
}

func TestChartRequest_ToEngine_Defaults(t *testing.T) {
	req := &ChartRequest{Values: []float64{1, 2}}

	engineReq := req.ToEngine(spc.ChartXbarR)

	if engineReq.Rules != nil {
		t.Errorf("Expected nil rules to stay nil, got %v", engineReq.Rules)
	}
	if engineReq.Given != nil {
		t.Errorf("Expected nil given limits, got %+v", engineReq.Given)
	}
	if engineReq.Target != nil {
		t.Error("Expected nil target")
	}
}

func TestChartRequest_ToEngine_Lots(t *testing.T) {
	req := &ChartRequest{
		Lots: []spc.Lot{
			{Defectives: 5, Size: 100},
			{Defectives: 8, Size: 120},
		},
	}

	engineReq := req.ToEngine(spc.ChartP)

	if engineReq.ChartType != spc.ChartP {
		t.Errorf("Expected chart type p, got %s", engineReq.ChartType)
	}
	if len(engineReq.Lots) != 2 {
		t.Fatalf("Expected 2 lots, got %d", len(engineReq.Lots))
	}
	if engineReq.Lots[1].Defectives != 8 || engineReq.Lots[1].Size != 120 {
		t.Errorf("Lot not carried over: %+v", engineReq.Lots[1])
	}
}
