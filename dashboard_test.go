package main

import (
	"encoding/json"
	"testing"

	"metafit/go-api/energy"
)

func TestBuildDashboard(t *testing.T) {
	h := &Handler{model: energy.Default}
	pi := makePhysicalInfo()
	h.populateEstimate(pi, testNow) // target 2054, macros {139,231,64,25,25}

	in := energy.DailyIntake{TotalCalories: 1027, TotalProteinG: 139, TotalFiberG: 10}
	d := buildDashboard("2026-06-17", *pi, in)

	if d.Variance == nil {
		t.Fatal("expected variance")
	}
	if d.Variance.CaloriesPct != -50 || d.Variance.ProteinPct != 0 || d.Variance.FiberAchieved != 10 {
		t.Errorf("variance = %+v", *d.Variance)
	}
	if len(d.Progress) != 5 || d.Progress[0].Percent != 100 {
		t.Errorf("progress = %+v", d.Progress)
	}
	if len(d.Breakdown) != 3 || d.Breakdown[0].Calories != 2554 {
		t.Errorf("breakdown = %+v", d.Breakdown)
	}
	if d.Intake != in {
		t.Errorf("intake = %+v", d.Intake)
	}
}

// TestBuildDashboard_NoEstimate verifies intake is still reported when the
// profile is too incomplete for a target, with null variance and progress.
func TestBuildDashboard_NoEstimate(t *testing.T) {
	h := &Handler{}
	pi := makePhysicalInfo()
	pi.CurrentWeightKg = nil
	h.populateEstimate(pi, testNow)

	in := energy.DailyIntake{TotalCalories: 800}
	d := buildDashboard("2026-06-17", *pi, in)

	if d.Variance != nil || d.Progress != nil {
		t.Errorf("expected nil variance/progress, got %+v / %+v", d.Variance, d.Progress)
	}
	if len(d.Breakdown) != 0 || d.Breakdown == nil {
		t.Errorf("expected empty breakdown, got %#v", d.Breakdown)
	}

	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if got["variance"] != nil || got["progress"] != nil {
		t.Errorf("expected JSON nulls, got variance=%v progress=%v", got["variance"], got["progress"])
	}
	if intake := got["intake"].(map[string]any); intake["total_calories"] != 800.0 {
		t.Errorf("intake = %v", intake)
	}
}
