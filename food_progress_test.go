package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func progressRows() []weekDayDBRow {
	day := func(d int) DateOnly { return DateOnly{time.Date(2026, 6, d, 0, 0, 0, 0, time.UTC)} }
	return []weekDayDBRow{
		{Date: day(15), TotalCalories: 1800, TotalProteinG: 120, TotalCarbsG: 200, TotalFatG: 60},
		{Date: day(17), TotalCalories: 2300.4, TotalProteinG: 100, TotalCarbsG: 250, TotalFatG: 81},
	}
}

func TestBuildProgress(t *testing.T) {
	target := 2054
	got := buildProgress(progressRows(), &target)

	if len(got.Days) != 2 || !got.Days[0].HasData {
		t.Fatalf("days = %+v", got.Days)
	}
	if *got.Days[0].CaloriesLeft != 254 || *got.Days[1].CaloriesLeft != -246 {
		t.Errorf("left = %d, %d", *got.Days[0].CaloriesLeft, *got.Days[1].CaloriesLeft)
	}
	s := got.Stats
	if s.DaysTracked != 2 || *s.DaysOnTarget != 1 || *s.TotalCaloriesLeft != 8 {
		t.Errorf("stats = %+v", s)
	}
	if s.AvgCalories != 2050 || s.AvgProteinG != 110 || s.AvgFatG != 70.5 {
		t.Errorf("averages = %v / %v / %v", s.AvgCalories, s.AvgProteinG, s.AvgFatG)
	}
	if s.Totals.TotalCalories != 4100.4 || s.Totals.TotalCarbsG != 450 {
		t.Errorf("totals = %+v", s.Totals)
	}
}

func TestBuildProgress_NoTarget(t *testing.T) {
	got := buildProgress(progressRows(), nil)
	if got.Stats.DaysOnTarget != nil || got.Stats.TotalCaloriesLeft != nil {
		t.Errorf("expected nil target stats, got %+v", got.Stats)
	}
	if got.Days[0].CaloriesLeft != nil {
		t.Errorf("expected nil calories_left")
	}
}

// A target that came out non-positive leaves days unmeasured, the same as
// having no target at all.
func TestBuildProgress_NonPositiveTarget(t *testing.T) {
	for _, target := range []int{0, -236} {
		got := buildProgress(progressRows(), &target)
		if got.Stats.DaysOnTarget != nil || got.Stats.TotalCaloriesLeft != nil {
			t.Errorf("target %d: expected nil target stats, got %+v", target, got.Stats)
		}
		for i, d := range got.Days {
			if d.CaloriesLeft != nil || d.CalorieTarget != nil {
				t.Errorf("target %d: day %d = %+v", target, i, d)
			}
		}
		if got.Stats.AvgCalories != 2050 {
			t.Errorf("target %d: avg = %v", target, got.Stats.AvgCalories)
		}
	}
}

func TestBuildProgress_Empty(t *testing.T) {
	got := buildProgress(nil, nil)
	if got.Days == nil || len(got.Days) != 0 || got.Stats.DaysTracked != 0 || got.Stats.AvgCalories != 0 {
		t.Errorf("got %+v", got)
	}
}

func TestGetProgress_BadRange(t *testing.T) {
	router := newAuthedRouter(&Handler{})
	for _, q := range []string{
		"",
		"?start=2026-06-01",
		"?start=2026-06-10&end=2026-06-01",
		"?start=june&end=2026-06-01",
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/food-logs/progress"+q, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%q: expected 400, got %d", q, w.Code)
		}
	}
}
