package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"metafit/go-api/energy"
)

func TestValidateMealPlanParams(t *testing.T) {
	cases := []struct {
		name string
		req  mealPlanRequest
		want int // number of problems
	}{
		{"valid", mealPlanRequest{CalorieTarget: ptr(2000), Gender: "male"}, 0},
		{"valid bounds", mealPlanRequest{CalorieTarget: ptr(1000), Gender: " Female "}, 0},
		{"upper bound", mealPlanRequest{CalorieTarget: ptr(5000), Gender: "female"}, 0},
		{"missing target", mealPlanRequest{Gender: "male"}, 1},
		{"target too low", mealPlanRequest{CalorieTarget: ptr(999), Gender: "male"}, 1},
		{"target too high", mealPlanRequest{CalorieTarget: ptr(5001), Gender: "male"}, 1},
		{"other gender", mealPlanRequest{CalorieTarget: ptr(2000), Gender: "other"}, 1},
		{"everything wrong", mealPlanRequest{
			CalorieTarget: ptr(10),
			CustomMacros:  &energy.CustomMacros{ProteinG: ptr(10), CarbsG: ptr(601), FatG: ptr(19)},
		}, 5},
		{"custom in range", mealPlanRequest{
			CalorieTarget: ptr(2000), Gender: "male",
			CustomMacros: &energy.CustomMacros{ProteinG: ptr(30), CarbsG: ptr(600), FatG: ptr(300)},
		}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := validateMealPlanParams(tc.req); len(got) != tc.want {
				t.Errorf("got %d problems %v, want %d", len(got), got, tc.want)
			}
		})
	}
}

func postMealPlan(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := newAuthedRouter(&Handler{model: energy.Default})
	req := httptest.NewRequest(http.MethodPost, "/api/meal-plans/targets", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestResolveMealPlanTargets(t *testing.T) {
	w := postMealPlan(t, `{"calorie_target":2000,"gender":"Male"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got mealPlanTargets
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := energy.MacroTargets{ProteinG: 135, CarbsG: 225, FatG: 62, FiberG: 24, SugarG: 24}
	if got.CalorieTarget != 2000 || got.Gender != energy.Male || got.MacroTargets != want {
		t.Errorf("got %+v, want target 2000 male %+v", got, want)
	}
}

// TestResolveMealPlanTargets_Custom verifies custom grams replace the derived
// protein only, leaving the rest of the female split intact.
func TestResolveMealPlanTargets_Custom(t *testing.T) {
	w := postMealPlan(t, `{"calorie_target":2000,"gender":"female","custom_macros":{"protein":150}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got mealPlanTargets
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := energy.MacroTargets{ProteinG: 150, CarbsG: 235, FatG: 67, FiberG: 28, SugarG: 20, Custom: true}
	if got.MacroTargets != want {
		t.Errorf("macro_targets = %+v, want %+v", got.MacroTargets, want)
	}
}

func TestResolveMealPlanTargets_Invalid(t *testing.T) {
	w := postMealPlan(t, `{"calorie_target":200,"gender":"robot"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var got struct {
		Error  string   `json:"error"`
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Error != "invalid meal plan parameters" || len(got.Errors) != 2 {
		t.Errorf("got %+v", got)
	}

	if w := postMealPlan(t, `{"calorie_target":"lots"}`); w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: expected 400, got %d", w.Code)
	}
}
