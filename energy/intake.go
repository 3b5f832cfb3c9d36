package energy

import "math"

// DailyIntake is the aggregated nutrient total for one user-day. Zero
// values mean nothing was logged.
type DailyIntake struct {
	TotalCalories float64 `json:"total_calories"`
	TotalProteinG float64 `json:"total_protein_g"`
	TotalCarbsG   float64 `json:"total_carbs_g"`
	TotalFatG     float64 `json:"total_fat_g"`
	TotalFiberG   float64 `json:"total_fiber_g"`
	TotalSugarG   float64 `json:"total_sugar_g"`
}

// Add returns the element-wise sum of two intakes.
func (d DailyIntake) Add(o DailyIntake) DailyIntake {
	return DailyIntake{
		TotalCalories: d.TotalCalories + o.TotalCalories,
		TotalProteinG: d.TotalProteinG + o.TotalProteinG,
		TotalCarbsG:   d.TotalCarbsG + o.TotalCarbsG,
		TotalFatG:     d.TotalFatG + o.TotalFatG,
		TotalFiberG:   d.TotalFiberG + o.TotalFiberG,
		TotalSugarG:   d.TotalSugarG + o.TotalSugarG,
	}
}

// Variance is the signed percentage gap between intake and target.
// Positive means over target.
type Variance struct {
	CaloriesPct   float64 `json:"calories_variance"`
	ProteinPct    float64 `json:"protein_variance"`
	CarbsPct      float64 `json:"carbs_variance"`
	FatPct        float64 `json:"fat_variance"`
	FiberAchieved float64 `json:"fiber_achieved"`
	SugarConsumed float64 `json:"sugar_consumed"`
}

// CompareIntake computes the variance of in against a calorie target and
// its macro targets, rounded to two decimals. A zero target yields 0.
func CompareIntake(calorieTarget int, t MacroTargets, in DailyIntake) Variance {
	return Variance{
		CaloriesPct:   variancePct(float64(calorieTarget), in.TotalCalories),
		ProteinPct:    variancePct(float64(t.ProteinG), in.TotalProteinG),
		CarbsPct:      variancePct(float64(t.CarbsG), in.TotalCarbsG),
		FatPct:        variancePct(float64(t.FatG), in.TotalFatG),
		FiberAchieved: in.TotalFiberG,
		SugarConsumed: in.TotalSugarG,
	}
}

func variancePct(target, actual float64) float64 {
	if target == 0 {
		return 0
	}
	return math.Round((actual-target)/target*100*100) / 100
}

// NutrientProgress is one bar on the dashboard macro card.
type NutrientProgress struct {
	Name    string  `json:"name"`
	Current float64 `json:"current"`
	Target  int     `json:"target"`
	Percent int     `json:"percent"`
}

// Progress lists per-nutrient completion against targets in a fixed order:
// protein, carbs, fat, fiber, sugar.
func Progress(t MacroTargets, in DailyIntake) []NutrientProgress {
	rows := []NutrientProgress{
		{Name: "Protein", Current: in.TotalProteinG, Target: t.ProteinG},
		{Name: "Carbs", Current: in.TotalCarbsG, Target: t.CarbsG},
		{Name: "Fat", Current: in.TotalFatG, Target: t.FatG},
		{Name: "Fiber", Current: in.TotalFiberG, Target: t.FiberG},
		{Name: "Sugar", Current: in.TotalSugarG, Target: t.SugarG},
	}
	for i := range rows {
		if rows[i].Target > 0 {
			rows[i].Percent = roundInt(rows[i].Current / float64(rows[i].Target) * 100)
		}
	}
	return rows
}

// DeficitOption is one row of the maintenance/deficit breakdown card.
type DeficitOption struct {
	Label       string `json:"label"`
	Calories    int    `json:"calories"`
	Description string `json:"description"`
}

// Breakdown returns maintenance, mild (85%) and moderate (75%) calorie
// levels for tdee. Empty when tdee is not positive.
func Breakdown(tdee int) []DeficitOption {
	if tdee <= 0 {
		return []DeficitOption{}
	}
	return []DeficitOption{
		{Label: "Maintenance", Calories: tdee, Description: "No deficit"},
		{Label: "Mild Deficit", Calories: roundInt(float64(tdee) * 0.85), Description: "~500 cal/week loss"},
		{Label: "Moderate Deficit", Calories: roundInt(float64(tdee) * 0.75), Description: "~1000 cal/week loss"},
	}
}
