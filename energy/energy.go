package energy

import (
	"math"
	"time"
)

// Age bounds outside which no BMR is estimated.
const (
	MinAge = 0
	MaxAge = 120
)

// Model carries the policy for genders that are neither male nor female.
// The zero value is usable and matches Default.
type Model struct {
	// OtherBMR is the Mifflin-St Jeor branch used for other/unknown
	// genders. Anything but Female means the male branch.
	OtherBMR Gender
	// OtherMacros is the macro split used for other/unknown genders.
	// Anything but Male means the female split.
	OtherMacros Gender
}

// Default uses the male BMR formula and the female macro split for
// other/unknown genders.
var Default = Model{OtherBMR: Male, OtherMacros: Female}

func (m Model) bmrBranch(g Gender) Gender {
	switch g := ParseGender(string(g)); g {
	case Male, Female:
		return g
	}
	if m.OtherBMR == Female {
		return Female
	}
	return Male
}

// MacroGender returns the gender whose macro split applies to g: g itself
// for male and female, the configured policy otherwise.
func (m Model) MacroGender(g Gender) Gender { return m.macroBranch(g) }

func (m Model) macroBranch(g Gender) Gender {
	switch g := ParseGender(string(g)); g {
	case Male, Female:
		return g
	}
	if m.OtherMacros == Male {
		return Male
	}
	return Female
}

/* ─── BMI ────────────────────────────────────────────────────────────── */

// Category is a display classification of a BMI value.
type Category string

const (
	Underweight Category = "underweight"
	Normal      Category = "normal"
	Overweight  Category = "overweight"
	Obese       Category = "obese"
)

// BMI returns weight / height² rounded to one decimal, with height given in
// feet. Returns 0 when either input is zero or negative.
func BMI(weightKg, heightFeet float64) float64 {
	if !(weightKg > 0) || !(heightFeet > 0) {
		return 0
	}
	heightM := heightFeet * mPerFoot
	return math.Round(weightKg/(heightM*heightM)*10) / 10
}

// CategoryOf classifies a BMI. The 0 sentinel has no category.
func CategoryOf(bmi float64) Category {
	switch {
	case !(bmi > 0):
		return ""
	case bmi < 18.5:
		return Underweight
	case bmi < 25:
		return Normal
	case bmi < 30:
		return Overweight
	default:
		return Obese
	}
}

/* ─── BMR → TDEE → goal target ───────────────────────────────────────── */

// BMR computes basal metabolic rate via Mifflin-St Jeor using the Default
// model. See Model.BMR.
func BMR(p Profile, now time.Time) (int, bool) { return Default.BMR(p, now) }

// BMR computes basal metabolic rate via Mifflin-St Jeor, rounded to the
// nearest kcal. ok is false when weight or height is not positive or the
// age derived from now falls outside [MinAge, MaxAge].
func (m Model) BMR(p Profile, now time.Time) (int, bool) {
	if !(p.WeightKg > 0) || !(p.HeightFeet > 0) {
		return 0, false
	}
	age := Age(p.DateOfBirth, now)
	if age < MinAge || age > MaxAge {
		return 0, false
	}

	bmr := 10*p.WeightKg + 6.25*HeightCM(p.HeightFeet) - 5*float64(age)
	if m.bmrBranch(p.Gender) == Female {
		bmr -= 161
	} else {
		bmr += 5
	}
	return int(math.Round(bmr)), true
}

// TDEE scales bmr by the activity multiplier and rounds.
func TDEE(bmr int, level ActivityLevel) int {
	return int(math.Round(float64(bmr) * level.Multiplier()))
}

// AdjustForGoal applies the goal's kcal offset to tdee. The result can be
// zero or negative for pathologically small inputs.
func AdjustForGoal(tdee int, goal Goal) int {
	return tdee + goal.Offset()
}

/* ─── Macro targets ──────────────────────────────────────────────────── */

// MacroTargets are daily gram goals derived from a calorie target.
type MacroTargets struct {
	ProteinG int  `json:"protein_g"`
	CarbsG   int  `json:"carbs_g"`
	FatG     int  `json:"fat_g"`
	FiberG   int  `json:"fiber_g"`
	SugarG   int  `json:"sugar_g"`
	Custom   bool `json:"is_custom"`
}

// split holds the calorie fractions for one branch. Fiber and sugar are
// grams per kcal, not calorie fractions.
type split struct {
	protein, carbs, fat, fiber, sugar float64
}

var splits = map[Gender]split{
	Male:   {protein: 0.27, carbs: 0.45, fat: 0.28, fiber: 0.012, sugar: 0.012},
	Female: {protein: 0.23, carbs: 0.47, fat: 0.30, fiber: 0.014, sugar: 0.010},
}

// Macros derives macro targets using the Default model. See Model.Macros.
func Macros(calories int, g Gender) (MacroTargets, bool) { return Default.Macros(calories, g) }

// Macros derives gram targets from a calorie target. Protein and carbs are
// 4 kcal/g and fat is 9 kcal/g. ok is false when calories is not positive.
func (m Model) Macros(calories int, g Gender) (MacroTargets, bool) {
	if calories <= 0 {
		return MacroTargets{}, false
	}
	s := splits[m.macroBranch(g)]
	kcal := float64(calories)
	return MacroTargets{
		ProteinG: roundInt(s.protein * kcal / 4),
		CarbsG:   roundInt(s.carbs * kcal / 4),
		FatG:     roundInt(s.fat * kcal / 9),
		FiberG:   roundInt(s.fiber * kcal),
		SugarG:   roundInt(s.sugar * kcal),
	}, true
}

// CustomMacros are user-chosen gram targets. Nil or non-positive fields
// keep the derived value.
type CustomMacros struct {
	ProteinG *int `json:"protein"`
	CarbsG   *int `json:"carbs"`
	FatG     *int `json:"fat"`
}

// WithCustom returns t with the provided custom grams applied. Fiber and
// sugar always stay derived from the calorie target.
func (t MacroTargets) WithCustom(c CustomMacros) MacroTargets {
	override := func(dst *int, v *int) {
		if v != nil && *v > 0 {
			*dst = *v
			t.Custom = true
		}
	}
	override(&t.ProteinG, c.ProteinG)
	override(&t.CarbsG, c.CarbsG)
	override(&t.FatG, c.FatG)
	return t
}

/* ─── Pipeline ───────────────────────────────────────────────────────── */

// Estimate is the full result for one profile. Pointer fields are nil when
// the stage (or one it depends on) is unavailable; Age is nil when the birth
// date gives an age outside [MinAge, MaxAge].
type Estimate struct {
	Age                   *int          `json:"age"`
	BMI                   float64       `json:"bmi"`
	BMICategory           Category      `json:"bmi_category"`
	BMR                   *int          `json:"bmr"`
	TDEE                  *int          `json:"tdee"`
	AdjustedCalorieTarget *int          `json:"adjusted_calorie_target"`
	MacroTargets          *MacroTargets `json:"macro_targets"`
}

// Available reports whether a usable calorie target and macro set exist.
func (e Estimate) Available() bool {
	return e.MacroTargets != nil
}

// Compute runs the pipeline with the Default model.
func Compute(p Profile, now time.Time) Estimate { return Default.Compute(p, now) }

// Compute runs BMI independently and BMR → TDEE → goal target → macros
// sequentially, stopping at the first unavailable stage.
func (m Model) Compute(p Profile, now time.Time) Estimate {
	bmi := BMI(p.WeightKg, p.HeightFeet)
	e := Estimate{
		BMI:         bmi,
		BMICategory: CategoryOf(bmi),
	}
	if age := Age(p.DateOfBirth, now); age >= MinAge && age <= MaxAge {
		e.Age = &age
	}

	bmr, ok := m.BMR(p, now)
	if !ok {
		return e
	}
	tdee := TDEE(bmr, p.ActivityLevel)
	target := AdjustForGoal(tdee, p.Goal)
	e.BMR, e.TDEE, e.AdjustedCalorieTarget = &bmr, &tdee, &target

	if macros, ok := m.Macros(target, p.Gender); ok {
		e.MacroTargets = &macros
	}
	return e
}

func roundInt(v float64) int { return int(math.Round(v)) }
