// Package energy estimates body-mass index, basal metabolic rate, daily
// energy expenditure and macro-nutrient targets from a physical profile.
//
// Every function is pure: the caller supplies the profile and the evaluation
// time, and unavailable results are reported through ok flags or nil
// pointers rather than errors.
package energy

import (
	"strings"
	"time"
)

// Gender selects the BMR constant and the macro split.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
	Other  Gender = "other"
)

// ActivityLevel selects the TDEE multiplier.
type ActivityLevel string

const (
	Sedentary        ActivityLevel = "sedentary"
	LightlyActive    ActivityLevel = "lightly_active"
	ModeratelyActive ActivityLevel = "moderately_active"
	VeryActive       ActivityLevel = "very_active"
	ExtremelyActive  ActivityLevel = "extremely_active"
)

// Goal selects the caloric offset applied to TDEE.
type Goal string

const (
	WeightLoss     Goal = "weight_loss"
	WeightGain     Goal = "weight_gain"
	MaintainWeight Goal = "maintain_weight"
	MuscleGain     Goal = "muscle_gain"
)

// activityMultipliers is the single source of truth for valid activity
// levels; the API validates input against it too.
var activityMultipliers = map[ActivityLevel]float64{
	Sedentary:        1.2,
	LightlyActive:    1.375,
	ModeratelyActive: 1.55,
	VeryActive:       1.725,
	ExtremelyActive:  1.9,
}

// goalOffsets maps each goal to the kcal added to TDEE.
var goalOffsets = map[Goal]int{
	WeightLoss:     -500,
	WeightGain:     400,
	MuscleGain:     300,
	MaintainWeight: 0,
}

var activityLabels = map[ActivityLevel]string{
	Sedentary:        "Sedentary",
	LightlyActive:    "Lightly Active",
	ModeratelyActive: "Moderately Active",
	VeryActive:       "Very Active",
	ExtremelyActive:  "Extremely Active",
}

var goalLabels = map[Goal]string{
	WeightLoss:     "Weight Loss",
	WeightGain:     "Weight Gain",
	MaintainWeight: "Maintain Weight",
	MuscleGain:     "Muscle Gain",
}

// ActivityLevels lists the known levels from least to most active.
var ActivityLevels = []ActivityLevel{Sedentary, LightlyActive, ModeratelyActive, VeryActive, ExtremelyActive}

// Goals lists the known goals.
var Goals = []Goal{WeightLoss, WeightGain, MaintainWeight, MuscleGain}

// normalize lowercases s and folds spaces and hyphens into underscores so
// "Lightly Active", "lightly-active" and "lightly_active" compare equal.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return s
}

// ParseGender maps a label to a Gender. Anything unrecognised is Other.
func ParseGender(s string) Gender {
	switch normalize(s) {
	case "male", "man", "m":
		return Male
	case "female", "woman", "f":
		return Female
	default:
		return Other
	}
}

// ParseActivityLevel maps a label such as "Moderately Active" to an
// ActivityLevel. ok is false for unknown labels; the returned level is then
// empty and its Multiplier falls back to moderately active.
func ParseActivityLevel(s string) (ActivityLevel, bool) {
	a := ActivityLevel(normalize(s))
	if _, found := activityMultipliers[a]; !found {
		return "", false
	}
	return a, true
}

// ParseGoal maps a label such as "Weight Loss" to a Goal. ok is false for
// unknown labels; the returned goal is then empty and applies no offset.
func ParseGoal(s string) (Goal, bool) {
	g := Goal(normalize(s))
	if _, found := goalOffsets[g]; !found {
		return "", false
	}
	return g, true
}

// Multiplier returns the TDEE multiplier, 1.55 for unknown levels. Labels
// such as "Very Active" match case-insensitively.
func (a ActivityLevel) Multiplier() float64 {
	if m, found := activityMultipliers[ActivityLevel(normalize(string(a)))]; found {
		return m
	}
	return activityMultipliers[ModeratelyActive]
}

// Label returns the display label, e.g. "Very Active".
func (a ActivityLevel) Label() string { return activityLabels[ActivityLevel(normalize(string(a)))] }

// Offset returns the kcal adjustment for the goal, 0 for unknown goals.
// Labels such as "Weight Loss" match case-insensitively.
func (g Goal) Offset() int { return goalOffsets[Goal(normalize(string(g)))] }

// Label returns the display label, e.g. "Weight Loss".
func (g Goal) Label() string { return goalLabels[Goal(normalize(string(g)))] }

// Profile is a read-only snapshot of the body and lifestyle attributes used
// for estimation. Height is stored in feet.
type Profile struct {
	WeightKg      float64
	HeightFeet    float64
	DateOfBirth   time.Time
	Gender        Gender
	ActivityLevel ActivityLevel
	Goal          Goal

	// TargetWeightKg is carried for progress display only; no formula reads it.
	TargetWeightKg *float64
}

// Age returns now.Year() - dob.Year(). Month and day are deliberately
// ignored so every caller agrees on the same integer.
func Age(dob, now time.Time) int {
	return now.Year() - dob.Year()
}

const (
	cmPerFoot = 30.48
	mPerFoot  = 0.3048
)

// HeightCM converts feet to centimeters.
func HeightCM(feet float64) float64 { return feet * cmPerFoot }

// HeightFeet converts centimeters to feet.
func HeightFeet(cm float64) float64 { return cm / cmPerFoot }
