package main

import (
	"time"

	"metafit/go-api/energy"
)

// energyProfile converts a stored physical profile into the estimation
// input. Missing fields become zero values, which the energy package treats
// as insufficient data (no DOB gives an out-of-range age, no weight or
// height gives a non-positive input).
func energyProfile(pi *physicalInfo) energy.Profile {
	var p energy.Profile
	if pi.CurrentWeightKg != nil {
		p.WeightKg = *pi.CurrentWeightKg
	}
	if pi.HeightFt != nil {
		p.HeightFeet = *pi.HeightFt
	}
	if pi.DateOfBirth != nil {
		p.DateOfBirth = pi.DateOfBirth.Time
	}
	if pi.Gender != nil {
		p.Gender = energy.ParseGender(*pi.Gender)
	}
	if pi.ActivityLevel != nil {
		p.ActivityLevel, _ = energy.ParseActivityLevel(*pi.ActivityLevel)
	}
	if pi.Goal != nil {
		p.Goal, _ = energy.ParseGoal(*pi.Goal)
	}
	p.TargetWeightKg = pi.TargetWeightKg
	return p
}

// populateEstimate fills the computed-only Estimate field on pi.
func (h *Handler) populateEstimate(pi *physicalInfo, now time.Time) {
	e := h.model.Compute(energyProfile(pi), now)
	pi.Estimate = &e
}

// mondayOf returns the Monday of t's week at midnight UTC.
// Uses AddDate to safely handle month/year boundaries.
func mondayOf(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday()) // 0=Sun
	if weekday == 0 {
		weekday = 7 // treat Sunday as day 7 so Mon=1..Sun=7
	}
	d := t.AddDate(0, 0, -(weekday - 1))
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
