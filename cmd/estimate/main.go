// CLI tool to print the energy estimate for a profile without a database.
// Usage: go run ./cmd/estimate -weight-kg 70 -height-ft 5.74 -dob 1996-03-01 \
//
//	-gender male -activity "Moderately Active" -goal "Weight Loss"
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"metafit/go-api/energy"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "estimate: %v\n", err)
		os.Exit(2)
	}
}

// run parses args, computes the estimate and writes it to w as JSON.
func run(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("estimate", flag.ContinueOnError)
	weight := fs.Float64("weight-kg", 0, "current weight in kg")
	height := fs.Float64("height-ft", 0, "height in decimal feet")
	dob := fs.String("dob", "", "date of birth, YYYY-MM-DD")
	gender := fs.String("gender", "", "male, female or other")
	activity := fs.String("activity", "moderately active", "activity level label")
	goal := fs.String("goal", "maintain weight", "goal label")
	nowFlag := fs.String("now", "", "evaluation date, YYYY-MM-DD (defaults to today)")
	otherBMR := fs.String("other-bmr", "male", "BMR formula for other genders")
	otherMacros := fs.String("other-macros", "female", "macro split for other genders")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p := energy.Profile{
		WeightKg:   *weight,
		HeightFeet: *height,
		Gender:     energy.ParseGender(*gender),
	}
	if *dob != "" {
		t, err := time.Parse("2006-01-02", *dob)
		if err != nil {
			return fmt.Errorf("invalid -dob: %w", err)
		}
		p.DateOfBirth = t
	}
	var ok bool
	if p.ActivityLevel, ok = energy.ParseActivityLevel(*activity); !ok {
		return fmt.Errorf("unknown -activity %q", *activity)
	}
	if p.Goal, ok = energy.ParseGoal(*goal); !ok {
		return fmt.Errorf("unknown -goal %q", *goal)
	}

	now := time.Now()
	if *nowFlag != "" {
		t, err := time.Parse("2006-01-02", *nowFlag)
		if err != nil {
			return fmt.Errorf("invalid -now: %w", err)
		}
		now = t
	}

	m := energy.Model{OtherBMR: energy.ParseGender(*otherBMR), OtherMacros: energy.ParseGender(*otherMacros)}
	est := m.Compute(p, now)

	out := struct {
		energy.Estimate
		Breakdown []energy.DeficitOption `json:"breakdown,omitempty"`
	}{Estimate: est}
	if est.TDEE != nil {
		out.Breakdown = energy.Breakdown(*est.TDEE)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
