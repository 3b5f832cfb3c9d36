package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"metafit/go-api/energy"
)

// mealPlanRequest is the body for POST /api/meal-plans/targets.
type mealPlanRequest struct {
	CalorieTarget *int                 `json:"calorie_target"`
	Gender        string               `json:"gender"`
	CustomMacros  *energy.CustomMacros `json:"custom_macros"`
}

// mealPlanTargets is the resolved request: the macro set a generated plan
// must hit.
type mealPlanTargets struct {
	CalorieTarget int                 `json:"calorie_target"`
	Gender        energy.Gender       `json:"gender"`
	MacroTargets  energy.MacroTargets `json:"macro_targets"`
}

const (
	minPlanCalories = 1000
	maxPlanCalories = 5000
)

// customMacroBounds are inclusive gram ranges for user-chosen macros.
var customMacroBounds = []struct {
	name     string
	min, max int
	get      func(energy.CustomMacros) *int
}{
	{"protein", 30, 500, func(m energy.CustomMacros) *int { return m.ProteinG }},
	{"carbs", 50, 600, func(m energy.CustomMacros) *int { return m.CarbsG }},
	{"fat", 20, 300, func(m energy.CustomMacros) *int { return m.FatG }},
}

// validateMealPlanParams collects every problem with the request rather
// than stopping at the first.
func validateMealPlanParams(req mealPlanRequest) []string {
	var problems []string
	switch {
	case req.CalorieTarget == nil:
		problems = append(problems, "calorie_target is required")
	case *req.CalorieTarget < minPlanCalories || *req.CalorieTarget > maxPlanCalories:
		problems = append(problems, fmt.Sprintf("calorie_target must be between %d and %d", minPlanCalories, maxPlanCalories))
	}
	switch strings.ToLower(strings.TrimSpace(req.Gender)) {
	case "male", "female":
	default:
		problems = append(problems, "gender must be 'male' or 'female'")
	}
	if req.CustomMacros != nil {
		for _, b := range customMacroBounds {
			if v := b.get(*req.CustomMacros); v != nil && (*v < b.min || *v > b.max) {
				problems = append(problems, fmt.Sprintf("custom %s must be between %d and %d g", b.name, b.min, b.max))
			}
		}
	}
	return problems
}

// resolveMealPlanTargets validates a meal-plan request and returns the macro
// targets it implies, with any custom grams applied.
// POST /api/meal-plans/targets
func (h *Handler) resolveMealPlanTargets(c *gin.Context) {
	var req mealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if problems := validateMealPlanParams(req); len(problems) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal plan parameters", "errors": problems})
		return
	}

	g := energy.ParseGender(req.Gender)
	targets, _ := h.model.Macros(*req.CalorieTarget, g)
	if req.CustomMacros != nil {
		targets = targets.WithCustom(*req.CustomMacros)
	}
	c.JSON(http.StatusOK, mealPlanTargets{CalorieTarget: *req.CalorieTarget, Gender: g, MacroTargets: targets})
}

// getSuggestedTarget returns the values to pre-fill the meal-plan form: the
// caller's adjusted calorie target (null when unavailable) and the gender
// whose macro split applies to them.
// GET /api/meal-plans/suggested-target
func (h *Handler) getSuggestedTarget(c *gin.Context) {
	userID := c.GetInt("user_id")
	pi, err := h.loadPhysicalInfo(c, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		pi = physicalInfo{UserID: userID}
	} else if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load physical info")
		return
	}
	h.populateEstimate(&pi, h.clock())

	var g energy.Gender
	if pi.Gender != nil {
		g = energy.ParseGender(*pi.Gender)
	}
	c.JSON(http.StatusOK, gin.H{
		"calorie_target": pi.Estimate.AdjustedCalorieTarget,
		"gender":         h.model.MacroGender(g),
	})
}
