package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"metafit/go-api/energy"
)

// dashboardResponse is GET /api/dashboard. Variance and Progress are nil
// when no calorie target can be estimated.
type dashboardResponse struct {
	Date      string                    `json:"date"`
	Profile   physicalInfo              `json:"profile"`
	Estimate  energy.Estimate           `json:"estimate"`
	Intake    energy.DailyIntake        `json:"intake"`
	Variance  *energy.Variance          `json:"variance"`
	Progress  []energy.NutrientProgress `json:"progress"`
	Breakdown []energy.DeficitOption    `json:"breakdown"`
}

// buildDashboard combines a profile (with its estimate populated) and the
// day's intake into the dashboard view.
func buildDashboard(date string, pi physicalInfo, in energy.DailyIntake) dashboardResponse {
	var est energy.Estimate
	if pi.Estimate != nil {
		est = *pi.Estimate
	}
	d := dashboardResponse{
		Date:      date,
		Profile:   pi,
		Estimate:  est,
		Intake:    in,
		Breakdown: []energy.DeficitOption{},
	}
	if est.TDEE != nil {
		d.Breakdown = energy.Breakdown(*est.TDEE)
	}
	if est.Available() {
		v := energy.CompareIntake(*est.AdjustedCalorieTarget, *est.MacroTargets, in)
		d.Variance = &v
		d.Progress = energy.Progress(*est.MacroTargets, in)
	}
	return d
}

// getDashboard returns the estimate, the day's intake and how they compare.
// GET /api/dashboard?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getDashboard(c *gin.Context) {
	userID := c.GetInt("user_id")
	now := h.clock()
	day, err := parseDay(c.Query("date"), now)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	pi, err := h.loadPhysicalInfo(c, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		pi = physicalInfo{UserID: userID}
	} else if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load physical info")
		return
	}
	h.populateEstimate(&pi, now)

	from, to := dayBounds(day)
	in, err := h.intakeBetween(c, userID, from, to)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to compute intake")
		return
	}

	c.JSON(http.StatusOK, buildDashboard(from.Format("2006-01-02"), pi, in))
}
