package main

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"metafit/go-api/energy"
)

// progressStats aggregates the tracked days of a progress range. Averages
// are over tracked days only; on-target counts need a calorie target.
type progressStats struct {
	DaysTracked       int     `json:"days_tracked"`
	DaysOnTarget      *int    `json:"days_on_target"`
	AvgCalories       float64 `json:"avg_calories"`
	AvgProteinG       float64 `json:"avg_protein_g"`
	AvgCarbsG         float64 `json:"avg_carbs_g"`
	AvgFatG           float64 `json:"avg_fat_g"`
	TotalCaloriesLeft *int    `json:"total_calories_left"`

	Totals energy.DailyIntake `json:"totals"`
}

type progressResponse struct {
	Days  []weekDaySummary `json:"days"`
	Stats progressStats    `json:"stats"`
}

// calorieTarget returns the user's current adjusted calorie target, or nil
// when the profile is missing or too incomplete to estimate.
func (h *Handler) calorieTarget(c *gin.Context, userID int, now time.Time) (*int, error) {
	pi, err := h.loadPhysicalInfo(c, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	h.populateEstimate(&pi, now)
	return pi.Estimate.AdjustedCalorieTarget, nil
}

// usableTarget drops a non-positive calorie target; days cannot be measured
// against it.
func usableTarget(t *int) *int {
	if t == nil || *t <= 0 {
		return nil
	}
	return t
}

// buildProgress turns per-day rows into summaries and stats. Only days with
// logs appear; gap-filling is left to the client.
func buildProgress(rows []weekDayDBRow, calorieTarget *int) progressResponse {
	calorieTarget = usableTarget(calorieTarget)
	days := make([]weekDaySummary, 0, len(rows))
	var stats progressStats
	var onTarget, totalLeft int
	for _, row := range rows {
		day := weekDaySummary{
			Date:          row.Date,
			CalorieTarget: calorieTarget,
			HasData:       true,
			Intake: energy.DailyIntake{
				TotalCalories: row.TotalCalories,
				TotalProteinG: row.TotalProteinG,
				TotalCarbsG:   row.TotalCarbsG,
				TotalFatG:     row.TotalFatG,
				TotalFiberG:   row.TotalFiberG,
				TotalSugarG:   row.TotalSugarG,
			},
		}
		if calorieTarget != nil {
			left := *calorieTarget - int(math.Round(row.TotalCalories))
			day.CaloriesLeft = &left
			totalLeft += left
			if left >= 0 {
				onTarget++
			}
		}
		days = append(days, day)

		stats.DaysTracked++
		stats.Totals = stats.Totals.Add(day.Intake)
	}

	if n := float64(stats.DaysTracked); n > 0 {
		stats.AvgCalories = math.Round(stats.Totals.TotalCalories / n)
		stats.AvgProteinG = math.Round(stats.Totals.TotalProteinG/n*10) / 10
		stats.AvgCarbsG = math.Round(stats.Totals.TotalCarbsG/n*10) / 10
		stats.AvgFatG = math.Round(stats.Totals.TotalFatG/n*10) / 10
	}
	if calorieTarget != nil {
		stats.DaysOnTarget, stats.TotalCaloriesLeft = &onTarget, &totalLeft
	}
	return progressResponse{Days: days, Stats: stats}
}

// getProgress returns per-day totals and aggregate stats for a date range.
// GET /api/food-logs/progress?start=YYYY-MM-DD&end=YYYY-MM-DD. Both required.
func (h *Handler) getProgress(c *gin.Context) {
	userID := c.GetInt("user_id")
	start, end := c.Query("start"), c.Query("end")
	if start == "" || end == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return
	}
	args := pgx.NamedArgs{"userID": userID}
	where, err := loggedAtRange(start, end, args)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	target, err := h.calorieTarget(c, userID, h.clock())
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load physical info")
		return
	}

	// loggedAtRange names columns unqualified; food_logs is the only table
	// here with user_id and logged_at.
	rows, err := queryMany[weekDayDBRow](h.db, c,
		`SELECT (logged_at AT TIME ZONE 'UTC')::date AS date, `+intakeSums+`
		 FROM food_logs l JOIN foods f ON f.id = l.food_id
		 WHERE `+where+`
		 GROUP BY 1
		 ORDER BY 1`, args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch progress data")
		return
	}

	c.JSON(http.StatusOK, buildProgress(rows, target))
}

// getEarliestLogDate returns the first day the user logged any food.
// GET /api/food-logs/earliest-date. Returns { "date": "YYYY-MM-DD" } or
// { "date": null } if nothing was ever logged.
func (h *Handler) getEarliestLogDate(c *gin.Context) {
	var date *string
	err := h.db.QueryRow(c,
		`SELECT TO_CHAR(MIN(logged_at) AT TIME ZONE 'UTC', 'YYYY-MM-DD')
		 FROM food_logs WHERE user_id = @userID`,
		pgx.NamedArgs{"userID": c.GetInt("user_id")}).Scan(&date)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch earliest date")
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date})
}
