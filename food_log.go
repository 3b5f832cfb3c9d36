package main

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"metafit/go-api/energy"
)

// mealTypes lists the canonical meal categories in display order.
var mealTypes = []string{"Breakfast", "Lunch", "Dinner", "Snack"}

// normalizeMealType maps any casing of a meal type (and "snacks") to its
// canonical form. Reject unknown values with 400 rather than letting the DB
// return a cryptic 500.
func normalizeMealType(s string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "snacks" {
		v = "snack"
	}
	for _, m := range mealTypes {
		if strings.ToLower(m) == v {
			return m, true
		}
	}
	return "", false
}

// foodLogColumns selects a food_logs row (aliased l) joined with its food
// (aliased f). Nutrients are scaled to the logged quantity.
const foodLogColumns = `
	l.id, l.user_id, l.food_id, l.quantity, l.unit, l.meal_type, l.logged_at,
	f.food_name, f.brand_name,
	f.calories  * l.quantity / f.quantity AS calories,
	f.protein_g * l.quantity / f.quantity AS protein_g,
	f.carbs_g   * l.quantity / f.quantity AS carbs_g,
	f.fat_g     * l.quantity / f.quantity AS fat_g,
	f.sugar_g   * l.quantity / f.quantity AS sugar_g,
	f.fiber_g   * l.quantity / f.quantity AS fiber_g`

// intakeSums aggregates the scaled nutrients of joined food_logs rows.
const intakeSums = `
	COALESCE(SUM(f.calories  * l.quantity / f.quantity), 0) AS total_calories,
	COALESCE(SUM(f.protein_g * l.quantity / f.quantity), 0) AS total_protein_g,
	COALESCE(SUM(f.carbs_g   * l.quantity / f.quantity), 0) AS total_carbs_g,
	COALESCE(SUM(f.fat_g     * l.quantity / f.quantity), 0) AS total_fat_g,
	COALESCE(SUM(f.fiber_g   * l.quantity / f.quantity), 0) AS total_fiber_g,
	COALESCE(SUM(f.sugar_g   * l.quantity / f.quantity), 0) AS total_sugar_g`

// insertFoodLogSQL logs a catalogue food. The INSERT ... SELECT yields no row
// when the food does not exist; an empty unit falls back to the food's unit.
const insertFoodLogSQL = `
	WITH l AS (
		INSERT INTO food_logs (user_id, food_id, quantity, unit, meal_type, logged_at)
		SELECT @userID, f.id, @quantity, COALESCE(NULLIF(@unit, ''), f.unit), @mealType, @loggedAt
		FROM foods f WHERE f.id = @foodID
		RETURNING *
	)
	SELECT ` + foodLogColumns + `
	FROM l JOIN foods f ON f.id = l.food_id`

// dayBounds returns [midnight, next midnight) in UTC for day.
func dayBounds(day time.Time) (time.Time, time.Time) {
	y, m, d := day.UTC().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// intakeBetween sums the user's logged nutrients in [from, to).
func (h *Handler) intakeBetween(c *gin.Context, userID int, from, to time.Time) (energy.DailyIntake, error) {
	var in energy.DailyIntake
	err := h.db.QueryRow(c,
		`SELECT `+intakeSums+`
		 FROM food_logs l JOIN foods f ON f.id = l.food_id
		 WHERE l.user_id = @userID AND l.logged_at >= @from AND l.logged_at < @to`,
		pgx.NamedArgs{"userID": userID, "from": from, "to": to}).
		Scan(&in.TotalCalories, &in.TotalProteinG, &in.TotalCarbsG, &in.TotalFatG, &in.TotalFiberG, &in.TotalSugarG)
	return in, err
}

/* ─── Reads ──────────────────────────────────────────────────────────── */

// getFoodLogs returns the user's food log entries, newest first, optionally
// bounded by start and end dates.
// GET /api/food-logs?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handler) getFoodLogs(c *gin.Context) {
	args := pgx.NamedArgs{"userID": c.GetInt("user_id")}
	where, err := loggedAtRange(c.Query("start"), c.Query("end"), args)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := queryMany[foodLogEntry](h.db, c,
		"SELECT "+foodLogColumns+" FROM food_logs l JOIN foods f ON f.id = l.food_id WHERE "+
			where+" ORDER BY l.logged_at DESC, l.id DESC", args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch food logs")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// getFoodLogsByMealType returns one meal's entries for a day.
// GET /api/food-logs/meal-type?meal_type=Lunch&date=YYYY-MM-DD (date defaults to today).
func (h *Handler) getFoodLogsByMealType(c *gin.Context) {
	mealType, ok := normalizeMealType(c.Query("meal_type"))
	if !ok {
		apiError(c, http.StatusBadRequest, "meal_type must be one of: "+strings.Join(mealTypes, ", "))
		return
	}
	day, err := parseDay(c.Query("date"), h.clock())
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	from, to := dayBounds(day)

	entries, err := queryMany[foodLogEntry](h.db, c,
		`SELECT `+foodLogColumns+`
		 FROM food_logs l JOIN foods f ON f.id = l.food_id
		 WHERE l.user_id = @userID AND l.meal_type = @mealType
		   AND l.logged_at >= @from AND l.logged_at < @to
		 ORDER BY l.logged_at ASC, l.id ASC`,
		pgx.NamedArgs{"userID": c.GetInt("user_id"), "mealType": mealType, "from": from, "to": to})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch food logs")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// getDailySummary returns the nutrient totals for one day. Days without
// logs return zeros.
// GET /api/food-logs/summary?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getDailySummary(c *gin.Context) {
	day, err := parseDay(c.Query("date"), h.clock())
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	from, to := dayBounds(day)

	in, err := h.intakeBetween(c, c.GetInt("user_id"), from, to)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	c.JSON(http.StatusOK, dailySummary{Date: from.Format("2006-01-02"), Intake: in})
}

// buildWeekSummary lays out 7 days from weekStart, merging per-day totals
// and filling zeros for days with no data. calorieTarget may be nil when
// no estimate is available.
func buildWeekSummary(weekStart time.Time, rows []weekDayDBRow, calorieTarget *int) []weekDaySummary {
	calorieTarget = usableTarget(calorieTarget)
	rowByDate := make(map[string]weekDayDBRow, len(rows))
	for _, r := range rows {
		rowByDate[r.Date.Time.Format("2006-01-02")] = r
	}

	result := make([]weekDaySummary, 7)
	for i := 0; i < 7; i++ {
		d := weekStart.AddDate(0, 0, i)
		day := weekDaySummary{Date: DateOnly{d}, CalorieTarget: calorieTarget}
		if row, ok := rowByDate[d.Format("2006-01-02")]; ok {
			day.HasData = true
			day.Intake = energy.DailyIntake{
				TotalCalories: row.TotalCalories,
				TotalProteinG: row.TotalProteinG,
				TotalCarbsG:   row.TotalCarbsG,
				TotalFatG:     row.TotalFatG,
				TotalFiberG:   row.TotalFiberG,
				TotalSugarG:   row.TotalSugarG,
			}
		}
		if calorieTarget != nil {
			left := *calorieTarget - int(math.Round(day.Intake.TotalCalories))
			day.CaloriesLeft = &left
		}
		result[i] = day
	}
	return result
}

// getWeekSummary returns per-day totals for the Mon–Sun week containing
// week_start, with the day's calorie target from the user's estimate.
// GET /api/food-logs/week-summary?week_start=YYYY-MM-DD (defaults to current week).
func (h *Handler) getWeekSummary(c *gin.Context) {
	userID := c.GetInt("user_id")
	now := h.clock()

	weekStart := mondayOf(now)
	if s := c.Query("week_start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid week_start, expected YYYY-MM-DD")
			return
		}
		weekStart = mondayOf(t)
	}

	target, err := h.calorieTarget(c, userID, now)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load physical info")
		return
	}

	rows, err := queryMany[weekDayDBRow](h.db, c,
		`SELECT (l.logged_at AT TIME ZONE 'UTC')::date AS date, `+intakeSums+`
		 FROM food_logs l JOIN foods f ON f.id = l.food_id
		 WHERE l.user_id = @userID AND l.logged_at >= @from AND l.logged_at < @to
		 GROUP BY 1`,
		pgx.NamedArgs{"userID": userID, "from": weekStart, "to": weekStart.AddDate(0, 0, 7)})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch week data")
		return
	}

	c.JSON(http.StatusOK, buildWeekSummary(weekStart, rows, target))
}

/* ─── Writes ─────────────────────────────────────────────────────────── */

// createFoodLog logs one catalogue food.
// POST /api/food-logs. Body: { food_id, quantity, unit?, meal_type, logged_at? }.
func (h *Handler) createFoodLog(c *gin.Context) {
	var body createFoodLogRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.FoodID <= 0 || body.Quantity <= 0 {
		apiError(c, http.StatusBadRequest, "food_id and a positive quantity are required")
		return
	}
	mealType, ok := normalizeMealType(body.MealType)
	if !ok {
		apiError(c, http.StatusBadRequest, "meal_type must be one of: "+strings.Join(mealTypes, ", "))
		return
	}
	loggedAt := h.clock()
	if body.LoggedAt != nil {
		loggedAt = *body.LoggedAt
	}

	entry, err := queryOne[foodLogEntry](h.db, c, insertFoodLogSQL, pgx.NamedArgs{
		"userID":   c.GetInt("user_id"),
		"foodID":   body.FoodID,
		"quantity": body.Quantity,
		"unit":     strings.TrimSpace(body.Unit),
		"mealType": mealType,
		"loggedAt": loggedAt,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		apiError(c, http.StatusNotFound, "food not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create food log")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// errFoodNotFound is returned by insertFoodLogs when a food_id is unknown.
var errFoodNotFound = errors.New("food not found")

// insertFoodLogs logs every item in one transaction. Any unknown food rolls
// back the whole batch.
func (h *Handler) insertFoodLogs(c *gin.Context, userID int, mealType string, loggedAt time.Time, items []foodQuantity) ([]foodLogEntry, error) {
	tx, err := h.db.Begin(c)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(c)

	entries := make([]foodLogEntry, 0, len(items))
	for _, item := range items {
		rows, err := tx.Query(c, insertFoodLogSQL, pgx.NamedArgs{
			"userID":   userID,
			"foodID":   item.FoodID,
			"quantity": item.Quantity,
			"unit":     "",
			"mealType": mealType,
			"loggedAt": loggedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("insert food %d: %w", item.FoodID, err)
		}
		entry, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[foodLogEntry])
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("food %d: %w", item.FoodID, errFoodNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("insert food %d: %w", item.FoodID, err)
		}
		entries = append(entries, entry)
	}

	if err := tx.Commit(c); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return entries, nil
}

// validateFoodQuantities checks a non-empty list of positive quantities.
func validateFoodQuantities(items []foodQuantity) error {
	if len(items) == 0 {
		return errors.New("foods must not be empty")
	}
	for i, item := range items {
		if item.FoodID <= 0 || item.Quantity <= 0 {
			return fmt.Errorf("foods[%d] needs a food_id and a positive quantity", i)
		}
	}
	return nil
}

// createFoodLogsBulk logs several foods under one meal.
// POST /api/food-logs/bulk. Body: { meal_type, logged_at?, foods: [{food_id, quantity}] }.
func (h *Handler) createFoodLogsBulk(c *gin.Context) {
	var body bulkFoodLogRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	mealType, ok := normalizeMealType(body.MealType)
	if !ok {
		apiError(c, http.StatusBadRequest, "meal_type must be one of: "+strings.Join(mealTypes, ", "))
		return
	}
	if err := validateFoodQuantities(body.Foods); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	loggedAt := h.clock()
	if body.LoggedAt != nil {
		loggedAt = *body.LoggedAt
	}

	entries, err := h.insertFoodLogs(c, c.GetInt("user_id"), mealType, loggedAt, body.Foods)
	if errors.Is(err, errFoodNotFound) {
		apiError(c, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create food logs")
		return
	}
	c.JSON(http.StatusCreated, entries)
}

// updateFoodLog partially updates an entry.
// PUT /api/food-logs/:id. Body: { quantity?, unit?, meal_type?, logged_at? }.
// Uses COALESCE so omitted fields keep their current values.
func (h *Handler) updateFoodLog(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var body struct {
		Quantity *float64   `json:"quantity"`
		Unit     *string    `json:"unit"`
		MealType *string    `json:"meal_type"`
		LoggedAt *time.Time `json:"logged_at"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Quantity != nil && *body.Quantity <= 0 {
		apiError(c, http.StatusBadRequest, "quantity must be greater than 0")
		return
	}
	var mealType *string
	if body.MealType != nil {
		m, ok := normalizeMealType(*body.MealType)
		if !ok {
			apiError(c, http.StatusBadRequest, "meal_type must be one of: "+strings.Join(mealTypes, ", "))
			return
		}
		mealType = &m
	}

	entry, err := queryOne[foodLogEntry](h.db, c,
		`WITH l AS (
			UPDATE food_logs SET
				quantity  = COALESCE(@quantity, quantity),
				unit      = COALESCE(@unit, unit),
				meal_type = COALESCE(@mealType, meal_type),
				logged_at = COALESCE(@loggedAt, logged_at)
			WHERE id = @id AND user_id = @userID
			RETURNING *
		)
		SELECT `+foodLogColumns+` FROM l JOIN foods f ON f.id = l.food_id`,
		pgx.NamedArgs{
			"id":       id,
			"userID":   c.GetInt("user_id"),
			"quantity": body.Quantity,
			"unit":     body.Unit,
			"mealType": mealType,
			"loggedAt": body.LoggedAt,
		})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "food log not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update food log")
		}
		return
	}
	c.JSON(http.StatusOK, entry)
}

// deleteFoodLog removes an entry by ID.
// DELETE /api/food-logs/:id. Returns 204 on success, 404 if not found.
func (h *Handler) deleteFoodLog(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.db.Exec(c,
		"DELETE FROM food_logs WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": c.GetInt("user_id")})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete food log")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "food log not found")
		return
	}
	c.Status(http.StatusNoContent)
}
