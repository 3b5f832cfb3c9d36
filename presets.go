package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// attachItems distributes preset_food_items rows onto their presets. Every
// preset ends up with a non-nil Foods slice.
func attachItems(presets []presetMeal, items []presetFoodItem) {
	byPreset := make(map[int][]presetFoodItem, len(presets))
	for _, it := range items {
		byPreset[it.PresetID] = append(byPreset[it.PresetID], it)
	}
	for i := range presets {
		presets[i].Foods = byPreset[presets[i].ID]
		if presets[i].Foods == nil {
			presets[i].Foods = []presetFoodItem{}
		}
	}
}

// loadPresetItems fetches the food items for the given presets.
func (h *Handler) loadPresetItems(c *gin.Context, presets []presetMeal) error {
	if len(presets) == 0 {
		return nil
	}
	ids := make([]int, len(presets))
	for i, p := range presets {
		ids[i] = p.ID
	}
	items, err := queryMany[presetFoodItem](h.db, c,
		"SELECT preset_id, food_id, quantity FROM preset_food_items WHERE preset_id = ANY(@ids) ORDER BY id",
		pgx.NamedArgs{"ids": ids})
	if err != nil {
		return err
	}
	attachItems(presets, items)
	return nil
}

// insertPresetItems adds items to a preset inside tx. Unknown foods return
// errFoodNotFound.
func insertPresetItems(c *gin.Context, tx pgx.Tx, presetID int, items []foodQuantity) error {
	for _, item := range items {
		tag, err := tx.Exec(c,
			`INSERT INTO preset_food_items (preset_id, food_id, quantity)
			 SELECT @presetID, id, @quantity FROM foods WHERE id = @foodID`,
			pgx.NamedArgs{"presetID": presetID, "foodID": item.FoodID, "quantity": item.Quantity})
		if err != nil {
			return fmt.Errorf("insert preset item: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("food %d: %w", item.FoodID, errFoodNotFound)
		}
	}
	return nil
}

// validatePreset checks a create request; on update, nil fields are allowed.
func validatePreset(body *presetRequest, creating bool) error {
	if body.PresetName != nil {
		name := strings.TrimSpace(*body.PresetName)
		if name == "" {
			return errors.New("preset_name must not be empty")
		}
		body.PresetName = &name
	} else if creating {
		return errors.New("preset_name is required")
	}
	if body.MealType != nil {
		m, ok := normalizeMealType(*body.MealType)
		if !ok {
			return errors.New("meal_type must be one of: " + strings.Join(mealTypes, ", "))
		}
		body.MealType = &m
	} else if creating {
		return errors.New("meal_type is required")
	}
	if body.Foods != nil || creating {
		return validateFoodQuantities(body.Foods)
	}
	return nil
}

// listPresets returns the user's preset meals with their foods.
// GET /api/presets
func (h *Handler) listPresets(c *gin.Context) {
	presets, err := queryMany[presetMeal](h.db, c,
		"SELECT * FROM preset_meals WHERE user_id = @userID ORDER BY preset_name, id",
		pgx.NamedArgs{"userID": c.GetInt("user_id")})
	if err == nil {
		err = h.loadPresetItems(c, presets)
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch presets")
		return
	}
	c.JSON(http.StatusOK, presets)
}

// findPreset loads one owned preset with its foods, writing the error
// response itself when it returns ok=false.
func (h *Handler) findPreset(c *gin.Context, id int) (presetMeal, bool) {
	p, err := queryOne[presetMeal](h.db, c,
		"SELECT * FROM preset_meals WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": c.GetInt("user_id")})
	if errors.Is(err, pgx.ErrNoRows) {
		apiError(c, http.StatusNotFound, "preset not found")
		return p, false
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch preset")
		return p, false
	}
	presets := []presetMeal{p}
	if err := h.loadPresetItems(c, presets); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch preset")
		return p, false
	}
	return presets[0], true
}

// getPreset returns one preset.
// GET /api/presets/:id
func (h *Handler) getPreset(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if p, ok := h.findPreset(c, id); ok {
		c.JSON(http.StatusOK, p)
	}
}

// createPreset saves a named group of foods for quick logging.
// POST /api/presets. Body: { preset_name, meal_type, foods: [{food_id, quantity}] }.
func (h *Handler) createPreset(c *gin.Context) {
	var body presetRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validatePreset(&body, true); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.db.Begin(c)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create preset")
		return
	}
	defer tx.Rollback(c)

	var id int
	err = tx.QueryRow(c,
		`INSERT INTO preset_meals (user_id, preset_name, meal_type)
		 VALUES (@userID, @name, @mealType) RETURNING id`,
		pgx.NamedArgs{"userID": c.GetInt("user_id"), "name": *body.PresetName, "mealType": *body.MealType}).Scan(&id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create preset")
		return
	}
	if err := insertPresetItems(c, tx, id, body.Foods); err != nil {
		if errors.Is(err, errFoodNotFound) {
			apiError(c, http.StatusNotFound, err.Error())
		} else {
			apiError(c, http.StatusInternalServerError, "failed to create preset")
		}
		return
	}
	if err := tx.Commit(c); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create preset")
		return
	}

	if p, ok := h.findPreset(c, id); ok {
		c.JSON(http.StatusCreated, p)
	}
}

// updatePreset renames or re-types a preset, and replaces its foods when a
// foods list is given.
// PUT /api/presets/:id
func (h *Handler) updatePreset(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body presetRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validatePreset(&body, false); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.db.Begin(c)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update preset")
		return
	}
	defer tx.Rollback(c)

	tag, err := tx.Exec(c,
		`UPDATE preset_meals SET
			preset_name = COALESCE(@name, preset_name),
			meal_type   = COALESCE(@mealType, meal_type)
		 WHERE id = @id AND user_id = @userID`,
		pgx.NamedArgs{"id": id, "userID": c.GetInt("user_id"), "name": body.PresetName, "mealType": body.MealType})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update preset")
		return
	}
	if tag.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "preset not found")
		return
	}

	if body.Foods != nil {
		if _, err := tx.Exec(c, "DELETE FROM preset_food_items WHERE preset_id = @id", pgx.NamedArgs{"id": id}); err != nil {
			apiError(c, http.StatusInternalServerError, "failed to update preset")
			return
		}
		if err := insertPresetItems(c, tx, id, body.Foods); err != nil {
			if errors.Is(err, errFoodNotFound) {
				apiError(c, http.StatusNotFound, err.Error())
			} else {
				apiError(c, http.StatusInternalServerError, "failed to update preset")
			}
			return
		}
	}
	if err := tx.Commit(c); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update preset")
		return
	}

	if p, ok := h.findPreset(c, id); ok {
		c.JSON(http.StatusOK, p)
	}
}

// deletePreset removes a preset; its items go with it (ON DELETE CASCADE).
// DELETE /api/presets/:id. Returns 204 on success, 404 if not found.
func (h *Handler) deletePreset(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.db.Exec(c,
		"DELETE FROM preset_meals WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": c.GetInt("user_id")})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete preset")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "preset not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// logPreset logs every food in the preset under the preset's meal type.
// POST /api/presets/:id/log. Optional body: { logged_at } (defaults to now).
func (h *Handler) logPreset(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body struct {
		LoggedAt *time.Time `json:"logged_at"`
	}
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	loggedAt := h.clock()
	if body.LoggedAt != nil {
		loggedAt = *body.LoggedAt
	}

	entries, err := queryMany[foodLogEntry](h.db, c,
		`WITH l AS (
			INSERT INTO food_logs (user_id, food_id, quantity, unit, meal_type, logged_at)
			SELECT p.user_id, i.food_id, i.quantity, f.unit, p.meal_type, @loggedAt
			FROM preset_meals p
			JOIN preset_food_items i ON i.preset_id = p.id
			JOIN foods f ON f.id = i.food_id
			WHERE p.id = @id AND p.user_id = @userID
			RETURNING *
		)
		SELECT `+foodLogColumns+` FROM l JOIN foods f ON f.id = l.food_id ORDER BY l.id`,
		pgx.NamedArgs{"id": id, "userID": c.GetInt("user_id"), "loggedAt": loggedAt})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to log preset")
		return
	}
	// Presets always carry at least one food, so nothing inserted means the
	// preset is missing or not owned by the caller.
	if len(entries) == 0 {
		apiError(c, http.StatusNotFound, "preset not found")
		return
	}
	c.JSON(http.StatusCreated, entries)
}
