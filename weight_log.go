package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// getWeightHistory returns the authenticated user's weight entries, newest
// first, optionally bounded by start and end dates.
// GET /api/weight-history?start=YYYY-MM-DD&end=YYYY-MM-DD
// Returns an empty array (not null) if no entries exist in the range.
func (h *Handler) getWeightHistory(c *gin.Context) {
	args := pgx.NamedArgs{"userID": c.GetInt("user_id")}
	where, err := loggedAtRange(c.Query("start"), c.Query("end"), args)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := queryMany[weightEntry](h.db, c,
		"SELECT * FROM weight_log WHERE "+where+" ORDER BY logged_at DESC, id DESC", args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch weight history")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// createWeightEntry appends a weight measurement.
// POST /api/weight-history. Body: { "weight_kg": 72.4, "notes"?, "logged_at"? }.
func (h *Handler) createWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		WeightKg float64    `json:"weight_kg"`
		Notes    *string    `json:"notes"`
		LoggedAt *time.Time `json:"logged_at"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := weightProblem(body.WeightKg); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}
	loggedAt := h.clock()
	if body.LoggedAt != nil {
		loggedAt = *body.LoggedAt
	}

	entry, err := queryOne[weightEntry](h.db, c,
		`INSERT INTO weight_log (user_id, weight_kg, notes, logged_at)
		 VALUES (@userID, @weightKg, @notes, @loggedAt)
		 RETURNING *`,
		pgx.NamedArgs{"userID": userID, "weightKg": body.WeightKg, "notes": body.Notes, "loggedAt": loggedAt})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create weight entry")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// updateWeightEntry partially updates an existing weight entry.
// PUT /api/weight-history/:id. Body: { "weight_kg"?, "notes"?, "logged_at"? }.
// Uses COALESCE so omitted fields keep their current values.
func (h *Handler) updateWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var body struct {
		WeightKg *float64   `json:"weight_kg"`
		Notes    *string    `json:"notes"`
		LoggedAt *time.Time `json:"logged_at"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.WeightKg != nil {
		if msg := weightProblem(*body.WeightKg); msg != "" {
			apiError(c, http.StatusBadRequest, msg)
			return
		}
	}

	entry, err := queryOne[weightEntry](h.db, c,
		`UPDATE weight_log SET
			weight_kg = COALESCE(@weightKg, weight_kg),
			notes     = COALESCE(@notes, notes),
			logged_at = COALESCE(@loggedAt, logged_at)
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{"id": id, "userID": userID, "weightKg": body.WeightKg, "notes": body.Notes, "loggedAt": body.LoggedAt})
	if err != nil {
		// Distinguish a missing row from a real DB failure so callers get an
		// actionable status code rather than a misleading 404.
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "weight entry not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update weight entry")
		}
		return
	}

	c.JSON(http.StatusOK, entry)
}

// deleteWeightEntry removes a weight entry by ID.
// DELETE /api/weight-history/:id. Returns 204 on success, 404 if not found.
// Ownership is enforced by requiring both id and user_id to match.
func (h *Handler) deleteWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := h.db.Exec(c,
		"DELETE FROM weight_log WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete weight entry")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "weight entry not found")
		return
	}

	c.Status(http.StatusNoContent)
}
