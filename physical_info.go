package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"metafit/go-api/energy"
)

// physicalInfoSelect reads a physical_info row joined with the newest
// weight_log entry for the same user.
const physicalInfoSelect = `
	SELECT p.user_id, p.date_of_birth, p.gender, p.height_ft, p.activity_level, p.goal,
	       p.target_weight_kg, p.body_fat, p.lifestyle, p.updated_at,
	       w.weight_kg AS current_weight_kg, w.logged_at AS weight_last_updated
	FROM physical_info p
	LEFT JOIN LATERAL (
		SELECT weight_kg, logged_at FROM weight_log
		WHERE user_id = p.user_id
		ORDER BY logged_at DESC, id DESC
		LIMIT 1
	) w ON true
	WHERE p.user_id = @userID`

// loadPhysicalInfo returns the user's profile without an estimate.
// Returns pgx.ErrNoRows when the user has no physical_info row.
func (h *Handler) loadPhysicalInfo(c *gin.Context, userID int) (physicalInfo, error) {
	return queryOne[physicalInfo](h.db, c, physicalInfoSelect, pgx.NamedArgs{"userID": userID})
}

// getPhysicalInfo returns the authenticated user's body metrics with the
// computed estimate.
// GET /api/physical-info
func (h *Handler) getPhysicalInfo(c *gin.Context) {
	pi, err := h.loadPhysicalInfo(c, c.GetInt("user_id"))
	if errors.Is(err, pgx.ErrNoRows) {
		apiError(c, http.StatusNotFound, "physical info not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load physical info")
		return
	}
	h.populateEstimate(&pi, h.clock())
	c.JSON(http.StatusOK, pi)
}

// getProfile returns account details and body metrics together.
// GET /api/profile
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	u, err := queryOne[user](h.db, c, "SELECT * FROM users WHERE id = @id", pgx.NamedArgs{"id": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		apiError(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load user")
		return
	}

	pi, err := h.loadPhysicalInfo(c, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		// Accounts created outside registration may lack a profile row.
		pi = physicalInfo{UserID: userID}
	} else if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load physical info")
		return
	}
	h.populateEstimate(&pi, h.clock())

	c.JSON(http.StatusOK, profileResponse{User: u, PhysicalInfo: pi})
}

// buildPhysicalInfoUpdate validates the provided fields and returns the SET
// clauses and args for the physical_info UPDATE. Enum fields are stored in
// canonical form (e.g. "moderately_active").
func buildPhysicalInfoUpdate(body updatePhysicalInfoRequest, now time.Time) ([]string, pgx.NamedArgs, error) {
	setClauses := []string{}
	args := pgx.NamedArgs{}

	if body.DateOfBirth != nil {
		dob, err := parseDOB(*body.DateOfBirth, now)
		if err != nil {
			return nil, nil, err
		}
		setClauses = append(setClauses, "date_of_birth = @dateOfBirth")
		args["dateOfBirth"] = dob
	}
	if body.Gender != nil {
		g, ok := parseGenderStrict(*body.Gender)
		if !ok {
			return nil, nil, errors.New("gender must be male, female or other")
		}
		setClauses = append(setClauses, "gender = @gender")
		args["gender"] = string(g)
	}
	if body.HeightFt != nil {
		if msg := heightProblem(*body.HeightFt); msg != "" {
			return nil, nil, errors.New(msg)
		}
		setClauses = append(setClauses, "height_ft = @heightFt")
		args["heightFt"] = *body.HeightFt
	}
	if body.ActivityLevel != nil {
		a, ok := energy.ParseActivityLevel(*body.ActivityLevel)
		if !ok {
			return nil, nil, fmt.Errorf("activity_level must be one of: %s", joinLevels())
		}
		setClauses = append(setClauses, "activity_level = @activityLevel")
		args["activityLevel"] = string(a)
	}
	if body.Goal != nil {
		g, ok := energy.ParseGoal(*body.Goal)
		if !ok {
			return nil, nil, fmt.Errorf("goal must be one of: %s", joinGoals())
		}
		setClauses = append(setClauses, "goal = @goal")
		args["goal"] = string(g)
	}
	if body.TargetWeightKg != nil {
		if msg := weightProblem(*body.TargetWeightKg); msg != "" {
			return nil, nil, errors.New("target " + msg)
		}
		setClauses = append(setClauses, "target_weight_kg = @targetWeightKg")
		args["targetWeightKg"] = *body.TargetWeightKg
	}
	if body.BodyFat != nil {
		if *body.BodyFat <= 0 || *body.BodyFat >= 100 {
			return nil, nil, errors.New("body_fat must be a percentage between 0 and 100")
		}
		setClauses = append(setClauses, "body_fat = @bodyFat")
		args["bodyFat"] = *body.BodyFat
	}
	if body.Lifestyle != nil {
		setClauses = append(setClauses, "lifestyle = @lifestyle")
		args["lifestyle"] = strings.TrimSpace(*body.Lifestyle)
	}
	if body.CurrentWeightKg != nil {
		if msg := weightProblem(*body.CurrentWeightKg); msg != "" {
			return nil, nil, errors.New(msg)
		}
	}

	if len(setClauses) == 0 && body.CurrentWeightKg == nil {
		return nil, nil, errors.New("no fields to update")
	}
	return setClauses, args, nil
}

func joinLevels() string {
	names := make([]string, len(energy.ActivityLevels))
	for i, a := range energy.ActivityLevels {
		names[i] = a.Label()
	}
	return strings.Join(names, ", ")
}

func joinGoals() string {
	names := make([]string, len(energy.Goals))
	for i, g := range energy.Goals {
		names[i] = g.Label()
	}
	return strings.Join(names, ", ")
}

// updatePhysicalInfo writes only the provided fields. A current_weight_kg
// value is appended to weight history rather than stored on the profile.
// PUT /api/physical-info
func (h *Handler) updatePhysicalInfo(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body updatePhysicalInfoRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	now := h.clock()
	setClauses, args, err := buildPhysicalInfoUpdate(body, now)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.db.Begin(c)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update physical info")
		return
	}
	defer tx.Rollback(c)

	args["userID"] = userID
	args["now"] = now
	query := "UPDATE physical_info SET " +
		strings.Join(append(setClauses, "updated_at = @now"), ", ") +
		" WHERE user_id = @userID"
	tag, err := tx.Exec(c, query, args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update physical info")
		return
	}
	if tag.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "physical info not found")
		return
	}

	if body.CurrentWeightKg != nil {
		notes := "Updated via API"
		if body.WeightNotes != nil && strings.TrimSpace(*body.WeightNotes) != "" {
			notes = strings.TrimSpace(*body.WeightNotes)
		}
		_, err = tx.Exec(c,
			"INSERT INTO weight_log (user_id, weight_kg, notes, logged_at) VALUES (@userID, @weight, @notes, @now)",
			pgx.NamedArgs{"userID": userID, "weight": *body.CurrentWeightKg, "notes": notes, "now": now})
		if err != nil {
			apiError(c, http.StatusInternalServerError, "failed to record weight")
			return
		}
	}

	if err := tx.Commit(c); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update physical info")
		return
	}

	pi, err := h.loadPhysicalInfo(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load physical info")
		return
	}
	h.populateEstimate(&pi, now)
	c.JSON(http.StatusOK, pi)
}
