package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"metafit/go-api/account"
	"metafit/go-api/energy"
)

// dummyHash is a pre-computed bcrypt hash used when a login identifier isn't found.
// Running bcrypt against it (instead of returning early) keeps response time
// constant, preventing timing-based username enumeration.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.DefaultCost)

// Numeric bounds shared by registration and profile updates.
const (
	minHeightFt = 2.0
	maxHeightFt = 8.0
	minWeightKg = 30.0
	maxWeightKg = 300.0
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

/* ─── Field validation ───────────────────────────────────────────────── */

// parseGenderStrict accepts male, female and other (plus their synonyms)
// and rejects anything else.
func parseGenderStrict(s string) (energy.Gender, bool) {
	g := energy.ParseGender(s)
	if g == energy.Other && strings.ToLower(strings.TrimSpace(s)) != string(energy.Other) {
		return "", false
	}
	return g, true
}

// parseDOB parses a YYYY-MM-DD birth date and rejects dates whose age at now
// falls outside the range the energy model accepts.
func parseDOB(s string, now time.Time) (time.Time, error) {
	dob, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.New("date of birth must be YYYY-MM-DD")
	}
	if age := energy.Age(dob, now); age < energy.MinAge || age > energy.MaxAge {
		return time.Time{}, fmt.Errorf("age must be between %d and %d", energy.MinAge, energy.MaxAge)
	}
	return dob, nil
}

func heightProblem(ft float64) string {
	if ft < minHeightFt || ft > maxHeightFt {
		return fmt.Sprintf("height must be between %g and %g feet", minHeightFt, maxHeightFt)
	}
	return ""
}

func weightProblem(kg float64) string {
	if kg < minWeightKg || kg > maxWeightKg {
		return fmt.Sprintf("weight must be between %g and %g kg", minWeightKg, maxWeightKg)
	}
	return ""
}

/* ─── Registration ───────────────────────────────────────────────────── */

// registration is a validated registerRequest in canonical form.
type registration struct {
	Name          string
	Username      string
	Email         string
	Password      string
	DateOfBirth   time.Time
	Gender        energy.Gender
	HeightFt      float64
	WeightKg      float64
	Goal          energy.Goal
	ActivityLevel energy.ActivityLevel
}

// validateRegistration checks every signup field and returns the canonical
// values, or the first problem found.
func validateRegistration(req registerRequest, now time.Time) (registration, error) {
	r := registration{
		Name:     strings.TrimSpace(req.Name),
		Username: strings.TrimSpace(req.Username),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: req.Password,
		HeightFt: req.Height,
		WeightKg: req.Weight,
	}
	if r.Name == "" || r.Username == "" || r.Email == "" || r.Password == "" ||
		req.DOB == "" || req.Gender == "" || req.Goal == "" || req.ActivityLevel == "" ||
		req.Height == 0 || req.Weight == 0 {
		return r, errors.New("all fields are required")
	}
	if err := account.Validate(r.Username, r.Email, r.Password); err != nil {
		return r, err
	}
	if msg := heightProblem(r.HeightFt); msg != "" {
		return r, errors.New(msg)
	}
	if msg := weightProblem(r.WeightKg); msg != "" {
		return r, errors.New(msg)
	}

	var err error
	if r.DateOfBirth, err = parseDOB(req.DOB, now); err != nil {
		return r, err
	}
	var ok bool
	if r.Gender, ok = parseGenderStrict(req.Gender); !ok {
		return r, errors.New("gender must be male, female or other")
	}
	if r.Goal, ok = energy.ParseGoal(req.Goal); !ok {
		return r, errors.New("unknown goal")
	}
	if r.ActivityLevel, ok = energy.ParseActivityLevel(req.ActivityLevel); !ok {
		return r, errors.New("unknown activity level")
	}
	return r, nil
}

// register creates a user, their physical profile and an initial weight
// entry in one transaction.
// POST /api/register (public).
func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	now := h.clock()
	r, err := validateRegistration(req, now)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	var taken bool
	err = h.db.QueryRow(c,
		`SELECT EXISTS (SELECT 1 FROM users WHERE lower(username) = lower(@username) OR lower(email) = lower(@email))`,
		pgx.NamedArgs{"username": r.Username, "email": r.Email}).Scan(&taken)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to check existing accounts")
		return
	}
	if taken {
		apiError(c, http.StatusConflict, "username or email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), bcrypt.DefaultCost)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	u, err := h.createAccount(c, r, string(hash), now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			apiError(c, http.StatusConflict, "username or email already registered")
			return
		}
		apiError(c, http.StatusInternalServerError, "failed to create account")
		return
	}

	pi, err := h.loadPhysicalInfo(c, u.ID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load physical info")
		return
	}
	h.populateEstimate(&pi, now)

	c.JSON(http.StatusCreated, gin.H{
		"token":         u.AuthToken,
		"user_id":       u.ID,
		"user":          u,
		"physical_info": pi,
	})
}

// createAccount inserts the three registration rows atomically.
func (h *Handler) createAccount(c *gin.Context, r registration, passwordHash string, now time.Time) (user, error) {
	tx, err := h.db.Begin(c)
	if err != nil {
		return user{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(c)

	rows, err := tx.Query(c, `
		INSERT INTO users (username, email, name, password, auth_token)
		VALUES (@username, @email, @name, @password, @token)
		RETURNING *`,
		pgx.NamedArgs{
			"username": r.Username,
			"email":    r.Email,
			"name":     r.Name,
			"password": passwordHash,
			"token":    uuid.New().String(),
		})
	if err != nil {
		return user{}, fmt.Errorf("insert user: %w", err)
	}
	u, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[user])
	if err != nil {
		return user{}, fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.Exec(c, `
		INSERT INTO physical_info (user_id, date_of_birth, gender, height_ft, activity_level, goal)
		VALUES (@user_id, @dob, @gender, @height, @activity, @goal)`,
		pgx.NamedArgs{
			"user_id":  u.ID,
			"dob":      r.DateOfBirth,
			"gender":   string(r.Gender),
			"height":   r.HeightFt,
			"activity": string(r.ActivityLevel),
			"goal":     string(r.Goal),
		})
	if err != nil {
		return user{}, fmt.Errorf("insert physical info: %w", err)
	}

	_, err = tx.Exec(c, `
		INSERT INTO weight_log (user_id, weight_kg, notes, logged_at)
		VALUES (@user_id, @weight, 'Initial weight', @now)`,
		pgx.NamedArgs{"user_id": u.ID, "weight": r.WeightKg, "now": now})
	if err != nil {
		return user{}, fmt.Errorf("insert weight: %w", err)
	}

	if err := tx.Commit(c); err != nil {
		return user{}, fmt.Errorf("commit: %w", err)
	}
	return u, nil
}

/* ─── Login and availability ─────────────────────────────────────────── */

// login verifies username-or-email/password and returns the user's auth token.
// POST /api/login (public — no auth required).
func (h *Handler) login(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	identifier := strings.TrimSpace(body.Username)
	if identifier == "" {
		identifier = strings.TrimSpace(body.Email)
	}
	if identifier == "" || body.Password == "" {
		apiError(c, http.StatusBadRequest, "username or email and password are required")
		return
	}

	u, lookupErr := queryOne[user](h.db, c,
		"SELECT * FROM users WHERE lower(username) = lower(@id) OR lower(email) = lower(@id) LIMIT 1",
		pgx.NamedArgs{"id": identifier})

	// Always run bcrypt to keep response time constant regardless of whether the
	// account was found — prevents timing-based username enumeration.
	hashToCheck := string(dummyHash)
	if lookupErr == nil {
		hashToCheck = u.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hashToCheck), []byte(body.Password))

	if lookupErr != nil || compareErr != nil {
		apiError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if _, err := h.db.Exec(c, "UPDATE users SET last_login = @now WHERE id = @id",
		pgx.NamedArgs{"now": h.clock(), "id": u.ID}); err != nil {
		// Not fatal: the credentials were valid.
		log.Printf("[login] failed to update last_login for user %d: %v", u.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"token": u.AuthToken, "user_id": u.ID})
}

// checkUsername reports whether a username is well-formed and unused.
// POST /api/check-username (public).
func (h *Handler) checkUsername(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	username := strings.TrimSpace(body.Username)
	if msg := account.UsernameProblem(username); msg != "" {
		c.JSON(http.StatusOK, gin.H{"available": false, "message": msg})
		return
	}
	h.respondAvailability(c,
		"SELECT EXISTS (SELECT 1 FROM users WHERE lower(username) = lower(@v))", username,
		"username already taken", "username available")
}

// checkEmail reports whether an email is well-formed and unused.
// POST /api/check-email (public).
func (h *Handler) checkEmail(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	email := strings.TrimSpace(body.Email)
	if msg := account.EmailProblem(email); msg != "" {
		c.JSON(http.StatusOK, gin.H{"available": false, "message": msg})
		return
	}
	h.respondAvailability(c,
		"SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower(@v))", email,
		"email already registered", "email available")
}

func (h *Handler) respondAvailability(c *gin.Context, sql, value, takenMsg, freeMsg string) {
	var exists bool
	if err := h.db.QueryRow(c, sql, pgx.NamedArgs{"v": value}).Scan(&exists); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to check availability")
		return
	}
	if exists {
		c.JSON(http.StatusOK, gin.H{"available": false, "message": takenMsg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": true, "message": freeMsg})
}

// getMe returns the authenticated user's account details.
// GET /api/me
func (h *Handler) getMe(c *gin.Context) {
	u, err := queryOne[user](h.db, c, "SELECT * FROM users WHERE id = @id",
		pgx.NamedArgs{"id": c.GetInt("user_id")})
	if errors.Is(err, pgx.ErrNoRows) {
		apiError(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load user")
		return
	}
	c.JSON(http.StatusOK, u)
}

// authMiddleware validates the Bearer token and sets user_id on the context.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			apiError(c, http.StatusUnauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		var userID int
		err := h.db.QueryRow(c, "SELECT id FROM users WHERE auth_token = $1", token).Scan(&userID)
		if err != nil {
			apiError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
