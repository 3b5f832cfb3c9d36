package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"metafit/go-api/energy"
)

// Handler holds shared dependencies (db pool, config) for all route handlers.
type Handler struct {
	db    *pgxpool.Pool
	chat  chatClient // food suggestions; base URL overridable for tests
	model energy.Model
	now   func() time.Time // nil means time.Now
}

func newHandler(db *pgxpool.Pool, cfg config) *Handler {
	return &Handler{
		db: db,
		chat: chatClient{
			baseURL: cfg.OpenAIBaseURL,
			apiKey:  cfg.OpenAIAPIKey,
			model:   cfg.OpenAIModel,
		},
		model: cfg.Energy,
	}
}

// clock returns the server's current time. Every estimate computed in a
// request uses this single reading so age is consistent within a response.
func (h *Handler) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
func queryOne[T any](pool *pgxpool.Pool, c *gin.Context, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := pool.Query(c, sql, args)
	if err != nil {
		log.Printf("[queryOne] Query error: %v", err)
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("[queryOne] Scan error: %v", err)
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
// An empty result is a non-nil empty slice so it encodes as [].
func queryMany[T any](pool *pgxpool.Pool, c *gin.Context, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := pool.Query(c, sql, args)
	if err != nil {
		log.Printf("[queryMany] Query error: %v", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryMany] Scan error: %v", err)
		return nil, err
	}
	if results == nil {
		results = []T{}
	}
	return results, nil
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// getDBPool creates a connection pool. We use a pool (not a single conn) because
// hosted Postgres closes idle connections after a few minutes.
func getDBPool(dbURL string) *pgxpool.Pool {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to parse DB URL: %v\n", err)
		os.Exit(1)
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from server-side prepared statement caches after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("DB pool ready!")
	return pool
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine, cfg config) {
	// Public routes, rate limited per client IP
	limiter := rateLimitMiddleware(cfg.LoginRateLimitRPS, cfg.LoginRateLimitBurst)
	public := router.Group("/api", limiter)
	public.POST("/register", h.register)
	public.POST("/login", h.login)
	public.POST("/check-username", h.checkUsername)
	public.POST("/check-email", h.checkEmail)

	// Authenticated routes
	h.registerAPI(router.Group("/api", h.authMiddleware()))
}

// registerAPI registers the routes that require an authenticated user_id.
func (h *Handler) registerAPI(api *gin.RouterGroup) {
	api.GET("/me", h.getMe)
	api.GET("/profile", h.getProfile)
	api.GET("/physical-info", h.getPhysicalInfo)
	api.PUT("/physical-info", h.updatePhysicalInfo)

	api.GET("/weight-history", h.getWeightHistory)
	api.POST("/weight-history", h.createWeightEntry)
	api.PUT("/weight-history/:id", h.updateWeightEntry)
	api.DELETE("/weight-history/:id", h.deleteWeightEntry)

	api.GET("/foods", h.listFoods)
	api.GET("/foods/:id", h.getFood)
	api.POST("/foods", h.createFood)
	api.POST("/foods/suggest", h.suggestFood)

	api.GET("/food-logs", h.getFoodLogs)
	api.POST("/food-logs", h.createFoodLog)
	api.POST("/food-logs/bulk", h.createFoodLogsBulk)
	api.GET("/food-logs/summary", h.getDailySummary)
	api.GET("/food-logs/meal-type", h.getFoodLogsByMealType)
	api.GET("/food-logs/week-summary", h.getWeekSummary)
	api.GET("/food-logs/progress", h.getProgress)
	api.GET("/food-logs/earliest-date", h.getEarliestLogDate)
	api.PUT("/food-logs/:id", h.updateFoodLog)
	api.DELETE("/food-logs/:id", h.deleteFoodLog)

	api.GET("/presets", h.listPresets)
	api.POST("/presets", h.createPreset)
	api.GET("/presets/:id", h.getPreset)
	api.PUT("/presets/:id", h.updatePreset)
	api.DELETE("/presets/:id", h.deletePreset)
	api.POST("/presets/:id/log", h.logPreset)

	api.GET("/dashboard", h.getDashboard)

	api.GET("/meal-plans/suggested-target", h.getSuggestedTarget)
	api.POST("/meal-plans/targets", h.resolveMealPlanTargets)
}

// parseID reads a positive integer path parameter. On failure it writes a
// 400 and returns ok=false.
func parseID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		apiError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// parseDay parses a YYYY-MM-DD query value as midnight UTC. An empty value
// returns fallback.
func parseDay(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		y, m, d := fallback.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", value)
}

// loggedAtRange translates optional start/end (YYYY-MM-DD, inclusive) query
// values into a WHERE fragment over logged_at for the user in args.
func loggedAtRange(start, end string, args pgx.NamedArgs) (string, error) {
	where := []string{"user_id = @userID"}
	var startDay, endDay time.Time
	var err error
	if start != "" {
		if startDay, err = time.Parse("2006-01-02", start); err != nil {
			return "", errors.New("invalid start, expected YYYY-MM-DD")
		}
		where = append(where, "logged_at >= @start")
		args["start"] = startDay
	}
	if end != "" {
		if endDay, err = time.Parse("2006-01-02", end); err != nil {
			return "", errors.New("invalid end, expected YYYY-MM-DD")
		}
		where = append(where, "logged_at < @end")
		args["end"] = endDay.AddDate(0, 0, 1)
	}
	if start != "" && end != "" && startDay.After(endDay) {
		return "", errors.New("start must not be after end")
	}
	return strings.Join(where, " AND "), nil
}
