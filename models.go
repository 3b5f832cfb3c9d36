package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"metafit/go-api/energy"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns into DateOnly. NULL zeroes the time so *DateOnly fields can be
// left nil by pgx's NULL handling.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Accounts ───────────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password never leave the server.
type user struct {
	ID             int        `json:"id" db:"id"`
	Username       string     `json:"username" db:"username"`
	Email          string     `json:"email" db:"email"`
	Name           string     `json:"name" db:"name"`
	ProfilePicture *string    `json:"profile_picture" db:"profile_picture"`
	AuthToken      string     `json:"-" db:"auth_token"`
	Password       string     `json:"-" db:"password"`
	CreatedAt      *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at" db:"updated_at"`
	LastLogin      *time.Time `json:"last_login" db:"last_login"`
}

// registerRequest is the body for POST /api/register. Field names follow the
// signup form; physical attributes arrive as display labels.
type registerRequest struct {
	Name          string  `json:"name"`
	Username      string  `json:"username"`
	Email         string  `json:"email"`
	Password      string  `json:"password"`
	DOB           string  `json:"dob"`
	Gender        string  `json:"gender"`
	Height        float64 `json:"height"` // feet
	Weight        float64 `json:"weight"` // kg
	Goal          string  `json:"goal"`
	ActivityLevel string  `json:"activityLevel"`
}

/* ─── Physical profile ───────────────────────────────────────────────── */

// physicalInfo is one physical_info row joined with the user's latest
// weight_log entry. Height is in feet and weights in kilograms.
type physicalInfo struct {
	UserID         int        `json:"user_id"          db:"user_id"`
	DateOfBirth    *DateOnly  `json:"date_of_birth"    db:"date_of_birth"`
	Gender         *string    `json:"gender"           db:"gender"`
	HeightFt       *float64   `json:"height_ft"        db:"height_ft"`
	ActivityLevel  *string    `json:"activity_level"   db:"activity_level"`
	Goal           *string    `json:"goal"             db:"goal"`
	TargetWeightKg *float64   `json:"target_weight_kg" db:"target_weight_kg"`
	BodyFat        *float64   `json:"body_fat"         db:"body_fat"`
	Lifestyle      *string    `json:"lifestyle"        db:"lifestyle"`
	UpdatedAt      *time.Time `json:"updated_at"       db:"updated_at"`

	// From the latest weight_log row; nil when no weight was ever logged.
	CurrentWeightKg   *float64   `json:"current_weight_kg"   db:"current_weight_kg"`
	WeightLastUpdated *time.Time `json:"weight_last_updated" db:"weight_last_updated"`

	// Computed server-side on every read; never stored.
	Estimate *energy.Estimate `json:"estimate,omitempty" db:"-"`
}

// updatePhysicalInfoRequest is the body for PUT /api/physical-info.
// Only non-nil fields are written.
type updatePhysicalInfoRequest struct {
	DateOfBirth     *string  `json:"date_of_birth"` // YYYY-MM-DD
	Gender          *string  `json:"gender"`
	HeightFt        *float64 `json:"height_ft"`
	ActivityLevel   *string  `json:"activity_level"`
	Goal            *string  `json:"goal"`
	TargetWeightKg  *float64 `json:"target_weight_kg"`
	BodyFat         *float64 `json:"body_fat"`
	Lifestyle       *string  `json:"lifestyle"`
	CurrentWeightKg *float64 `json:"current_weight_kg"`
	WeightNotes     *string  `json:"weight_notes"`
}

// profileResponse is GET /api/profile: account details plus body metrics.
type profileResponse struct {
	User         user         `json:"user"`
	PhysicalInfo physicalInfo `json:"physical_info"`
}

/* ─── Weight history ─────────────────────────────────────────────────── */

// weightEntry maps to weight_log.
type weightEntry struct {
	ID       int       `json:"id"        db:"id"`
	UserID   int       `json:"user_id"   db:"user_id"`
	LoggedAt time.Time `json:"logged_at" db:"logged_at"`
	WeightKg float64   `json:"weight_kg" db:"weight_kg"`
	Notes    *string   `json:"notes"     db:"notes"`
}

/* ─── Foods and logs ─────────────────────────────────────────────────── */

// food maps to the foods catalogue. Nutrients are per Quantity of Unit.
type food struct {
	ID        int        `json:"id"         db:"id"`
	FoodName  string     `json:"food_name"  db:"food_name"`
	BrandName string     `json:"brand_name" db:"brand_name"`
	Unit      string     `json:"unit"       db:"unit"`
	Quantity  float64    `json:"quantity"   db:"quantity"`
	Calories  float64    `json:"calories"   db:"calories"`
	CarbsG    float64    `json:"carbs_g"    db:"carbs_g"`
	ProteinG  float64    `json:"protein_g"  db:"protein_g"`
	FatG      float64    `json:"fat_g"      db:"fat_g"`
	SugarG    float64    `json:"sugar_g"    db:"sugar_g"`
	FiberG    float64    `json:"fiber_g"    db:"fiber_g"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// createFoodRequest is the body for POST /api/foods. Unit and Quantity
// default to "g" and 100.
type createFoodRequest struct {
	FoodName  string   `json:"food_name"`
	BrandName string   `json:"brand_name"`
	Unit      string   `json:"unit"`
	Quantity  *float64 `json:"quantity"`
	Calories  float64  `json:"calories"`
	CarbsG    float64  `json:"carbs_g"`
	ProteinG  float64  `json:"protein_g"`
	FatG      float64  `json:"fat_g"`
	SugarG    float64  `json:"sugar_g"`
	FiberG    float64  `json:"fiber_g"`
}

// foodLogEntry is a food_logs row joined with its food. Nutrient fields are
// already scaled to the logged quantity.
type foodLogEntry struct {
	ID        int       `json:"id"         db:"id"`
	UserID    int       `json:"user_id"    db:"user_id"`
	FoodID    int       `json:"food_id"    db:"food_id"`
	Quantity  float64   `json:"quantity"   db:"quantity"`
	Unit      string    `json:"unit"       db:"unit"`
	MealType  string    `json:"meal_type"  db:"meal_type"`
	LoggedAt  time.Time `json:"logged_at"  db:"logged_at"`
	FoodName  string    `json:"food_name"  db:"food_name"`
	BrandName string    `json:"brand_name" db:"brand_name"`
	Calories  float64   `json:"calories"   db:"calories"`
	ProteinG  float64   `json:"protein_g"  db:"protein_g"`
	CarbsG    float64   `json:"carbs_g"    db:"carbs_g"`
	FatG      float64   `json:"fat_g"      db:"fat_g"`
	SugarG    float64   `json:"sugar_g"    db:"sugar_g"`
	FiberG    float64   `json:"fiber_g"    db:"fiber_g"`
}

// createFoodLogRequest is the body for POST /api/food-logs.
type createFoodLogRequest struct {
	FoodID   int        `json:"food_id"`
	Quantity float64    `json:"quantity"`
	Unit     string     `json:"unit"`
	MealType string     `json:"meal_type"`
	LoggedAt *time.Time `json:"logged_at"`
}

// bulkFoodLogRequest is the body for POST /api/food-logs/bulk.
type bulkFoodLogRequest struct {
	MealType string         `json:"meal_type"`
	LoggedAt *time.Time     `json:"logged_at"`
	Foods    []foodQuantity `json:"foods"`
}

// foodQuantity pairs a catalogue food with an amount in the food's unit.
type foodQuantity struct {
	FoodID   int     `json:"food_id"`
	Quantity float64 `json:"quantity"`
}

// dailySummary is the response for GET /api/food-logs/summary.
type dailySummary struct {
	Date   string             `json:"date"`
	Intake energy.DailyIntake `json:"intake"`
}

// weekDayDBRow is one row of the week-summary GROUP BY query.
type weekDayDBRow struct {
	Date          DateOnly `db:"date"`
	TotalCalories float64  `db:"total_calories"`
	TotalProteinG float64  `db:"total_protein_g"`
	TotalCarbsG   float64  `db:"total_carbs_g"`
	TotalFatG     float64  `db:"total_fat_g"`
	TotalFiberG   float64  `db:"total_fiber_g"`
	TotalSugarG   float64  `db:"total_sugar_g"`
}

// weekDaySummary is one day in GET /api/food-logs/week-summary. Days with
// no logs have HasData=false and a zero intake.
type weekDaySummary struct {
	Date          DateOnly           `json:"date"`
	CalorieTarget *int               `json:"calorie_target"`
	CaloriesLeft  *int               `json:"calories_left"`
	Intake        energy.DailyIntake `json:"intake"`
	HasData       bool               `json:"has_data"`
}

/* ─── Presets ────────────────────────────────────────────────────────── */

// presetMeal maps to preset_meals. Foods is loaded separately.
type presetMeal struct {
	ID         int              `json:"id"          db:"id"`
	UserID     int              `json:"user_id"     db:"user_id"`
	PresetName string           `json:"preset_name" db:"preset_name"`
	MealType   string           `json:"meal_type"   db:"meal_type"`
	CreatedAt  *time.Time       `json:"created_at"  db:"created_at"`
	Foods      []presetFoodItem `json:"foods"       db:"-"`
}

// presetFoodItem maps to preset_food_items.
type presetFoodItem struct {
	PresetID int     `json:"-"        db:"preset_id"`
	FoodID   int     `json:"food_id"  db:"food_id"`
	Quantity float64 `json:"quantity" db:"quantity"`
}

// presetRequest is the body for POST and PUT /api/presets. On PUT, nil
// fields keep their value and a nil Foods keeps the current items.
type presetRequest struct {
	PresetName *string        `json:"preset_name"`
	MealType   *string        `json:"meal_type"`
	Foods      []foodQuantity `json:"foods"`
}
