// CLI tool to create a user with a bcrypt-hashed password, a physical
// profile and an initial weight entry.
// Usage: go run ./cmd/create-user
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"metafit/go-api/account"
	"metafit/go-api/energy"
)

// profile holds the answers that become physical_info and weight_log rows.
type profile struct {
	DateOfBirth   time.Time
	Gender        energy.Gender
	HeightFt      float64
	ActivityLevel energy.ActivityLevel
	Goal          energy.Goal
	WeightKg      float64
}

// parseProfile converts raw prompt answers into a profile. Labels accept
// the same forms as the API ("Moderately Active", "weight_loss").
func parseProfile(dob, gender, height, activity, goal, weight string) (profile, error) {
	var p profile
	var err error
	if p.DateOfBirth, err = time.Parse("2006-01-02", dob); err != nil {
		return p, fmt.Errorf("date of birth must be YYYY-MM-DD")
	}
	p.Gender = energy.ParseGender(gender)
	if p.HeightFt, err = strconv.ParseFloat(height, 64); err != nil || p.HeightFt <= 0 {
		return p, fmt.Errorf("height must be a positive number of feet")
	}
	var ok bool
	if p.ActivityLevel, ok = energy.ParseActivityLevel(activity); !ok {
		return p, fmt.Errorf("unknown activity level %q", activity)
	}
	if p.Goal, ok = energy.ParseGoal(goal); !ok {
		return p, fmt.Errorf("unknown goal %q", goal)
	}
	if p.WeightKg, err = strconv.ParseFloat(weight, 64); err != nil || p.WeightKg <= 0 {
		return p, fmt.Errorf("weight must be a positive number of kg")
	}
	return p, nil
}

// readAccount prompts for the login fields and applies the same rules as
// /api/register. Email is lowercased before checking.
func readAccount(ask func(prompt string) string) (username, email, name, password string, err error) {
	username = ask("Username: ")
	email = strings.ToLower(ask("Email: "))
	name = ask("Name: ")
	password = ask("Password: ")
	return username, email, name, password, account.Validate(username, email, password)
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "No .env loaded (%v), using environment\n", err)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	reader := bufio.NewReader(os.Stdin)
	ask := func(prompt string) string {
		fmt.Print(prompt)
		s, _ := reader.ReadString('\n')
		return strings.TrimSpace(s)
	}

	username, email, name, password, err := readAccount(ask)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid account: %v\n", err)
		os.Exit(1)
	}

	p, err := parseProfile(
		ask("Date of birth (YYYY-MM-DD): "),
		ask("Gender (male/female/other): "),
		ask("Height (ft, e.g. 5.74): "),
		ask("Activity level (e.g. Moderately Active): "),
		ask("Goal (e.g. Weight Loss): "),
		ask("Current weight (kg): "),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid profile: %v\n", err)
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}
	authToken := uuid.New().String()

	userID, err := createUser(ctx, conn, username, email, name, string(hash), authToken, p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		os.Exit(1)
	}

	est := energy.Compute(energy.Profile{
		WeightKg:      p.WeightKg,
		HeightFeet:    p.HeightFt,
		DateOfBirth:   p.DateOfBirth,
		Gender:        p.Gender,
		ActivityLevel: p.ActivityLevel,
		Goal:          p.Goal,
	}, time.Now())

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:         %d\n", userID)
	fmt.Printf("  Username:   %s\n", username)
	fmt.Printf("  Auth Token: %s\n", authToken)
	if est.AdjustedCalorieTarget != nil {
		fmt.Printf("  Target:     %d kcal/day\n", *est.AdjustedCalorieTarget)
	}
}

// createUser inserts the user, profile and initial weight in one transaction.
func createUser(ctx context.Context, conn *pgx.Conn, username, email, name, hash, token string, p profile) (int, error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var userID int
	err = tx.QueryRow(ctx,
		`INSERT INTO users (username, email, name, password, auth_token)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		username, email, name, hash, token,
	).Scan(&userID)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO physical_info (user_id, date_of_birth, gender, height_ft, activity_level, goal)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		userID, p.DateOfBirth, string(p.Gender), p.HeightFt, string(p.ActivityLevel), string(p.Goal))
	if err != nil {
		return 0, fmt.Errorf("insert physical info: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO weight_log (user_id, weight_kg, notes) VALUES ($1, $2, 'Initial weight')`,
		userID, p.WeightKg)
	if err != nil {
		return 0, fmt.Errorf("insert weight: %w", err)
	}

	return userID, tx.Commit(ctx)
}
