package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

const (
	defaultFoodLimit = 50
	maxFoodLimit     = 200
)

// pageParams parses limit and offset for catalogue listing.
func pageParams(limitStr, offsetStr string) (limit, offset int, err error) {
	limit = defaultFoodLimit
	if limitStr != "" {
		if limit, err = strconv.Atoi(limitStr); err != nil || limit < 1 || limit > maxFoodLimit {
			return 0, 0, errors.New("limit must be between 1 and 200")
		}
	}
	if offsetStr != "" {
		if offset, err = strconv.Atoi(offsetStr); err != nil || offset < 0 {
			return 0, 0, errors.New("offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}

// listFoods searches the catalogue by food or brand name.
// GET /api/foods?search=oat&limit=50&offset=0
func (h *Handler) listFoods(c *gin.Context) {
	limit, offset, err := pageParams(c.Query("limit"), c.Query("offset"))
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	args := pgx.NamedArgs{"limit": limit, "offset": offset}
	where := ""
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		where = "WHERE food_name ILIKE @pattern OR brand_name ILIKE @pattern"
		args["pattern"] = "%" + search + "%"
	}

	foods, err := queryMany[food](h.db, c,
		"SELECT * FROM foods "+where+" ORDER BY food_name ASC, id ASC LIMIT @limit OFFSET @offset", args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch foods")
		return
	}
	c.JSON(http.StatusOK, foods)
}

// getFood returns one catalogue food.
// GET /api/foods/:id
func (h *Handler) getFood(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	f, err := queryOne[food](h.db, c, "SELECT * FROM foods WHERE id = @id", pgx.NamedArgs{"id": id})
	if errors.Is(err, pgx.ErrNoRows) {
		apiError(c, http.StatusNotFound, "food not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch food")
		return
	}
	c.JSON(http.StatusOK, f)
}

// normalizeFood validates a createFoodRequest and fills defaults.
func normalizeFood(body createFoodRequest) (createFoodRequest, error) {
	body.FoodName = strings.TrimSpace(body.FoodName)
	body.BrandName = strings.TrimSpace(body.BrandName)
	body.Unit = strings.TrimSpace(body.Unit)
	if body.FoodName == "" {
		return body, errors.New("food_name is required")
	}
	if body.Unit == "" {
		body.Unit = "g"
	}
	if body.Quantity == nil {
		q := 100.0
		body.Quantity = &q
	}
	if *body.Quantity <= 0 {
		return body, errors.New("quantity must be greater than 0")
	}
	for _, v := range []float64{body.Calories, body.ProteinG, body.CarbsG, body.FatG, body.SugarG, body.FiberG} {
		if v < 0 {
			return body, errors.New("nutrient values must not be negative")
		}
	}
	return body, nil
}

// createFood adds a food to the shared catalogue.
// POST /api/foods
func (h *Handler) createFood(c *gin.Context) {
	var body createFoodRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	body, err := normalizeFood(body)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	f, err := queryOne[food](h.db, c,
		`INSERT INTO foods (food_name, brand_name, unit, quantity, calories, carbs_g, protein_g, fat_g, sugar_g, fiber_g)
		 VALUES (@foodName, @brandName, @unit, @quantity, @calories, @carbsG, @proteinG, @fatG, @sugarG, @fiberG)
		 RETURNING *`,
		pgx.NamedArgs{
			"foodName":  body.FoodName,
			"brandName": body.BrandName,
			"unit":      body.Unit,
			"quantity":  *body.Quantity,
			"calories":  body.Calories,
			"carbsG":    body.CarbsG,
			"proteinG":  body.ProteinG,
			"fatG":      body.FatG,
			"sugarG":    body.SugarG,
			"fiberG":    body.FiberG,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create food")
		return
	}
	c.JSON(http.StatusCreated, f)
}
