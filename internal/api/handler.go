package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mealplanner/internal/logger"
	"mealplanner/internal/mealplan"
	"mealplanner/internal/platform/edamam"
	"mealplanner/internal/recipe"
)

const noRecipesMessage = "No recipes found. Try adjusting your search."

// RecipeSearcher defines the interface for recipe lookup backends.
type RecipeSearcher interface {
	Search(ctx context.Context, q recipe.Query) (*recipe.Page, error)
}

// RecipeStore defines the interface for cached recipe operations.
type RecipeStore interface {
	GetRecipe(ctx context.Context, id string) (*recipe.Recipe, error)
	SaveRecipes(ctx context.Context, recipes []*recipe.Recipe) error
	ListRecipes(ctx context.Context, filter recipe.Filter) ([]*recipe.Recipe, error)
}

// Handler handles HTTP requests.
type Handler struct {
	Searcher         RecipeSearcher
	RecipeStore      RecipeStore
	Sessions         *mealplan.Registry
	DefaultPartySize int
	// HTTPClient fetches recipe images for thumbnails.
	HTTPClient *http.Client
}

// NewHandler creates a new Handler.
func NewHandler(searcher RecipeSearcher, recipeStore RecipeStore, sessions *mealplan.Registry, defaultPartySize int) *Handler {
	if defaultPartySize <= 0 {
		defaultPartySize = 1
	}
	return &Handler{
		Searcher:         searcher,
		RecipeStore:      recipeStore,
		Sessions:         sessions,
		DefaultPartySize: defaultPartySize,
		HTTPClient:       &http.Client{Timeout: 10 * time.Second},
	}
}

// RegisterRoutes mounts every endpoint on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	recipes := r.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/search", h.SearchRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.GET("/:id/thumbnail", h.Thumbnail)
	}

	sessions := r.Group("/sessions")
	{
		sessions.POST("", h.CreateSession)
		sessions.DELETE("/:session_id", h.DeleteSession)
		sessions.GET("/:session_id/plan", h.GetPlan)
		sessions.GET("/:session_id/plan/:day", h.GetDay)
		sessions.POST("/:session_id/plan/:day", h.AssignRecipe)
		sessions.DELETE("/:session_id/plan/:day", h.ClearDay)
		sessions.GET("/:session_id/shopping-list", h.ShoppingList)
		sessions.GET("/:session_id/export/plan.csv", h.ExportPlan)
		sessions.GET("/:session_id/export/shopping-list.csv", h.ExportShoppingList)
	}
}

// SearchRecipes handles recipe lookups and caches every returned recipe so it
// can be assigned by ID afterwards.
func (h *Handler) SearchRecipes(c *gin.Context) {
	diet, err := recipe.ParseDiet(c.Query("diet"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	maxCalories, err := parseNonNegative(c.Query("calories"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "calories must be a non-negative integer"})
		return
	}

	q := recipe.Query{
		Text:        c.DefaultQuery("q", recipe.DefaultQuery),
		Diet:        diet,
		MaxCalories: maxCalories,
		Next:        c.Query("next"),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	page, err := h.Searcher.Search(ctx, q)
	if err != nil {
		var upstream *edamam.UpstreamError
		switch {
		case errors.As(err, &upstream):
			logger.Error("recipe search failed", zap.Int("status", upstream.StatusCode), zap.String("body", upstream.Body))
			c.JSON(http.StatusBadGateway, gin.H{
				"error":           fmt.Sprintf("API request failed with status code %d", upstream.StatusCode),
				"upstream_status": upstream.StatusCode,
			})
		case errors.Is(err, edamam.ErrForeignContinuation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, context.DeadlineExceeded):
			c.JSON(http.StatusRequestTimeout, gin.H{"error": "Recipe search timed out after 30 seconds"})
		default:
			logger.Error("recipe search failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("recipe search err: %s", err.Error())})
		}
		return
	}

	if err := h.RecipeStore.SaveRecipes(ctx, page.Recipes); err != nil {
		logger.Error("failed to cache recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to save recipes: %s", err.Error())})
		return
	}

	if len(page.Recipes) == 0 {
		c.JSON(http.StatusOK, gin.H{"query": q.Text, "recipes": page.Recipes, "total": page.Total, "message": noRecipesMessage})
		return
	}

	logger.Info("recipes found", zap.String("query", q.Text), zap.Int("count", len(page.Recipes)))
	c.JSON(http.StatusOK, gin.H{"query": q.Text, "recipes": page.Recipes, "total": page.Total, "next": page.Next})
}

// ListRecipes handles requests to list cached recipes by diet label or calories.
func (h *Handler) ListRecipes(c *gin.Context) {
	maxCalories, err := parseNonNegative(c.Query("calories"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "calories must be a non-negative integer"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	recipes, err := h.RecipeStore.ListRecipes(ctx, recipe.Filter{DietLabel: c.Query("diet"), MaxCalories: float64(maxCalories)})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusRequestTimeout, gin.H{"error": "Database query timed out after 5 seconds"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("database error: %s", err.Error())})
		return
	}

	c.JSON(http.StatusOK, recipes)
}

// GetRecipe handles requests to retrieve a single cached recipe.
func (h *Handler) GetRecipe(c *gin.Context) {
	r, ok := h.lookupRecipe(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, r)
}

// CreateSession starts a new meal plan with every configured day empty.
func (h *Handler) CreateSession(c *gin.Context) {
	s, err := h.Sessions.Create()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var days []string
	_ = s.Do(func(p *mealplan.Plan) error {
		days = p.Days()
		return nil
	})
	logger.Info("session created", zap.String("session_id", s.ID))
	c.JSON(http.StatusCreated, gin.H{"session_id": s.ID, "days": days})
}

// DeleteSession drops a session and its plan.
func (h *Handler) DeleteSession(c *gin.Context) {
	h.Sessions.Delete(c.Param("session_id"))
	c.Status(http.StatusNoContent)
}

type dayView struct {
	Day           string           `json:"day"`
	Recipes       []*recipe.Recipe `json:"recipes"`
	TotalCalories float64          `json:"total_calories"`
}

func viewDay(p *mealplan.Plan, day string) (dayView, error) {
	meals, err := p.ListDay(day)
	if err != nil {
		return dayView{}, err
	}
	total, err := p.TotalCalories(day)
	if err != nil {
		return dayView{}, err
	}
	return dayView{Day: day, Recipes: meals, TotalCalories: total}, nil
}

// GetPlan returns every day of the plan in order.
func (h *Handler) GetPlan(c *gin.Context) {
	s, ok := h.lookupSession(c)
	if !ok {
		return
	}

	var days []dayView
	err := s.Do(func(p *mealplan.Plan) error {
		for _, day := range p.Days() {
			v, err := viewDay(p, day)
			if err != nil {
				return err
			}
			days = append(days, v)
		}
		return nil
	})
	if err != nil {
		respondPlanError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": s.ID, "days": days})
}

// GetDay returns the recipes assigned to one day.
func (h *Handler) GetDay(c *gin.Context) {
	s, ok := h.lookupSession(c)
	if !ok {
		return
	}

	var v dayView
	err := s.Do(func(p *mealplan.Plan) (err error) {
		v, err = viewDay(p, c.Param("day"))
		return err
	})
	if err != nil {
		respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

type assignRequest struct {
	RecipeID string `json:"recipe_id" binding:"required"`
}

// AssignRecipe appends a cached recipe to a day of the plan.
func (h *Handler) AssignRecipe(c *gin.Context) {
	s, ok := h.lookupSession(c)
	if !ok {
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipe_id is required"})
		return
	}

	r, ok := h.lookupRecipe(c, req.RecipeID)
	if !ok {
		return
	}

	day := c.Param("day")
	var v dayView
	err := s.Do(func(p *mealplan.Plan) error {
		if err := p.Assign(day, r); err != nil {
			return err
		}
		var err error
		v, err = viewDay(p, day)
		return err
	})
	if err != nil {
		respondPlanError(c, err)
		return
	}

	logger.Info("recipe assigned", zap.String("session_id", s.ID), zap.String("day", day), zap.String("recipe", r.Label))
	c.JSON(http.StatusCreated, v)
}

// ClearDay removes every recipe from one day.
func (h *Handler) ClearDay(c *gin.Context) {
	s, ok := h.lookupSession(c)
	if !ok {
		return
	}

	err := s.Do(func(p *mealplan.Plan) error {
		return p.Clear(c.Param("day"))
	})
	if err != nil {
		respondPlanError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ShoppingList aggregates the plan's ingredients for the requested party size.
func (h *Handler) ShoppingList(c *gin.Context) {
	s, ok := h.lookupSession(c)
	if !ok {
		return
	}

	list, ok := h.aggregate(c, s)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"party_size": list.PartySize,
		"items":      list.Items(),
		"skipped":    len(list.Skipped),
	})
}

// ExportPlan serves the plan as CSV.
func (h *Handler) ExportPlan(c *gin.Context) {
	s, ok := h.lookupSession(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err := s.Do(func(p *mealplan.Plan) error {
		return mealplan.WritePlanCSV(&buf, p)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("export err: %s", err.Error())})
		return
	}
	writeCSV(c, "meal_plan.csv", buf.Bytes())
}

// ExportShoppingList serves the shopping list as CSV.
func (h *Handler) ExportShoppingList(c *gin.Context) {
	s, ok := h.lookupSession(c)
	if !ok {
		return
	}

	list, ok := h.aggregate(c, s)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := mealplan.WriteShoppingListCSV(&buf, list); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("export err: %s", err.Error())})
		return
	}
	writeCSV(c, "shopping_list.csv", buf.Bytes())
}

func (h *Handler) aggregate(c *gin.Context, s *mealplan.Session) (*mealplan.ShoppingList, bool) {
	partySize := h.DefaultPartySize
	if raw := c.Query("party_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "party_size must be an integer"})
			return nil, false
		}
		partySize = n
	}

	var list *mealplan.ShoppingList
	err := s.Do(func(p *mealplan.Plan) (err error) {
		list, err = mealplan.Aggregate(p, partySize)
		return err
	})
	if err != nil {
		respondPlanError(c, err)
		return nil, false
	}

	for _, skipped := range list.Skipped {
		logger.Warn("ingredient skipped", zap.String("session_id", s.ID), zap.Error(skipped))
	}
	return list, true
}

func (h *Handler) lookupSession(c *gin.Context) (*mealplan.Session, bool) {
	s, err := h.Sessions.Get(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return nil, false
	}
	return s, true
}

func (h *Handler) lookupRecipe(c *gin.Context, id string) (*recipe.Recipe, bool) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	r, err := h.RecipeStore.GetRecipe(ctx, id)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusRequestTimeout, gin.H{"error": "Database query timed out after 5 seconds"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("database error: %s", err.Error())})
		return nil, false
	}
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return nil, false
	}
	return r, true
}

func respondPlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, mealplan.ErrInvalidDay), errors.Is(err, mealplan.ErrInvalidPartySize):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func writeCSV(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func parseNonNegative(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d", n)
	}
	return n, nil
}
