package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"mealplanner/internal/logger"
	"mealplanner/internal/recipe"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = fmt.Errorf("empty response from Gemini")

// Client is a client for the Gemini API that generates recipe suggestions.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	m := client.GenerativeModel(model)
	m.ResponseMIMEType = "application/json"
	return &Client{client: client, model: m}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Search asks the model for recipes matching the query. Generated results
// have no continuation, so q.Next is ignored and Page.Next is always empty.
func (c *Client) Search(ctx context.Context, q recipe.Query) (*recipe.Page, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(buildPrompt(q)))
	if err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrEmptyResponse
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response format from Gemini")
	}

	recipes, err := parseRecipes(string(text))
	if err != nil {
		return nil, err
	}
	return &recipe.Page{Recipes: recipes, Total: len(recipes)}, nil
}

func buildPrompt(q recipe.Query) string {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		text = recipe.DefaultQuery
	}

	prompt := fmt.Sprintf("Suggest 6 recipes for %q. ", text)
	prompt += "Return a single JSON array. Each element is an object with the keys 'label' (string), 'calories' (number, for the whole recipe), 'url' (string), 'image' (string), 'yield' (number of servings), 'dietLabels' (array of strings) and 'ingredients' (array of objects with 'text' (string), 'food' (string, singular lower-case name), 'quantity' (number) and 'measure' (string unit))."
	if diet := q.Diet.Param(); diet != "" {
		prompt += fmt.Sprintf(" Every recipe must be %s.", diet)
	}
	if q.MaxCalories > 0 {
		prompt += fmt.Sprintf(" Every recipe must have at most %d calories in total.", q.MaxCalories)
	}
	prompt += " The JSON response should be clean and not contain any markdown formatting (e.g., ```json)."
	return prompt
}

type generatedRecipe struct {
	Label       string              `json:"label"`
	Calories    float64             `json:"calories"`
	URL         string              `json:"url"`
	Image       string              `json:"image"`
	Yield       float64             `json:"yield"`
	DietLabels  []string            `json:"dietLabels"`
	Ingredients []recipe.Ingredient `json:"ingredients"`
}

// parseRecipes extracts the JSON array from the model output, which might
// still be wrapped in markdown, and normalizes every recipe in it.
func parseRecipes(raw string) ([]*recipe.Recipe, error) {
	startIndex := strings.Index(raw, "[")
	endIndex := strings.LastIndex(raw, "]")
	if startIndex == -1 || endIndex == -1 || startIndex > endIndex {
		return nil, fmt.Errorf("could not find JSON array in response: %s", raw)
	}
	cleanJSON := raw[startIndex : endIndex+1]

	var generated []generatedRecipe
	if err := json.Unmarshal([]byte(cleanJSON), &generated); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipes JSON: %w. Raw response: %s", err, cleanJSON)
	}

	recipes := make([]*recipe.Recipe, 0, len(generated))
	for _, g := range generated {
		r := &recipe.Recipe{
			Label:       g.Label,
			Calories:    g.Calories,
			URL:         g.URL,
			ImageURL:    g.Image,
			Servings:    g.Yield,
			DietLabels:  g.DietLabels,
			Ingredients: g.Ingredients,
		}
		if err := r.Normalize(); err != nil {
			logger.Warn("skipping generated recipe", zap.Error(err))
			continue
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}
