package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealplanner/internal/recipe"
)

func TestParseRecipes(t *testing.T) {
	raw := "```json\n" + `[
		{"label": "Shakshuka", "calories": 640, "yield": 2, "dietLabels": ["Low-Carb"],
		 "ingredients": [{"text": "4 eggs", "food": "egg", "quantity": 4, "measure": "<unit>"},
		                 {"text": "tomatoes", "food": "tomato", "quantity": 3}]},
		{"label": "", "calories": 100},
		{"label": "Lentil Soup", "calories": 480, "url": "https://soup.test"}
	]` + "\n```"

	recipes, err := parseRecipes(raw)
	require.NoError(t, err)
	require.Len(t, recipes, 2)

	shakshuka := recipes[0]
	assert.Equal(t, "Shakshuka", shakshuka.Label)
	assert.Equal(t, recipe.DefaultURL, shakshuka.URL)
	assert.Equal(t, float64(2), shakshuka.Servings)
	assert.NotEmpty(t, shakshuka.ID)
	assert.Equal(t, []recipe.Ingredient{
		{Food: "egg", Quantity: 4, Measure: recipe.DefaultUnit, Text: "4 eggs"},
		{Food: "tomato", Quantity: 3, Measure: recipe.DefaultUnit, Text: "tomatoes"},
	}, shakshuka.Ingredients)

	assert.Equal(t, "https://soup.test", recipes[1].URL)
	assert.Empty(t, recipes[1].Ingredients)
}

func TestParseRecipesErrors(t *testing.T) {
	_, err := parseRecipes("I cannot help with that.")
	assert.Error(t, err)

	_, err = parseRecipes(`[{"label": 5}]`)
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(recipe.Query{Text: "vegan pasta", Diet: recipe.DietHighProtein, MaxCalories: 700})
	assert.Contains(t, prompt, `"vegan pasta"`)
	assert.Contains(t, prompt, "must be high-protein")
	assert.Contains(t, prompt, "at most 700 calories")

	plain := buildPrompt(recipe.Query{})
	assert.Contains(t, plain, `"dinner"`)
	assert.NotContains(t, plain, "must be")
}
