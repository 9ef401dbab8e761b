package recipe

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngredientUnmarshalDefaults(t *testing.T) {
	var lines []Ingredient
	payload := `[
		{"food": "egg", "quantity": 2, "measure": "unit"},
		{"food": "salt"},
		{"food": "flour", "quantity": null, "measure": null},
		{"food": " onion ", "quantity": 1, "measure": "<unit>"}
	]`
	require.NoError(t, json.Unmarshal([]byte(payload), &lines))
	require.Len(t, lines, 4)

	assert.Equal(t, Ingredient{Food: "egg", Quantity: 2, Measure: "unit"}, lines[0])
	assert.Equal(t, Ingredient{Food: "salt", Quantity: 0, Measure: DefaultUnit}, lines[1])
	assert.Equal(t, Ingredient{Food: "flour", Quantity: 0, Measure: DefaultUnit}, lines[2])
	assert.Equal(t, Ingredient{Food: "onion", Quantity: 1, Measure: DefaultUnit}, lines[3])
}

func TestNormalize(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		r := &Recipe{Label: "  Omelette ", Calories: -5}
		require.NoError(t, r.Normalize())

		assert.Equal(t, "Omelette", r.Label)
		assert.Equal(t, float64(0), r.Calories)
		assert.Equal(t, DefaultURL, r.URL)
		assert.NotNil(t, r.Ingredients)
		assert.Len(t, r.ID, 64)
	})

	t.Run("EmptyLabel", func(t *testing.T) {
		r := &Recipe{Label: "   "}
		assert.ErrorIs(t, r.Normalize(), ErrEmptyLabel)
	})

	t.Run("KeepsID", func(t *testing.T) {
		r := &Recipe{ID: "fixed", Label: "Soup"}
		require.NoError(t, r.Normalize())
		assert.Equal(t, "fixed", r.ID)
	})
}

func TestGenerateID(t *testing.T) {
	a := &Recipe{URI: "http://www.edamam.com/ontologies/edamam.owl#recipe_1", Label: "A"}
	b := &Recipe{URI: "http://www.edamam.com/ontologies/edamam.owl#recipe_1", Label: "B"}
	c := &Recipe{Label: "A", URL: "http://example.com/a"}
	d := &Recipe{Label: "A", URL: "http://example.com/b"}

	assert.Equal(t, GenerateID(a), GenerateID(b))
	assert.NotEqual(t, GenerateID(c), GenerateID(d))
}

func TestParseDiet(t *testing.T) {
	tests := []struct {
		in    string
		want  Diet
		param string
	}{
		{"", DietNone, ""},
		{"None", DietNone, ""},
		{"balanced", DietBalanced, "balanced"},
		{"Low-Carb", DietLowCarb, "low-carb"},
		{"HIGH-PROTEIN", DietHighProtein, "high-protein"},
	}
	for _, tt := range tests {
		got, err := ParseDiet(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.param, got.Param())
	}

	_, err := ParseDiet("keto")
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	soup := &Recipe{ID: "1", Label: "Soup", Calories: 300, DietLabels: []string{"Low-Carb"}}
	cake := &Recipe{ID: "2", Label: "Cake", Calories: 1200, DietLabels: []string{"Balanced"}}
	require.NoError(t, store.SaveRecipes(ctx, []*Recipe{soup, cake}))

	got, err := store.GetRecipe(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, soup, got)

	missing, err := store.GetRecipe(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := store.ListRecipes(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Cake", all[0].Label)
	assert.Equal(t, "Soup", all[1].Label)

	lowCarb, err := store.ListRecipes(ctx, Filter{DietLabel: "low-carb"})
	require.NoError(t, err)
	require.Len(t, lowCarb, 1)
	assert.Equal(t, "Soup", lowCarb[0].Label)

	light, err := store.ListRecipes(ctx, Filter{MaxCalories: 500})
	require.NoError(t, err)
	require.Len(t, light, 1)
	assert.Equal(t, "1", light[0].ID)
}
