package mealplan

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealplanner/internal/recipe"
)

func TestWritePlanCSV(t *testing.T) {
	p := newWeek(t)
	require.NoError(t, p.Assign("Tuesday", &recipe.Recipe{Label: "Pasta, Tomato", URL: "http://example.com/pasta"}))
	require.NoError(t, p.Assign("Monday", &recipe.Recipe{Label: "Omelette", URL: recipe.DefaultURL}))
	require.NoError(t, p.Assign("Monday", &recipe.Recipe{Label: "Salad", URL: "http://example.com/salad"}))

	var buf bytes.Buffer
	require.NoError(t, WritePlanCSV(&buf, p))

	want := "Day,Recipe,URL\n" +
		"Monday,Omelette,N/A\n" +
		"Monday,Salad,http://example.com/salad\n" +
		"Tuesday,\"Pasta, Tomato\",http://example.com/pasta\n"
	assert.Equal(t, want, buf.String())
}

func TestWritePlanCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlanCSV(&buf, newWeek(t)))
	assert.Equal(t, "Day,Recipe,URL\n", buf.String())
}

func TestWriteShoppingListCSV(t *testing.T) {
	p := newWeek(t)
	require.NoError(t, p.Assign("Monday", &recipe.Recipe{Label: "A", Ingredients: []recipe.Ingredient{
		{Food: "sugar", Quantity: 0.5, Measure: "cup"},
		{Food: "egg", Quantity: 2, Measure: "unit"},
	}}))

	list, err := Aggregate(p, 3)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteShoppingListCSV(&buf, list))

	want := "Ingredient,Quantity,Unit\n" +
		"egg,6,unit\n" +
		"sugar,1.5,cup\n"
	assert.Equal(t, want, buf.String())
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "3", FormatQuantity(3))
	assert.Equal(t, "0.25", FormatQuantity(0.25))
	assert.Equal(t, "0", FormatQuantity(0))
}
