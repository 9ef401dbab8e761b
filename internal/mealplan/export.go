package mealplan

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WritePlanCSV writes one "Day,Recipe,URL" row per assigned recipe, days in
// plan order, after a header row.
func WritePlanCSV(w io.Writer, p *Plan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Day", "Recipe", "URL"}); err != nil {
		return fmt.Errorf("failed to write plan header: %w", err)
	}
	for _, day := range p.days {
		for _, r := range p.meals[day] {
			if err := cw.Write([]string{day, r.Label, r.URL}); err != nil {
				return fmt.Errorf("failed to write plan row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteShoppingListCSV writes one "Ingredient,Quantity,Unit" row per entry,
// sorted by ingredient, after a header row.
func WriteShoppingListCSV(w io.Writer, l *ShoppingList) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Ingredient", "Quantity", "Unit"}); err != nil {
		return fmt.Errorf("failed to write shopping list header: %w", err)
	}
	for _, e := range l.Items() {
		if err := cw.Write([]string{e.Food, FormatQuantity(e.TotalQuantity), e.Unit}); err != nil {
			return fmt.Errorf("failed to write shopping list row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatQuantity renders q with the fewest digits that round-trip.
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
