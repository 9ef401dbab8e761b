package mealplan

import (
	"errors"
	"fmt"
	"sort"

	"mealplanner/internal/recipe"
)

// ErrInvalidPartySize is returned by Aggregate for a party size below 1.
var ErrInvalidPartySize = errors.New("party size must be a positive integer")

// MalformedIngredientError describes an ingredient line that was skipped.
type MalformedIngredientError struct {
	Day    string
	Recipe string
	Index  int
}

func (e *MalformedIngredientError) Error() string {
	return fmt.Sprintf("%s: recipe %q ingredient %d has no food name", e.Day, e.Recipe, e.Index)
}

// Entry is the aggregated requirement for one food.
type Entry struct {
	Food          string  `json:"food"`
	TotalQuantity float64 `json:"total_quantity"`
	Unit          string  `json:"unit"`
}

// ShoppingList is the result of Aggregate.
type ShoppingList struct {
	PartySize int               `json:"party_size"`
	Entries   map[string]*Entry `json:"entries"`
	// Skipped lists the ingredient lines left out because they had no food.
	Skipped []*MalformedIngredientError `json:"-"`
}

// Items returns the entries sorted by food name.
func (l *ShoppingList) Items() []Entry {
	items := make([]Entry, 0, len(l.Entries))
	for _, e := range l.Entries {
		items = append(items, *e)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Food < items[j].Food })
	return items
}

// Aggregate walks every ingredient of every recipe in the plan and sums the
// quantities per food, scaled by partySize. Food is the only key: lines with
// different units are still summed, and the unit of the last line seen wins.
func Aggregate(p *Plan, partySize int) (*ShoppingList, error) {
	if partySize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPartySize, partySize)
	}

	list := &ShoppingList{
		PartySize: partySize,
		Entries:   make(map[string]*Entry),
	}
	for _, day := range p.days {
		for _, r := range p.meals[day] {
			for idx, line := range r.Ingredients {
				if line.Food == "" {
					list.Skipped = append(list.Skipped, &MalformedIngredientError{Day: day, Recipe: r.Label, Index: idx})
					continue
				}
				list.add(line, partySize)
			}
		}
	}
	return list, nil
}

func (l *ShoppingList) add(line recipe.Ingredient, partySize int) {
	scaled := line.Quantity * float64(partySize)
	unit := recipe.NormalizeUnit(line.Measure)

	if e, ok := l.Entries[line.Food]; ok {
		e.TotalQuantity += scaled
		e.Unit = unit
		return
	}
	l.Entries[line.Food] = &Entry{Food: line.Food, TotalQuantity: scaled, Unit: unit}
}
