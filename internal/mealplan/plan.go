// Package mealplan holds the per-session meal plan, the shopping list
// aggregation over it and the CSV export of both.
package mealplan

import (
	"errors"
	"fmt"
	"strings"

	"mealplanner/internal/recipe"
)

// ErrInvalidDay is returned when a day label is not part of the plan.
var ErrInvalidDay = errors.New("invalid day")

// ErrNoDays is returned when a plan is initialized with an empty day set.
var ErrNoDays = errors.New("day set is empty")

// InvalidDayError carries the rejected label. It matches ErrInvalidDay.
type InvalidDayError struct {
	Day string
}

func (e *InvalidDayError) Error() string {
	return fmt.Sprintf("invalid day %q", e.Day)
}

func (e *InvalidDayError) Is(target error) bool {
	return target == ErrInvalidDay
}

// Weekdays are the labels of the weekday scheme, in plan order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// NumberedDays returns "Day 1" through "Day n".
func NumberedDays(n int) []string {
	days := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		days = append(days, fmt.Sprintf("Day %d", i))
	}
	return days
}

// Plan maps each day label to the recipes assigned to it. A Plan is not safe
// for concurrent use; Session serializes access for the HTTP layer.
type Plan struct {
	days  []string
	meals map[string][]*recipe.Recipe
}

// New creates a plan with one empty list per day label.
func New(days []string) (*Plan, error) {
	p := &Plan{}
	if err := p.Initialize(days); err != nil {
		return nil, err
	}
	return p, nil
}

// Initialize sets up the day set on an empty plan. On a plan that is already
// initialized it does nothing, so existing assignments are never discarded.
func (p *Plan) Initialize(days []string) error {
	if p.meals != nil {
		return nil
	}

	ordered := make([]string, 0, len(days))
	meals := make(map[string][]*recipe.Recipe, len(days))
	for _, d := range days {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if _, ok := meals[d]; ok {
			continue
		}
		meals[d] = []*recipe.Recipe{}
		ordered = append(ordered, d)
	}
	if len(ordered) == 0 {
		return ErrNoDays
	}

	p.days = ordered
	p.meals = meals
	return nil
}

// Days returns the day labels in plan order.
func (p *Plan) Days() []string {
	return append([]string(nil), p.days...)
}

// Assign appends r to the given day. The same recipe may be assigned any
// number of times; every assignment counts separately.
func (p *Plan) Assign(day string, r *recipe.Recipe) error {
	if _, ok := p.meals[day]; !ok {
		return &InvalidDayError{Day: day}
	}
	if r == nil {
		return errors.New("recipe is nil")
	}
	p.meals[day] = append(p.meals[day], r)
	return nil
}

// ListDay returns a copy of the recipes assigned to day, in assignment order.
func (p *Plan) ListDay(day string) ([]*recipe.Recipe, error) {
	meals, ok := p.meals[day]
	if !ok {
		return nil, &InvalidDayError{Day: day}
	}
	return append([]*recipe.Recipe{}, meals...), nil
}

// Clear removes every recipe from day.
func (p *Plan) Clear(day string) error {
	if _, ok := p.meals[day]; !ok {
		return &InvalidDayError{Day: day}
	}
	p.meals[day] = []*recipe.Recipe{}
	return nil
}

// TotalCalories sums the calories of the recipes assigned to day.
func (p *Plan) TotalCalories(day string) (float64, error) {
	meals, ok := p.meals[day]
	if !ok {
		return 0, &InvalidDayError{Day: day}
	}
	var total float64
	for _, r := range meals {
		total += r.Calories
	}
	return total, nil
}
