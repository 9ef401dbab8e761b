package mealplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealplanner/internal/recipe"
)

func newWeek(t *testing.T) *Plan {
	t.Helper()
	p, err := New(Weekdays)
	require.NoError(t, err)
	return p
}

func TestNewPlanHasEmptyDays(t *testing.T) {
	p := newWeek(t)

	assert.Equal(t, Weekdays, p.Days())
	for _, day := range Weekdays {
		meals, err := p.ListDay(day)
		require.NoError(t, err)
		assert.NotNil(t, meals)
		assert.Empty(t, meals)
	}
}

func TestNumberedDays(t *testing.T) {
	assert.Equal(t, []string{"Day 1", "Day 2", "Day 3"}, NumberedDays(3))

	p, err := New(NumberedDays(7))
	require.NoError(t, err)
	assert.Len(t, p.Days(), 7)
	assert.Equal(t, "Day 7", p.Days()[6])
}

func TestNewRejectsEmptyDaySet(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNoDays)

	_, err = New([]string{" ", ""})
	assert.ErrorIs(t, err, ErrNoDays)
}

func TestNewCollapsesDuplicateDays(t *testing.T) {
	p, err := New([]string{"Monday", "Tuesday", "Monday"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Monday", "Tuesday"}, p.Days())
}

func TestInitializeKeepsAssignments(t *testing.T) {
	p := newWeek(t)
	soup := &recipe.Recipe{Label: "Soup"}
	require.NoError(t, p.Assign("Monday", soup))

	require.NoError(t, p.Initialize(Weekdays))
	require.NoError(t, p.Initialize([]string{"Other"}))

	meals, err := p.ListDay("Monday")
	require.NoError(t, err)
	assert.Equal(t, []*recipe.Recipe{soup}, meals)
	assert.Equal(t, Weekdays, p.Days())
}

func TestAssignKeepsOrderAndDuplicates(t *testing.T) {
	p := newWeek(t)
	a := &recipe.Recipe{Label: "A"}
	b := &recipe.Recipe{Label: "B"}

	for _, r := range []*recipe.Recipe{a, b, a} {
		require.NoError(t, p.Assign("Wednesday", r))
	}

	meals, err := p.ListDay("Wednesday")
	require.NoError(t, err)
	assert.Equal(t, []*recipe.Recipe{a, b, a}, meals)
}

func TestAssignInvalidDay(t *testing.T) {
	p := newWeek(t)
	err := p.Assign("Funday", &recipe.Recipe{Label: "A"})

	assert.ErrorIs(t, err, ErrInvalidDay)
	var dayErr *InvalidDayError
	require.ErrorAs(t, err, &dayErr)
	assert.Equal(t, "Funday", dayErr.Day)

	for _, day := range p.Days() {
		meals, err := p.ListDay(day)
		require.NoError(t, err)
		assert.Empty(t, meals)
	}
	assert.Equal(t, Weekdays, p.Days())
}

func TestListDayReturnsCopy(t *testing.T) {
	p := newWeek(t)
	require.NoError(t, p.Assign("Friday", &recipe.Recipe{Label: "A"}))

	meals, err := p.ListDay("Friday")
	require.NoError(t, err)
	meals[0] = &recipe.Recipe{Label: "Changed"}

	again, err := p.ListDay("Friday")
	require.NoError(t, err)
	assert.Equal(t, "A", again[0].Label)

	_, err = p.ListDay("Someday")
	assert.ErrorIs(t, err, ErrInvalidDay)
}

func TestClearAndTotalCalories(t *testing.T) {
	p := newWeek(t)
	require.NoError(t, p.Assign("Sunday", &recipe.Recipe{Label: "A", Calories: 400.5}))
	require.NoError(t, p.Assign("Sunday", &recipe.Recipe{Label: "B", Calories: 99.5}))

	total, err := p.TotalCalories("Sunday")
	require.NoError(t, err)
	assert.Equal(t, 500.0, total)

	require.NoError(t, p.Clear("Sunday"))
	meals, err := p.ListDay("Sunday")
	require.NoError(t, err)
	assert.Empty(t, meals)

	assert.ErrorIs(t, p.Clear("Nope"), ErrInvalidDay)
	_, err = p.TotalCalories("Nope")
	assert.ErrorIs(t, err, ErrInvalidDay)
}
