package recipe

import (
	"fmt"
	"strings"
)

// Diet is the diet filter offered by the search form.
type Diet string

const (
	DietNone        Diet = "None"
	DietBalanced    Diet = "Balanced"
	DietLowCarb     Diet = "Low-Carb"
	DietHighProtein Diet = "High-Protein"
)

// DefaultQuery is the search text used when the caller sends none.
const DefaultQuery = "dinner"

// ParseDiet accepts a diet name in any case. The empty string is DietNone.
func ParseDiet(s string) (Diet, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return DietNone, nil
	case "balanced":
		return DietBalanced, nil
	case "low-carb":
		return DietLowCarb, nil
	case "high-protein":
		return DietHighProtein, nil
	}
	return "", fmt.Errorf("unknown diet %q", s)
}

// Param returns the upstream query value for the diet, or "" for DietNone.
func (d Diet) Param() string {
	if d == DietNone || d == "" {
		return ""
	}
	return strings.ToLower(string(d))
}

// Query is one recipe search request.
type Query struct {
	Text string
	Diet Diet
	// MaxCalories of 0 means no limit.
	MaxCalories int
	// Next is a continuation URL from a previous Page.
	Next string
}

// Page is one batch of search results.
type Page struct {
	Recipes []*Recipe `json:"recipes"`
	Next    string    `json:"next,omitempty"`
	Total   int       `json:"total"`
}
