package recipe

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
)

const (
	// DefaultURL is used when the upstream record carries no recipe link.
	DefaultURL = "N/A"
	// DefaultUnit is used when an ingredient line carries no measure.
	DefaultUnit = "units"

	// edamamNoUnit is the placeholder Edamam sends for countable items.
	edamamNoUnit = "<unit>"
)

// ErrEmptyLabel is returned by Normalize for a recipe without a display name.
var ErrEmptyLabel = errors.New("recipe label is empty")

// Recipe represents one recipe returned by a lookup backend.
type Recipe struct {
	ID          string       `json:"id" db:"id"`
	URI         string       `json:"uri,omitempty" db:"uri"`
	Label       string       `json:"label" db:"label"`
	Calories    float64      `json:"calories" db:"calories"`
	URL         string       `json:"url" db:"url"`
	ImageURL    string       `json:"image_url" db:"image_url"`
	Servings    float64      `json:"servings,omitempty" db:"servings"`
	DietLabels  []string     `json:"diet_labels,omitempty"`
	Ingredients []Ingredient `json:"ingredients"`
}

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	Food     string  `json:"food"`
	Quantity float64 `json:"quantity"`
	Measure  string  `json:"measure"`
	Text     string  `json:"text,omitempty"`
}

// UnmarshalJSON implements the json.Unmarshaler interface for Ingredient.
// A missing or null quantity decodes as 0 and a missing measure as DefaultUnit.
func (i *Ingredient) UnmarshalJSON(data []byte) error {
	type Alias Ingredient
	aux := &struct {
		Quantity *float64 `json:"quantity"`
		Measure  *string  `json:"measure"`
		*Alias
	}{
		Alias: (*Alias)(i),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	i.Quantity = 0
	if aux.Quantity != nil {
		i.Quantity = *aux.Quantity
	}
	i.Measure = ""
	if aux.Measure != nil {
		i.Measure = *aux.Measure
	}
	i.Food = strings.TrimSpace(i.Food)
	i.Measure = NormalizeUnit(i.Measure)

	return nil
}

// NormalizeUnit maps empty and placeholder measures to DefaultUnit.
func NormalizeUnit(measure string) string {
	measure = strings.TrimSpace(measure)
	if measure == "" || measure == edamamNoUnit {
		return DefaultUnit
	}
	return measure
}

// Normalize validates the recipe and fills documented defaults. It must be
// called once at the lookup boundary, before the recipe is cached or planned.
func (r *Recipe) Normalize() error {
	r.Label = strings.TrimSpace(r.Label)
	if r.Label == "" {
		return ErrEmptyLabel
	}
	if r.Calories < 0 {
		r.Calories = 0
	}
	if strings.TrimSpace(r.URL) == "" {
		r.URL = DefaultURL
	}
	for idx := range r.Ingredients {
		r.Ingredients[idx].Measure = NormalizeUnit(r.Ingredients[idx].Measure)
	}
	if r.Ingredients == nil {
		r.Ingredients = []Ingredient{}
	}
	if r.ID == "" {
		r.ID = GenerateID(r)
	}
	return nil
}

// GenerateID calculates the SHA256 hash that identifies a recipe. The upstream
// URI is preferred; label and URL are used when it is absent.
func GenerateID(r *Recipe) string {
	key := r.URI
	if key == "" {
		key = r.Label + "|" + r.URL
	}
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}
