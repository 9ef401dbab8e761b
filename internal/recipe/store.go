package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Filter narrows ListRecipes. Zero values mean "no constraint".
type Filter struct {
	DietLabel   string
	MaxCalories float64
}

// Store defines the interface for cached recipe operations.
type Store interface {
	GetRecipe(ctx context.Context, id string) (*Recipe, error)
	SaveRecipes(ctx context.Context, recipes []*Recipe) error
	ListRecipes(ctx context.Context, filter Filter) ([]*Recipe, error)
}

// PostgresStore implements the Store interface for PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS recipes (
		id TEXT PRIMARY KEY,
		uri TEXT,
		label TEXT NOT NULL,
		calories DOUBLE PRECISION NOT NULL DEFAULT 0,
		url TEXT,
		image_url TEXT,
		servings DOUBLE PRECISION NOT NULL DEFAULT 0,
		diet_labels JSONB,
		ingredients JSONB
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create recipes table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

const selectRecipe = "SELECT id, uri, label, calories, url, image_url, servings, diet_labels, ingredients FROM recipes"

type recipeRow struct {
	ID          string  `db:"id"`
	URI         string  `db:"uri"`
	Label       string  `db:"label"`
	Calories    float64 `db:"calories"`
	URL         string  `db:"url"`
	ImageURL    string  `db:"image_url"`
	Servings    float64 `db:"servings"`
	DietLabels  []byte  `db:"diet_labels"`
	Ingredients []byte  `db:"ingredients"`
}

func (row recipeRow) toRecipe() (*Recipe, error) {
	r := &Recipe{
		ID:       row.ID,
		URI:      row.URI,
		Label:    row.Label,
		Calories: row.Calories,
		URL:      row.URL,
		ImageURL: row.ImageURL,
		Servings: row.Servings,
	}
	if len(row.DietLabels) > 0 {
		if err := json.Unmarshal(row.DietLabels, &r.DietLabels); err != nil {
			return nil, fmt.Errorf("failed to unmarshal diet labels: %w", err)
		}
	}
	if len(row.Ingredients) > 0 {
		if err := json.Unmarshal(row.Ingredients, &r.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ingredients: %w", err)
		}
	}
	if r.Ingredients == nil {
		r.Ingredients = []Ingredient{}
	}
	return r, nil
}

// GetRecipe retrieves a recipe by its ID. A missing recipe returns nil, nil.
func (s *PostgresStore) GetRecipe(ctx context.Context, id string) (*Recipe, error) {
	var row recipeRow
	err := s.db.GetContext(ctx, &row, selectRecipe+" WHERE id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe by id: %w", err)
	}
	return row.toRecipe()
}

// SaveRecipes upserts every recipe in a single transaction.
func (s *PostgresStore) SaveRecipes(ctx context.Context, recipes []*Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range recipes {
		dietJSON, err := json.Marshal(r.DietLabels)
		if err != nil {
			return fmt.Errorf("failed to marshal diet labels: %w", err)
		}
		ingredientsJSON, err := json.Marshal(r.Ingredients)
		if err != nil {
			return fmt.Errorf("failed to marshal ingredients: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO recipes (id, uri, label, calories, url, image_url, servings, diet_labels, ingredients) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) ON CONFLICT (id) DO UPDATE SET uri = $2, label = $3, calories = $4, url = $5, image_url = $6, servings = $7, diet_labels = $8, ingredients = $9",
			r.ID,
			r.URI,
			r.Label,
			r.Calories,
			r.URL,
			r.ImageURL,
			r.Servings,
			dietJSON,
			ingredientsJSON,
		)
		if err != nil {
			return fmt.Errorf("failed to save recipe %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recipes: %w", err)
	}
	return nil
}

// ListRecipes retrieves cached recipes matching the filter, ordered by label.
func (s *PostgresStore) ListRecipes(ctx context.Context, filter Filter) ([]*Recipe, error) {
	var args []interface{}
	query := selectRecipe + " WHERE 1=1"

	paramCount := 1
	if filter.DietLabel != "" {
		labelJSON, err := json.Marshal([]string{filter.DietLabel})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal diet filter: %w", err)
		}
		query += fmt.Sprintf(" AND diet_labels @> $%d::jsonb", paramCount)
		args = append(args, string(labelJSON))
		paramCount++
	}
	if filter.MaxCalories > 0 {
		query += fmt.Sprintf(" AND calories <= $%d", paramCount)
		args = append(args, filter.MaxCalories)
		paramCount++
	}
	query += " ORDER BY label"

	var rows []recipeRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	recipes := make([]*Recipe, 0, len(rows))
	for _, row := range rows {
		r, err := row.toRecipe()
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

// hasDietLabel reports whether labels contains want, ignoring case.
func hasDietLabel(labels []string, want string) bool {
	for _, l := range labels {
		if strings.EqualFold(l, want) {
			return true
		}
	}
	return false
}
