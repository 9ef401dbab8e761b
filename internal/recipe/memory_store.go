package recipe

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a process-local Store used when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	recipes map[string]*Recipe
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recipes: make(map[string]*Recipe)}
}

func (s *MemoryStore) GetRecipe(ctx context.Context, id string) (*Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recipes[id], nil
}

func (s *MemoryStore) SaveRecipes(ctx context.Context, recipes []*Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range recipes {
		s.recipes[r.ID] = r
	}
	return nil
}

func (s *MemoryStore) ListRecipes(ctx context.Context, filter Filter) ([]*Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recipes := make([]*Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		if filter.DietLabel != "" && !hasDietLabel(r.DietLabels, filter.DietLabel) {
			continue
		}
		if filter.MaxCalories > 0 && r.Calories > filter.MaxCalories {
			continue
		}
		recipes = append(recipes, r)
	}
	sort.Slice(recipes, func(i, j int) bool {
		if recipes[i].Label == recipes[j].Label {
			return recipes[i].ID < recipes[j].ID
		}
		return recipes[i].Label < recipes[j].Label
	})
	return recipes, nil
}
