package service

import (
	"strconv"
	"strings"

	apperrors "recipeapi/internal/errors"
	"recipeapi/internal/repository"
)

// parseIDs parses a comma separated list of positive integer ids.
// Blank input yields nil; blank tokens are skipped; duplicates are dropped
// keeping first-seen order. Any other malformed token is a validation error.
func parseIDs(raw, field string) ([]uint, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	seen := make(map[uint]struct{}, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseUint(part, 10, 0)
		if err != nil || n == 0 {
			return nil, apperrors.Validationf("%s: invalid id %q", field, part)
		}
		id := uint(n)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// NewRecipeFilter builds a listing filter from the raw tags and ingredients
// query parameters.
func NewRecipeFilter(tags, ingredients string) (repository.RecipeFilter, error) {
	tagIDs, err := parseIDs(tags, "tags")
	if err != nil {
		return repository.RecipeFilter{}, err
	}
	ingredientIDs, err := parseIDs(ingredients, "ingredients")
	if err != nil {
		return repository.RecipeFilter{}, err
	}
	return repository.RecipeFilter{TagIDs: tagIDs, IngredientIDs: ingredientIDs}, nil
}
