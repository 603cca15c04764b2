package service

import (
	"context"
	"fmt"
	"strings"

	apperrors "recipeapi/internal/errors"
	"recipeapi/internal/model"
	"recipeapi/internal/repository"
)

// AttributeService manages owner scoped tags or ingredients.
type AttributeService[T model.Attribute] interface {
	Create(ctx context.Context, owner uint, name string) (*T, error)
	List(ctx context.Context, owner uint, assignedOnly bool) ([]T, error)
}

// TagService manages tags.
type TagService = AttributeService[model.Tag]

// IngredientService manages ingredients.
type IngredientService = AttributeService[model.Ingredient]

type attributeService[T model.Attribute] struct {
	repo  repository.AttributeRepository[T]
	kind  string
	build func(owner uint, name string) *T
}

// NewTagService creates a tag service.
func NewTagService(repo repository.TagRepository) TagService {
	return &attributeService[model.Tag]{
		repo: repo,
		kind: "tag",
		build: func(owner uint, name string) *model.Tag {
			return &model.Tag{UserID: owner, Name: name}
		},
	}
}

// NewIngredientService creates an ingredient service.
func NewIngredientService(repo repository.IngredientRepository) IngredientService {
	return &attributeService[model.Ingredient]{
		repo: repo,
		kind: "ingredient",
		build: func(owner uint, name string) *model.Ingredient {
			return &model.Ingredient{UserID: owner, Name: name}
		},
	}
}

func (s *attributeService[T]) Create(ctx context.Context, owner uint, name string) (*T, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validationf("%s name is required", s.kind)
	}
	if len(name) > 255 {
		return nil, apperrors.Validationf("%s name must be at most 255 characters", s.kind)
	}

	item := s.build(owner, name)
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create %s: %w", s.kind, err)
	}
	return item, nil
}

func (s *attributeService[T]) List(ctx context.Context, owner uint, assignedOnly bool) ([]T, error) {
	items, err := s.repo.ListForUser(ctx, owner, assignedOnly)
	if err != nil {
		return nil, fmt.Errorf("list %ss: %w", s.kind, err)
	}
	return items, nil
}
