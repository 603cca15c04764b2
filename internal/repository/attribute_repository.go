package repository

import (
	"context"

	"gorm.io/gorm"

	"recipeapi/internal/model"
)

// AttributeRepository persists owner scoped tags or ingredients.
type AttributeRepository[T model.Attribute] interface {
	Create(ctx context.Context, item *T) error
	// ListForUser returns the owner's items ordered by name descending.
	// With assignedOnly set, only items attached to at least one recipe are returned.
	ListForUser(ctx context.Context, owner uint, assignedOnly bool) ([]T, error)
	// FindByIDsForUser returns the owner's items whose id is in ids.
	FindByIDsForUser(ctx context.Context, owner uint, ids []uint) ([]T, error)
}

// TagRepository persists tags.
type TagRepository = AttributeRepository[model.Tag]

// IngredientRepository persists ingredients.
type IngredientRepository = AttributeRepository[model.Ingredient]

type attributeRepository[T model.Attribute] struct {
	db         *gorm.DB
	joinTable  string
	joinColumn string
}

// NewTagRepository creates a tag repository.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &attributeRepository[model.Tag]{db: db, joinTable: "recipe_tags", joinColumn: "tag_id"}
}

// NewIngredientRepository creates an ingredient repository.
func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &attributeRepository[model.Ingredient]{db: db, joinTable: "recipe_ingredients", joinColumn: "ingredient_id"}
}

func (r *attributeRepository[T]) Create(ctx context.Context, item *T) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *attributeRepository[T]) ListForUser(ctx context.Context, owner uint, assignedOnly bool) ([]T, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", owner)
	if assignedOnly {
		q = q.Where("id IN (?)", r.db.WithContext(ctx).Table(r.joinTable).Select(r.joinColumn))
	}

	items := []T{}
	if err := q.Order("name desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *attributeRepository[T]) FindByIDsForUser(ctx context.Context, owner uint, ids []uint) ([]T, error) {
	items := []T{}
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", owner, ids).
		Order("id").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
