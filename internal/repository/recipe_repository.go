package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recipeapi/internal/model"
)

// RecipeFilter narrows a recipe listing. An empty id set leaves that
// dimension unconstrained; both sets together are combined with AND.
type RecipeFilter struct {
	TagIDs        []uint
	IngredientIDs []uint
}

// RecipeRepository defines recipe persistence operations. Every read is
// scoped to an owner.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *model.Recipe) error
	Save(ctx context.Context, recipe *model.Recipe) error
	Delete(ctx context.Context, recipe *model.Recipe) error
	FindForUser(ctx context.Context, owner, id uint) (*model.Recipe, error)
	ListForUser(ctx context.Context, owner uint, filter RecipeFilter) ([]model.Recipe, error)
	// Many-to-many edges
	ReplaceTags(ctx context.Context, recipe *model.Recipe, tags []model.Tag) error
	AppendTags(ctx context.Context, recipe *model.Recipe, tags []model.Tag) error
	ReplaceIngredients(ctx context.Context, recipe *model.Recipe, ingredients []model.Ingredient) error
	AppendIngredients(ctx context.Context, recipe *model.Recipe, ingredients []model.Ingredient) error
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo RecipeRepository) error) error
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository.
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// Create inserts the recipe row only; edges are attached separately.
func (r *recipeRepository) Create(ctx context.Context, recipe *model.Recipe) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(recipe).Error
}

// Save updates scalar columns without touching edges.
func (r *recipeRepository) Save(ctx context.Context, recipe *model.Recipe) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(recipe).Error
}

// Delete removes the recipe and its join rows. Tags and ingredients survive.
func (r *recipeRepository) Delete(ctx context.Context, recipe *model.Recipe) error {
	return r.db.WithContext(ctx).Select(clause.Associations).Delete(recipe).Error
}

func (r *recipeRepository) FindForUser(ctx context.Context, owner, id uint) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Tags", orderByName).
		Preload("Ingredients", orderByName).
		Where("user_id = ?", owner).
		First(&recipe, id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ListForUser builds the owner scoped query fresh on each call.
func (r *recipeRepository) ListForUser(ctx context.Context, owner uint, filter RecipeFilter) ([]model.Recipe, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", owner)

	if len(filter.TagIDs) > 0 {
		q = q.Where("id IN (?)", r.db.WithContext(ctx).
			Table("recipe_tags").
			Select("recipe_id").
			Where("tag_id IN ?", filter.TagIDs))
	}
	if len(filter.IngredientIDs) > 0 {
		q = q.Where("id IN (?)", r.db.WithContext(ctx).
			Table("recipe_ingredients").
			Select("recipe_id").
			Where("ingredient_id IN ?", filter.IngredientIDs))
	}

	recipes := []model.Recipe{}
	if err := q.
		Preload("Tags", orderByName).
		Preload("Ingredients", orderByName).
		Order("id desc").
		Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) ReplaceTags(ctx context.Context, recipe *model.Recipe, tags []model.Tag) error {
	assoc := r.db.WithContext(ctx).Model(recipe).Association("Tags")
	if len(tags) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(tags)
}

func (r *recipeRepository) AppendTags(ctx context.Context, recipe *model.Recipe, tags []model.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(recipe).Association("Tags").Append(tags)
}

func (r *recipeRepository) ReplaceIngredients(ctx context.Context, recipe *model.Recipe, ingredients []model.Ingredient) error {
	assoc := r.db.WithContext(ctx).Model(recipe).Association("Ingredients")
	if len(ingredients) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(ingredients)
}

func (r *recipeRepository) AppendIngredients(ctx context.Context, recipe *model.Recipe, ingredients []model.Ingredient) error {
	if len(ingredients) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(recipe).Association("Ingredients").Append(ingredients)
}

// WithTransaction executes a function within a database transaction.
func (r *recipeRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo RecipeRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &recipeRepository{db: tx}
		return fn(ctx, txRepo)
	})
}

func orderByName(db *gorm.DB) *gorm.DB {
	return db.Order("name")
}
