package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "recipeapi/internal/errors"
	"recipeapi/internal/model"
	"recipeapi/internal/repository"
)

// RecipeInput carries client supplied recipe fields. A nil field was not
// supplied; a non-nil empty id slice was supplied as empty.
type RecipeInput struct {
	Title         *string
	TimeMinutes   *int
	Price         *decimal.Decimal
	Link          *string
	TagIDs        *[]uint
	IngredientIDs *[]uint
}

// ImageStore saves and removes uploaded images.
type ImageStore interface {
	Save(filename string, data []byte) (string, error)
	Delete(path string) error
}

// RecipeService handles owner scoped recipe operations.
type RecipeService interface {
	List(ctx context.Context, owner uint, filter repository.RecipeFilter) ([]model.Recipe, error)
	Get(ctx context.Context, owner, id uint) (*model.Recipe, error)
	Create(ctx context.Context, owner uint, in RecipeInput) (*model.Recipe, error)
	// Update applies a full (PUT) or partial (PATCH) update. A full update
	// replaces tags and ingredients; a partial one only appends to them.
	Update(ctx context.Context, owner, id uint, in RecipeInput, partial bool) (*model.Recipe, error)
	// Delete removes the recipe and its stored image. If the image cannot be
	// removed the recipe is kept.
	Delete(ctx context.Context, owner, id uint) error
	SetImage(ctx context.Context, owner, id uint, filename string, data []byte) (*model.Recipe, error)
}

type recipeService struct {
	recipes     repository.RecipeRepository
	tags        repository.TagRepository
	ingredients repository.IngredientRepository
	images      ImageStore
	logger      *slog.Logger
}

// NewRecipeService creates a new recipe service.
func NewRecipeService(
	recipes repository.RecipeRepository,
	tags repository.TagRepository,
	ingredients repository.IngredientRepository,
	images ImageStore,
	logger *slog.Logger,
) RecipeService {
	return &recipeService{
		recipes:     recipes,
		tags:        tags,
		ingredients: ingredients,
		images:      images,
		logger:      logger,
	}
}

func (s *recipeService) List(ctx context.Context, owner uint, filter repository.RecipeFilter) ([]model.Recipe, error) {
	recipes, err := s.recipes.ListForUser(ctx, owner, filter)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

func (s *recipeService) Get(ctx context.Context, owner, id uint) (*model.Recipe, error) {
	recipe, err := s.recipes.FindForUser(ctx, owner, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("find recipe: %w", err)
	}
	return recipe, nil
}

func (s *recipeService) Create(ctx context.Context, owner uint, in RecipeInput) (*model.Recipe, error) {
	if err := requireFull(in); err != nil {
		return nil, err
	}

	recipe := &model.Recipe{UserID: owner}
	if err := applyScalars(recipe, in); err != nil {
		return nil, err
	}

	tags, ingredients, err := s.resolveRelations(ctx, owner, in)
	if err != nil {
		return nil, err
	}

	err = s.recipes.WithTransaction(ctx, func(ctx context.Context, tx repository.RecipeRepository) error {
		if err := tx.Create(ctx, recipe); err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		if err := tx.AppendTags(ctx, recipe, tags); err != nil {
			return fmt.Errorf("attach tags: %w", err)
		}
		if err := tx.AppendIngredients(ctx, recipe, ingredients); err != nil {
			return fmt.Errorf("attach ingredients: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("recipe created", "recipe_id", recipe.ID, "user_id", owner)
	return s.Get(ctx, owner, recipe.ID)
}

func (s *recipeService) Update(ctx context.Context, owner, id uint, in RecipeInput, partial bool) (*model.Recipe, error) {
	recipe, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if !partial {
		if err := requireFull(in); err != nil {
			return nil, err
		}
		// Omitted relations on a full update mean "none".
		if in.TagIDs == nil {
			in.TagIDs = &[]uint{}
		}
		if in.IngredientIDs == nil {
			in.IngredientIDs = &[]uint{}
		}
	}

	if err := applyScalars(recipe, in); err != nil {
		return nil, err
	}

	tags, ingredients, err := s.resolveRelations(ctx, owner, in)
	if err != nil {
		return nil, err
	}

	err = s.recipes.WithTransaction(ctx, func(ctx context.Context, tx repository.RecipeRepository) error {
		if err := tx.Save(ctx, recipe); err != nil {
			return fmt.Errorf("save recipe: %w", err)
		}
		var relErr error
		if in.TagIDs != nil {
			if partial {
				relErr = tx.AppendTags(ctx, recipe, tags)
			} else {
				relErr = tx.ReplaceTags(ctx, recipe, tags)
			}
			if relErr != nil {
				return fmt.Errorf("update tags: %w", relErr)
			}
		}
		if in.IngredientIDs != nil {
			if partial {
				relErr = tx.AppendIngredients(ctx, recipe, ingredients)
			} else {
				relErr = tx.ReplaceIngredients(ctx, recipe, ingredients)
			}
			if relErr != nil {
				return fmt.Errorf("update ingredients: %w", relErr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, owner, id)
}

func (s *recipeService) Delete(ctx context.Context, owner, id uint) error {
	recipe, err := s.Get(ctx, owner, id)
	if err != nil {
		return err
	}

	err = s.recipes.WithTransaction(ctx, func(ctx context.Context, tx repository.RecipeRepository) error {
		if err := tx.Delete(ctx, recipe); err != nil {
			return fmt.Errorf("delete recipe: %w", err)
		}
		// Runs inside the transaction so a failed removal keeps the row.
		// A commit failure after this point leaves the row without its file.
		if err := s.deleteImage(recipe); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("recipe deleted", "recipe_id", id, "user_id", owner)
	return nil
}

func (s *recipeService) SetImage(ctx context.Context, owner, id uint, filename string, data []byte) (*model.Recipe, error) {
	recipe, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	path, err := s.images.Save(filename, data)
	if err != nil {
		return nil, err
	}

	previous := recipe.Image
	recipe.Image = path
	if err := s.recipes.Save(ctx, recipe); err != nil {
		if delErr := s.images.Delete(path); delErr != nil {
			s.logger.Warn("failed to remove orphaned image", "path", path, "error", delErr)
		}
		return nil, fmt.Errorf("save recipe image: %w", err)
	}

	if previous != "" && previous != path {
		if err := s.images.Delete(previous); err != nil {
			s.logger.Warn("failed to remove replaced image", "path", previous, "error", err)
		}
	}

	s.logger.Info("recipe image stored", "recipe_id", id, "path", path)
	return recipe, nil
}

// deleteImage removes the recipe's stored file, if any.
func (s *recipeService) deleteImage(recipe *model.Recipe) error {
	if recipe.Image == "" {
		return nil
	}
	if err := s.images.Delete(recipe.Image); err != nil {
		return fmt.Errorf("delete recipe image: %w", err)
	}
	return nil
}

func (s *recipeService) resolveRelations(ctx context.Context, owner uint, in RecipeInput) ([]model.Tag, []model.Ingredient, error) {
	tags, err := resolveOwned(ctx, s.tags, owner, in.TagIDs, "tag", func(t model.Tag) uint { return t.ID })
	if err != nil {
		return nil, nil, err
	}
	ingredients, err := resolveOwned(ctx, s.ingredients, owner, in.IngredientIDs, "ingredient", func(i model.Ingredient) uint { return i.ID })
	if err != nil {
		return nil, nil, err
	}
	return tags, ingredients, nil
}

// resolveOwned loads the owner's items for ids. Ids that are unknown or
// belong to another user are a validation error.
func resolveOwned[T model.Attribute](
	ctx context.Context,
	repo repository.AttributeRepository[T],
	owner uint,
	ids *[]uint,
	kind string,
	idOf func(T) uint,
) ([]T, error) {
	if ids == nil || len(*ids) == 0 {
		return nil, nil
	}

	wanted := make([]uint, 0, len(*ids))
	seen := make(map[uint]struct{}, len(*ids))
	for _, id := range *ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		wanted = append(wanted, id)
	}

	items, err := repo.FindByIDsForUser(ctx, owner, wanted)
	if err != nil {
		return nil, fmt.Errorf("load %ss: %w", kind, err)
	}
	if len(items) == len(wanted) {
		return items, nil
	}

	found := make(map[uint]struct{}, len(items))
	for _, item := range items {
		found[idOf(item)] = struct{}{}
	}
	for _, id := range wanted {
		if _, ok := found[id]; !ok {
			return nil, apperrors.Validationf("invalid %s id %d", kind, id)
		}
	}
	return items, nil
}

func requireFull(in RecipeInput) error {
	var missing []string
	if in.Title == nil {
		missing = append(missing, "title")
	}
	if in.TimeMinutes == nil {
		missing = append(missing, "time_minutes")
	}
	if in.Price == nil {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		return apperrors.Validationf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// applyScalars validates and copies supplied scalar fields onto recipe.
func applyScalars(recipe *model.Recipe, in RecipeInput) error {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return apperrors.Validationf("title may not be blank")
		}
		if len(title) > 255 {
			return apperrors.Validationf("title must be at most 255 characters")
		}
		recipe.Title = title
	}
	if in.TimeMinutes != nil {
		if *in.TimeMinutes < 0 {
			return apperrors.Validationf("time_minutes must be zero or greater")
		}
		recipe.TimeMinutes = *in.TimeMinutes
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return apperrors.Validationf("price must be zero or greater")
		}
		if in.Price.GreaterThanOrEqual(maxPrice) {
			return apperrors.Validationf("price must be less than %s", maxPrice.String())
		}
		recipe.Price = in.Price.Round(2)
	}
	if in.Link != nil {
		link := strings.TrimSpace(*in.Link)
		if len(link) > 255 {
			return apperrors.Validationf("link must be at most 255 characters")
		}
		recipe.Link = link
	}
	return nil
}

// maxPrice matches the decimal(7,2) column.
var maxPrice = decimal.New(1, 5)
