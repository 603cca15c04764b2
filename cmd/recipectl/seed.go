package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	apperrors "recipeapi/internal/errors"
	"recipeapi/internal/model"
	"recipeapi/internal/repository"
	"recipeapi/internal/service"
)

// SeedRecipeData is one entry of a seed document.
type SeedRecipeData struct {
	Title       string   `json:"title"`
	TimeMinutes int      `json:"time_minutes"`
	Price       string   `json:"price"`
	Link        string   `json:"link"`
	Tags        []string `json:"tags"`
	Ingredients []string `json:"ingredients"`
}

// seedResult counts what a seed run did.
type seedResult struct {
	Created  int
	Existing int
	Skipped  int
}

func seedCmd(a *app) *cobra.Command {
	var email, source string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample recipes for a user from a JSON file or URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := loadSeedData(cmd.Context(), source)
			if err != nil {
				return err
			}
			a.log.Info("seed data loaded", "source", source, "recipes", len(items))

			res, err := seedRecipes(cmd.Context(), a.openDB(), a.log, email, items)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Seed completed: %d created, %d already present, %d skipped\n",
				res.Created, res.Existing, res.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Owner of the seeded recipes")
	cmd.Flags().StringVar(&source, "from", "", "Path or http(s) URL of a JSON array of recipes")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

// loadSeedData reads a seed document from a local file or over HTTP.
func loadSeedData(ctx context.Context, source string) ([]SeedRecipeData, error) {
	var body io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("build seed request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch seed data: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("seed source returned status code: %d", resp.StatusCode)
		}
		body = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open seed file: %w", err)
		}
		body = f
	}
	defer body.Close()

	var items []SeedRecipeData
	if err := json.NewDecoder(body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse seed JSON: %w", err)
	}
	return items, nil
}

// seedRecipes creates the recipes for the user with email. Tags and
// ingredients are matched by name and created when missing. Recipes whose
// title the user already has are left alone; invalid entries are skipped.
func seedRecipes(ctx context.Context, gormDB *gorm.DB, log *slog.Logger, email string, items []SeedRecipeData) (seedResult, error) {
	var res seedResult

	owner, err := repository.NewUserRepository(gormDB).FindByEmail(ctx, service.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return res, fmt.Errorf("user %s: %w", email, apperrors.ErrNotFound)
		}
		return res, fmt.Errorf("find user: %w", err)
	}

	tagRepo := repository.NewTagRepository(gormDB)
	ingredientRepo := repository.NewIngredientRepository(gormDB)
	tags := newNameIndex[model.Tag](service.NewTagService(tagRepo), func(t model.Tag) (uint, string) { return t.ID, t.Name })
	ingredients := newNameIndex[model.Ingredient](service.NewIngredientService(ingredientRepo), func(i model.Ingredient) (uint, string) { return i.ID, i.Name })
	recipes := service.NewRecipeService(repository.NewRecipeRepository(gormDB), tagRepo, ingredientRepo, nil, log)

	existing, err := recipes.List(ctx, owner.ID, repository.RecipeFilter{})
	if err != nil {
		return res, err
	}
	titles := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		titles[r.Title] = struct{}{}
	}

	for _, item := range items {
		price, err := decimal.NewFromString(item.Price)
		if err != nil || strings.TrimSpace(item.Title) == "" {
			res.Skipped++
			continue
		}
		if _, ok := titles[item.Title]; ok {
			res.Existing++
			continue
		}

		tagIDs, err := tags.resolve(ctx, owner.ID, item.Tags)
		if err != nil {
			return res, err
		}
		ingredientIDs, err := ingredients.resolve(ctx, owner.ID, item.Ingredients)
		if err != nil {
			return res, err
		}

		title, minutes, link := item.Title, item.TimeMinutes, item.Link
		_, err = recipes.Create(ctx, owner.ID, service.RecipeInput{
			Title:         &title,
			TimeMinutes:   &minutes,
			Price:         &price,
			Link:          &link,
			TagIDs:        &tagIDs,
			IngredientIDs: &ingredientIDs,
		})
		if errors.Is(err, apperrors.ErrValidation) {
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("create recipe %q: %w", item.Title, err)
		}
		titles[item.Title] = struct{}{}
		res.Created++
	}
	return res, nil
}

// attributeStore is the part of a tag or ingredient service seeding needs.
type attributeStore[T any] interface {
	List(ctx context.Context, owner uint, assignedOnly bool) ([]T, error)
	Create(ctx context.Context, owner uint, name string) (*T, error)
}

// nameIndex finds or creates tags or ingredients by name.
type nameIndex[T any] struct {
	store  attributeStore[T]
	key    func(T) (uint, string)
	byName map[string]uint
}

func newNameIndex[T any](store attributeStore[T], key func(T) (uint, string)) *nameIndex[T] {
	return &nameIndex[T]{store: store, key: key}
}

func (n *nameIndex[T]) resolve(ctx context.Context, owner uint, names []string) ([]uint, error) {
	if n.byName == nil {
		items, err := n.store.List(ctx, owner, false)
		if err != nil {
			return nil, err
		}
		n.byName = make(map[string]uint, len(items))
		for _, item := range items {
			id, name := n.key(item)
			n.byName[name] = id
		}
	}

	ids := make([]uint, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if id, ok := n.byName[name]; ok {
			ids = append(ids, id)
			continue
		}
		created, err := n.store.Create(ctx, owner, name)
		if err != nil {
			return nil, err
		}
		id, _ := n.key(*created)
		n.byName[name] = id
		ids = append(ids, id)
	}
	return ids, nil
}
