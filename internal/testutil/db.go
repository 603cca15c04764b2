// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"recipeapi/internal/db"
	"recipeapi/internal/model"
)

// NewDB opens a migrated SQLite database in a temp dir, closed when the test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gormDB
}

// CreateUser inserts a user with the given email.
func CreateUser(t *testing.T, gormDB *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "x", IsActive: true}
	if err := gormDB.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// CreateTag inserts a tag owned by owner.
func CreateTag(t *testing.T, gormDB *gorm.DB, owner uint, name string) *model.Tag {
	t.Helper()
	tag := &model.Tag{UserID: owner, Name: name}
	if err := gormDB.Create(tag).Error; err != nil {
		t.Fatalf("create tag: %v", err)
	}
	return tag
}

// CreateIngredient inserts an ingredient owned by owner.
func CreateIngredient(t *testing.T, gormDB *gorm.DB, owner uint, name string) *model.Ingredient {
	t.Helper()
	ingredient := &model.Ingredient{UserID: owner, Name: name}
	if err := gormDB.Create(ingredient).Error; err != nil {
		t.Fatalf("create ingredient: %v", err)
	}
	return ingredient
}

// CreateRecipe inserts a sample recipe and links the given tags.
func CreateRecipe(t *testing.T, gormDB *gorm.DB, owner uint, title string, tags ...model.Tag) *model.Recipe {
	t.Helper()
	recipe := &model.Recipe{
		UserID:      owner,
		Title:       title,
		TimeMinutes: 10,
		Price:       decimal.RequireFromString("5.00"),
		Tags:        tags,
	}
	if err := gormDB.Create(recipe).Error; err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	return recipe
}

// TagIDs returns the ids of a recipe's loaded tags.
func TagIDs(r *model.Recipe) []uint {
	ids := make([]uint, 0, len(r.Tags))
	for _, tag := range r.Tags {
		ids = append(ids, tag.ID)
	}
	return ids
}

// IngredientIDs returns the ids of a recipe's loaded ingredients.
func IngredientIDs(r *model.Recipe) []uint {
	ids := make([]uint, 0, len(r.Ingredients))
	for _, ingredient := range r.Ingredients {
		ids = append(ids, ingredient.ID)
	}
	return ids
}
