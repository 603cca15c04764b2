package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipeapi/internal/model"
	"recipeapi/internal/testutil"
)

func tagNames(tags []model.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

func TestTagRepository_ListForUser(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice@example.com")
	bob := testutil.CreateUser(t, db, "bob@example.com")

	require.NoError(t, repo.Create(ctx, &model.Tag{UserID: alice.ID, Name: "Dessert"}))
	require.NoError(t, repo.Create(ctx, &model.Tag{UserID: alice.ID, Name: "Vegan"}))
	require.NoError(t, repo.Create(ctx, &model.Tag{UserID: bob.ID, Name: "Fruity"}))

	tags, err := repo.ListForUser(ctx, alice.ID, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Vegan", "Dessert"}, tagNames(tags))

	tags, err = repo.ListForUser(ctx, bob.ID, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fruity"}, tagNames(tags))
}

func TestTagRepository_ListAssignedOnly(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "cook@example.com")
	breakfast := testutil.CreateTag(t, db, user.ID, "Breakfast")
	testutil.CreateTag(t, db, user.ID, "Lunch")
	testutil.CreateRecipe(t, db, user.ID, "Coriander eggs on toast", *breakfast)
	testutil.CreateRecipe(t, db, user.ID, "Porridge", *breakfast)

	tags, err := repo.ListForUser(ctx, user.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Breakfast"}, tagNames(tags))
}

func TestIngredientRepository_FindByIDsForUser(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice@example.com")
	bob := testutil.CreateUser(t, db, "bob@example.com")
	salt := testutil.CreateIngredient(t, db, alice.ID, "Salt")
	kale := testutil.CreateIngredient(t, db, bob.ID, "Kale")

	found, err := repo.FindByIDsForUser(ctx, alice.ID, []uint{salt.ID, kale.ID})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, salt.ID, found[0].ID)

	found, err = repo.FindByIDsForUser(ctx, alice.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}
