package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "recipeapi/internal/errors"
)

func TestParseIDs(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []uint
		wantErr bool
	}{
		{name: "empty", raw: "", want: nil},
		{name: "whitespace", raw: "   ", want: nil},
		{name: "single", raw: "4", want: []uint{4}},
		{name: "list", raw: "1,2,3", want: []uint{1, 2, 3}},
		{name: "spaces and blanks", raw: " 5 , ,6,", want: []uint{5, 6}},
		{name: "duplicates", raw: "2,2,1,2", want: []uint{2, 1}},
		{name: "letters", raw: "1,abc", wantErr: true},
		{name: "negative", raw: "-1", wantErr: true},
		{name: "zero", raw: "0", wantErr: true},
		{name: "float", raw: "1.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIDs(tt.raw, "tags")
			if tt.wantErr {
				assert.True(t, errors.Is(err, apperrors.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRecipeFilter(t *testing.T) {
	f, err := NewRecipeFilter("1,2", "")
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, f.TagIDs)
	assert.Nil(t, f.IngredientIDs)

	_, err = NewRecipeFilter("", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Equal(t, `validation failed: ingredients: invalid id "x"`, err.Error())
}
