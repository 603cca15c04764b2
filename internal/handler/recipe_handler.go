package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"recipeapi/internal/errors"
	"recipeapi/internal/service"
)

// RecipeHandler handles recipe endpoints.
type RecipeHandler struct {
	svc            service.RecipeService
	maxUploadBytes int64
}

// NewRecipeHandler creates a new recipe handler. Image uploads larger than
// maxUploadBytes are rejected.
func NewRecipeHandler(svc service.RecipeService, maxUploadBytes int64) *RecipeHandler {
	return &RecipeHandler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// RecipeRequest represents a recipe create or update request. On PATCH
// omitted fields are left unchanged.
type RecipeRequest struct {
	Title       *string          `json:"title" validate:"omitempty,max=255"`
	TimeMinutes *int             `json:"time_minutes" validate:"omitempty,min=0"`
	Price       *decimal.Decimal `json:"price" swaggertype:"string" example:"5.50"`
	Link        *string          `json:"link" validate:"omitempty,max=255"`
	Tags        *[]uint          `json:"tags"`
	Ingredients *[]uint          `json:"ingredients"`
}

func (r RecipeRequest) input() service.RecipeInput {
	return service.RecipeInput{
		Title:         r.Title,
		TimeMinutes:   r.TimeMinutes,
		Price:         r.Price,
		Link:          r.Link,
		TagIDs:        r.Tags,
		IngredientIDs: r.Ingredients,
	}
}

// RecipeImageResponse represents the result of an image upload.
type RecipeImageResponse struct {
	ID    uint   `json:"id"`
	Image string `json:"image"`
}

// ListRecipes godoc
// @Summary List the caller's recipes
// @Description Newest first. tags and ingredients take comma separated ids; both filters must match.
// @Tags recipe
// @Produce json
// @Security BearerAuth
// @Param tags query string false "Comma separated tag ids"
// @Param ingredients query string false "Comma separated ingredient ids"
// @Success 200 {array} model.Recipe
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /recipe/recipes/ [get]
func (h *RecipeHandler) ListRecipes(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	filter, err := service.NewRecipeFilter(c.QueryParam("tags"), c.QueryParam("ingredients"))
	if err != nil {
		return respondError(err)
	}

	recipes, err := h.svc.List(c.Request().Context(), userID, filter)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, recipes)
}

// CreateRecipe godoc
// @Summary Create a recipe
// @Tags recipe
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RecipeRequest true "Recipe"
// @Success 201 {object} model.Recipe
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /recipe/recipes/ [post]
func (h *RecipeHandler) CreateRecipe(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req RecipeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	recipe, err := h.svc.Create(c.Request().Context(), userID, req.input())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, recipe)
}

// GetRecipe godoc
// @Summary Get a recipe
// @Tags recipe
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 200 {object} model.Recipe
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipe/recipes/{id}/ [get]
func (h *RecipeHandler) GetRecipe(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := recipeID(c)
	if err != nil {
		return err
	}

	recipe, err := h.svc.Get(c.Request().Context(), userID, id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, recipe)
}

// UpdateRecipe godoc
// @Summary Replace a recipe
// @Description Tags and ingredients are replaced by the supplied lists; an omitted list clears them.
// @Tags recipe
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Param request body RecipeRequest true "Recipe"
// @Success 200 {object} model.Recipe
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipe/recipes/{id}/ [put]
func (h *RecipeHandler) UpdateRecipe(c echo.Context) error {
	return h.update(c, false)
}

// PatchRecipe godoc
// @Summary Partially update a recipe
// @Description Only supplied fields change. Supplied tags and ingredients are added to the existing ones.
// @Tags recipe
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Param request body RecipeRequest true "Fields to change"
// @Success 200 {object} model.Recipe
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipe/recipes/{id}/ [patch]
func (h *RecipeHandler) PatchRecipe(c echo.Context) error {
	return h.update(c, true)
}

func (h *RecipeHandler) update(c echo.Context, partial bool) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := recipeID(c)
	if err != nil {
		return err
	}

	var req RecipeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	recipe, err := h.svc.Update(c.Request().Context(), userID, id, req.input(), partial)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, recipe)
}

// DeleteRecipe godoc
// @Summary Delete a recipe and its image
// @Tags recipe
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipe/recipes/{id}/ [delete]
func (h *RecipeHandler) DeleteRecipe(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := recipeID(c)
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.Request().Context(), userID, id); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadImage godoc
// @Summary Upload an image for a recipe
// @Tags recipe
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Param image formData file true "Image file"
// @Success 200 {object} RecipeImageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipe/recipes/{id}/image/ [post]
func (h *RecipeHandler) UploadImage(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := recipeID(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return respondError(errors.Validationf("image: no file was submitted"))
	}
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		return respondError(errors.Validationf("image: file exceeds %d bytes", h.maxUploadBytes))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return respondError(fmt.Errorf("open upload: %w", err))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return respondError(fmt.Errorf("read upload: %w", err))
	}

	recipe, err := h.svc.SetImage(c.Request().Context(), userID, id, fileHeader.Filename, data)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, RecipeImageResponse{ID: recipe.ID, Image: recipe.Image})
}

// recipeID parses the :id path parameter. Non numeric ids cannot match a
// recipe, so they are reported as not found.
func recipeID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, respondError(errors.ErrNotFound)
	}
	return uint(id), nil
}
