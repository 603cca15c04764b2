package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"recipeapi/internal/errors"
	"recipeapi/internal/model"
)

// Lister lists the caller's items.
type Lister[T any] interface {
	List(ctx context.Context, owner uint, assignedOnly bool) ([]T, error)
}

// Creator creates an item owned by the caller.
type Creator[T any] interface {
	Create(ctx context.Context, owner uint, name string) (*T, error)
}

// AttributeHandler serves the tag and ingredient collections. Each operation
// delegates to its own capability, so a read-only collection can be built
// with a nil Creator.
type AttributeHandler[T model.Attribute] struct {
	lister  Lister[T]
	creator Creator[T]
}

// TagHandler serves /recipe/tags/.
type TagHandler = AttributeHandler[model.Tag]

// IngredientHandler serves /recipe/ingredients/.
type IngredientHandler = AttributeHandler[model.Ingredient]

// NewAttributeHandler creates a handler from its capabilities.
func NewAttributeHandler[T model.Attribute](lister Lister[T], creator Creator[T]) *AttributeHandler[T] {
	return &AttributeHandler[T]{lister: lister, creator: creator}
}

// AttributeRequest represents a tag or ingredient create request.
type AttributeRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// List godoc
// @Summary List the caller's tags or ingredients
// @Description Ordered by name descending. assigned_only=1 keeps only entries used by a recipe.
// @Tags recipe
// @Produce json
// @Security BearerAuth
// @Param assigned_only query int false "Only entries assigned to recipes" Enums(0, 1)
// @Success 200 {array} model.Tag
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /recipe/tags/ [get]
// @Router /recipe/ingredients/ [get]
func (h *AttributeHandler[T]) List(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	assignedOnly, err := parseAssignedOnly(c.QueryParam("assigned_only"))
	if err != nil {
		return err
	}

	items, err := h.lister.List(c.Request().Context(), userID, assignedOnly)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// Create godoc
// @Summary Create a tag or ingredient
// @Tags recipe
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AttributeRequest true "Name"
// @Success 201 {object} model.Tag
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /recipe/tags/ [post]
// @Router /recipe/ingredients/ [post]
func (h *AttributeHandler[T]) Create(c echo.Context) error {
	if h.creator == nil {
		return echo.ErrMethodNotAllowed
	}

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req AttributeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	item, err := h.creator.Create(c.Request().Context(), userID, req.Name)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, item)
}

func parseAssignedOnly(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || (n != 0 && n != 1) {
		return false, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "assigned_only must be 0 or 1",
			Code:  "VALIDATION_ERROR",
		})
	}
	return n == 1, nil
}
