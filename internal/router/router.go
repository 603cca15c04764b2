package router

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"recipeapi/internal/auth"
	"recipeapi/internal/config"
	"recipeapi/internal/errors"
	"recipeapi/internal/handler"
	"recipeapi/internal/metrics"
)

// multipartOverhead is allowed on top of MaxUploadBytes for form framing.
const multipartOverhead = 1 << 20

// Authenticator validates a bearer token and returns its claims.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error)
}

// Check reports whether a dependency is ready to serve traffic.
type Check func(ctx context.Context) error

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	User       *handler.UserHandler
	Auth       *handler.AuthHandler
	Tag        *handler.TagHandler
	Ingredient *handler.IngredientHandler
	Recipe     *handler.RecipeHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger *slog.Logger,
	m *metrics.Metrics,
	authenticator Authenticator,
	h Handlers,
	checks map[string]Check,
) {
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(m.Middleware())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/readyz", readiness(checks))
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.Static("/media", cfg.MediaRoot)

	api := e.Group("/api")

	// Public routes
	api.POST("/user/create/", h.User.CreateUser)
	api.POST("/user/token/", h.Auth.CreateToken, tokenRateLimiter(cfg.TokenRateLimit))
	api.POST("/user/token/refresh/", h.Auth.Refresh)

	// Secured routes (require a bearer access token)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:  handler.ClaimsContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return authenticator.Authenticate(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: errors.ErrUnauthorized.Error(),
				Code:  "UNAUTHORIZED",
			})
		},
	}))

	// User routes
	secured.POST("/user/logout/", h.Auth.Logout)
	secured.GET("/user/me/", h.User.Me)
	secured.PUT("/user/me/", h.User.UpdateMe)
	secured.PATCH("/user/me/", h.User.UpdateMe)

	// Tag and ingredient routes
	secured.GET("/recipe/tags/", h.Tag.List)
	secured.POST("/recipe/tags/", h.Tag.Create)
	secured.GET("/recipe/ingredients/", h.Ingredient.List)
	secured.POST("/recipe/ingredients/", h.Ingredient.Create)

	// Recipe routes
	secured.GET("/recipe/recipes/", h.Recipe.ListRecipes)
	secured.POST("/recipe/recipes/", h.Recipe.CreateRecipe)
	secured.GET("/recipe/recipes/:id/", h.Recipe.GetRecipe)
	secured.PUT("/recipe/recipes/:id/", h.Recipe.UpdateRecipe)
	secured.PATCH("/recipe/recipes/:id/", h.Recipe.PatchRecipe)
	secured.DELETE("/recipe/recipes/:id/", h.Recipe.DeleteRecipe)
	secured.POST("/recipe/recipes/:id/image/", h.Recipe.UploadImage,
		middleware.BodyLimit(strconv.FormatInt(cfg.MaxUploadBytes+multipartOverhead, 10)))
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

// tokenRateLimiter throttles login attempts per client IP.
func tokenRateLimiter(perSecond float64) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStore(rate.Limit(perSecond)),
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, errors.ErrorResponse{
				Error: "too many requests",
				Code:  "RATE_LIMITED",
			})
		},
	})
}

// readiness runs every check with a short deadline and reports the failures.
func readiness(checks map[string]Check) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		failed := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "failed": failed})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
