package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/pageza/forkfeed/backend/internal/api"
	"github.com/pageza/forkfeed/backend/internal/middleware"
)

// Deps carries everything the route table needs.
type Deps struct {
	AuthHandler       *api.AuthHandler
	RecipeHandler     *api.RecipeHandler
	UserHandler       *api.UserHandler
	IngredientHandler *api.IngredientHandler
	ShortLinkHandler  *api.ShortLinkHandler

	TokenValidator middleware.TokenValidator
	Redis          *redis.Client
	AllowedOrigins []string
}

// SetupRouter configures the application routes
func SetupRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log.Logger))
	router.Use(middleware.CORS(deps.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := middleware.AuthMiddleware(deps.TokenValidator)
	optionalAuth := middleware.OptionalAuthMiddleware(deps.TokenValidator)
	createLimit := middleware.NewRecipeCreationRateLimiter(deps.Redis).RateLimitMiddleware()

	v1 := router.Group("/api")
	deps.AuthHandler.RegisterRoutes(v1)
	deps.RecipeHandler.RegisterRoutes(v1, auth, optionalAuth, createLimit)
	deps.UserHandler.RegisterRoutes(v1, auth, optionalAuth)
	deps.IngredientHandler.RegisterRoutes(v1)

	// Short link redirects live at the root so slugs stay short.
	deps.ShortLinkHandler.RegisterRoutes(router)

	return router
}
