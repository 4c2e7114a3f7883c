package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/forkfeed/backend/internal/middleware"
	"github.com/pageza/forkfeed/backend/internal/service"
	"github.com/pageza/forkfeed/backend/internal/types"
)

type RecipeHandler struct {
	recipes      *service.RecipeService
	relations    *service.RelationService
	shoppingList *service.ShoppingListService
	shortLinks   *service.ShortLinkService
	storage      service.BlobStorage
	baseURL      string
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	relations *service.RelationService,
	shoppingList *service.ShoppingListService,
	shortLinks *service.ShortLinkService,
	storage service.BlobStorage,
	baseURL string,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:      recipes,
		relations:    relations,
		shoppingList: shoppingList,
		shortLinks:   shortLinks,
		storage:      storage,
		baseURL:      baseURL,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, auth, optionalAuth, createLimit gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", optionalAuth, h.ListRecipes)
		recipes.GET("/:id", optionalAuth, h.GetRecipe)
		recipes.GET("/:id/get-link", h.GetShortLink)
		recipes.POST("", auth, createLimit, h.CreateRecipe)
		recipes.PUT("/:id", auth, h.UpdateRecipe)
		recipes.DELETE("/:id", auth, h.DeleteRecipe)
		recipes.POST("/:id/favorite", auth, h.AddFavorite)
		recipes.DELETE("/:id/favorite", auth, h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", auth, h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", auth, h.RemoveFromCart)
		recipes.GET("/download_shopping_cart", auth, h.DownloadShoppingCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	viewerID := middleware.ViewerID(c)

	query := service.ListRecipesQuery{
		Limit:  intQuery(c, "limit", 0),
		Offset: intQuery(c, "offset", 0),
	}
	if author := c.Query("author"); author != "" {
		id, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid author id"})
			return
		}
		query.AuthorID = &id
	}
	// The per-viewer filters only make sense for authenticated
	// requests; anonymous requests get an empty result like the
	// original API.
	if boolQuery(c, "is_favorited") {
		if viewerID == nil {
			c.JSON(http.StatusOK, gin.H{"recipes": []types.RecipeResponse{}})
			return
		}
		query.FavoritedBy = viewerID
	}
	if boolQuery(c, "is_in_shopping_cart") {
		if viewerID == nil {
			c.JSON(http.StatusOK, gin.H{"recipes": []types.RecipeResponse{}})
			return
		}
		query.InCartOf = viewerID
	}

	recipes, err := h.recipes.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]types.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		resp, err := h.recipes.ToResponse(c.Request.Context(), &recipes[i], viewerID)
		if err != nil {
			respondError(c, err)
			return
		}
		responses = append(responses, *resp)
	}
	c.JSON(http.StatusOK, gin.H{"recipes": responses})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.recipes.ToResponse(c.Request.Context(), recipe, middleware.ViewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}

	var req types.RecipeWrite
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	imageURL, err := h.resolveImage(c, req.Image)
	if err != nil {
		respondError(c, err)
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), userID, &req, imageURL)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.recipes.ToResponse(c.Request.Context(), recipe, &userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req types.RecipeWrite
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	imageURL, err := h.resolveImage(c, req.Image)
	if err != nil {
		respondError(c, err)
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), id, userID, &req, imageURL)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.recipes.ToResponse(c.Request.Context(), recipe, &userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addRelation(c, h.relations.AddFavorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeRelation(c, h.relations.RemoveFavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addRelation(c, h.relations.AddCartEntry)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeRelation(c, h.relations.RemoveCartEntry)
}

// addRelation and removeRelation keep the favorite and cart endpoints
// as thin shells around the shared toggle primitive.
func (h *RecipeHandler) addRelation(c *gin.Context, addFn func(ctx context.Context, userID, recipeID uuid.UUID) (*types.ShortRecipe, error)) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}
	recipeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	payload, err := addFn(c.Request.Context(), userID, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payload)
}

func (h *RecipeHandler) removeRelation(c *gin.Context, removeFn func(ctx context.Context, userID, recipeID uuid.UUID) error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}
	recipeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := removeFn(c.Request.Context(), userID, recipeID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}
	report, err := h.shoppingList.BuildShoppingList(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="shopping_cart.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(report))
}

func (h *RecipeHandler) GetShortLink(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.recipes.Get(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	originalURL := h.baseURL + "/api/recipes/" + id.String()
	link, err := h.shortLinks.GetOrCreate(c.Request.Context(), originalURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"short-link": h.shortLinks.ShortURL(link.Slug)})
}

// resolveImage turns the request's image field into a stored URL: data
// URIs are decoded and uploaded, plain URLs pass through untouched.
func (h *RecipeHandler) resolveImage(c *gin.Context, image string) (string, error) {
	if image == "" || !strings.HasPrefix(image, "data:") {
		return image, nil
	}
	data, contentType, err := service.DecodeDataURI(image)
	if err != nil {
		return "", err
	}
	return h.storage.Store(c.Request.Context(), data, contentType)
}

func intQuery(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func boolQuery(c *gin.Context, name string) bool {
	v := c.Query(name)
	return v == "1" || strings.EqualFold(v, "true")
}
