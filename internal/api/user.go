package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/forkfeed/backend/internal/middleware"
	"github.com/pageza/forkfeed/backend/internal/service"
	"github.com/pageza/forkfeed/backend/internal/types"
)

type UserHandler struct {
	users     *service.UserService
	relations *service.RelationService
}

func NewUserHandler(users *service.UserService, relations *service.RelationService) *UserHandler {
	return &UserHandler{users: users, relations: relations}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, auth, optionalAuth gin.HandlerFunc) {
	users := router.Group("/users")
	{
		users.GET("/me", auth, h.Me)
		users.GET("/subscriptions", auth, h.Subscriptions)
		users.GET("/:id", optionalAuth, h.GetUser)
		users.PUT("/me/avatar", auth, h.UpdateAvatar)
		users.DELETE("/me/avatar", auth, h.DeleteAvatar)
		users.POST("/:id/subscribe", auth, h.Subscribe)
		users.DELETE("/:id/subscribe", auth, h.Unsubscribe)
	}
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}
	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.users.ToResponse(c.Request.Context(), user, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.users.ToResponse(c.Request.Context(), user, middleware.ViewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}

	var req types.AvatarUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	avatarURL, err := h.users.UpdateAvatar(c.Request.Context(), userID, req.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar": avatarURL})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}
	if err := h.users.DeleteAvatar(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}
	authorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	author, err := h.relations.Subscribe(c.Request.Context(), userID, authorID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.users.WithRecipes(c.Request.Context(), author, intQuery(c, "recipes_limit", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}
	authorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.relations.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}

	subscriptions, err := h.users.Subscriptions(
		c.Request.Context(),
		userID,
		intQuery(c, "recipes_limit", 0),
		intQuery(c, "limit", 0),
		intQuery(c, "offset", 0),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": subscriptions})
}
