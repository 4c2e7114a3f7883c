package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/forkfeed/backend/internal/service"
)

type ShortLinkHandler struct {
	shortLinks *service.ShortLinkService
}

func NewShortLinkHandler(shortLinks *service.ShortLinkService) *ShortLinkHandler {
	return &ShortLinkHandler{shortLinks: shortLinks}
}

// RegisterRoutes mounts the redirect outside the /api prefix.
func (h *ShortLinkHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/s/:slug", h.Redirect)
}

func (h *ShortLinkHandler) Redirect(c *gin.Context) {
	originalURL, err := h.shortLinks.Resolve(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, originalURL)
}
