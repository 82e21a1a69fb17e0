package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spacebook/internal/middleware"
	"spacebook/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects protected to be behind JWTAuth.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	g := protected.Group("/admin")
	g.Use(middleware.AdminOnly())
	{
		g.GET("/statistics", h.GetStatistics)
	}
}

// GetStatistics godoc
// @Summary      Operational counters
// @Tags         Admin
// @Security     BearerAuth
// @Produce      json
// @Router       /admin/statistics [get]
func (h *Handler) GetStatistics(c *gin.Context) {
	stats, err := h.service.GetStatistics(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"statistics": stats})
}
