package catalog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"spacebook/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup) {
	v1.GET("/spaces/:id", h.GetSpace)
	v1.GET("/locations/:id/spaces", h.ListSpaces)
}

// GetSpace godoc
// @Summary      Space details
// @Tags         Catalog
// @Produce      json
// @Param        id path int true "Space ID"
// @Router       /spaces/{id} [get]
func (h *Handler) GetSpace(c *gin.Context) {
	id, ok := parseID(c, "Invalid space ID")
	if !ok {
		return
	}
	sp, err := h.service.GetSpace(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"space": sp})
}

func (h *Handler) ListSpaces(c *gin.Context) {
	id, ok := parseID(c, "Invalid location ID")
	if !ok {
		return
	}
	loc, spaces, err := h.service.ListSpaces(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"location": loc, "spaces": spaces})
}

func parseID(c *gin.Context, msg string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", msg)
		return 0, false
	}
	return id, true
}
