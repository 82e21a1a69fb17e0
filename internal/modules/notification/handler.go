package notification

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"spacebook/internal/middleware"
	"spacebook/internal/pkg/response"
)

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"read"`
}

type Handler struct {
	dispatcher *Dispatcher
}

func NewHandler(dispatcher *Dispatcher) *Handler {
	return &Handler{dispatcher: dispatcher}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	g := protected.Group("/notifications")
	{
		g.GET("", h.GetNotifications)
		g.PUT("/:id/status", h.UpdateStatus)
	}
}

func (h *Handler) GetNotifications(c *gin.Context) {
	limit := 20
	if s := c.Query("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = min(v, 100)
		}
	}

	list, err := h.dispatcher.List(c.Request.Context(), middleware.CurrentSubject(c), limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"notifications": list})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid notification ID")
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "status is required")
		return
	}

	n, err := h.dispatcher.UpdateStatus(c.Request.Context(), middleware.CurrentSubject(c), id, req.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"notification": n})
}
