package message

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"localsphere-backend/internal/domain"
	chatService "localsphere-backend/internal/service/chat"
	"localsphere-backend/pkg/response"
)

// Handler handles message HTTP requests
type Handler struct {
	chatSvc *chatService.Service
}

// NewHandler creates a new message handler
func NewHandler(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// List returns the non-expired messages around a position
// GET /api/messages?latitude=&longitude=&radius=2&limit=50
func (h *Handler) List(c *gin.Context) {
	latStr := c.Query("latitude")
	lngStr := c.Query("longitude")
	if latStr == "" || lngStr == "" {
		response.ValidationError(c, "Latitude and longitude are required")
		return
	}

	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil {
		response.ValidationError(c, "Invalid coordinates")
		return
	}
	origin := domain.Position{Latitude: lat, Longitude: lng}
	if !origin.Valid() {
		response.ValidationError(c, "Invalid coordinates")
		return
	}

	radius, _ := strconv.ParseFloat(c.DefaultQuery("radius", "2"), 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	messages, err := h.chatSvc.GetMessages(c.Request.Context(), origin, radius, limit)
	if err != nil {
		response.InternalError(c, "Failed to get messages")
		return
	}
	c.JSON(http.StatusOK, messages)
}
