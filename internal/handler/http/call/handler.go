package call

import (
	"net/http"

	"github.com/gin-gonic/gin"

	callService "localsphere-backend/internal/service/call"
	"localsphere-backend/pkg/response"
)

// Handler handles call HTTP requests
type Handler struct {
	callSvc *callService.Service
}

// NewHandler creates a new call handler
func NewHandler(callSvc *callService.Service) *Handler {
	return &Handler{callSvc: callSvc}
}

// Get returns a single call record
// GET /api/calls/:id
func (h *Handler) Get(c *gin.Context) {
	call, err := h.callSvc.Get(c.Request.Context(), c.Param("id"))
	if err == callService.ErrCallNotFound {
		response.NotFound(c, "Call not found")
		return
	}
	if err != nil {
		response.InternalError(c, "Failed to get call")
		return
	}
	c.JSON(http.StatusOK, call)
}

// UserCalls returns a user's call history, newest first
// GET /api/users/:id/calls
func (h *Handler) UserCalls(c *gin.Context) {
	calls, err := h.callSvc.UserCalls(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, "Failed to get call history")
		return
	}
	c.JSON(http.StatusOK, calls)
}
