package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"localsphere-backend/internal/domain"
	userService "localsphere-backend/internal/service/user"
	"localsphere-backend/pkg/constants"
	"localsphere-backend/pkg/response"
)

// Handler handles user HTTP requests
type Handler struct {
	userSvc *userService.Service
}

// NewHandler creates a new user handler
func NewHandler(userSvc *userService.Service) *Handler {
	return &Handler{userSvc: userSvc}
}

// NearbyUsersResponse is the contract of the nearby-users endpoint
type NearbyUsersResponse struct {
	Count int                  `json:"count"`
	Users []domain.UserSummary `json:"users"`
}

// demoRoster is served when no coordinates are supplied, so clients can
// exercise the UI without granting location access.
var demoRoster = []domain.UserSummary{
	{ID: "demo1", Username: "CoolPanda"},
	{ID: "demo2", Username: "SwiftEagle"},
	{ID: "demo3", Username: "BrightFox"},
	{ID: "demo4", Username: "WarmWolf"},
	{ID: "demo5", Username: "HappyDolphin"},
}

// Create handles user registration
// POST /api/users
func (h *Handler) Create(c *gin.Context) {
	var req domain.UserCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "Invalid user data")
		return
	}

	user, err := h.userSvc.Create(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c, "Failed to create user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// Get returns a single user
// GET /api/users/:id
func (h *Handler) Get(c *gin.Context) {
	user, err := h.userSvc.Get(c.Request.Context(), c.Param("id"))
	if err == userService.ErrUserNotFound {
		response.NotFound(c, "User not found")
		return
	}
	if err != nil {
		response.InternalError(c, "Failed to get user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// Nearby lists the active users within the query radius
// GET /api/nearby-users?latitude=&longitude=&radius=
func (h *Handler) Nearby(c *gin.Context) {
	latStr := c.Query("latitude")
	lngStr := c.Query("longitude")
	if latStr == "" || lngStr == "" {
		c.JSON(http.StatusOK, NearbyUsersResponse{Count: len(demoRoster), Users: demoRoster})
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

	radius := constants.DefaultRadiusMiles
	if radiusStr := c.Query("radius"); radiusStr != "" {
		if parsed, err := strconv.ParseFloat(radiusStr, 64); err == nil && parsed > 0 {
			radius = parsed
		}
	}

	users, err := h.userSvc.Nearby(c.Request.Context(), origin, radius)
	if err != nil {
		response.InternalError(c, "Failed to get nearby users")
		return
	}

	summaries := make([]domain.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	c.JSON(http.StatusOK, NearbyUsersResponse{Count: len(summaries), Users: summaries})
}
