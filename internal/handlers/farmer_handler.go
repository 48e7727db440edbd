package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/agrireg/internal/errors"
	"github.com/stwalsh4118/agrireg/internal/models"
	"github.com/stwalsh4118/agrireg/internal/services"
)

// FarmerHandler serves the farmer-data backend contract when registrations
// are stored locally. Failures answer {"message": "..."} like the remote backend.
type FarmerHandler struct {
	service services.FarmerService
}

// NewFarmerHandler creates a new FarmerHandler instance.
func NewFarmerHandler(service services.FarmerService) *FarmerHandler {
	return &FarmerHandler{service: service}
}

// MessageResponse is the farmer API failure body.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterRoutes mounts the farmer endpoints on rg.
func (h *FarmerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	farmer := rg.Group("/farmer")
	{
		farmer.POST("/register", h.Register)
		farmer.GET("/:userId", h.Get)
	}
}

// Register handles POST /api/farmer/register.
func (h *FarmerHandler) Register(c *gin.Context) {
	var payload models.RegistrationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		if validationErrors, ok := bindingErrors(err); ok {
			fields := apierrors.FieldErrors(validationErrors)
			names := make([]string, 0, len(fields))
			for name := range fields {
				names = append(names, name)
			}
			sort.Strings(names)
			c.JSON(http.StatusBadRequest, MessageResponse{
				Message: "Invalid registration: " + strings.Join(names, ", "),
			})
			return
		}
		c.JSON(http.StatusBadRequest, MessageResponse{Message: "Invalid request body"})
		return
	}

	record, err := h.service.Register(c.Request.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFarmerExists):
			c.JSON(http.StatusConflict, MessageResponse{Message: msgFarmerExists})
		case errors.Is(err, services.ErrMissingUserID):
			c.JSON(http.StatusBadRequest, MessageResponse{Message: "userId is required"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Failed to register farmer"})
		}
		return
	}

	c.JSON(http.StatusCreated, record)
}

// Get handles GET /api/farmer/:userId.
func (h *FarmerHandler) Get(c *gin.Context) {
	record, err := h.service.GetByUserID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, services.ErrFarmerNotFound) {
			c.JSON(http.StatusNotFound, MessageResponse{Message: "Farmer not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Failed to load farmer"})
		return
	}
	c.JSON(http.StatusOK, record)
}
