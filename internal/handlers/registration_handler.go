package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/agrireg/internal/errors"
	"github.com/stwalsh4118/agrireg/internal/middleware"
	"github.com/stwalsh4118/agrireg/internal/services"
	"github.com/stwalsh4118/agrireg/internal/wizard"
)

// RegistrationHandler handles the registration wizard endpoints.
type RegistrationHandler struct {
	service services.RegistrationService
}

// NewRegistrationHandler creates a new RegistrationHandler instance.
func NewRegistrationHandler(service services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

// CreateRegistrationRequest is the body of POST /registrations.
type CreateRegistrationRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// SoilLookupRequest is the optional body of POST /registrations/:id/soil-lookup.
type SoilLookupRequest struct {
	SoilColor string `json:"soilColor"`
}

// RegistrationResponse wraps a session snapshot.
type RegistrationResponse struct {
	Registration wizard.Snapshot `json:"registration"`
}

// RegisterRoutes mounts the wizard endpoints on rg.
func (h *RegistrationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	registrations := rg.Group("/registrations")
	{
		registrations.POST("", h.Create)
		registrations.GET("/:id", h.Get)
		registrations.DELETE("/:id", h.Discard)

		registrations.PUT("/:id/personal-info", h.UpdatePersonalInfo)
		registrations.PUT("/:id/land-info", h.UpdateLandInfo)
		registrations.PUT("/:id/soil-properties", h.UpdateSoilProperties)
		registrations.PUT("/:id/environmental-conditions", h.UpdateEnvironmental)

		registrations.POST("/:id/next", h.Next)
		registrations.POST("/:id/previous", h.Previous)
		registrations.POST("/:id/soil-lookup", h.SoilLookup)
		registrations.POST("/:id/enrich", h.Enrich)
		registrations.POST("/:id/submit", h.Submit)
	}
}

// Create handles POST /api/v1/registrations.
func (h *RegistrationHandler) Create(c *gin.Context) {
	var req CreateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := bindingErrors(err); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	snap, err := h.service.Start(c.Request.Context(), req.UserID)
	if err != nil {
		respondServiceError(c, err, "Failed to start registration")
		return
	}

	c.JSON(http.StatusCreated, RegistrationResponse{Registration: snap})
}

// Get handles GET /api/v1/registrations/:id.
func (h *RegistrationHandler) Get(c *gin.Context) {
	snap, err := h.service.Get(c.Request.Context(), c.Param("id"))
	h.respond(c, snap, err)
}

// Discard handles DELETE /api/v1/registrations/:id.
func (h *RegistrationHandler) Discard(c *gin.Context) {
	if err := h.service.Discard(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err, "Failed to discard registration")
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdatePersonalInfo handles PUT /api/v1/registrations/:id/personal-info.
func (h *RegistrationHandler) UpdatePersonalInfo(c *gin.Context) {
	var patch wizard.PersonalInfoPatch
	if !bindPatch(c, &patch) {
		return
	}
	snap, err := h.service.UpdatePersonalInfo(c.Request.Context(), c.Param("id"), patch)
	h.respond(c, snap, err)
}

// UpdateLandInfo handles PUT /api/v1/registrations/:id/land-info.
func (h *RegistrationHandler) UpdateLandInfo(c *gin.Context) {
	var patch wizard.LandInfoPatch
	if !bindPatch(c, &patch) {
		return
	}
	snap, err := h.service.UpdateLandInfo(c.Request.Context(), c.Param("id"), patch)
	h.respond(c, snap, err)
}

// UpdateSoilProperties handles PUT /api/v1/registrations/:id/soil-properties.
func (h *RegistrationHandler) UpdateSoilProperties(c *gin.Context) {
	var patch wizard.SoilPropertiesPatch
	if !bindPatch(c, &patch) {
		return
	}
	snap, err := h.service.UpdateSoilProperties(c.Request.Context(), c.Param("id"), patch)
	h.respond(c, snap, err)
}

// UpdateEnvironmental handles PUT /api/v1/registrations/:id/environmental-conditions.
func (h *RegistrationHandler) UpdateEnvironmental(c *gin.Context) {
	var patch wizard.EnvironmentalPatch
	if !bindPatch(c, &patch) {
		return
	}
	snap, err := h.service.UpdateEnvironmental(c.Request.Context(), c.Param("id"), patch)
	h.respond(c, snap, err)
}

// Next handles POST /api/v1/registrations/:id/next.
func (h *RegistrationHandler) Next(c *gin.Context) {
	snap, err := h.service.Next(c.Request.Context(), c.Param("id"))
	h.respond(c, snap, err)
}

// Previous handles POST /api/v1/registrations/:id/previous.
func (h *RegistrationHandler) Previous(c *gin.Context) {
	snap, err := h.service.Previous(c.Request.Context(), c.Param("id"))
	h.respond(c, snap, err)
}

// SoilLookup handles POST /api/v1/registrations/:id/soil-lookup.
// The body is optional; without it the draft's soil colour is used.
func (h *RegistrationHandler) SoilLookup(c *gin.Context) {
	var req SoilLookupRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			apierrors.BadRequest(c, "Invalid request body", nil)
			return
		}
	}

	snap, err := h.service.LookupSoil(c.Request.Context(), c.Param("id"), req.SoilColor)
	h.respond(c, snap, err)
}

// Enrich handles POST /api/v1/registrations/:id/enrich.
func (h *RegistrationHandler) Enrich(c *gin.Context) {
	snap, err := h.service.Enrich(c.Request.Context(), c.Param("id"))
	h.respond(c, snap, err)
}

// Submit handles POST /api/v1/registrations/:id/submit.
func (h *RegistrationHandler) Submit(c *gin.Context) {
	result, err := h.service.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to submit registration")
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Registration submitted", map[string]interface{}{
			"farmer_id": result.FarmerID,
		})
	}
	c.JSON(http.StatusCreated, result)
}

func (h *RegistrationHandler) respond(c *gin.Context, snap wizard.Snapshot, err error) {
	if err != nil {
		respondServiceError(c, err, "Failed to update registration")
		return
	}
	c.JSON(http.StatusOK, RegistrationResponse{Registration: snap})
}

func bindPatch(c *gin.Context, patch interface{}) bool {
	if err := c.ShouldBindJSON(patch); err != nil {
		apierrors.BadRequest(c, "Invalid request body", map[string]interface{}{
			"reason": err.Error(),
		})
		return false
	}
	return true
}
