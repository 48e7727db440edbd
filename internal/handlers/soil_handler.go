package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/agrireg/internal/errors"
	"github.com/stwalsh4118/agrireg/internal/models"
	"github.com/stwalsh4118/agrireg/internal/services"
)

// SoilHandler serves the stateless soil lookup endpoints.
type SoilHandler struct {
	service services.SoilService
}

// NewSoilHandler creates a new SoilHandler instance.
func NewSoilHandler(service services.SoilService) *SoilHandler {
	return &SoilHandler{service: service}
}

// NPKRequest represents the query parameters for the npk endpoint.
type NPKRequest struct {
	District  string `form:"district" binding:"required"`
	SoilColor string `form:"soilColor" binding:"required"`
}

// NPKResponse is the result of a nutrient lookup.
type NPKResponse struct {
	District       string               `json:"district"`
	SoilColor      string               `json:"soilColor"`
	SoilProperties models.SoilNutrients `json:"soilProperties"`
}

// DistrictsResponse lists the districts with soil data.
type DistrictsResponse struct {
	Districts []string `json:"districts"`
	Count     int      `json:"count"`
}

// SoilTypesResponse lists the soil types recorded for a district.
type SoilTypesResponse struct {
	District  string   `json:"district"`
	SoilTypes []string `json:"soilTypes"`
}

// RegisterRoutes mounts the soil endpoints on rg.
func (h *SoilHandler) RegisterRoutes(rg *gin.RouterGroup) {
	soil := rg.Group("/soil")
	{
		soil.GET("/npk", h.NPK)
		soil.GET("/districts", h.Districts)
		soil.GET("/districts/:district", h.SoilTypes)
	}
}

// NPK handles GET /api/v1/soil/npk.
func (h *SoilHandler) NPK(c *gin.Context) {
	var req NPKRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := bindingErrors(err); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	nutrients, err := h.service.LookupNPK(req.District, req.SoilColor)
	if err != nil {
		respondServiceError(c, err, "Failed to look up soil data")
		return
	}

	c.JSON(http.StatusOK, NPKResponse{
		District:       req.District,
		SoilColor:      req.SoilColor,
		SoilProperties: nutrients,
	})
}

// Districts handles GET /api/v1/soil/districts.
func (h *SoilHandler) Districts(c *gin.Context) {
	districts := h.service.Districts()
	c.JSON(http.StatusOK, DistrictsResponse{Districts: districts, Count: len(districts)})
}

// SoilTypes handles GET /api/v1/soil/districts/:district.
func (h *SoilHandler) SoilTypes(c *gin.Context) {
	district := c.Param("district")
	types, err := h.service.SoilTypes(district)
	if err != nil {
		respondServiceError(c, err, "Failed to look up soil types")
		return
	}
	c.JSON(http.StatusOK, SoilTypesResponse{District: district, SoilTypes: types})
}
