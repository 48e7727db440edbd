package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/agrireg/internal/services"
)

// WeatherHandler proxies the dashboard weather widget so the API key stays
// on the server.
type WeatherHandler struct {
	service services.WeatherService
}

// NewWeatherHandler creates a new WeatherHandler instance.
func NewWeatherHandler(service services.WeatherService) *WeatherHandler {
	return &WeatherHandler{service: service}
}

// Current handles GET /api/v1/weather?q=.
func (h *WeatherHandler) Current(c *gin.Context) {
	w, err := h.service.Current(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondServiceError(c, err, "Failed to fetch weather")
		return
	}
	c.JSON(http.StatusOK, gin.H{"weather": w})
}
