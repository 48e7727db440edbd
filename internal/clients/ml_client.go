package clients

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stwalsh4118/agrireg/internal/models"
)

const (
	mlService = "ml backend"

	geocodeCacheTTL     = 24 * time.Hour
	geocodeCacheCleanup = time.Hour
)

// MLClient calls the ML backend's geocoding and environmental endpoints.
// Geocoding results are cached per place.
type MLClient struct {
	baseURL  string
	http     *http.Client
	geocodes *cache.Cache
}

// NewMLClient creates a client for the ML backend at baseURL.
func NewMLClient(baseURL string, timeout time.Duration) *MLClient {
	return &MLClient{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		http:     newHTTPClient(timeout),
		geocodes: cache.New(geocodeCacheTTL, geocodeCacheCleanup),
	}
}

type coordinatesResponse struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Error     string   `json:"error"`
}

type environmentalResponse struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Rainfall    *float64 `json:"rainfall"`
	Error       string   `json:"error"`
}

// Coordinates geocodes a free-text place such as "Salem, Tamil Nadu, India".
func (c *MLClient) Coordinates(ctx context.Context, place string) (models.Coordinates, error) {
	key := strings.ToLower(strings.Join(strings.Fields(place), " "))
	if cached, found := c.geocodes.Get(key); found {
		return cached.(models.Coordinates), nil
	}

	endpoint := c.baseURL + "/api/coordinates?" + url.Values{"place": {place}}.Encode()

	var resp coordinatesResponse
	if err := doJSON(ctx, c.http, mlService, http.MethodGet, endpoint, nil, &resp); err != nil {
		return models.Coordinates{}, err
	}
	if resp.Error != "" {
		return models.Coordinates{}, &APIError{Service: mlService, Status: http.StatusOK, Message: resp.Error}
	}
	if resp.Latitude == nil || resp.Longitude == nil {
		return models.Coordinates{}, &APIError{Service: mlService, Status: http.StatusOK, Message: "Coordinates not found for " + place}
	}

	coords := models.Coordinates{Latitude: *resp.Latitude, Longitude: *resp.Longitude}
	c.geocodes.Set(key, coords, cache.DefaultExpiration)
	return coords, nil
}

// EnvironmentalConditions returns temperature, humidity and rainfall for a point.
func (c *MLClient) EnvironmentalConditions(ctx context.Context, lat, lng float64) (models.EnvironmentalReadings, error) {
	query := url.Values{
		"latitude":  {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(lng, 'f', -1, 64)},
	}
	endpoint := c.baseURL + "/api/environmental_conditions?" + query.Encode()

	var resp environmentalResponse
	if err := doJSON(ctx, c.http, mlService, http.MethodGet, endpoint, nil, &resp); err != nil {
		return models.EnvironmentalReadings{}, err
	}
	if resp.Error != "" {
		return models.EnvironmentalReadings{}, &APIError{Service: mlService, Status: http.StatusOK, Message: resp.Error}
	}
	if resp.Temperature == nil || resp.Humidity == nil || resp.Rainfall == nil {
		return models.EnvironmentalReadings{}, &APIError{Service: mlService, Status: http.StatusOK, Message: "Environmental conditions unavailable"}
	}

	return models.EnvironmentalReadings{
		Temperature: *resp.Temperature,
		Humidity:    *resp.Humidity,
		Rainfall:    *resp.Rainfall,
	}, nil
}
