package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/agrireg/internal/models"
)

func TestMLClient_Coordinates(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/api/coordinates", r.URL.Path)
		assert.Equal(t, "Salem, Tamil Nadu, India", r.URL.Query().Get("place"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"latitude": 11.6643, "longitude": 78.146}`))
	}))
	defer server.Close()

	client := NewMLClient(server.URL+"/", time.Second)

	coords, err := client.Coordinates(context.Background(), "Salem, Tamil Nadu, India")
	require.NoError(t, err)
	assert.Equal(t, models.Coordinates{Latitude: 11.6643, Longitude: 78.146}, coords)

	// Second lookup for the same place is served from the cache
	coords, err = client.Coordinates(context.Background(), "  salem,  Tamil Nadu, India ")
	require.NoError(t, err)
	assert.Equal(t, 11.6643, coords.Latitude)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestMLClient_CoordinatesErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "Location not found"}`))
	}))
	defer server.Close()

	_, err := NewMLClient(server.URL, time.Second).Coordinates(context.Background(), "Nowhere, India")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Location not found", apiErr.Message)
}

func TestMLClient_CoordinatesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "geocoder unavailable"}`))
	}))
	defer server.Close()

	_, err := NewMLClient(server.URL, time.Second).Coordinates(context.Background(), "Salem, Tamil Nadu, India")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "geocoder unavailable", apiErr.Message)
}

func TestMLClient_EnvironmentalConditions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/environmental_conditions", r.URL.Path)
		assert.Equal(t, "12.83", r.URL.Query().Get("latitude"))
		assert.Equal(t, "79.7", r.URL.Query().Get("longitude"))
		_, _ = w.Write([]byte(`{"temperature": 31.2, "humidity": 68, "rainfall": 1180}`))
	}))
	defer server.Close()

	readings, err := NewMLClient(server.URL, time.Second).EnvironmentalConditions(context.Background(), 12.83, 79.7)
	require.NoError(t, err)
	assert.Equal(t, models.EnvironmentalReadings{Temperature: 31.2, Humidity: 68, Rainfall: 1180}, readings)
}

func TestMLClient_EnvironmentalConditionsIncomplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"temperature": 31.2}`))
	}))
	defer server.Close()

	_, err := NewMLClient(server.URL, time.Second).EnvironmentalConditions(context.Background(), 1, 2)
	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestMLClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"latitude": 1, "longitude": 2}`))
	}))
	defer server.Close()

	_, err := NewMLClient(server.URL, 20*time.Millisecond).Coordinates(context.Background(), "Slow, India")
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrUnavailable)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures are not upstream rejections")
}
