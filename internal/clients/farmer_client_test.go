package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/agrireg/internal/models"
)

func samplePayload() models.RegistrationPayload {
	return models.RegistrationPayload{
		UserID: "uid-1",
		PersonalInfo: models.PersonalInfoPayload{
			Name: "Muthu", Age: 42, State: "Tamil Nadu", District: "Salem",
		},
		LandInfo: models.LandInfoPayload{
			District: "Salem",
			State:    "Tamil Nadu",
			Crops:    []string{},
			Location: models.NewLocation(11.66, 78.14),
		},
	}
}

func TestFarmerClient_Register(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/farmer/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "uid-1", body["userId"])
		land := body["landInfo"].(map[string]interface{})
		assert.Equal(t, []interface{}{}, land["crops"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id": "65f0c0ffee", "userId": "uid-1"}`))
	}))
	defer server.Close()

	id, err := NewFarmerClient(server.URL, time.Second).Register(context.Background(), samplePayload())
	require.NoError(t, err)
	assert.Equal(t, "65f0c0ffee", id)
}

func TestFarmerClient_RegisterAlternateID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "abc"}`))
	}))
	defer server.Close()

	id, err := NewFarmerClient(server.URL, time.Second).Register(context.Background(), samplePayload())
	require.NoError(t, err)
	assert.Equal(t, "abc", id)
}

func TestFarmerClient_RegisterRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "Farmer already registered"}`))
	}))
	defer server.Close()

	_, err := NewFarmerClient(server.URL, time.Second).Register(context.Background(), samplePayload())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Farmer already registered", apiErr.Message)
}

func TestFarmerClient_RegisterNestedID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"farmer": {"_id": "nested-1"}}`))
	}))
	defer server.Close()

	id, err := NewFarmerClient(server.URL, time.Second).Register(context.Background(), samplePayload())
	require.NoError(t, err)
	assert.Equal(t, "nested-1", id)
}

func TestFarmerClient_RegisterMissingID(t *testing.T) {
	for _, body := range []string{`{}`, `{"farmer": {}}`, `{"message": "ok"}`} {
		t.Run(body, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			id, err := NewFarmerClient(server.URL, time.Second).Register(context.Background(), samplePayload())

			assert.Empty(t, id)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, "registration response has no id", apiErr.Message)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "message", body: `{"message": "bad"}`, want: "bad"},
		{name: "error string", body: `{"error": "worse"}`, want: "worse"},
		{name: "nested error", body: `{"error": {"code": 1006, "message": "No matching location found."}}`, want: "No matching location found."},
		{name: "plain text", body: "upstream exploded", want: "upstream exploded"},
		{name: "html", body: "<html>502</html>", want: "502 Bad Gateway"},
		{name: "empty", body: "", want: "502 Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage([]byte(tt.body), "502 Bad Gateway"))
		})
	}
}
