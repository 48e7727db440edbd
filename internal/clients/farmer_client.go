package clients

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/stwalsh4118/agrireg/internal/models"
)

const farmerService = "farmer backend"

// FarmerClient submits registrations to the remote farmer-data backend.
type FarmerClient struct {
	baseURL string
	http    *http.Client
}

// NewFarmerClient creates a client for the farmer-data backend at baseURL.
func NewFarmerClient(baseURL string, timeout time.Duration) *FarmerClient {
	return &FarmerClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    newHTTPClient(timeout),
	}
}

type registerResponse struct {
	ID     string `json:"_id"`
	AltID  string `json:"id"`
	Farmer *struct {
		ID string `json:"_id"`
	} `json:"farmer"`
}

// Register posts a completed registration and returns the stored record's id.
// A rejection carries the backend's message unchanged in an *APIError.
func (c *FarmerClient) Register(ctx context.Context, payload models.RegistrationPayload) (string, error) {
	var resp registerResponse
	if err := doJSON(ctx, c.http, farmerService, http.MethodPost, c.baseURL+"/api/farmer/register", payload, &resp); err != nil {
		return "", err
	}

	switch {
	case resp.ID != "":
		return resp.ID, nil
	case resp.AltID != "":
		return resp.AltID, nil
	case resp.Farmer != nil && resp.Farmer.ID != "":
		return resp.Farmer.ID, nil
	}
	return "", &APIError{Service: farmerService, Message: "registration response has no id"}
}
