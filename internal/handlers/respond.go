package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/agrireg/internal/clients"
	apierrors "github.com/stwalsh4118/agrireg/internal/errors"
	"github.com/stwalsh4118/agrireg/internal/services"
	"github.com/stwalsh4118/agrireg/internal/wizard"
)

// Messages shown to the client for domain errors.
const (
	msgSessionNotFound = "Registration session not found"
	msgNoSoilData      = "No soil data available."
	msgFarmerExists    = "Farmer already registered"
)

// respondServiceError maps a service error onto the error envelope.
func respondServiceError(c *gin.Context, err error, fallback string) {
	var (
		validationErr *wizard.ValidationError
		stepErr       *wizard.StepError
		apiErr        *clients.APIError
	)

	switch {
	case errors.Is(err, wizard.ErrSessionNotFound):
		apierrors.NotFound(c, msgSessionNotFound)
	case errors.As(err, &validationErr):
		apierrors.StepValidationError(c, validationErr.Step.String(), validationErr.Fields)
	case errors.Is(err, services.ErrNoSoilData):
		apierrors.NotFound(c, msgNoSoilData)
	case errors.Is(err, services.ErrMissingUserID),
		errors.Is(err, services.ErrMissingSoilKeys),
		errors.Is(err, services.ErrMissingQuery),
		errors.Is(err, wizard.ErrMissingLocation):
		apierrors.BadRequest(c, err.Error(), nil)
	case errors.As(err, &stepErr):
		apierrors.Conflict(c, "This step is not the active step", map[string]interface{}{
			"current_step":   stepErr.Active.String(),
			"requested_step": stepErr.Target.String(),
		})
	case errors.Is(err, wizard.ErrNoPreviousStep),
		errors.Is(err, wizard.ErrFinalStep),
		errors.Is(err, wizard.ErrOperationInFlight),
		errors.Is(err, wizard.ErrStaleResult),
		errors.Is(err, wizard.ErrAlreadySubmitted):
		apierrors.Conflict(c, err.Error(), nil)
	case errors.Is(err, services.ErrFarmerExists):
		apierrors.Conflict(c, msgFarmerExists, nil)
	case errors.Is(err, clients.ErrWeatherNotConfigured):
		apierrors.ServiceUnavailable(c, "Weather is not configured")
	case errors.As(err, &apiErr):
		apierrors.UpstreamError(c, apiErr.Message, err)
	case errors.Is(err, clients.ErrUnavailable):
		apierrors.UpstreamError(c, "Upstream service is unavailable", err)
	default:
		apierrors.InternalServerError(c, fallback, err)
	}
}
