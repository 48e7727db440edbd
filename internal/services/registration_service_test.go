package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/agrireg/internal/clients"
	"github.com/stwalsh4118/agrireg/internal/logger"
	"github.com/stwalsh4118/agrireg/internal/models"
	"github.com/stwalsh4118/agrireg/internal/soil"
	"github.com/stwalsh4118/agrireg/internal/wizard"
)

type registrationFixture struct {
	service   RegistrationService
	store     *wizard.Store
	enricher  *MockEnricher
	registrar *MockRegistrar
}

func newRegistrationFixture() *registrationFixture {
	log := logger.Nop()
	f := &registrationFixture{
		store:     wizard.NewStore(time.Minute, log),
		enricher:  new(MockEnricher),
		registrar: new(MockRegistrar),
	}
	f.service = NewRegistrationService(
		f.store,
		NewSoilService(soil.Default(), log),
		f.enricher,
		f.registrar,
		RegistrationOptions{RedirectPath: "/dashboard", RedirectDelay: 2 * time.Second},
		log,
	)
	return f
}

func strPtr(s string) *string     { return &s }
func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// startAtSoilStep creates a session with steps 1 and 2 completed.
func (f *registrationFixture) startAtSoilStep(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	snap, err := f.service.Start(ctx, "uid-1")
	require.NoError(t, err)
	id := snap.ID

	_, err = f.service.UpdatePersonalInfo(ctx, id, wizard.PersonalInfoPatch{
		Name: strPtr("Muthu"), Age: intPtr(42), State: strPtr("Tamil Nadu"), District: strPtr("Kancheepuram"),
	})
	require.NoError(t, err)
	_, err = f.service.Next(ctx, id)
	require.NoError(t, err)

	_, err = f.service.UpdateLandInfo(ctx, id, wizard.LandInfoPatch{
		District: strPtr("Kancheepuram"), State: strPtr("Tamil Nadu"), Crops: []string{"Paddy", ""},
	})
	require.NoError(t, err)
	_, err = f.service.Next(ctx, id)
	require.NoError(t, err)
	return id
}

// startAtEnvironmentalStep additionally fills the soil step from the table.
func (f *registrationFixture) startAtEnvironmentalStep(t *testing.T) string {
	t.Helper()
	id := f.startAtSoilStep(t)

	_, err := f.service.LookupSoil(context.Background(), id, "Clay")
	require.NoError(t, err)
	_, err = f.service.Next(context.Background(), id)
	require.NoError(t, err)
	return id
}

func TestStart_RequiresUserID(t *testing.T) {
	f := newRegistrationFixture()

	_, err := f.service.Start(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestGet_UnknownSession(t *testing.T) {
	f := newRegistrationFixture()

	_, err := f.service.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, wizard.ErrSessionNotFound)
}

func TestDiscard(t *testing.T) {
	f := newRegistrationFixture()
	snap, err := f.service.Start(context.Background(), "uid-1")
	require.NoError(t, err)

	require.NoError(t, f.service.Discard(context.Background(), snap.ID))
	assert.ErrorIs(t, f.service.Discard(context.Background(), snap.ID), wizard.ErrSessionNotFound)
}

func TestLookupSoil_Hit(t *testing.T) {
	f := newRegistrationFixture()
	id := f.startAtSoilStep(t)

	snap, err := f.service.LookupSoil(context.Background(), id, "Clay")
	require.NoError(t, err)

	soilProps := snap.Draft.SoilProperties
	assert.Equal(t, "Clay", soilProps.SoilColor)
	assert.Equal(t, 60.0, *soilProps.Nitrogen)
	assert.Equal(t, 40.0, *soilProps.Phosphorous)
	assert.Equal(t, 95.0, *soilProps.Potassium)
	assert.Equal(t, 6.8, *soilProps.PH)
}

func TestLookupSoil_UsesDraftColour(t *testing.T) {
	f := newRegistrationFixture()
	id := f.startAtSoilStep(t)

	_, err := f.service.UpdateSoilProperties(context.Background(), id, wizard.SoilPropertiesPatch{SoilColor: strPtr("clay")})
	require.NoError(t, err)

	snap, err := f.service.LookupSoil(context.Background(), id, "")
	require.NoError(t, err)
	assert.Equal(t, 60.0, *snap.Draft.SoilProperties.Nitrogen)
}

func TestLookupSoil_MissLeavesDraftUnchanged(t *testing.T) {
	f := newRegistrationFixture()
	ctx := context.Background()

	snap, err := f.service.Start(ctx, "uid-1")
	require.NoError(t, err)
	id := snap.ID
	_, err = f.service.UpdatePersonalInfo(ctx, id, wizard.PersonalInfoPatch{
		Name: strPtr("Kannan"), Age: intPtr(50), State: strPtr("Tamil Nadu"), District: strPtr("Erode"),
	})
	require.NoError(t, err)
	_, err = f.service.Next(ctx, id)
	require.NoError(t, err)
	_, err = f.service.UpdateLandInfo(ctx, id, wizard.LandInfoPatch{District: strPtr("Erode"), State: strPtr("Tamil Nadu")})
	require.NoError(t, err)
	_, err = f.service.Next(ctx, id)
	require.NoError(t, err)
	_, err = f.service.UpdateSoilProperties(ctx, id, wizard.SoilPropertiesPatch{Nitrogen: floatPtr(12)})
	require.NoError(t, err)

	_, err = f.service.LookupSoil(ctx, id, "Red Sandy Loam")
	assert.ErrorIs(t, err, ErrNoSoilData)

	snap, err = f.service.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 12.0, *snap.Draft.SoilProperties.Nitrogen)
	assert.Empty(t, snap.Draft.SoilProperties.SoilColor)
}

func TestLookupSoil_WrongStep(t *testing.T) {
	f := newRegistrationFixture()
	snap, err := f.service.Start(context.Background(), "uid-1")
	require.NoError(t, err)

	_, err = f.service.LookupSoil(context.Background(), snap.ID, "Clay")
	assert.ErrorIs(t, err, wizard.ErrStepNotActive)
}

func TestEnrich_Success(t *testing.T) {
	f := newRegistrationFixture()
	id := f.startAtEnvironmentalStep(t)
	ctx := context.Background()

	coords := models.Coordinates{Latitude: 12.8342, Longitude: 79.7036}
	f.enricher.On("Coordinates", ctx, "Kancheepuram, Tamil Nadu, India").Return(coords, nil)
	f.enricher.On("EnvironmentalConditions", ctx, 12.8342, 79.7036).
		Return(models.EnvironmentalReadings{Temperature: 31, Humidity: 70, Rainfall: 1200}, nil)

	snap, err := f.service.Enrich(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, [2]float64{79.7036, 12.8342}, snap.Draft.LandInfo.Location.Coordinates)
	assert.Equal(t, 1200.0, *snap.Draft.EnvironmentalConditions.Rainfall)
	f.enricher.AssertExpectations(t)
}

func TestEnrich_WeatherFailureCommitsNothing(t *testing.T) {
	f := newRegistrationFixture()
	id := f.startAtEnvironmentalStep(t)
	ctx := context.Background()

	upstream := &clients.APIError{Service: "ml backend", Status: 500, Message: "weather provider down"}
	f.enricher.On("Coordinates", ctx, mock.Anything).Return(models.Coordinates{Latitude: 1, Longitude: 2}, nil)
	f.enricher.On("EnvironmentalConditions", ctx, 1.0, 2.0).Return(models.EnvironmentalReadings{}, upstream)

	_, err := f.service.Enrich(ctx, id)
	var apiErr *clients.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "weather provider down", apiErr.Message)

	snap, err := f.service.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, snap.Draft.LandInfo.Location.IsZero(), "coordinates must not be committed alone")
	assert.Nil(t, snap.Draft.EnvironmentalConditions.Temperature)
}

func TestEnrich_GeocodeFailureSkipsWeather(t *testing.T) {
	f := newRegistrationFixture()
	id := f.startAtEnvironmentalStep(t)
	ctx := context.Background()

	f.enricher.On("Coordinates", ctx, mock.Anything).Return(models.Coordinates{}, errors.New("timeout"))

	_, err := f.service.Enrich(ctx, id)
	assert.Error(t, err)
	f.enricher.AssertNotCalled(t, "EnvironmentalConditions", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnrich_WrongStep(t *testing.T) {
	f := newRegistrationFixture()
	id := f.startAtSoilStep(t)

	_, err := f.service.Enrich(context.Background(), id)
	assert.ErrorIs(t, err, wizard.ErrStepNotActive)
	f.enricher.AssertNotCalled(t, "Coordinates", mock.Anything, mock.Anything)
}

func fillEnvironmental(t *testing.T, f *registrationFixture, id string) {
	t.Helper()
	_, err := f.service.UpdateEnvironmental(context.Background(), id, wizard.EnvironmentalPatch{
		Temperature: floatPtr(31), Humidity: floatPtr(70), Rainfall: floatPtr(1200),
	})
	require.NoError(t, err)
}

func TestSubmit_Success(t *testing.T) {
	f := newRegistrationFixture()
	id := f.startAtEnvironmentalStep(t)
	fillEnvironmental(t, f, id)
	ctx := context.Background()

	f.registrar.On("Register", ctx, mock.MatchedBy(func(p models.RegistrationPayload) bool {
		return p.UserID == "uid-1" &&
			len(p.LandInfo.Crops) == 1 && p.LandInfo.Crops[0] == "Paddy" &&
			p.LandInfo.SoilProperties.Potassium == 95
	})).Return("farmer-1", nil)

	result, err := f.service.Submit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "farmer-1", result.FarmerID)
	assert.Equal(t, RedirectHint{Path: "/dashboard", DelayMS: 2000}, result.Redirect)
	assert.Equal(t, wizard.StateSubmitted, result.Session.State)

	_, err = f.service.Get(ctx, id)
	assert.ErrorIs(t, err, wizard.ErrSessionNotFound, "session is removed after submit")
	f.registrar.AssertExpectations(t)
}

func TestSubmit_RejectedKeepsSession(t *testing.T) {
	f := newRegistrationFixture()
	id := f.startAtEnvironmentalStep(t)
	fillEnvironmental(t, f, id)
	ctx := context.Background()

	f.registrar.On("Register", ctx, mock.Anything).
		Return("", &clients.APIError{Service: "farmer backend", Status: 400, Message: "Farmer already registered"}).Once()

	_, err := f.service.Submit(ctx, id)
	var apiErr *clients.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Farmer already registered", apiErr.Message)

	snap, err := f.service.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, wizard.StepEnvironmental, snap.Step)

	f.registrar.On("Register", ctx, mock.Anything).Return("farmer-2", nil).Once()
	result, err := f.service.Submit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "farmer-2", result.FarmerID)
}

func TestSubmit_IncompleteDraft(t *testing.T) {
	f := newRegistrationFixture()
	id := f.startAtEnvironmentalStep(t)

	_, err := f.service.Submit(context.Background(), id)
	var verr *wizard.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, wizard.StepEnvironmental, verr.Step)
	f.registrar.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}
