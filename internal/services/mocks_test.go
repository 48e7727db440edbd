package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/stwalsh4118/agrireg/internal/clients"
	"github.com/stwalsh4118/agrireg/internal/models"
)

// MockEnricher is a mock implementation of Enricher for testing
type MockEnricher struct {
	mock.Mock
}

func (m *MockEnricher) Coordinates(ctx context.Context, place string) (models.Coordinates, error) {
	args := m.Called(ctx, place)
	return args.Get(0).(models.Coordinates), args.Error(1)
}

func (m *MockEnricher) EnvironmentalConditions(ctx context.Context, lat, lng float64) (models.EnvironmentalReadings, error) {
	args := m.Called(ctx, lat, lng)
	return args.Get(0).(models.EnvironmentalReadings), args.Error(1)
}

// MockRegistrar is a mock implementation of Registrar for testing
type MockRegistrar struct {
	mock.Mock
}

func (m *MockRegistrar) Register(ctx context.Context, payload models.RegistrationPayload) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

// MockFarmerRepository is a mock implementation of FarmerRepository for testing
type MockFarmerRepository struct {
	mock.Mock
}

func (m *MockFarmerRepository) Create(ctx context.Context, payload models.RegistrationPayload) (*models.FarmerRecord, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FarmerRecord), args.Error(1)
}

func (m *MockFarmerRepository) FindByUserID(ctx context.Context, userID string) (*models.FarmerRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FarmerRecord), args.Error(1)
}

// MockWeatherSource is a mock implementation of WeatherSource for testing
type MockWeatherSource struct {
	mock.Mock
}

func (m *MockWeatherSource) Configured() bool {
	return m.Called().Bool(0)
}

func (m *MockWeatherSource) Current(ctx context.Context, q string) (*clients.CurrentWeather, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.CurrentWeather), args.Error(1)
}
