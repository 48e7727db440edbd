package services

import (
	"context"
	"errors"
	"strings"

	"github.com/stwalsh4118/agrireg/internal/clients"
	"github.com/stwalsh4118/agrireg/internal/logger"
)

// ErrMissingQuery is returned when a weather lookup has no location.
var ErrMissingQuery = errors.New("location query is required")

// WeatherSource returns current conditions for a location query.
type WeatherSource interface {
	Configured() bool
	Current(ctx context.Context, q string) (*clients.CurrentWeather, error)
}

// WeatherService backs the dashboard weather widget.
type WeatherService interface {
	Current(ctx context.Context, q string) (*clients.CurrentWeather, error)
}

type weatherService struct {
	source WeatherSource
	log    *logger.Logger
}

// NewWeatherService creates a WeatherService over source.
func NewWeatherService(source WeatherSource, log *logger.Logger) WeatherService {
	return &weatherService{source: source, log: log}
}

func (s *weatherService) Current(ctx context.Context, q string) (*clients.CurrentWeather, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrMissingQuery
	}
	if !s.source.Configured() {
		return nil, clients.ErrWeatherNotConfigured
	}

	w, err := s.source.Current(ctx, q)
	if err != nil {
		s.log.Warn("Weather lookup failed", map[string]interface{}{
			"q":     q,
			"error": err.Error(),
		})
		return nil, err
	}
	return w, nil
}
