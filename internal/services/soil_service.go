package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stwalsh4118/agrireg/internal/logger"
	"github.com/stwalsh4118/agrireg/internal/models"
	"github.com/stwalsh4118/agrireg/internal/soil"
)

// ErrNoSoilData is returned when the table has no entry for a district and soil.
var ErrNoSoilData = errors.New("no soil data available")

// SoilTable resolves baseline nutrients for a district and soil colour.
type SoilTable interface {
	LookupNPK(district, rawSoilColor string) (models.SoilNutrients, error)
	Canonical(rawSoilColor string) string
	Districts() []string
	SoilTypes(district string) ([]string, error)
}

// SoilService answers soil nutrient lookups.
type SoilService interface {
	// LookupNPK returns the nutrients for a district and soil colour or alias.
	// Returns ErrNoSoilData if either is unknown.
	LookupNPK(district, soilColor string) (models.SoilNutrients, error)

	// Districts lists the districts in the table.
	Districts() []string

	// SoilTypes lists the canonical soil types known for a district.
	// Returns ErrNoSoilData for an unknown district.
	SoilTypes(district string) ([]string, error)
}

type soilService struct {
	table SoilTable
	log   *logger.Logger
}

// NewSoilService creates a SoilService over table.
func NewSoilService(table SoilTable, log *logger.Logger) SoilService {
	return &soilService{table: table, log: log}
}

func (s *soilService) LookupNPK(district, soilColor string) (models.SoilNutrients, error) {
	if strings.TrimSpace(district) == "" || strings.TrimSpace(soilColor) == "" {
		return models.SoilNutrients{}, ErrMissingSoilKeys
	}

	nutrients, err := s.table.LookupNPK(district, soilColor)
	if err != nil {
		if errors.Is(err, soil.ErrNotFound) {
			s.log.Debug("No soil data for lookup", map[string]interface{}{
				"district":   district,
				"soil_color": soilColor,
				"soil_type":  s.table.Canonical(soilColor),
			})
			return models.SoilNutrients{}, fmt.Errorf("%w: %s/%s", ErrNoSoilData, district, soilColor)
		}
		return models.SoilNutrients{}, err
	}
	return nutrients, nil
}

func (s *soilService) Districts() []string {
	return s.table.Districts()
}

func (s *soilService) SoilTypes(district string) ([]string, error) {
	types, err := s.table.SoilTypes(district)
	if err != nil {
		if errors.Is(err, soil.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoSoilData, district)
		}
		return nil, err
	}
	return types, nil
}
