package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stwalsh4118/agrireg/internal/logger"
	"github.com/stwalsh4118/agrireg/internal/models"
	"github.com/stwalsh4118/agrireg/internal/repository"
)

// Service-level errors
var (
	ErrFarmerNotFound = errors.New("farmer not found")
	ErrFarmerExists   = errors.New("farmer already registered")
)

// FarmerService is the farmer-data registry used when the service stores
// registrations in its own database.
type FarmerService interface {
	// Register stores a registration. Returns ErrFarmerExists if the user
	// already has one.
	Register(ctx context.Context, payload models.RegistrationPayload) (*models.FarmerRecord, error)

	// GetByUserID returns a user's registration or ErrFarmerNotFound.
	GetByUserID(ctx context.Context, userID string) (*models.FarmerRecord, error)
}

type farmerService struct {
	repo repository.FarmerRepository
	log  *logger.Logger
}

// NewFarmerService creates a FarmerService backed by repo.
func NewFarmerService(repo repository.FarmerRepository, log *logger.Logger) FarmerService {
	return &farmerService{repo: repo, log: log}
}

func (s *farmerService) Register(ctx context.Context, payload models.RegistrationPayload) (*models.FarmerRecord, error) {
	payload.UserID = strings.TrimSpace(payload.UserID)
	if payload.UserID == "" {
		return nil, ErrMissingUserID
	}
	payload.LandInfo.Crops = models.CleanCrops(payload.LandInfo.Crops)

	record, err := s.repo.Create(ctx, payload)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateFarmer) {
			s.log.Info("Duplicate farmer registration", map[string]interface{}{
				"user_id": payload.UserID,
			})
			return nil, ErrFarmerExists
		}
		s.log.Error("Failed to store farmer", err, map[string]interface{}{
			"user_id": payload.UserID,
		})
		return nil, fmt.Errorf("failed to store farmer: %w", err)
	}

	s.log.Info("Farmer stored", map[string]interface{}{
		"user_id":   record.UserID,
		"farmer_id": record.ID,
		"district":  record.LandInfo.District,
	})
	return record, nil
}

func (s *farmerService) GetByUserID(ctx context.Context, userID string) (*models.FarmerRecord, error) {
	record, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to load farmer", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, fmt.Errorf("failed to load farmer: %w", err)
	}
	if record == nil {
		return nil, ErrFarmerNotFound
	}
	return record, nil
}

// LocalRegistrar submits registrations straight to a FarmerService.
type LocalRegistrar struct {
	farmers FarmerService
}

// NewLocalRegistrar creates a Registrar backed by farmers.
func NewLocalRegistrar(farmers FarmerService) *LocalRegistrar {
	return &LocalRegistrar{farmers: farmers}
}

// Register implements Registrar.
func (r *LocalRegistrar) Register(ctx context.Context, payload models.RegistrationPayload) (string, error) {
	record, err := r.farmers.Register(ctx, payload)
	if err != nil {
		return "", err
	}
	return record.ID, nil
}
