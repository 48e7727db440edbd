package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/agrireg/internal/logger"
	"github.com/stwalsh4118/agrireg/internal/models"
	"github.com/stwalsh4118/agrireg/internal/repository"
)

func registryPayload() models.RegistrationPayload {
	return models.RegistrationPayload{
		UserID:       " uid-1 ",
		PersonalInfo: models.PersonalInfoPayload{Name: "Muthu", Age: 42, State: "Tamil Nadu", District: "Salem"},
		LandInfo: models.LandInfoPayload{
			District: "Salem",
			State:    "Tamil Nadu",
			Crops:    []string{"", "Turmeric"},
			Location: models.NewLocation(11.66, 78.14),
		},
	}
}

func TestFarmerService_Register(t *testing.T) {
	repo := new(MockFarmerRepository)
	svc := NewFarmerService(repo, logger.Nop())
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(p models.RegistrationPayload) bool {
		return p.UserID == "uid-1" && len(p.LandInfo.Crops) == 1
	})).Return(&models.FarmerRecord{ID: "f-1", CreatedAt: time.Now()}, nil)

	record, err := svc.Register(ctx, registryPayload())
	require.NoError(t, err)
	assert.Equal(t, "f-1", record.ID)
	repo.AssertExpectations(t)
}

func TestFarmerService_RegisterDuplicate(t *testing.T) {
	repo := new(MockFarmerRepository)
	svc := NewFarmerService(repo, logger.Nop())
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(nil, repository.ErrDuplicateFarmer)

	_, err := svc.Register(ctx, registryPayload())
	assert.ErrorIs(t, err, ErrFarmerExists)
}

func TestFarmerService_RegisterMissingUser(t *testing.T) {
	repo := new(MockFarmerRepository)
	svc := NewFarmerService(repo, logger.Nop())

	p := registryPayload()
	p.UserID = ""
	_, err := svc.Register(context.Background(), p)
	assert.ErrorIs(t, err, ErrMissingUserID)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFarmerService_GetByUserID(t *testing.T) {
	repo := new(MockFarmerRepository)
	svc := NewFarmerService(repo, logger.Nop())
	ctx := context.Background()

	repo.On("FindByUserID", ctx, "uid-1").Return(&models.FarmerRecord{ID: "f-1"}, nil)
	repo.On("FindByUserID", ctx, "uid-2").Return(nil, nil)
	repo.On("FindByUserID", ctx, "uid-3").Return(nil, errors.New("connection reset"))

	record, err := svc.GetByUserID(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "f-1", record.ID)

	_, err = svc.GetByUserID(ctx, "uid-2")
	assert.ErrorIs(t, err, ErrFarmerNotFound)

	_, err = svc.GetByUserID(ctx, "uid-3")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrFarmerNotFound)
}

func TestLocalRegistrar(t *testing.T) {
	repo := new(MockFarmerRepository)
	registrar := NewLocalRegistrar(NewFarmerService(repo, logger.Nop()))
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(&models.FarmerRecord{ID: "f-9"}, nil)

	id, err := registrar.Register(ctx, registryPayload())
	require.NoError(t, err)
	assert.Equal(t, "f-9", id)
}
