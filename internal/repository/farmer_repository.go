package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stwalsh4118/agrireg/internal/database"
	"github.com/stwalsh4118/agrireg/internal/models"
)

// ErrDuplicateFarmer is returned when a user already has a registration.
var ErrDuplicateFarmer = errors.New("farmer already registered")

const uniqueViolation = "23505"

// FarmerRepository defines data access for registered farmers.
type FarmerRepository interface {
	// Create stores a registration and returns the stored record.
	// Returns ErrDuplicateFarmer if the user is already registered.
	Create(ctx context.Context, payload models.RegistrationPayload) (*models.FarmerRecord, error)

	// FindByUserID returns the registration of a user.
	// Returns nil, nil if the user has not registered.
	FindByUserID(ctx context.Context, userID string) (*models.FarmerRecord, error)
}

type farmerRepository struct {
	db *database.Database
}

// NewFarmerRepository creates a FarmerRepository backed by db.
func NewFarmerRepository(db *database.Database) FarmerRepository {
	return &farmerRepository{db: db}
}

// Create inserts a farmer row. The location is stored as a PostGIS point
// built from its GeoJSON form.
func (r *farmerRepository) Create(ctx context.Context, payload models.RegistrationPayload) (*models.FarmerRecord, error) {
	query := `
		INSERT INTO farmers (
			id, user_id, name, age, state, district,
			land_district, land_state, crops, location,
			nitrogen, phosphorous, potassium, ph,
			temperature, humidity, rainfall
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, ST_SetSRID(ST_GeomFromGeoJSON($10), 4326),
			$11, $12, $13, $14,
			$15, $16, $17
		)
		RETURNING created_at
	`

	id := uuid.New()
	personal, land := payload.PersonalInfo, payload.LandInfo
	crops := models.CleanCrops(land.Crops)

	location, err := land.Location.Value()
	if err != nil {
		return nil, fmt.Errorf("failed to encode location: %w", err)
	}

	record := &models.FarmerRecord{ID: id.String(), RegistrationPayload: payload}
	record.LandInfo.Crops = crops

	err = r.db.Pool.QueryRow(ctx, query,
		id,
		payload.UserID,
		personal.Name,
		personal.Age,
		personal.State,
		personal.District,
		land.District,
		land.State,
		crops,
		location,
		land.SoilProperties.Nitrogen,
		land.SoilProperties.Phosphorous,
		land.SoilProperties.Potassium,
		land.SoilProperties.PH,
		land.EnvironmentalConditions.Temperature,
		land.EnvironmentalConditions.Humidity,
		land.EnvironmentalConditions.Rainfall,
	).Scan(&record.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateFarmer
		}
		return nil, fmt.Errorf("failed to insert farmer for user %s: %w", payload.UserID, err)
	}

	return record, nil
}

// FindByUserID loads the registration for userID.
func (r *farmerRepository) FindByUserID(ctx context.Context, userID string) (*models.FarmerRecord, error) {
	query := `
		SELECT
			id,
			user_id,
			name,
			age,
			state,
			district,
			land_district,
			land_state,
			crops,
			ST_AsGeoJSON(location) AS location,
			nitrogen,
			phosphorous,
			potassium,
			ph,
			temperature,
			humidity,
			rainfall,
			created_at
		FROM farmers
		WHERE user_id = $1
	`

	var (
		record models.FarmerRecord
		id     uuid.UUID
	)
	personal := &record.PersonalInfo
	land := &record.LandInfo

	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(
		&id,
		&record.UserID,
		&personal.Name,
		&personal.Age,
		&personal.State,
		&personal.District,
		&land.District,
		&land.State,
		&land.Crops,
		&land.Location,
		&land.SoilProperties.Nitrogen,
		&land.SoilProperties.Phosphorous,
		&land.SoilProperties.Potassium,
		&land.SoilProperties.PH,
		&land.EnvironmentalConditions.Temperature,
		&land.EnvironmentalConditions.Humidity,
		&land.EnvironmentalConditions.Rainfall,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query farmer for user %s: %w", userID, err)
	}

	record.ID = id.String()
	if land.Crops == nil {
		land.Crops = []string{}
	}
	return &record, nil
}
