package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stwalsh4118/agrireg/internal/logger"
	"github.com/stwalsh4118/agrireg/internal/models"
	"github.com/stwalsh4118/agrireg/internal/wizard"
)

// Service-level errors
var (
	ErrMissingUserID   = errors.New("user id is required")
	ErrMissingSoilKeys = errors.New("district and soil colour are required")
)

// Enricher geocodes a place and returns environmental readings for a point.
type Enricher interface {
	Coordinates(ctx context.Context, place string) (models.Coordinates, error)
	EnvironmentalConditions(ctx context.Context, lat, lng float64) (models.EnvironmentalReadings, error)
}

// Registrar stores a completed registration and returns the farmer id.
type Registrar interface {
	Register(ctx context.Context, payload models.RegistrationPayload) (string, error)
}

// RedirectHint tells the client where to go after a successful submit.
type RedirectHint struct {
	Path    string `json:"path"`
	DelayMS int64  `json:"delayMs"`
}

// SubmitResult is the outcome of a successful submission.
type SubmitResult struct {
	FarmerID string          `json:"farmerId"`
	Redirect RedirectHint    `json:"redirect"`
	Session  wizard.Snapshot `json:"session"`
}

// RegistrationService drives registration sessions through the wizard.
type RegistrationService interface {
	Start(ctx context.Context, userID string) (wizard.Snapshot, error)
	Get(ctx context.Context, sessionID string) (wizard.Snapshot, error)
	Discard(ctx context.Context, sessionID string) error

	UpdatePersonalInfo(ctx context.Context, sessionID string, patch wizard.PersonalInfoPatch) (wizard.Snapshot, error)
	UpdateLandInfo(ctx context.Context, sessionID string, patch wizard.LandInfoPatch) (wizard.Snapshot, error)
	UpdateSoilProperties(ctx context.Context, sessionID string, patch wizard.SoilPropertiesPatch) (wizard.Snapshot, error)
	UpdateEnvironmental(ctx context.Context, sessionID string, patch wizard.EnvironmentalPatch) (wizard.Snapshot, error)

	Next(ctx context.Context, sessionID string) (wizard.Snapshot, error)
	Previous(ctx context.Context, sessionID string) (wizard.Snapshot, error)

	// LookupSoil fills the soil step from the lookup table. A non-empty
	// soilColor replaces the draft's colour. Returns ErrNoSoilData on a miss,
	// leaving the draft unchanged.
	LookupSoil(ctx context.Context, sessionID, soilColor string) (wizard.Snapshot, error)

	// Enrich geocodes the draft's district and fetches environmental readings.
	// Coordinates and readings are committed together or not at all.
	Enrich(ctx context.Context, sessionID string) (wizard.Snapshot, error)

	// Submit validates the whole draft and registers it. On success the
	// session is removed.
	Submit(ctx context.Context, sessionID string) (*SubmitResult, error)
}

type registrationService struct {
	store     *wizard.Store
	soil      SoilService
	enricher  Enricher
	registrar Registrar
	redirect  RedirectHint
	log       *logger.Logger
}

// RegistrationOptions configures NewRegistrationService.
type RegistrationOptions struct {
	RedirectPath  string
	RedirectDelay time.Duration
}

// NewRegistrationService creates a RegistrationService.
func NewRegistrationService(store *wizard.Store, soilSvc SoilService, enricher Enricher, registrar Registrar, opts RegistrationOptions, log *logger.Logger) RegistrationService {
	return &registrationService{
		store:     store,
		soil:      soilSvc,
		enricher:  enricher,
		registrar: registrar,
		redirect: RedirectHint{
			Path:    opts.RedirectPath,
			DelayMS: opts.RedirectDelay.Milliseconds(),
		},
		log: log,
	}
}

func (s *registrationService) Start(_ context.Context, userID string) (wizard.Snapshot, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return wizard.Snapshot{}, ErrMissingUserID
	}

	sess, err := s.store.Create(userID)
	if err != nil {
		s.log.Error("Failed to create registration session", err, map[string]interface{}{
			"user_id": userID,
		})
		return wizard.Snapshot{}, err
	}

	s.log.Info("Registration session started", map[string]interface{}{
		"session_id": sess.ID,
		"user_id":    userID,
	})
	return sess.Snapshot(), nil
}

func (s *registrationService) Get(_ context.Context, sessionID string) (wizard.Snapshot, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return wizard.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

func (s *registrationService) Discard(_ context.Context, sessionID string) error {
	if _, err := s.store.Get(sessionID); err != nil {
		return err
	}
	s.store.Delete(sessionID)
	return nil
}

func (s *registrationService) UpdatePersonalInfo(_ context.Context, sessionID string, patch wizard.PersonalInfoPatch) (wizard.Snapshot, error) {
	return s.withSession(sessionID, func(sess *wizard.Session) (wizard.Snapshot, error) {
		return sess.UpdatePersonalInfo(patch)
	})
}

func (s *registrationService) UpdateLandInfo(_ context.Context, sessionID string, patch wizard.LandInfoPatch) (wizard.Snapshot, error) {
	return s.withSession(sessionID, func(sess *wizard.Session) (wizard.Snapshot, error) {
		return sess.UpdateLandInfo(patch)
	})
}

func (s *registrationService) UpdateSoilProperties(_ context.Context, sessionID string, patch wizard.SoilPropertiesPatch) (wizard.Snapshot, error) {
	return s.withSession(sessionID, func(sess *wizard.Session) (wizard.Snapshot, error) {
		return sess.UpdateSoilProperties(patch)
	})
}

func (s *registrationService) UpdateEnvironmental(_ context.Context, sessionID string, patch wizard.EnvironmentalPatch) (wizard.Snapshot, error) {
	return s.withSession(sessionID, func(sess *wizard.Session) (wizard.Snapshot, error) {
		return sess.UpdateEnvironmental(patch)
	})
}

func (s *registrationService) Next(_ context.Context, sessionID string) (wizard.Snapshot, error) {
	snap, err := s.withSession(sessionID, func(sess *wizard.Session) (wizard.Snapshot, error) {
		return sess.Next()
	})
	if err == nil {
		s.log.Debug("Registration step advanced", map[string]interface{}{
			"session_id": sessionID,
			"step":       snap.State,
		})
	}
	return snap, err
}

func (s *registrationService) Previous(_ context.Context, sessionID string) (wizard.Snapshot, error) {
	return s.withSession(sessionID, func(sess *wizard.Session) (wizard.Snapshot, error) {
		return sess.Previous()
	})
}

func (s *registrationService) LookupSoil(_ context.Context, sessionID, soilColor string) (wizard.Snapshot, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return wizard.Snapshot{}, err
	}

	district, draftColor, err := sess.SoilLookupKey()
	if err != nil {
		return wizard.Snapshot{}, err
	}
	if strings.TrimSpace(soilColor) == "" {
		soilColor = draftColor
	}
	nutrients, err := s.soil.LookupNPK(district, soilColor)
	if err != nil {
		return wizard.Snapshot{}, err
	}

	return sess.ApplySoilNutrients(soilColor, nutrients)
}

func (s *registrationService) Enrich(ctx context.Context, sessionID string) (wizard.Snapshot, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return wizard.Snapshot{}, err
	}

	ticket, err := sess.BeginEnrichment()
	if err != nil {
		return wizard.Snapshot{}, err
	}

	log := s.log.WithSession(sessionID)
	fields := map[string]interface{}{"place": ticket.Place()}

	coords, err := s.enricher.Coordinates(ctx, ticket.Place())
	if err != nil {
		sess.AbortEnrichment(ticket)
		log.Warn("Geocoding failed", withError(fields, err))
		return wizard.Snapshot{}, fmt.Errorf("failed to geocode %q: %w", ticket.Place(), err)
	}

	readings, err := s.enricher.EnvironmentalConditions(ctx, coords.Latitude, coords.Longitude)
	if err != nil {
		sess.AbortEnrichment(ticket)
		log.Warn("Environmental lookup failed", withError(fields, err))
		return wizard.Snapshot{}, fmt.Errorf("failed to fetch environmental conditions: %w", err)
	}

	snap, err := sess.CompleteEnrichment(ticket, coords, readings)
	if err != nil {
		log.Info("Discarded stale enrichment result", fields)
		return snap, err
	}

	log.Info("Registration enriched", map[string]interface{}{
		"latitude":  coords.Latitude,
		"longitude": coords.Longitude,
	})
	return snap, nil
}

func (s *registrationService) Submit(ctx context.Context, sessionID string) (*SubmitResult, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	payload, err := sess.BeginSubmit()
	if err != nil {
		return nil, err
	}

	log := s.log.WithSession(sessionID)
	farmerID, submitErr := s.registrar.Register(ctx, payload)
	if err := sess.FinishSubmit(submitErr); err != nil {
		return nil, err
	}
	if submitErr != nil {
		log.Warn("Registration rejected", withError(map[string]interface{}{
			"user_id": payload.UserID,
		}, submitErr))
		return nil, fmt.Errorf("failed to register farmer: %w", submitErr)
	}

	snap := sess.Snapshot()
	s.store.Delete(sessionID)

	log.Info("Farmer registered", map[string]interface{}{
		"user_id":   payload.UserID,
		"farmer_id": farmerID,
	})

	return &SubmitResult{
		FarmerID: farmerID,
		Redirect: s.redirect,
		Session:  snap,
	}, nil
}

func (s *registrationService) withSession(sessionID string, fn func(*wizard.Session) (wizard.Snapshot, error)) (wizard.Snapshot, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return wizard.Snapshot{}, err
	}
	return fn(sess)
}

func withError(fields map[string]interface{}, err error) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["error"] = err.Error()
	return out
}
