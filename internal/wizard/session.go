package wizard

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robbyt/go-fsm"
	"github.com/stwalsh4118/agrireg/internal/models"
)

// Workflow errors. Handlers map all of them to 409 except ErrSessionNotFound.
var (
	ErrSessionNotFound   = errors.New("registration session not found")
	ErrStepNotActive     = errors.New("step is not the active step")
	ErrNoPreviousStep    = errors.New("already at the first step")
	ErrFinalStep         = errors.New("last step is completed by submitting")
	ErrOperationInFlight = errors.New("another operation is still in progress")
	ErrStaleResult       = errors.New("result no longer applies to the draft")
	ErrAlreadySubmitted  = errors.New("registration already submitted")
	ErrMissingLocation   = errors.New("district and state are required")
)

// StepError is returned when a write targets a step other than the active one.
type StepError struct {
	Active Step
	Target Step
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: active step is %s, request targets %s", ErrStepNotActive, e.Active, e.Target)
}

// Is lets errors.Is match ErrStepNotActive.
func (e *StepError) Is(target error) bool {
	return target == ErrStepNotActive
}

// Snapshot is a consistent, copied view of a session.
type Snapshot struct {
	ID        string                    `json:"id"`
	UserID    string                    `json:"userId"`
	Step      Step                      `json:"step"`
	State     string                    `json:"state"`
	Draft     models.FarmerProfileDraft `json:"draft"`
	CreatedAt time.Time                 `json:"createdAt"`
	UpdatedAt time.Time                 `json:"updatedAt"`
}

// EnrichmentTicket carries the inputs of one enrichment run and the
// generation it was started in.
type EnrichmentTicket struct {
	District   string
	State      string
	generation uint64
}

// Place is the free-text query sent to the geocoder.
func (t EnrichmentTicket) Place() string {
	return fmt.Sprintf("%s, %s, India", t.District, t.State)
}

// Session owns one registration draft. Only the active step's section may be
// written; network work happens outside the lock between Begin/Complete calls.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time

	mu         sync.Mutex
	machine    *fsm.Machine
	draft      models.FarmerProfileDraft
	updatedAt  time.Time
	generation uint64
	enriching  bool
	submitting bool
	now        func() time.Time
}

// NewSession creates a session at the first step with an empty draft.
func NewSession(id, userID string) (*Session, error) {
	machine, err := newStepMachine()
	if err != nil {
		return nil, fmt.Errorf("failed to create step machine: %w", err)
	}
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		machine:   machine,
		draft:     models.NewDraft(),
		updatedAt: now,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Snapshot returns a copy of the session's current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Step returns the active step.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return stepForState(s.machine.GetState())
}

// Submitted reports whether the draft has been registered.
func (s *Session) Submitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.GetState() == StateSubmitted
}

// PersonalInfoPatch updates the first step. Nil fields are left unchanged.
type PersonalInfoPatch struct {
	Name     *string `json:"name"`
	Age      *int    `json:"age"`
	State    *string `json:"state"`
	District *string `json:"district"`
}

// LandInfoPatch updates the second step. A non-nil Crops replaces the list.
type LandInfoPatch struct {
	District *string  `json:"district"`
	State    *string  `json:"state"`
	Crops    []string `json:"crops"`
}

// SoilPropertiesPatch updates the third step.
type SoilPropertiesPatch struct {
	SoilColor   *string  `json:"soilColor"`
	Nitrogen    *float64 `json:"nitrogen"`
	Phosphorous *float64 `json:"phosphorous"`
	Potassium   *float64 `json:"potassium"`
	PH          *float64 `json:"pH"`
}

// EnvironmentalPatch updates the fourth step.
type EnvironmentalPatch struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Rainfall    *float64 `json:"rainfall"`
}

// UpdatePersonalInfo applies p while the personal info step is active.
func (s *Session) UpdatePersonalInfo(p PersonalInfoPatch) (Snapshot, error) {
	return s.update(StepPersonalInfo, func(d *models.FarmerProfileDraft) {
		setString(&d.PersonalInfo.Name, p.Name)
		setString(&d.PersonalInfo.State, p.State)
		setString(&d.PersonalInfo.District, p.District)
		if p.Age != nil {
			age := *p.Age
			d.PersonalInfo.Age = &age
		}
	})
}

// UpdateLandInfo applies p while the land info step is active. The crop list
// never becomes empty while editing; an empty replacement leaves one blank entry.
func (s *Session) UpdateLandInfo(p LandInfoPatch) (Snapshot, error) {
	return s.update(StepLandInfo, func(d *models.FarmerProfileDraft) {
		setString(&d.LandInfo.District, p.District)
		setString(&d.LandInfo.State, p.State)
		if p.Crops != nil {
			crops := append([]string(nil), p.Crops...)
			if len(crops) == 0 {
				crops = []string{""}
			}
			d.LandInfo.Crops = crops
		}
	})
}

// UpdateSoilProperties applies p while the soil step is active.
func (s *Session) UpdateSoilProperties(p SoilPropertiesPatch) (Snapshot, error) {
	return s.update(StepSoilProperties, func(d *models.FarmerProfileDraft) {
		setString(&d.SoilProperties.SoilColor, p.SoilColor)
		setFloat(&d.SoilProperties.Nitrogen, p.Nitrogen)
		setFloat(&d.SoilProperties.Phosphorous, p.Phosphorous)
		setFloat(&d.SoilProperties.Potassium, p.Potassium)
		setFloat(&d.SoilProperties.PH, p.PH)
	})
}

// UpdateEnvironmental applies p while the environmental step is active.
// Entered values win over an enrichment that is still in flight.
func (s *Session) UpdateEnvironmental(p EnvironmentalPatch) (Snapshot, error) {
	return s.update(StepEnvironmental, func(d *models.FarmerProfileDraft) {
		setFloat(&d.EnvironmentalConditions.Temperature, p.Temperature)
		setFloat(&d.EnvironmentalConditions.Humidity, p.Humidity)
		setFloat(&d.EnvironmentalConditions.Rainfall, p.Rainfall)
		s.generation++
	})
}

// SoilLookupKey returns the district and soil colour to look up. The district
// comes from land info, falling back to personal info.
func (s *Session) SoilLookupKey() (district, soilColor string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWritableLocked(StepSoilProperties); err != nil {
		return "", "", err
	}
	district, _ = s.locationLocked()
	return district, s.draft.SoilProperties.SoilColor, nil
}

// ApplySoilNutrients stores looked-up nutrient values on the soil step.
// An optional soil colour replaces the one in the draft.
func (s *Session) ApplySoilNutrients(soilColor string, n models.SoilNutrients) (Snapshot, error) {
	return s.update(StepSoilProperties, func(d *models.FarmerProfileDraft) {
		if strings.TrimSpace(soilColor) != "" {
			d.SoilProperties.SoilColor = soilColor
		}
		d.SoilProperties.ApplyNutrients(n)
	})
}

// BeginEnrichment reserves the session for one enrichment run.
func (s *Session) BeginEnrichment() (EnrichmentTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWritableLocked(StepEnvironmental); err != nil {
		return EnrichmentTicket{}, err
	}
	if s.enriching {
		return EnrichmentTicket{}, ErrOperationInFlight
	}

	district, state := s.locationLocked()
	if district == "" || state == "" {
		return EnrichmentTicket{}, ErrMissingLocation
	}

	s.generation++
	s.enriching = true
	return EnrichmentTicket{District: district, State: state, generation: s.generation}, nil
}

// CompleteEnrichment commits coordinates and readings together. Results from a
// run that was overtaken by a step change or an edit to the environmental
// step are discarded with ErrStaleResult.
func (s *Session) CompleteEnrichment(t EnrichmentTicket, coords models.Coordinates, readings models.EnvironmentalReadings) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enriching = false
	if t.generation != s.generation || s.machine.GetState() != StateEnvironmental {
		return s.snapshotLocked(), ErrStaleResult
	}

	s.draft.LandInfo.Location = models.NewLocation(coords.Latitude, coords.Longitude)
	s.draft.EnvironmentalConditions.Apply(readings)
	s.touchLocked()
	return s.snapshotLocked(), nil
}

// AbortEnrichment releases the in-flight guard after a failed run. Nothing is committed.
func (s *Session) AbortEnrichment(EnrichmentTicket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enriching = false
}

// Next validates the active step and advances to the following one.
func (s *Session) Next() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkMutableLocked(); err != nil {
		return Snapshot{}, err
	}
	current := stepForState(s.machine.GetState())
	if current == StepEnvironmental {
		return Snapshot{}, ErrFinalStep
	}
	if err := ValidateStep(current, s.draft); err != nil {
		return Snapshot{}, err
	}
	if err := s.machine.Transition((current + 1).String()); err != nil {
		return Snapshot{}, fmt.Errorf("failed to advance from %s: %w", current, err)
	}
	s.generation++
	s.touchLocked()
	return s.snapshotLocked(), nil
}

// Previous moves back one step without validation.
func (s *Session) Previous() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkMutableLocked(); err != nil {
		return Snapshot{}, err
	}
	current := stepForState(s.machine.GetState())
	if current == StepPersonalInfo {
		return Snapshot{}, ErrNoPreviousStep
	}
	if err := s.machine.Transition((current - 1).String()); err != nil {
		return Snapshot{}, fmt.Errorf("failed to go back from %s: %w", current, err)
	}
	s.generation++
	s.touchLocked()
	return s.snapshotLocked(), nil
}

// BeginSubmit re-validates the whole draft and returns the payload to send.
// The session stays locked against edits until FinishSubmit.
func (s *Session) BeginSubmit() (models.RegistrationPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWritableLocked(StepEnvironmental); err != nil {
		return models.RegistrationPayload{}, err
	}
	if s.enriching {
		return models.RegistrationPayload{}, ErrOperationInFlight
	}
	if err := ValidateDraft(s.draft); err != nil {
		return models.RegistrationPayload{}, err
	}
	payload, err := s.draft.ToPayload(s.UserID)
	if err != nil {
		return models.RegistrationPayload{}, err
	}
	s.submitting = true
	return payload, nil
}

// FinishSubmit records the outcome of a submission. On success the session
// enters the terminal submitted state; on failure it stays on the last step.
func (s *Session) FinishSubmit(submitErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.submitting = false
	if submitErr != nil {
		return nil
	}
	if err := s.machine.Transition(StateSubmitted); err != nil {
		return fmt.Errorf("failed to mark session submitted: %w", err)
	}
	s.touchLocked()
	return nil
}

func (s *Session) update(step Step, apply func(*models.FarmerProfileDraft)) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWritableLocked(step); err != nil {
		return Snapshot{}, err
	}
	apply(&s.draft)
	s.touchLocked()
	return s.snapshotLocked(), nil
}

func (s *Session) checkMutableLocked() error {
	if s.machine.GetState() == StateSubmitted {
		return ErrAlreadySubmitted
	}
	if s.submitting {
		return ErrOperationInFlight
	}
	return nil
}

func (s *Session) checkWritableLocked(step Step) error {
	if err := s.checkMutableLocked(); err != nil {
		return err
	}
	if active := stepForState(s.machine.GetState()); active != step {
		return &StepError{Active: active, Target: step}
	}
	return nil
}

func (s *Session) locationLocked() (district, state string) {
	district = strings.TrimSpace(s.draft.LandInfo.District)
	if district == "" {
		district = strings.TrimSpace(s.draft.PersonalInfo.District)
	}
	state = strings.TrimSpace(s.draft.LandInfo.State)
	if state == "" {
		state = strings.TrimSpace(s.draft.PersonalInfo.State)
	}
	return district, state
}

func (s *Session) touchLocked() {
	s.updatedAt = s.now()
}

func (s *Session) snapshotLocked() Snapshot {
	state := s.machine.GetState()
	return Snapshot{
		ID:        s.ID,
		UserID:    s.UserID,
		Step:      stepForState(state),
		State:     state,
		Draft:     s.draft.Clone(),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.updatedAt,
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst **float64, src *float64) {
	if src != nil {
		v := *src
		*dst = &v
	}
}
