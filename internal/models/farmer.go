package models

import (
	"errors"
	"strings"
	"time"
)

// ErrIncompleteDraft is returned when a payload is built from a draft that is
// missing values. Callers validate first; this guards the conversion itself.
var ErrIncompleteDraft = errors.New("draft is incomplete")

// PersonalInfo is the first wizard step.
type PersonalInfo struct {
	Name     string `json:"name" validate:"notblank"`
	Age      *int   `json:"age" validate:"required,gte=1,lte=120"`
	State    string `json:"state" validate:"notblank"`
	District string `json:"district" validate:"notblank"`
}

// LandInfo is the second wizard step. Crops are optional; the location is
// filled by enrichment and stays at [0,0] until then.
type LandInfo struct {
	District string   `json:"district" validate:"notblank"`
	State    string   `json:"state" validate:"notblank"`
	Crops    []string `json:"crops"`
	Location Location `json:"location"`
}

// SoilProperties is the third wizard step. SoilColor drives the nutrient
// lookup and is not sent to the registry.
type SoilProperties struct {
	SoilColor   string   `json:"soilColor" validate:"notblank"`
	Nitrogen    *float64 `json:"nitrogen" validate:"required,gte=0"`
	Phosphorous *float64 `json:"phosphorous" validate:"required,gte=0"`
	Potassium   *float64 `json:"potassium" validate:"required,gte=0"`
	PH          *float64 `json:"pH" validate:"required,gte=0,lte=14"`
}

// EnvironmentalConditions is the fourth wizard step.
type EnvironmentalConditions struct {
	Temperature *float64 `json:"temperature" validate:"required,gte=-60,lte=60"`
	Humidity    *float64 `json:"humidity" validate:"required,gte=0,lte=100"`
	Rainfall    *float64 `json:"rainfall" validate:"required,gte=0"`
}

// FarmerProfileDraft is the in-memory aggregate assembled across the wizard.
type FarmerProfileDraft struct {
	PersonalInfo            PersonalInfo            `json:"personalInfo"`
	LandInfo                LandInfo                `json:"landInfo"`
	SoilProperties          SoilProperties          `json:"soilProperties"`
	EnvironmentalConditions EnvironmentalConditions `json:"environmentalConditions"`
}

// NewDraft returns an empty draft holding a single blank crop entry.
func NewDraft() FarmerProfileDraft {
	return FarmerProfileDraft{
		LandInfo: LandInfo{Crops: []string{""}},
	}
}

// Clone returns a deep copy so callers can read a draft without holding its owner's lock.
func (d FarmerProfileDraft) Clone() FarmerProfileDraft {
	out := d
	out.PersonalInfo.Age = cloneInt(d.PersonalInfo.Age)
	out.LandInfo.Crops = append([]string(nil), d.LandInfo.Crops...)
	out.SoilProperties.Nitrogen = cloneFloat(d.SoilProperties.Nitrogen)
	out.SoilProperties.Phosphorous = cloneFloat(d.SoilProperties.Phosphorous)
	out.SoilProperties.Potassium = cloneFloat(d.SoilProperties.Potassium)
	out.SoilProperties.PH = cloneFloat(d.SoilProperties.PH)
	out.EnvironmentalConditions.Temperature = cloneFloat(d.EnvironmentalConditions.Temperature)
	out.EnvironmentalConditions.Humidity = cloneFloat(d.EnvironmentalConditions.Humidity)
	out.EnvironmentalConditions.Rainfall = cloneFloat(d.EnvironmentalConditions.Rainfall)
	return out
}

// SoilNutrients are baseline nutrient values for a soil, as sent to the registry.
type SoilNutrients struct {
	Nitrogen    float64 `json:"nitrogen"`
	Phosphorous float64 `json:"phosphorous"`
	Potassium   float64 `json:"potassium"`
	PH          float64 `json:"pH"`
}

// EnvironmentalReadings are the weather values for a location.
type EnvironmentalReadings struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Rainfall    float64 `json:"rainfall"`
}

// Coordinates is a geocoding result.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RegistrationPayload is the body of POST /api/farmer/register.
type RegistrationPayload struct {
	UserID       string              `json:"userId" binding:"required"`
	PersonalInfo PersonalInfoPayload `json:"personalInfo"`
	LandInfo     LandInfoPayload     `json:"landInfo"`
}

// PersonalInfoPayload is the personalInfo object of a registration.
type PersonalInfoPayload struct {
	Name     string `json:"name" binding:"required"`
	Age      int    `json:"age" binding:"required,gte=1,lte=120"`
	State    string `json:"state" binding:"required"`
	District string `json:"district" binding:"required"`
}

// LandInfoPayload is the landInfo object of a registration. Soil and
// environmental values are nested here on the wire.
type LandInfoPayload struct {
	District                string                `json:"district" binding:"required"`
	State                   string                `json:"state" binding:"required"`
	Crops                   []string              `json:"crops"`
	Location                Location              `json:"location"`
	SoilProperties          SoilNutrients         `json:"soilProperties"`
	EnvironmentalConditions EnvironmentalReadings `json:"environmentalConditions"`
}

// FarmerRecord is a stored registration.
type FarmerRecord struct {
	ID string `json:"_id"`
	RegistrationPayload
	CreatedAt time.Time `json:"createdAt"`
}

// ToPayload assembles the registration body for userID. Blank crop entries
// are dropped; an empty crop list is allowed.
func (d FarmerProfileDraft) ToPayload(userID string) (RegistrationPayload, error) {
	p, s, e := d.PersonalInfo, d.SoilProperties, d.EnvironmentalConditions
	if p.Age == nil || s.Nitrogen == nil || s.Phosphorous == nil || s.Potassium == nil || s.PH == nil ||
		e.Temperature == nil || e.Humidity == nil || e.Rainfall == nil {
		return RegistrationPayload{}, ErrIncompleteDraft
	}

	return RegistrationPayload{
		UserID: userID,
		PersonalInfo: PersonalInfoPayload{
			Name:     strings.TrimSpace(p.Name),
			Age:      *p.Age,
			State:    strings.TrimSpace(p.State),
			District: strings.TrimSpace(p.District),
		},
		LandInfo: LandInfoPayload{
			District: strings.TrimSpace(d.LandInfo.District),
			State:    strings.TrimSpace(d.LandInfo.State),
			Crops:    CleanCrops(d.LandInfo.Crops),
			Location: d.LandInfo.Location,
			SoilProperties: SoilNutrients{
				Nitrogen:    *s.Nitrogen,
				Phosphorous: *s.Phosphorous,
				Potassium:   *s.Potassium,
				PH:          *s.PH,
			},
			EnvironmentalConditions: EnvironmentalReadings{
				Temperature: *e.Temperature,
				Humidity:    *e.Humidity,
				Rainfall:    *e.Rainfall,
			},
		},
	}, nil
}

// DraftFromPayload rebuilds a draft from a registration body. The soil colour
// is not part of the wire format and comes back empty.
func DraftFromPayload(p RegistrationPayload) FarmerProfileDraft {
	age := p.PersonalInfo.Age
	soil := p.LandInfo.SoilProperties
	env := p.LandInfo.EnvironmentalConditions

	d := FarmerProfileDraft{
		PersonalInfo: PersonalInfo{
			Name:     p.PersonalInfo.Name,
			Age:      &age,
			State:    p.PersonalInfo.State,
			District: p.PersonalInfo.District,
		},
		LandInfo: LandInfo{
			District: p.LandInfo.District,
			State:    p.LandInfo.State,
			Crops:    append([]string{}, p.LandInfo.Crops...),
			Location: p.LandInfo.Location,
		},
	}
	d.SoilProperties.ApplyNutrients(soil)
	d.EnvironmentalConditions.Apply(env)
	return d
}

// ApplyNutrients overwrites the nutrient values, leaving the soil colour alone.
func (s *SoilProperties) ApplyNutrients(n SoilNutrients) {
	s.Nitrogen = floatPtr(n.Nitrogen)
	s.Phosphorous = floatPtr(n.Phosphorous)
	s.Potassium = floatPtr(n.Potassium)
	s.PH = floatPtr(n.PH)
}

// Apply overwrites all environmental values.
func (e *EnvironmentalConditions) Apply(r EnvironmentalReadings) {
	e.Temperature = floatPtr(r.Temperature)
	e.Humidity = floatPtr(r.Humidity)
	e.Rainfall = floatPtr(r.Rainfall)
}

// CleanCrops trims entries and drops blanks. It never returns nil.
func CleanCrops(crops []string) []string {
	out := make([]string, 0, len(crops))
	for _, c := range crops {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func floatPtr(v float64) *float64 { return &v }

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
