package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

const pointType = "Point"

// Location is a GeoJSON Point in WGS84. Coordinates are [longitude, latitude],
// the order GeoJSON and PostGIS both expect. The zero value is the [0,0]
// placeholder used until a draft has been enriched.
type Location struct {
	Coordinates [2]float64
}

// NewLocation builds a Location from latitude and longitude.
func NewLocation(lat, lng float64) Location {
	return Location{Coordinates: [2]float64{lng, lat}}
}

// Latitude returns the latitude component.
func (l Location) Latitude() float64 { return l.Coordinates[1] }

// Longitude returns the longitude component.
func (l Location) Longitude() float64 { return l.Coordinates[0] }

// IsZero reports whether the location is still the [0,0] placeholder.
func (l Location) IsZero() bool {
	return l.Coordinates == [2]float64{}
}

type geoJSONPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// MarshalJSON always emits a typed GeoJSON Point.
func (l Location) MarshalJSON() ([]byte, error) {
	return json.Marshal(geoJSONPoint{Type: pointType, Coordinates: l.Coordinates})
}

// UnmarshalJSON accepts a GeoJSON Point. A missing type is tolerated.
func (l *Location) UnmarshalJSON(data []byte) error {
	var geom geoJSONPoint
	if err := json.Unmarshal(data, &geom); err != nil {
		return fmt.Errorf("failed to unmarshal point: %w", err)
	}
	if geom.Type != "" && geom.Type != pointType {
		return fmt.Errorf("expected Point type, got %s", geom.Type)
	}
	l.Coordinates = geom.Coordinates
	return nil
}

// Scan reads the output of ST_AsGeoJSON.
func (l *Location) Scan(value interface{}) error {
	if value == nil {
		*l = Location{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("failed to scan Location: expected []byte or string, got %T", value)
	}

	var geom geoJSONPoint
	if err := json.Unmarshal(raw, &geom); err != nil {
		return fmt.Errorf("failed to unmarshal point geometry: %w", err)
	}
	if geom.Type != pointType {
		return fmt.Errorf("expected Point type, got %s", geom.Type)
	}
	l.Coordinates = geom.Coordinates
	return nil
}

// Value returns GeoJSON text for use with ST_GeomFromGeoJSON.
func (l Location) Value() (driver.Value, error) {
	b, err := l.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal point to GeoJSON: %w", err)
	}
	return string(b), nil
}
