package settings

import (
	"fmt"
	"sync"

	"github.com/frahmantamala/attendance/internal"
	"github.com/frahmantamala/attendance/internal/clock"
	"github.com/frahmantamala/attendance/internal/core/common/validation"
	"github.com/frahmantamala/attendance/internal/geofence"
)

// Settings is the company-wide configuration record edited by administrators.
type Settings struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
	WeeklyHours  float64 `json:"weekly_hours"`
	DefaultIn    string  `json:"default_in"`
	DefaultOut   string  `json:"default_out"`
}

func (s Settings) Center() geofence.Point {
	return geofence.Point{Latitude: s.Latitude, Longitude: s.Longitude}
}

func FromConfig(cfg internal.CompanyConfig) Settings {
	return Settings{
		Latitude:     cfg.Latitude,
		Longitude:    cfg.Longitude,
		RadiusMeters: cfg.RadiusMeters,
		WeeklyHours:  cfg.WeeklyHours,
		DefaultIn:    cfg.DefaultIn,
		DefaultOut:   cfg.DefaultOut,
	}
}

// Patch carries a partial update; nil fields are left untouched.
type Patch struct {
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	RadiusMeters *float64 `json:"radius_meters,omitempty"`
	WeeklyHours  *float64 `json:"weekly_hours,omitempty"`
	DefaultIn    *string  `json:"default_in,omitempty"`
	DefaultOut   *string  `json:"default_out,omitempty"`
}

func (p Patch) apply(s Settings) Settings {
	if p.Latitude != nil {
		s.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		s.Longitude = *p.Longitude
	}
	if p.RadiusMeters != nil {
		s.RadiusMeters = *p.RadiusMeters
	}
	if p.WeeklyHours != nil {
		s.WeeklyHours = *p.WeeklyHours
	}
	if p.DefaultIn != nil {
		s.DefaultIn = *p.DefaultIn
	}
	if p.DefaultOut != nil {
		s.DefaultOut = *p.DefaultOut
	}
	return s
}

func (s Settings) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("latitude", s.Latitude).RangeFloat(-90, 90, internal.ErrCodeInvalidLocation)
	v.Field("longitude", s.Longitude).RangeFloat(-180, 180, internal.ErrCodeInvalidLocation)
	v.Field("radius_meters", s.RadiusMeters).PositiveFloat(internal.ErrCodeInvalidSettings)
	v.Field("weekly_hours", s.WeeklyHours).PositiveFloat(internal.ErrCodeInvalidSettings)
	v.Field("default_in", s.DefaultIn).Required().TimeOfDay()
	v.Field("default_out", s.DefaultOut).Required().TimeOfDay()
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	if mins, err := clock.MinutesBetween(s.DefaultIn, s.DefaultOut); err == nil && mins < 0 {
		return internal.NewValidationFieldError("default_out", "default_out must not be earlier than default_in", internal.ErrCodeInvalidTime)
	}
	return nil
}

// Store holds the live settings. Reads take a snapshot; updates are
// serialized and validated as a whole before they become visible.
type Store struct {
	mu      sync.RWMutex
	current Settings
}

func NewStore(initial Settings) *Store {
	return &Store{current: initial}
}

func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) Update(p Patch) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := p.apply(s.current)
	if appErr := next.Validate(); appErr != nil {
		return s.current, appErr
	}
	s.current = next
	return next, nil
}

func (s Settings) String() string {
	return fmt.Sprintf("center=(%f,%f) radius=%.0fm weekly=%.1fh default=%s-%s",
		s.Latitude, s.Longitude, s.RadiusMeters, s.WeeklyHours, s.DefaultIn, s.DefaultOut)
}
