// Package geofence decides whether a reported position is close enough to the
// company location to allow a clock-in.
package geofence

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean radius used by the haversine formula.
const EarthRadiusMeters = 6371000.0

type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p Point) Validate() error {
	if math.IsNaN(p.Latitude) || p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %v", p.Latitude)
	}
	if math.IsNaN(p.Longitude) || p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got %v", p.Longitude)
	}
	return nil
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Point) float64 {
	phi1 := radians(a.Latitude)
	phi2 := radians(b.Latitude)
	dPhi := radians(b.Latitude - a.Latitude)
	dLambda := radians(b.Longitude - a.Longitude)

	h := math.Pow(math.Sin(dPhi/2), 2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Pow(math.Sin(dLambda/2), 2)

	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Result is the outcome of a geofence check.
type Result struct {
	DistanceMeters float64
	RadiusMeters   float64
}

// Inside reports whether the position lies within the radius. A point exactly
// on the boundary is inside.
func (r Result) Inside() bool {
	return r.DistanceMeters <= r.RadiusMeters
}

// TruncatedDistance is the distance with the fractional meters dropped, the
// form shown back to users.
func (r Result) TruncatedDistance() int {
	return int(r.DistanceMeters)
}

func Check(pos, center Point, radiusMeters float64) Result {
	return Result{
		DistanceMeters: Distance(pos, center),
		RadiusMeters:   radiusMeters,
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
