package domain

import (
	"fmt"
	"math"
)

// Mean Earth radius in miles used for all great-circle distances.
const EarthRadiusMiles = 3959.0

// Immutable geographic coordinates (WGS84 degrees).
type Coordinate struct {
	Lat float64
	Lon float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinate) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

func (c Coordinate) String() string { return fmt.Sprintf("%g,%g", c.Lat, c.Lon) }

// Valid reports whether both components are finite and within WGS84 bounds.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// DistanceTo returns the great-circle (Haversine) distance to other in miles.
func (c Coordinate) DistanceTo(other Coordinate) float64 {
	lat1 := c.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - c.Lat) * math.Pi / 180
	dLon := (other.Lon - c.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusMiles * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// A point on the route timeline: a position plus its cumulative distance
// (miles) from the route start. Only the resampler creates these.
type SamplePoint struct {
	Lat               float64
	Lon               float64
	DistanceFromStart float64
}

func (p SamplePoint) Coordinate() Coordinate { return Coordinate{Lat: p.Lat, Lon: p.Lon} }
