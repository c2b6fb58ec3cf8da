package services

import (
	"fmt"
	"fuel-route-service/internal/domain"

	"github.com/paulmach/orb"
)

// MapURL returns an OpenStreetMap link centered on the bounding box of the
// trip endpoints and every fuel stop.
func MapURL(start, finish domain.Coordinate, stops []domain.PlannedStop) string {
	points := make(orb.MultiPoint, 0, len(stops)+2)
	points = append(points, orb.Point{start.Lon, start.Lat}, orb.Point{finish.Lon, finish.Lat})
	for _, s := range stops {
		points = append(points, orb.Point{s.Location.Lon, s.Location.Lat})
	}

	center := points.Bound().Center()

	return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%.5f&mlon=%.5f#map=6/%.5f/%.5f",
		center.Lat(), center.Lon(), center.Lat(), center.Lon())
}
