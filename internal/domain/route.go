package domain

// Represents a driving route returned by a route provider.
// Coordinates is the full polyline in travel order; DurationMinutes is informational only.
// RouteData is immutable once built.
type RouteData struct {
	Coordinates     []Coordinate
	DistanceMiles   float64
	DurationMinutes float64
	Start           Coordinate
	Finish          Coordinate
}

// Represents the outcome of planning a single trip.
// Result may be partial: Complete is false when the planned stops do not
// carry the vehicle to the destination with the reserve intact, in which case
// ShortfallMiles reports how far short the plan falls.
type TripPlan struct {
	ID             string
	Route          RouteData
	Result         OptimizationResult
	Complete       bool
	ShortfallMiles float64
	MapURL         string
	Message        string
}
