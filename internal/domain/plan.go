package domain

// Represents a single refueling stop chosen by the optimizer.
// Gallons and Cost are rounded to cents/hundredths at creation and never change afterwards.
type PlannedStop struct {
	FuelStopCandidate
	Gallons float64
	Cost    float64
}

// The optimizer's output: stops in travel order with aggregate totals.
// TotalGallons is always the sum of the stops' Gallons.
type OptimizationResult struct {
	Stops        []PlannedStop
	TotalCost    float64
	TotalGallons float64
}

// LastStopDistance returns the route position of the final stop, or 0 without stops.
func (r OptimizationResult) LastStopDistance() float64 {
	if len(r.Stops) == 0 {
		return 0
	}
	return r.Stops[len(r.Stops)-1].DistanceFromStart
}
