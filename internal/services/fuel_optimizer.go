package services

import (
	"fmt"
	"fuel-route-service/internal/domain"
	"log"
	"math"
)

const (
	// A station ahead only counts as cheaper below this fraction of the current price.
	cheaperPriceFactor = 0.95

	// Smallest purchase made whenever the vehicle stops.
	minPurchaseGallons = 5.0
)

// FuelStopOptimizer plans refueling stops for one vehicle profile.
//
// The planner is a greedy simulation: at each step it drives to the cheapest
// station reachable without touching the reserve, then buys either just enough
// to reach a noticeably cheaper station within one tank, or enough to finish
// (capped by the tank). It is a one-step-ahead heuristic, not a global optimum.
// Optimize has no hidden state and is safe to call concurrently.
type FuelStopOptimizer struct {
	Profile domain.VehicleProfile
}

func NewFuelStopOptimizer(profile domain.VehicleProfile) *FuelStopOptimizer {
	return &FuelStopOptimizer{Profile: profile}
}

// Optimize simulates the trip over the candidate index.
//
// fuelLevel is the starting fill as a fraction of the tank. When no reachable
// candidate exists the loop stops and the stops gathered so far are returned
// without error; callers detect the gap with CoverageShortfall.
func (o *FuelStopOptimizer) Optimize(
	index domain.CandidateIndex,
	totalDistance float64,
	fuelLevel float64,
) (domain.OptimizationResult, error) {
	profile := o.Profile
	if err := profile.Validate(); err != nil {
		return domain.OptimizationResult{}, fmt.Errorf("optimize fuel stops: %w", err)
	}
	if math.IsNaN(totalDistance) || math.IsInf(totalDistance, 0) || totalDistance < 0 {
		return domain.OptimizationResult{}, fmt.Errorf("optimize fuel stops: total distance must be non-negative, got %v: %w", totalDistance, domain.ErrInvalidInput)
	}
	if math.IsNaN(fuelLevel) || fuelLevel < 0 || fuelLevel > 1 {
		return domain.OptimizationResult{}, fmt.Errorf("optimize fuel stops: fuel level must be within [0,1], got %v: %w", fuelLevel, domain.ErrInvalidInput)
	}

	result := domain.OptimizationResult{Stops: []domain.PlannedStop{}}

	rangeMiles := fuelLevel * profile.MaxRange()
	traveled := 0.0

	for traveled < totalDistance {
		mustFuelBy := traveled + (rangeMiles - profile.ReserveMiles)

		// Destination reachable on the fuel aboard with the reserve intact.
		if mustFuelBy >= totalDistance {
			break
		}

		best, ok := cheapestInWindow(index, traveled, math.Min(mustFuelBy, totalDistance))
		if !ok {
			log.Printf("op=optimize.partial traveled=%.1f must_fuel_by=%.1f total=%.1f stops=%d",
				traveled, mustFuelBy, totalDistance, len(result.Stops))
			break
		}

		rangeMiles -= best.DistanceFromStart - traveled

		// Too little room for the minimum purchase: drive past and search again from here.
		if room := profile.TankCapacity() - rangeMiles/profile.MPG; room < minPurchaseGallons {
			traveled = best.DistanceFromStart
			continue
		}

		gallons := o.decideGallons(best, index, best.DistanceFromStart, rangeMiles, totalDistance)
		gallons = roundHundredths(gallons)
		cost := roundHundredths(gallons * best.Price)

		result.Stops = append(result.Stops, domain.PlannedStop{
			FuelStopCandidate: best,
			Gallons:           gallons,
			Cost:              cost,
		})
		result.TotalGallons += gallons
		result.TotalCost += cost

		rangeMiles += gallons * profile.MPG
		traveled = best.DistanceFromStart
	}

	result.TotalGallons = roundHundredths(result.TotalGallons)
	result.TotalCost = roundHundredths(result.TotalCost)

	return result, nil
}

// cheapestInWindow returns the lowest-priced candidate with from < position <= to.
// Buckets and candidates are scanned in order and only a strictly lower price
// replaces the current best, so ties resolve to the first encountered.
func cheapestInWindow(index domain.CandidateIndex, from, to float64) (domain.FuelStopCandidate, bool) {
	var best domain.FuelStopCandidate
	found := false

	for _, bucket := range index {
		for _, c := range bucket {
			if c.DistanceFromStart <= from || c.DistanceFromStart > to {
				continue
			}
			if !found || c.Price < best.Price {
				best = c
				found = true
			}
		}
	}

	return best, found
}

// decideGallons computes the purchase at stop for a vehicle that arrived at
// position with rangeMiles of fuel left.
func (o *FuelStopOptimizer) decideGallons(
	stop domain.FuelStopCandidate,
	index domain.CandidateIndex,
	position float64,
	rangeMiles float64,
	totalDistance float64,
) float64 {
	profile := o.Profile
	maxRange := profile.MaxRange()

	// Closest station within one full tank that beats the current price by the threshold.
	cheaperAt := math.Inf(1)
	threshold := stop.Price * cheaperPriceFactor
	for _, bucket := range index {
		for _, c := range bucket {
			d := c.DistanceFromStart
			if d <= position || d > position+maxRange {
				continue
			}
			if c.Price < threshold && d < cheaperAt {
				cheaperAt = d
			}
		}
	}

	var milesNeeded float64
	if !math.IsInf(cheaperAt, 1) {
		milesNeeded = (cheaperAt - position) + profile.ReserveMiles - rangeMiles
	} else {
		remaining := totalDistance - position
		milesNeeded = math.Min(remaining+profile.ReserveMiles, maxRange) - rangeMiles
	}
	gallons := math.Max(0, milesNeeded/profile.MPG)

	// Optimize only stops with at least the minimum purchase of room in the tank.
	room := profile.TankCapacity() - rangeMiles/profile.MPG
	gallons = math.Min(gallons, room)
	return math.Max(gallons, minPurchaseGallons)
}

// CoverageShortfall replays a plan and returns how many miles short of
// totalDistance the vehicle falls while keeping the reserve. Zero means the
// plan reaches the destination.
func CoverageShortfall(
	result domain.OptimizationResult,
	totalDistance float64,
	profile domain.VehicleProfile,
	fuelLevel float64,
) float64 {
	rangeMiles := fuelLevel * profile.MaxRange()
	position := 0.0

	for _, s := range result.Stops {
		rangeMiles -= s.DistanceFromStart - position
		rangeMiles += s.Gallons * profile.MPG
		position = s.DistanceFromStart
	}

	reach := position + rangeMiles - profile.ReserveMiles
	if reach >= totalDistance {
		return 0
	}
	return roundHundredths(totalDistance - reach)
}

func roundHundredths(f float64) float64 {
	return math.Round(f*100) / 100
}
