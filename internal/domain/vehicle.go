package domain

import (
	"fmt"
	"math"
)

// Vehicle characteristics used by the fuel planner.
// Tank capacity is derived (RangeMiles / MPG) rather than stored.
type VehicleProfile struct {
	RangeMiles        float64
	MPG               float64
	SearchRadiusMiles float64
	ReserveMiles      float64
}

// DefaultVehicleProfile returns the long-haul truck defaults:
// 500 mile range, 10 mpg, 25 mile search radius and a 50 mile reserve.
func DefaultVehicleProfile() VehicleProfile {
	return VehicleProfile{
		RangeMiles:        500,
		MPG:               10,
		SearchRadiusMiles: 25,
		ReserveMiles:      50,
	}
}

// TankCapacity returns the tank size in gallons.
func (v VehicleProfile) TankCapacity() float64 {
	if v.MPG == 0 {
		return 0
	}
	return v.RangeMiles / v.MPG
}

// MaxRange returns the distance covered by a full tank.
func (v VehicleProfile) MaxRange() float64 {
	return v.TankCapacity() * v.MPG
}

// Validate rejects profiles that would divide by zero or make the simulation meaningless.
func (v VehicleProfile) Validate() error {
	if !positive(v.RangeMiles) {
		return fmt.Errorf("vehicle profile: range must be positive, got %v: %w", v.RangeMiles, ErrInvalidInput)
	}
	if !positive(v.MPG) {
		return fmt.Errorf("vehicle profile: mpg must be positive, got %v: %w", v.MPG, ErrInvalidInput)
	}
	if !positive(v.SearchRadiusMiles) {
		return fmt.Errorf("vehicle profile: search radius must be positive, got %v: %w", v.SearchRadiusMiles, ErrInvalidInput)
	}
	if math.IsNaN(v.ReserveMiles) || math.IsInf(v.ReserveMiles, 0) || v.ReserveMiles < 0 {
		return fmt.Errorf("vehicle profile: reserve must be non-negative, got %v: %w", v.ReserveMiles, ErrInvalidInput)
	}
	return nil
}

func positive(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f > 0
}
