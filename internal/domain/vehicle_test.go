package domain

import (
	"errors"
	"testing"
)

func TestVehicleProfileTankCapacity(t *testing.T) {
	v := DefaultVehicleProfile()

	if got := v.TankCapacity(); got != 50 {
		t.Fatalf("tank capacity = %v, want 50", got)
	}
	if got := v.MaxRange(); got != 500 {
		t.Fatalf("max range = %v, want 500", got)
	}
	if err := v.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVehicleProfileValidate(t *testing.T) {
	base := DefaultVehicleProfile()

	zeroMPG := base
	zeroMPG.MPG = 0

	zeroRange := base
	zeroRange.RangeMiles = 0

	negReserve := base
	negReserve.ReserveMiles = -1

	noRadius := base
	noRadius.SearchRadiusMiles = 0

	for name, v := range map[string]VehicleProfile{
		"zero mpg":         zeroMPG,
		"zero range":       zeroRange,
		"negative reserve": negReserve,
		"zero radius":      noRadius,
	} {
		err := v.Validate()
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: err = %v, want ErrInvalidInput", name, err)
		}
	}

	if got := zeroMPG.TankCapacity(); got != 0 {
		t.Fatalf("tank capacity with zero mpg = %v, want 0", got)
	}
}

func TestOptimizationResultLastStopDistance(t *testing.T) {
	var empty OptimizationResult
	if got := empty.LastStopDistance(); got != 0 {
		t.Fatalf("empty last stop = %v, want 0", got)
	}

	r := OptimizationResult{Stops: []PlannedStop{
		{FuelStopCandidate: FuelStopCandidate{DistanceFromStart: 120}},
		{FuelStopCandidate: FuelStopCandidate{DistanceFromStart: 340}},
	}}
	if got := r.LastStopDistance(); got != 340 {
		t.Fatalf("last stop = %v, want 340", got)
	}
}
