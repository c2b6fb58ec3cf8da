package services

import (
	"errors"
	"fuel-route-service/internal/domain"
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func candidate(id string, at float64, price float64) domain.FuelStopCandidate {
	return domain.FuelStopCandidate{
		FuelStation:       domain.FuelStation{ID: id, Name: "Station " + id, Price: price},
		DistanceFromStart: at,
	}
}

// indexOf groups candidates into buckets by position, mirroring what the indexer produces.
func indexOf(cands ...domain.FuelStopCandidate) domain.CandidateIndex {
	idx := domain.CandidateIndex{}
	pos := map[float64]int{}
	for _, c := range cands {
		i, ok := pos[c.DistanceFromStart]
		if !ok {
			i = len(idx)
			pos[c.DistanceFromStart] = i
			idx = append(idx, nil)
		}
		c.SegmentIndex = i
		idx[i] = append(idx[i], c)
	}
	return idx
}

func TestOptimizeSingleStopFillsForRemainingTrip(t *testing.T) {
	opt := NewFuelStopOptimizer(domain.DefaultVehicleProfile())
	idx := indexOf(candidate("a", 300, 3.00))

	res, err := opt.Optimize(idx, 500, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Stops) != 1 {
		t.Fatalf("expected 1 stop, got %d", len(res.Stops))
	}
	stop := res.Stops[0]
	if stop.DistanceFromStart != 300 {
		t.Fatalf("stop at %v, want 300", stop.DistanceFromStart)
	}
	// Arrive with 200 miles; need 200 remaining + 50 reserve => 5 gallons.
	if stop.Gallons != 5 {
		t.Fatalf("gallons = %v, want 5", stop.Gallons)
	}
	if stop.Cost != 15 {
		t.Fatalf("cost = %v, want 15", stop.Cost)
	}
	if res.TotalGallons != 5 || res.TotalCost != 15 {
		t.Fatalf("totals = (%v, %v), want (5, 15)", res.TotalGallons, res.TotalCost)
	}
	if short := CoverageShortfall(res, 500, opt.Profile, 1); short != 0 {
		t.Fatalf("shortfall = %v, want 0", short)
	}
}

func TestOptimizeWithoutStationsReturnsEmptyPlan(t *testing.T) {
	opt := NewFuelStopOptimizer(domain.DefaultVehicleProfile())

	res, err := opt.Optimize(domain.CandidateIndex{}, 500, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Stops) != 0 {
		t.Fatalf("expected no stops, got %d", len(res.Stops))
	}
	if res.TotalCost != 0 || res.TotalGallons != 0 {
		t.Fatalf("totals = (%v, %v), want zeros", res.TotalCost, res.TotalGallons)
	}

	// 250 miles aboard, 50 reserved: reach 200, short by 300.
	if short := CoverageShortfall(res, 500, opt.Profile, 0.5); short != 300 {
		t.Fatalf("shortfall = %v, want 300", short)
	}
}

func TestOptimizeBuysOnlyToCheaperStationAhead(t *testing.T) {
	opt := NewFuelStopOptimizer(domain.DefaultVehicleProfile())
	idx := indexOf(
		candidate("pricey", 100, 4.00),
		candidate("cheap", 300, 3.50),
	)

	// 200 miles aboard: the first window is (0, 150], which only holds "pricey".
	res, err := opt.Optimize(idx, 500, 0.4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Stops) != 2 {
		t.Fatalf("expected 2 stops, got %d", len(res.Stops))
	}

	first, second := res.Stops[0], res.Stops[1]
	if first.ID != "pricey" || second.ID != "cheap" {
		t.Fatalf("stops = [%s %s], want [pricey cheap]", first.ID, second.ID)
	}
	// Arrive at 100 with 100 miles; reach 300 plus reserve => 150 miles => 15 gallons.
	if first.Gallons != 15 {
		t.Fatalf("first gallons = %v, want 15 (not a full tank)", first.Gallons)
	}
	if first.Gallons >= opt.Profile.TankCapacity()-100/opt.Profile.MPG {
		t.Fatalf("first stop filled the tank: %v gallons", first.Gallons)
	}
	// Arrive at 300 with exactly the reserve; finish needs 200 + 50 => 20 gallons.
	if second.Gallons != 20 {
		t.Fatalf("second gallons = %v, want 20", second.Gallons)
	}
	if res.TotalCost != 130 {
		t.Fatalf("total cost = %v, want 130", res.TotalCost)
	}
	if res.TotalGallons != 35 {
		t.Fatalf("total gallons = %v, want 35", res.TotalGallons)
	}
}

func TestOptimizeIgnoresMarginallyCheaperStation(t *testing.T) {
	opt := NewFuelStopOptimizer(domain.DefaultVehicleProfile())
	// 3.85 is not below 4.00 * 0.95 = 3.80.
	idx := indexOf(
		candidate("first", 100, 4.00),
		candidate("almost", 300, 3.85),
	)

	res, err := opt.Optimize(idx, 500, 0.4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Stops) != 1 {
		t.Fatalf("expected 1 stop, got %d", len(res.Stops))
	}
	// No cheaper station: buy for 400 remaining + 50 reserve from 100 aboard => 35 gallons.
	if got := res.Stops[0].Gallons; got != 35 {
		t.Fatalf("gallons = %v, want 35", got)
	}
}

func TestOptimizeEnforcesMinimumPurchase(t *testing.T) {
	opt := NewFuelStopOptimizer(domain.DefaultVehicleProfile())
	idx := indexOf(
		candidate("pricey", 100, 4.00),
		candidate("cheap", 150, 3.50),
	)

	// 170 miles aboard: window (0, 120] holds only "pricey".
	res, err := opt.Optimize(idx, 500, 0.34)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Stops) == 0 {
		t.Fatalf("expected stops")
	}
	// Reaching 150 plus reserve needs 3 gallons; the minimum raises it to 5.
	if got := res.Stops[0].Gallons; got != minPurchaseGallons {
		t.Fatalf("gallons = %v, want %v", got, minPurchaseGallons)
	}
}

func TestOptimizeDrivesPastStationWithoutRoomForMinimum(t *testing.T) {
	opt := NewFuelStopOptimizer(domain.DefaultVehicleProfile())
	idx := indexOf(
		candidate("near", 10, 2.00),
		candidate("far", 400, 4.00),
	)

	// A full tank 10 miles out has 1 gallon of room, below the minimum purchase.
	res, err := opt.Optimize(idx, 1000, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Stops) != 1 {
		t.Fatalf("stops = %+v, want a single stop at far", res.Stops)
	}
	stop := res.Stops[0]
	if stop.ID != "far" || stop.Gallons != 40 || stop.Cost != 160 {
		t.Fatalf("stop = %s gallons=%v cost=%v, want far gallons=40 cost=160", stop.ID, stop.Gallons, stop.Cost)
	}
}

func TestOptimizePicksCheapestAndBreaksTiesByOrder(t *testing.T) {
	idx := domain.CandidateIndex{
		{candidate("a", 100, 3.20), candidate("b", 100, 3.40)},
		{candidate("c", 200, 3.10), candidate("d", 200, 3.10)},
		{candidate("e", 300, 3.10)},
	}

	best, ok := cheapestInWindow(idx, 0, 450)
	if !ok {
		t.Fatalf("expected a candidate")
	}
	if best.ID != "c" {
		t.Fatalf("best = %s, want c", best.ID)
	}

	// Window bounds are (from, to].
	if _, ok := cheapestInWindow(idx, 300, 450); ok {
		t.Fatalf("candidate at the window start must be excluded")
	}
	best, ok = cheapestInWindow(idx, 0, 100)
	if !ok || best.ID != "a" {
		t.Fatalf("best = %v (ok=%v), want a", best.ID, ok)
	}
}

func TestOptimizeNoStopWhenDestinationInRange(t *testing.T) {
	opt := NewFuelStopOptimizer(domain.DefaultVehicleProfile())
	idx := indexOf(candidate("a", 100, 1.00))

	res, err := opt.Optimize(idx, 450, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Stops) != 0 {
		t.Fatalf("expected no stops, got %d", len(res.Stops))
	}
}

func TestOptimizeRejectsInvalidInput(t *testing.T) {
	bad := domain.DefaultVehicleProfile()
	bad.MPG = 0

	cases := map[string]func() error{
		"zero mpg": func() error {
			_, err := NewFuelStopOptimizer(bad).Optimize(nil, 100, 1)
			return err
		},
		"fuel above 1": func() error {
			_, err := NewFuelStopOptimizer(domain.DefaultVehicleProfile()).Optimize(nil, 100, 1.5)
			return err
		},
		"negative distance": func() error {
			_, err := NewFuelStopOptimizer(domain.DefaultVehicleProfile()).Optimize(nil, -1, 1)
			return err
		},
	}

	for name, run := range cases {
		if err := run(); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("%s: err = %v, want ErrInvalidInput", name, err)
		}
	}
}

func randomIndex(r *rand.Rand, total float64, interval float64) domain.CandidateIndex {
	idx := domain.CandidateIndex{}
	for d := 0.0; d <= total; d += interval {
		n := r.Intn(4)
		bucket := make([]domain.FuelStopCandidate, 0, n)
		for j := 0; j < n; j++ {
			price := 3 + math.Round(r.Float64()*200)/100
			bucket = append(bucket, candidate("s", d, price))
		}
		idx = append(idx, bucket)
	}
	return idx
}

func TestOptimizeInvariants(t *testing.T) {
	profile := domain.DefaultVehicleProfile()
	opt := NewFuelStopOptimizer(profile)
	r := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		total := 200 + r.Float64()*2800
		interval := []float64{25, 50, 100}[r.Intn(3)]
		fuel := r.Float64()
		idx := randomIndex(r, total, interval)

		res, err := opt.Optimize(idx, total, fuel)
		if err != nil {
			t.Fatalf("run %d: unexpected error: %v", run, err)
		}

		rangeMiles := fuel * profile.MaxRange()
		position := 0.0
		sum := 0.0
		for i, s := range res.Stops {
			if s.DistanceFromStart <= position || s.DistanceFromStart > total {
				t.Fatalf("run %d stop %d: position %v not in (%v, %v]", run, i, s.DistanceFromStart, position, total)
			}

			rangeMiles -= s.DistanceFromStart - position
			if rangeMiles < profile.ReserveMiles-1e-6 {
				t.Fatalf("run %d stop %d: arrived with %v miles, reserve is %v", run, i, rangeMiles, profile.ReserveMiles)
			}

			rangeMiles += s.Gallons * profile.MPG
			tank := rangeMiles / profile.MPG
			if tank > profile.TankCapacity()+0.01 {
				t.Fatalf("run %d stop %d: tank holds %v gallons, capacity %v", run, i, tank, profile.TankCapacity())
			}
			if s.Gallons < minPurchaseGallons {
				t.Fatalf("run %d stop %d: bought %v gallons, minimum is %v", run, i, s.Gallons, minPurchaseGallons)
			}

			position = s.DistanceFromStart
			sum += s.Gallons
		}

		if math.Abs(sum-res.TotalGallons) > 0.005 {
			t.Fatalf("run %d: total gallons %v, sum of stops %v", run, res.TotalGallons, sum)
		}
	}
}

func TestOptimizeIsDeterministic(t *testing.T) {
	opt := NewFuelStopOptimizer(domain.DefaultVehicleProfile())
	idx := randomIndex(rand.New(rand.NewSource(7)), 2400, 50)

	first, err := opt.Optimize(idx, 2400, 0.8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := opt.Optimize(idx, 2400, 0.8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ between identical runs")
	}
}
