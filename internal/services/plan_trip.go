package services

import (
	"context"
	"errors"
	"fmt"
	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/platform/obs"
	"fuel-route-service/internal/ports"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const planCompleteMessage = "Successful"

type PlanTripRequest struct {
	Start     string
	Finish    string
	FuelLevel float64 // fraction of a full tank at departure, 0..1
}

// PlanMetrics receives plan outcomes. *metrics.Collector satisfies it.
type PlanMetrics interface {
	ObservePlan(outcome string, stops int, d time.Duration)
}

// TripPlanner wires the geocoder, route provider, station lookup and the
// fuel-stop optimizer into a single trip planning operation.
// Publisher and Metrics are optional.
type TripPlanner struct {
	Geocoder       ports.Geocoder
	Routes         ports.RouteProvider
	Indexer        *CandidateIndexer
	Optimizer      *FuelStopOptimizer
	SampleInterval float64
	Publisher      ports.PlanPublisher
	Metrics        PlanMetrics

	now   func() time.Time
	newID func() string
}

func NewTripPlanner(
	geocoder ports.Geocoder,
	routes ports.RouteProvider,
	lookup ports.StationLookup,
	profile domain.VehicleProfile,
) *TripPlanner {
	return &TripPlanner{
		Geocoder:       geocoder,
		Routes:         routes,
		Indexer:        NewCandidateIndexer(lookup, defaultLookupConcurrency),
		Optimizer:      NewFuelStopOptimizer(profile),
		SampleInterval: DefaultSampleInterval,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

// Plan geocodes both addresses, fetches the route, samples it, indexes nearby
// stations and runs the optimizer. A plan that cannot reach the destination is
// returned with Complete=false rather than as an error.
func (tp *TripPlanner) Plan(ctx context.Context, req PlanTripRequest) (_ *domain.TripPlan, err error) {
	defer obs.Time(ctx, "trip.Plan")(&err)

	started := tp.clock()
	outcome := "error"
	stops := 0
	defer func() {
		if tp.Metrics != nil {
			tp.Metrics.ObservePlan(outcome, stops, tp.clock().Sub(started))
		}
	}()

	if err := validatePlanRequest(req); err != nil {
		return nil, err
	}

	start, finish, err := tp.geocodeEndpoints(ctx, req.Start, req.Finish)
	if err != nil {
		return nil, err
	}

	route, err := tp.Routes.GetRoute(ctx, start, finish)
	if err != nil {
		return nil, fmt.Errorf("plan trip: get route: %w", err)
	}

	interval := tp.SampleInterval
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	points, err := ResampleRoute(route.Coordinates, interval)
	if err != nil {
		return nil, fmt.Errorf("plan trip: resample route: %w", err)
	}

	profile := tp.Optimizer.Profile
	index, err := tp.Indexer.Index(ctx, points, profile.SearchRadiusMiles)
	if err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}

	result, err := tp.Optimizer.Optimize(index, route.DistanceMiles, req.FuelLevel)
	if err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}

	shortfall := CoverageShortfall(result, route.DistanceMiles, profile, req.FuelLevel)

	plan := &domain.TripPlan{
		ID:             tp.id(),
		Route:          route,
		Result:         result,
		Complete:       shortfall == 0,
		ShortfallMiles: shortfall,
		MapURL:         MapURL(route.Start, route.Finish, result.Stops),
		Message:        planCompleteMessage,
	}
	if !plan.Complete {
		plan.Message = fmt.Sprintf(
			"No reachable fuel station found; the planned stops cover the route up to mile %.1f of %.1f",
			route.DistanceMiles-shortfall, route.DistanceMiles,
		)
	}

	outcome = "partial"
	if plan.Complete {
		outcome = "complete"
	}
	stops = len(result.Stops)

	tp.publish(ctx, req, plan)

	return plan, nil
}

// geocodeEndpoints resolves both addresses concurrently.
func (tp *TripPlanner) geocodeEndpoints(ctx context.Context, startAddr, finishAddr string) (start, finish domain.Coordinate, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c, err := tp.Geocoder.Geocode(gctx, startAddr)
		if err != nil {
			return fmt.Errorf("plan trip: geocode start %q: %w", startAddr, err)
		}
		start = c
		return nil
	})
	g.Go(func() error {
		c, err := tp.Geocoder.Geocode(gctx, finishAddr)
		if err != nil {
			return fmt.Errorf("plan trip: geocode finish %q: %w", finishAddr, err)
		}
		finish = c
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.Coordinate{}, domain.Coordinate{}, err
	}
	return start, finish, nil
}

// publish announces the plan. Failures are logged and never fail the request.
func (tp *TripPlanner) publish(ctx context.Context, req PlanTripRequest, plan *domain.TripPlan) {
	if tp.Publisher == nil {
		return
	}

	event := ports.PlanCompleted{
		PlanID:        plan.ID,
		Start:         req.Start,
		Finish:        req.Finish,
		TotalDistance: plan.Route.DistanceMiles,
		Stops:         len(plan.Result.Stops),
		TotalCost:     plan.Result.TotalCost,
		TotalGallons:  plan.Result.TotalGallons,
		Complete:      plan.Complete,
		PlannedAt:     tp.clock().UTC(),
	}
	if err := tp.Publisher.PublishPlan(ctx, event); err != nil {
		log.Printf("req_id=%s op=trip.publish plan_id=%s err=%v", obs.RequestID(ctx), plan.ID, err)
	}
}

func (tp *TripPlanner) clock() time.Time {
	if tp.now != nil {
		return tp.now()
	}
	return time.Now()
}

func (tp *TripPlanner) id() string {
	if tp.newID != nil {
		return tp.newID()
	}
	return uuid.NewString()
}

func validatePlanRequest(req PlanTripRequest) error {
	var errs []error
	if strings.TrimSpace(req.Start) == "" {
		errs = append(errs, errors.New("start address is required"))
	}
	if strings.TrimSpace(req.Finish) == "" {
		errs = append(errs, errors.New("finish address is required"))
	}
	if math.IsNaN(req.FuelLevel) || req.FuelLevel < 0 || req.FuelLevel > 1 {
		errs = append(errs, fmt.Errorf("fuel level must be within [0,1], got %v", req.FuelLevel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("plan trip: %w: %w", errors.Join(errs...), domain.ErrInvalidInput)
	}
	return nil
}
