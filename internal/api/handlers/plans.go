package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"fuel-route-service/internal/api/dto"
	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/platform/obs"
	"fuel-route-service/internal/services"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const defaultPlanTimeout = 90 * time.Second

type TripPlanner interface {
	Plan(ctx context.Context, req services.PlanTripRequest) (*domain.TripPlan, error)
}

type PlanHandler struct {
	Planner TripPlanner
	Timeout time.Duration
}

// Index describes the available route endpoints.
func (h *PlanHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dto.IndexResponse{
		Message: "Route Planning API",
		Endpoints: map[string]string{
			"plan": "/api/route/plan - Plan a route with fuel stops (GET/POST)",
		},
	})
}

// Plan reads start/finish from the query string (GET) or a JSON body (POST),
// runs the trip planner and renders the plan.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var (
		req dto.PlanRequest
		err error
	)
	switch r.Method {
	case http.MethodGet:
		req, err = planRequestFromQuery(r)
	case http.MethodPost:
		req, err = planRequestFromBody(r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req.Start = strings.TrimSpace(req.Start)
	req.Finish = strings.TrimSpace(req.Finish)
	if req.Start == "" || req.Finish == "" {
		writeError(w, r, http.StatusBadRequest, "start and finish are required")
		return
	}
	for _, addr := range []string{req.Start, req.Finish} {
		if !isValidUSAddress(addr) {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid US address %q, expected \"City, ST\"", addr))
			return
		}
	}

	fuelLevel := 1.0
	if req.FuelLevel != nil {
		fuelLevel = *req.FuelLevel
	}
	if fuelLevel < 0 || fuelLevel > 1 {
		writeError(w, r, http.StatusBadRequest, "fuel_level must be between 0 and 1")
		return
	}

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = defaultPlanTimeout
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	log.Printf("req_id=%s op=plan.request start=%q finish=%q fuel_level=%.2f",
		obs.RequestID(ctx), req.Start, req.Finish, fuelLevel)

	plan, err := h.Planner.Plan(ctx, services.PlanTripRequest{
		Start:     req.Start,
		Finish:    req.Finish,
		FuelLevel: fuelLevel,
	})
	if err != nil {
		writePlanError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toPlanResponse(plan, req.IncludeRoute))
}

func planRequestFromQuery(r *http.Request) (dto.PlanRequest, error) {
	q := r.URL.Query()
	req := dto.PlanRequest{Start: q.Get("start"), Finish: q.Get("finish")}

	if v := q.Get("fuel_level"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("invalid fuel_level %q", v)
		}
		req.FuelLevel = &f
	}
	if v := q.Get("include_route"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return req, fmt.Errorf("invalid include_route %q", v)
		}
		req.IncludeRoute = b
	}
	return req, nil
}

func planRequestFromBody(r *http.Request) (dto.PlanRequest, error) {
	var req dto.PlanRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		return req, errors.New("invalid json body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return req, errors.New("body must contain only one JSON object")
	}
	return req, nil
}

func toPlanResponse(plan *domain.TripPlan, includeRoute bool) dto.PlanResponse {
	res := dto.PlanResponse{
		PlanID:         plan.ID,
		TotalDistance:  round2(plan.Route.DistanceMiles),
		TotalDuration:  round2(plan.Route.DurationMinutes),
		Stops:          make([]dto.StopResponse, 0, len(plan.Result.Stops)),
		TotalCost:      plan.Result.TotalCost,
		TotalGallons:   plan.Result.TotalGallons,
		Complete:       plan.Complete,
		ShortfallMiles: plan.ShortfallMiles,
		Map:            plan.MapURL,
		Message:        plan.Message,
	}

	for _, s := range plan.Result.Stops {
		res.Stops = append(res.Stops, dto.StopResponse{
			ID:                s.ID,
			Name:              s.Name,
			Address:           s.Address,
			Location:          fmt.Sprintf("%s, %s", s.City, s.State),
			Latitude:          s.Location.Lat,
			Longitude:         s.Location.Lon,
			Price:             s.Price,
			Gallons:           s.Gallons,
			Cost:              s.Cost,
			DistanceFromStart: round2(s.DistanceFromStart),
			DistanceFromPoint: round2(s.DistanceFromPoint),
		})
	}

	if includeRoute {
		ls := make(orb.LineString, 0, len(plan.Route.Coordinates))
		for _, c := range plan.Route.Coordinates {
			ls = append(ls, orb.Point{c.Lon, c.Lat})
		}
		f := geojson.NewFeature(ls)
		f.Properties["distance_miles"] = res.TotalDistance
		f.Properties["duration_minutes"] = res.TotalDuration
		res.Route = f
	}

	return res
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
