package dto

import "github.com/paulmach/orb/geojson"

// PlanRequest is the POST body of /api/route/plan. GET takes the same fields as query parameters.
type PlanRequest struct {
	Start        string   `json:"start"`
	Finish       string   `json:"finish"`
	FuelLevel    *float64 `json:"fuel_level"`
	IncludeRoute bool     `json:"include_route"`
}

type StopResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Address           string  `json:"address"`
	Location          string  `json:"location"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	Price             float64 `json:"price"`
	Gallons           float64 `json:"gallons"`
	Cost              float64 `json:"cost"`
	DistanceFromStart float64 `json:"distance_from_start"`
	DistanceFromPoint float64 `json:"distance_from_point"`
}

type PlanResponse struct {
	PlanID         string           `json:"plan_id"`
	TotalDistance  float64          `json:"total_distance"`
	TotalDuration  float64          `json:"total_duration"`
	Stops          []StopResponse   `json:"stops"`
	TotalCost      float64          `json:"total_cost"`
	TotalGallons   float64          `json:"total_gallons"`
	Complete       bool             `json:"complete"`
	ShortfallMiles float64          `json:"shortfall_miles"`
	Map            string           `json:"map"`
	Message        string           `json:"message"`
	Route          *geojson.Feature `json:"route,omitempty"`
}

type IndexResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}
