package ports

import (
	"context"
	"time"
)

// Summary of a finished trip plan, published for downstream consumers.
type PlanCompleted struct {
	PlanID        string    `json:"plan_id"`
	Start         string    `json:"start"`
	Finish        string    `json:"finish"`
	TotalDistance float64   `json:"total_distance"`
	Stops         int       `json:"stops"`
	TotalCost     float64   `json:"total_cost"`
	TotalGallons  float64   `json:"total_gallons"`
	Complete      bool      `json:"complete"`
	PlannedAt     time.Time `json:"planned_at"`
}

// Contract for announcing completed plans.
type PlanPublisher interface {
	PublishPlan(ctx context.Context, event PlanCompleted) error
}
