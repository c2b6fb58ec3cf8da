package events

import (
	"context"
	"encoding/json"
	"errors"
	"fuel-route-service/internal/ports"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingConn struct {
	subject string
	data    []byte
	err     error
}

func (c *recordingConn) Publish(subject string, data []byte) error {
	c.subject, c.data = subject, data
	return c.err
}

type publishMetrics struct{ ok, failed int }

func (m *publishMetrics) EventPublished(err error) {
	if err != nil {
		m.failed++
		return
	}
	m.ok++
}

func TestPublishPlanEncodesEvent(t *testing.T) {
	nc := &recordingConn{}
	m := &publishMetrics{}
	p := newPublisher(nc, "", m)

	event := ports.PlanCompleted{
		PlanID:        "0f0c",
		Start:         "Los Angeles, CA",
		Finish:        "Phoenix, AZ",
		TotalDistance: 372.4,
		Stops:         1,
		TotalCost:     15,
		TotalGallons:  5,
		Complete:      true,
		PlannedAt:     time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.PublishPlan(context.Background(), event))

	require.Equal(t, DefaultSubject, nc.subject)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(nc.data, &decoded))
	require.Equal(t, "0f0c", decoded["plan_id"])
	require.Equal(t, 372.4, decoded["total_distance"])
	require.Equal(t, true, decoded["complete"])
	require.Equal(t, "2026-10-19T12:00:00Z", decoded["planned_at"])
	require.Equal(t, 1, m.ok)
}

func TestPublishPlanReportsFailures(t *testing.T) {
	nc := &recordingConn{err: errors.New("nats: connection closed")}
	m := &publishMetrics{}
	p := newPublisher(nc, "fleet.plans", m)

	err := p.PublishPlan(context.Background(), ports.PlanCompleted{PlanID: "x"})
	require.Error(t, err)
	require.Equal(t, "fleet.plans", nc.subject)
	require.Equal(t, 1, m.failed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, p.PublishPlan(ctx, ports.PlanCompleted{PlanID: "y"}), context.Canceled)
}
