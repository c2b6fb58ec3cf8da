package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"fuel-route-service/internal/ports"
	"log"

	"github.com/nats-io/nats.go"
)

const DefaultSubject = "fuelplans.completed"

// PublisherMetrics receives publish outcomes. *metrics.Collector satisfies it.
type PublisherMetrics interface {
	EventPublished(err error)
}

// conn is the part of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
}

// NATSPlanPublisher announces completed plans on a NATS subject as JSON.
type NATSPlanPublisher struct {
	nc      conn
	close   func()
	subject string
	metrics PublisherMetrics
}

// NewNATSPlanPublisher connects to url and logs connection state changes.
func NewNATSPlanPublisher(url, subject string, m PublisherMetrics) (*NATSPlanPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("fuel-route-service"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats disconnected err=%v", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Printf("nats reconnected url=%s", c.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}

	p := newPublisher(nc, subject, m)
	p.close = func() {
		_ = nc.Drain()
		nc.Close()
	}
	return p, nil
}

func newPublisher(nc conn, subject string, m PublisherMetrics) *NATSPlanPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPlanPublisher{nc: nc, subject: subject, metrics: m}
}

func (p *NATSPlanPublisher) Close() {
	if p.close != nil {
		p.close()
	}
}

func (p *NATSPlanPublisher) Subject() string { return p.subject }

func (p *NATSPlanPublisher) PublishPlan(ctx context.Context, event ports.PlanCompleted) (err error) {
	defer func() {
		if p.metrics != nil {
			p.metrics.EventPublished(err)
		}
	}()

	if p.nc == nil {
		return errors.New("nats plan publisher: not connected")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("publish plan %s: encode: %w", event.PlanID, err)
	}

	if err := p.nc.Publish(p.subject, b); err != nil {
		return fmt.Errorf("publish plan %s: %w", event.PlanID, err)
	}
	return nil
}
