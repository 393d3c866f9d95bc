package events

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

type natsConn interface {
	PublishMsg(m *nats.Msg) error
}

type NATSPublisher struct {
	nc natsConn
}

func NewNATSPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	msg, err := natsMessage(ctx, e)
	if err != nil {
		return err
	}
	if err := p.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	return nil
}

func natsMessage(ctx context.Context, e Event) (*nats.Msg, error) {
	data, err := e.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	msg := nats.NewMsg(e.Subject())
	msg.Data = data
	msg.Header.Set("Event-Type", string(e.Type))
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(http.Header(msg.Header)))
	return msg, nil
}
