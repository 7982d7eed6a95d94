package orders

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/minimarket-pos/internal/domain"
)

type metrics struct {
	ordersCreated  metric.Int64Counter
	ordersRejected metric.Int64Counter
	unitsSold      metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	created, err := meter.Int64Counter("pos.orders.created",
		metric.WithDescription("Orders committed"),
	)
	if err != nil {
		return nil, err
	}

	rejected, err := meter.Int64Counter("pos.orders.rejected",
		metric.WithDescription("Order requests that did not commit, by reason"),
	)
	if err != nil {
		return nil, err
	}

	units, err := meter.Int64Counter("pos.order.units",
		metric.WithDescription("Product units sold"),
		metric.WithUnit("{unit}"),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{
		ordersCreated:  created,
		ordersRejected: rejected,
		unitsSold:      units,
	}, nil
}

func (m *metrics) created(ctx context.Context, order *domain.Order) {
	m.ordersCreated.Add(ctx, 1)

	var units int64
	for _, item := range order.Items {
		units += int64(item.Quantity)
	}
	m.unitsSold.Add(ctx, units)
}

func (m *metrics) rejected(ctx context.Context, err error) {
	reason := "error"
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		reason = "bad_request"
	case errors.Is(err, domain.ErrNotFound):
		reason = "not_found"
	}
	m.ordersRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
