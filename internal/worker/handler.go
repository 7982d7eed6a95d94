package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/minimarket-pos/internal/domain"
	"github.com/joao-fontenele/minimarket-pos/internal/messaging"
)

// ProductReader returns the current product row. *catalog.Repository
// implements it; a missing product is a domain.ErrNotFound error.
type ProductReader interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

// StockAlertHandler checks the products of each created order and raises an
// alert for every one whose stock is at or below the threshold.
type StockAlertHandler struct {
	products  ProductReader
	threshold int
	alerts    metric.Int64Counter
	logger    *slog.Logger
}

func NewStockAlertHandler(products ProductReader, threshold int, meter metric.Meter, logger *slog.Logger) (*StockAlertHandler, error) {
	alerts, err := meter.Int64Counter("pos.stock.low_alerts",
		metric.WithDescription("Products found at or below the low-stock threshold after an order"),
		metric.WithUnit("{alert}"),
	)
	if err != nil {
		return nil, err
	}

	return &StockAlertHandler{
		products:  products,
		threshold: threshold,
		alerts:    alerts,
		logger:    logger,
	}, nil
}

// Handle returns messaging.ErrSkip for payloads that are not order events.
func (h *StockAlertHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("%w: unmarshal order created event: %v", messaging.ErrSkip, err)
	}

	h.logger.InfoContext(ctx, "processing order created event", "order_id", event.OrderID, "event_id", event.EventID)

	seen := make(map[int64]bool, len(event.Items))
	for _, item := range event.Items {
		if seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true

		product, err := h.products.GetProduct(ctx, item.ProductID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read product %d: %w", item.ProductID, err)
		}

		if product.Stock > h.threshold {
			continue
		}

		h.alerts.Add(ctx, 1, metric.WithAttributes(attribute.String("category", product.Category)))
		h.logger.WarnContext(ctx, "low stock",
			"product_id", product.ID,
			"name", product.Name,
			"stock", product.Stock,
			"threshold", h.threshold,
			"order_id", event.OrderID,
		)
	}

	return nil
}
