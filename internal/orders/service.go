package orders

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/minimarket-pos/internal/domain"
)

var tracer = otel.Tracer("orders")

// Tx is the unit of work an order is created in. Every write made through it
// is discarded unless the function passed to Store.InTx returns nil.
type Tx interface {
	// LockProducts takes row locks on the given products so concurrent orders
	// touching the same rows are serialized. Unknown ids are ignored.
	LockProducts(ctx context.Context, ids []int64) error
	// Product returns the current row, or nil if it does not exist.
	Product(ctx context.Context, id int64) (*domain.Product, error)
	SetStock(ctx context.Context, productID int64, stock int) error
	// InsertOrder persists the order and its items, filling in ids and
	// created_at.
	InsertOrder(ctx context.Context, order *domain.Order) error
}

type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	// GetOrder returns nil when the order does not exist. Item products are
	// resolved at read time.
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

// Publisher announces committed orders. *messaging.Producer implements it.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Service struct {
	store     Store
	publisher Publisher
	metrics   *metrics
	logger    *slog.Logger
}

// NewService builds the order engine. publisher may be nil.
func NewService(store Store, publisher Publisher, logger *slog.Logger) (*Service, error) {
	m, err := newMetrics(otel.Meter("orders"))
	if err != nil {
		return nil, err
	}

	return &Service{
		store:     store,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}, nil
}

// Create validates the requested lines and, in one transaction, checks and
// decrements stock line by line, snapshots prices and persists the order.
// Lines are never aggregated per product: a second line for the same product
// sees the stock left by the first.
func (s *Service) Create(ctx context.Context, lines []domain.LineRequest) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "orders.create", trace.WithAttributes(
		attribute.Int("order.lines", len(lines)),
	))
	defer span.End()

	if err := validateLines(lines); err != nil {
		s.metrics.rejected(ctx, err)
		return nil, err
	}

	order := &domain.Order{
		Status: domain.OrderStatusCompleted,
		Items:  make([]domain.OrderItem, 0, len(lines)),
	}

	err := s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.LockProducts(ctx, distinctProductIDs(lines)); err != nil {
			return err
		}

		snapshots := make(map[int64]*domain.Product, len(lines))
		total := decimal.Zero
		for _, line := range lines {
			product, err := tx.Product(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.NotFoundf("product with id %d not found", line.ProductID)
			}
			if product.Stock < line.Quantity {
				return domain.BadRequestf("not enough stock for %s", product.Name)
			}

			product.Stock -= line.Quantity
			if err := tx.SetStock(ctx, product.ID, product.Stock); err != nil {
				return err
			}
			if snap, ok := snapshots[product.ID]; ok {
				snap.Stock = product.Stock
			} else {
				snapshots[product.ID] = product
			}

			item := domain.OrderItem{
				ProductID:   product.ID,
				Quantity:    line.Quantity,
				PriceAtTime: product.Price,
				Product:     snapshots[product.ID],
			}
			order.Items = append(order.Items, item)
			total = total.Add(item.Subtotal())
		}
		order.TotalPrice = total

		return tx.InsertOrder(ctx, order)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.rejected(ctx, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("order.id", order.ID))
	s.metrics.created(ctx, order)
	s.publish(ctx, order)

	// The order is committed; a failed reload falls back to the in-transaction view.
	created, err := s.store.GetOrder(ctx, order.ID)
	if err != nil || created == nil {
		s.logger.WarnContext(ctx, "failed to reload created order", "error", err, "order_id", order.ID)
		return order, nil
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NotFoundf("order with id %d not found", id)
	}
	return order, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.store.ListOrders(ctx)
}

func (s *Service) publish(ctx context.Context, order *domain.Order) {
	if s.publisher == nil {
		return
	}

	event := domain.OrderCreatedEvent{
		EventID:    uuid.New().String(),
		OrderID:    order.ID,
		TotalPrice: order.TotalPrice,
		Items:      make([]domain.OrderEventItem, len(order.Items)),
		Timestamp:  order.CreatedAt,
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	for i, item := range order.Items {
		event.Items[i] = domain.OrderEventItem{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			PriceAtTime: item.PriceAtTime,
		}
	}

	// The order is committed at this point; publish errors are only logged.
	if err := s.publisher.Publish(ctx, orderKey(order.ID), event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order created event", "error", err, "order_id", order.ID)
	}
}

func validateLines(lines []domain.LineRequest) error {
	if len(lines) == 0 {
		return domain.BadRequest("order must have at least one item")
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return domain.BadRequestf("quantity for product %d must be positive", line.ProductID)
		}
	}
	return nil
}

func distinctProductIDs(lines []domain.LineRequest) []int64 {
	seen := make(map[int64]struct{}, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	return ids
}

func orderKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
