package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/joao-fontenele/minimarket-pos/internal/domain"
	"github.com/joao-fontenele/minimarket-pos/internal/views"
)

const IdempotencyKeyHeader = "Idempotency-Key"

// Engine is the order engine used by Handler. *Service implements it.
type Engine interface {
	Create(ctx context.Context, lines []domain.LineRequest) (*domain.Order, error)
	Get(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
}

// Guard rejects replays of an Idempotency-Key. *idempotency.RedisGuard
// implements it.
type Guard interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type Handler struct {
	engine Engine
	guard  Guard
	logger *slog.Logger
}

// NewHandler wires the order routes. guard may be nil, in which case the
// Idempotency-Key header is ignored.
func NewHandler(engine Engine, guard Guard, logger *slog.Logger) *Handler {
	return &Handler{
		engine: engine,
		guard:  guard,
		logger: logger,
	}
}

type lineRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  *int  `json:"quantity"`
}

type createOrderRequest struct {
	Items []lineRequest `json:"items"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines := make([]domain.LineRequest, len(req.Items))
	for i, item := range req.Items {
		quantity := 1
		if item.Quantity != nil {
			quantity = *item.Quantity
		}
		lines[i] = domain.LineRequest{ProductID: item.ProductID, Quantity: quantity}
	}

	key := r.Header.Get(IdempotencyKeyHeader)
	if key != "" && h.guard != nil {
		claimed, err := h.guard.Claim(r.Context(), key)
		switch {
		case err != nil:
			h.logger.WarnContext(r.Context(), "idempotency check unavailable", "error", err)
			key = ""
		case !claimed:
			h.writeError(w, http.StatusConflict, "duplicate request")
			return
		}
	}

	order, err := h.engine.Create(r.Context(), lines)
	if err != nil {
		h.release(r.Context(), key)
		h.writeEngineError(w, r, err, "failed to create order")
		return
	}

	h.logger.InfoContext(r.Context(), "order created", "order_id", order.ID, "total_price", order.TotalPrice.String(), "items", len(order.Items))
	h.writeJSON(w, http.StatusCreated, views.NewOrder(*order))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.engine.Get(r.Context(), id)
	if err != nil {
		h.writeEngineError(w, r, err, "failed to get order", "order_id", id)
		return
	}

	h.logger.InfoContext(r.Context(), "order retrieved", "order_id", order.ID)
	h.writeJSON(w, http.StatusOK, views.NewOrder(*order))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.engine.List(r.Context())
	if err != nil {
		h.writeEngineError(w, r, err, "failed to list orders")
		return
	}

	h.logger.InfoContext(r.Context(), "orders listed", "count", len(orders))
	h.writeJSON(w, http.StatusOK, views.NewOrders(orders))
}

func (h *Handler) release(ctx context.Context, key string) {
	if key == "" || h.guard == nil {
		return
	}
	if err := h.guard.Release(ctx, key); err != nil {
		h.logger.WarnContext(ctx, "failed to release idempotency key", "error", err)
	}
}

func (h *Handler) writeEngineError(w http.ResponseWriter, r *http.Request, err error, logMsg string, args ...any) {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.writeError(w, http.StatusNotFound, domainErr.Msg)
		case errors.Is(err, domain.ErrConflict):
			h.writeError(w, http.StatusConflict, domainErr.Msg)
		default:
			h.writeError(w, http.StatusBadRequest, domainErr.Msg)
		}
		return
	}

	h.logger.ErrorContext(r.Context(), logMsg, append([]any{"error", err}, args...)...)
	h.writeError(w, http.StatusInternalServerError, "internal server error")
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
