package transport

import (
	"net/http"

	"inventory-orders/internal/domain"
	"inventory-orders/internal/middleware"
	"inventory-orders/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OrderItemRequest is one requested line of a new order
type OrderItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// OrderCreateRequest is the body of order creation. Status decoding rejects
// unknown values; items must be present but may be empty.
type OrderCreateRequest struct {
	Status domain.OrderStatus `json:"status" validate:"required"`
	Items  []OrderItemRequest `json:"items" validate:"required,dive"`
}

// OrderStatusRequest is the body of a status change
type OrderStatusRequest struct {
	Status domain.OrderStatus `json:"status" validate:"required"`
}

// OrderHandler handles HTTP requests for orders
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes. write wraps the mutating routes.
func (h *OrderHandler) RegisterRoutes(r chi.Router, write func(http.Handler) http.Handler) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			if write != nil {
				r.Use(write)
			}
			r.Post("/", h.Create)
			r.Patch("/{id}/status", h.SetStatus)
		})
	})
}

// Create handles order creation
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req OrderCreateRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order validation failed", zap.Error(err))
		middleware.RespondWithRequestError(w, err)
		return
	}

	items := make([]domain.ItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.ItemRequest{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := h.orderService.Create(r.Context(), req.Status, items)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// List handles order listing with items
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, errs := parsePage(r)
	if errs != nil {
		middleware.RespondWithValidationErrors(w, errs)
		return
	}

	orders, err := h.orderService.List(r.Context(), page.Offset, page.Limit)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// Get handles fetching one order with items
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondInvalidID(w)
		return
	}

	order, err := h.orderService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// SetStatus handles moving an order to a new status
func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondInvalidID(w)
		return
	}

	var req OrderStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order status validation failed", zap.Error(err))
		middleware.RespondWithRequestError(w, err)
		return
	}

	order, err := h.orderService.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}
