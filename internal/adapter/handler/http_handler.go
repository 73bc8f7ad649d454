package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/adapter/metrics"
	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/core/domain"
	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/core/service"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type HTTPHandler struct {
	cartService     *service.CartService
	checkoutService *service.CheckoutService
	orderService    *service.OrderService
	catalogService  *service.CatalogService
	metrics         *metrics.Metrics
}

type AddItemHTTPRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity *int  `json:"quantity"`
}

type UpdateQuantityHTTPRequest struct {
	Quantity *int `json:"quantity"`
}

type UpdateStatusHTTPRequest struct {
	Status domain.OrderStatus `json:"status"`
}

type CheckoutHTTPResponse struct {
	OrderID     int64              `json:"order_id"`
	Status      domain.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Message     string             `json:"message"`
}

type MessageHTTPResponse struct {
	Message string `json:"message"`
}

type ErrorHTTPResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func NewHTTPHandler(
	cartService *service.CartService,
	checkoutService *service.CheckoutService,
	orderService *service.OrderService,
	catalogService *service.CatalogService,
	m *metrics.Metrics,
) *HTTPHandler {
	return &HTTPHandler{
		cartService:     cartService,
		checkoutService: checkoutService,
		orderService:    orderService,
		catalogService:  catalogService,
		metrics:         m,
	}
}

type RouterOptions struct {
	RequestTimeout time.Duration
	SecureCookies  bool
}

func (h *HTTPHandler) Routes(opts RouterOptions) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware(h.metrics))
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.Get("/health", h.HealthCheck)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware(opts.SecureCookies))
		r.Use(IdentityMiddleware)

		r.Get("/menu", h.Menu)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddItem)
			r.Patch("/items/{item_id}", h.UpdateQuantity)
			r.Delete("/items/{item_id}", h.RemoveItem)
			r.Post("/checkout", h.Checkout)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.ListOrders)
			r.Get("/{order_id}", h.GetOrder)
		})

		r.Route("/admin/orders", func(r chi.Router) {
			r.Get("/", h.AdminListOrders)
			r.Patch("/{order_id}/status", h.UpdateOrderStatus)
		})
	})

	return r
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) Menu(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalogService.Menu(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	p, err := h.cartService.Get(r.Context(), sessionFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *HTTPHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.CartOp("add", outcome(service.ErrValidation))
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	ctx := r.Context()
	session := sessionFromContext(ctx)
	err := h.cartService.Add(ctx, session, req.ItemID, quantity)
	h.metrics.CartOp("add", outcome(err))
	if err != nil {
		writeError(w, err)
		return
	}

	p, err := h.cartService.Get(ctx, session)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *HTTPHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "item_id")
	if !ok {
		return
	}

	var req UpdateQuantityHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		h.metrics.CartOp("update", outcome(service.ErrValidation))
		respondError(w, http.StatusBadRequest, "invalid_request", "quantity is required")
		return
	}

	p, err := h.cartService.UpdateQuantity(r.Context(), sessionFromContext(r.Context()), itemID, *req.Quantity)
	h.metrics.CartOp("update", outcome(err))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *HTTPHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "item_id")
	if !ok {
		return
	}

	p, err := h.cartService.Remove(r.Context(), sessionFromContext(r.Context()), itemID)
	h.metrics.CartOp("remove", outcome(err))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	err := h.cartService.Clear(r.Context(), sessionFromContext(r.Context()))
	h.metrics.CartOp("clear", outcome(err))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageHTTPResponse{Message: "cart cleared"})
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	order, err := h.checkoutService.Checkout(
		ctx,
		sessionFromContext(ctx),
		actorFromContext(ctx),
		r.Header.Get(IdempotencyKeyHeader),
	)
	h.metrics.Checkout(outcome(err))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/orders/%d", order.ID))
	writeJSON(w, http.StatusCreated, CheckoutHTTPResponse{
		OrderID:     order.ID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Message:     "order placed successfully",
	})
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParam(w, r)
	if !ok {
		return
	}

	orders, err := h.orderService.ListForUser(r.Context(), actorFromContext(r.Context()), page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders, "page": page})
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "order_id")
	if !ok {
		return
	}

	order, err := h.orderService.Get(r.Context(), actorFromContext(r.Context()), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *HTTPHandler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParam(w, r)
	if !ok {
		return
	}

	orders, err := h.orderService.AdminList(r.Context(), actorFromContext(r.Context()), page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders, "page": page})
}

func (h *HTTPHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "order_id")
	if !ok {
		return
	}

	var req UpdateStatusHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	err := h.orderService.UpdateStatus(r.Context(), actorFromContext(r.Context()), orderID, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageHTTPResponse{Message: "order status updated"})
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func pageParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		respondError(w, http.StatusBadRequest, "invalid_page", "page must be a positive integer")
		return 0, false
	}
	return page, true
}

// errorStatus maps service errors to an HTTP status and a stable code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrUnavailable):
		return http.StatusConflict, "item_unavailable"
	case errors.Is(err, service.ErrItemNoLongerAvailable):
		return http.StatusConflict, "item_no_longer_available"
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusConflict, "empty_cart"
	case errors.Is(err, service.ErrDuplicateRequest):
		return http.StatusConflict, "duplicate_request"
	}
	return http.StatusInternalServerError, "internal_error"
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	_, code := errorStatus(err)
	return code
}

func writeError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
		message = "internal error"
	}
	respondError(w, status, code, message)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorHTTPResponse{Error: message, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
