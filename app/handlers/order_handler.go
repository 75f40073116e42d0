package handlers

import (
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/sessions"
	"github.com/go-playground/validator/v10"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders   *services.OrderService
	store    sessions.SessionStore
	render   *render.Render
	validate *validator.Validate
	logger   *zap.Logger
}

func NewOrderHandler(orders *services.OrderService, store sessions.SessionStore, rnd *render.Render, validate *validator.Validate, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, store: store, render: rnd, validate: validate, logger: logger}
}

type placeOrderRequest struct {
	CartID string `json:"cart_id" validate:"required,uuid"`
}

type orderStatusRequest struct {
	PaymentStatus  *string `json:"payment_status" validate:"omitempty,oneof=pending completed failed"`
	DeliveryStatus *string `json:"delivery_status" validate:"omitempty,oneof=pending completed failed"`
}

func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := helpers.DecodeAndValidate(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}

	order, err := h.orders.PlaceOrder(r.Context(), helpers.CallerFromContext(r.Context()), req.CartID)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	if h.store.GetCartID(r) == req.CartID {
		if err := h.store.ClearCartID(w, r); err != nil {
			h.logger.Warn("OrderHandler.Place: failed to clear session cart", zap.Error(err))
		}
	}
	h.render.JSON(w, http.StatusCreated, newOrderResponse(*order))
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context(), helpers.CallerFromContext(r.Context()))
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, orderList(orders))
}

func orderList(orders []models.Order) []orderResponse {
	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, newOrderResponse(o))
	}
	return resp
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathUint(r, "id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	order, err := h.orders.GetOrder(r.Context(), helpers.CallerFromContext(r.Context()), id)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newOrderResponse(*order))
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathUint(r, "id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	var req orderStatusRequest
	if err := helpers.DecodeAndValidate(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	order, err := h.orders.UpdateStatus(r.Context(), helpers.CallerFromContext(r.Context()), id, services.OrderStatusInput{
		PaymentStatus:  req.PaymentStatus,
		DeliveryStatus: req.DeliveryStatus,
	})
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newOrderResponse(*order))
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathUint(r, "id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	if err := h.orders.DeleteOrder(r.Context(), helpers.CallerFromContext(r.Context()), id); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
