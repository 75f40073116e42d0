package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	payments *services.PaymentService
	render   *render.Render
	logger   *zap.Logger
}

func NewPaymentHandler(payments *services.PaymentService, rnd *render.Render, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, render: rnd, logger: logger}
}

type paymentResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

func (h *PaymentHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	orderID, err := helpers.PathUint(r, "id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	result, err := h.payments.InitiatePayment(r.Context(), helpers.CallerFromContext(r.Context()), orderID)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusCreated, paymentResponse{Token: result.Token, RedirectURL: result.RedirectURL})
}

// Notification is the Midtrans webhook. The payload only names the order; the status is
// verified against Midtrans before anything changes.
func (h *PaymentHandler) Notification(w http.ResponseWriter, r *http.Request) {
	var payload services.MidtransNotificationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Warn("PaymentHandler.Notification: invalid payload", zap.Error(err))
		helpers.WriteError(h.render, h.logger, w, r, services.NewValidationError("detail", "JSON parse error.", err))
		return
	}

	order, err := h.payments.HandleNotification(r.Context(), payload)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, map[string]string{"order_id": order.Code, "payment_status": order.PaymentStatus})
}
