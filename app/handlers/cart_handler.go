package handlers

import (
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/sessions"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

type CartHandler struct {
	carts    *services.CartService
	store    sessions.SessionStore
	render   *render.Render
	validate *validator.Validate
	logger   *zap.Logger
}

func NewCartHandler(carts *services.CartService, store sessions.SessionStore, rnd *render.Render, validate *validator.Validate, logger *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, store: store, render: rnd, validate: validate, logger: logger}
}

type addCartItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func cartID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

// Create starts an anonymous cart and remembers its id in the cookie session.
func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.CreateCart(r.Context())
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	if err := h.store.SetCartID(w, r, cart.ID); err != nil {
		h.logger.Warn("CartHandler.Create: failed to remember cart in session", zap.String("cart_id", cart.ID), zap.Error(err))
	}
	h.render.JSON(w, http.StatusCreated, newCartResponse(*cart))
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.GetCart(r.Context(), cartID(r))
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newCartResponse(*cart))
}

func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := cartID(r)
	if err := h.carts.DeleteCart(r.Context(), id); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	if h.store.GetCartID(r) == id {
		if err := h.store.ClearCartID(w, r); err != nil {
			h.logger.Warn("CartHandler.Delete: failed to clear session cart", zap.Error(err))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.carts.ListItems(r.Context(), cartID(r))
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	resp := make([]cartItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, newCartItemResponse(item))
	}
	h.render.JSON(w, http.StatusOK, resp)
}

func (h *CartHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := helpers.PathUint(r, "item_id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	item, err := h.carts.GetItem(r.Context(), cartID(r), itemID)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newCartItemResponse(*item))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := helpers.DecodeAndValidate(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	item, err := h.carts.AddItem(r.Context(), cartID(r), req.ProductID, req.Quantity)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusCreated, newCartItemResponse(*item))
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := helpers.PathUint(r, "item_id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	var req updateCartItemRequest
	if err := helpers.DecodeAndValidate(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	item, err := h.carts.UpdateItem(r.Context(), cartID(r), itemID, req.Quantity)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newCartItemResponse(*item))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := helpers.PathUint(r, "item_id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	if err := h.carts.RemoveItem(r.Context(), cartID(r), itemID); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
