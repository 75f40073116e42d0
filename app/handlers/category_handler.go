package handlers

import (
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

type titleRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type CategoryHandler struct {
	categories *services.CategoryService
	render     *render.Render
	validate   *validator.Validate
	logger     *zap.Logger
}

func NewCategoryHandler(categories *services.CategoryService, rnd *render.Render, validate *validator.Validate, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, render: rnd, validate: validate, logger: logger}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	resp := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, newCategoryResponse(c))
	}
	h.render.JSON(w, http.StatusOK, resp)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathUint(r, "id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	category, err := h.categories.Get(r.Context(), id)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newCategoryResponse(*category))
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := helpers.DecodeAndValidate(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	category, err := h.categories.Create(r.Context(), req.Title)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusCreated, newCategoryResponse(*category))
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathUint(r, "id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	var req titleRequest
	if err := helpers.DecodeAndValidate(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	category, err := h.categories.Update(r.Context(), id, req.Title)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newCategoryResponse(*category))
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathUint(r, "id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	if err := h.categories.Delete(r.Context(), id); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type PromotionHandler struct {
	promotions *services.PromotionService
	render     *render.Render
	validate   *validator.Validate
	logger     *zap.Logger
}

func NewPromotionHandler(promotions *services.PromotionService, rnd *render.Render, validate *validator.Validate, logger *zap.Logger) *PromotionHandler {
	return &PromotionHandler{promotions: promotions, render: rnd, validate: validate, logger: logger}
}

func (h *PromotionHandler) List(w http.ResponseWriter, r *http.Request) {
	promotions, err := h.promotions.List(r.Context())
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	resp := make([]promotionResponse, 0, len(promotions))
	for _, p := range promotions {
		resp = append(resp, newPromotionResponse(p))
	}
	h.render.JSON(w, http.StatusOK, resp)
}

func (h *PromotionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathUint(r, "id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	promotion, err := h.promotions.Get(r.Context(), id)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newPromotionResponse(*promotion))
}

func (h *PromotionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := helpers.DecodeAndValidate(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	promotion, err := h.promotions.Create(r.Context(), req.Title)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusCreated, newPromotionResponse(*promotion))
}

func (h *PromotionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathUint(r, "id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	var req titleRequest
	if err := helpers.DecodeAndValidate(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	promotion, err := h.promotions.Update(r.Context(), id, req.Title)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newPromotionResponse(*promotion))
}

func (h *PromotionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathUint(r, "id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	if err := h.promotions.Delete(r.Context(), id); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
