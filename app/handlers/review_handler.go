package handlers

import (
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	reviews  *services.ReviewService
	images   *services.ProductImageService
	render   *render.Render
	validate *validator.Validate
	logger   *zap.Logger
}

func NewReviewHandler(reviews *services.ReviewService, images *services.ProductImageService, rnd *render.Render, validate *validator.Validate, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, images: images, render: rnd, validate: validate, logger: logger}
}

type reviewRequest struct {
	ReviewerName string `json:"reviewer_name" validate:"required,max=250"`
	Remark       string `json:"remark" validate:"required"`
}

func (h *ReviewHandler) ids(r *http.Request, withID bool) (productID, id uint, err error) {
	if productID, err = helpers.PathUint(r, "product_id"); err != nil {
		return 0, 0, err
	}
	if withID {
		if id, err = helpers.PathUint(r, "id"); err != nil {
			return 0, 0, err
		}
	}
	return productID, id, nil
}

func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	productID, _, err := h.ids(r, false)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	reviews, err := h.reviews.List(r.Context(), productID)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	resp := make([]reviewResponse, 0, len(reviews))
	for _, review := range reviews {
		resp = append(resp, newReviewResponse(review, h.images.URL))
	}
	h.render.JSON(w, http.StatusOK, resp)
}

func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, id, err := h.ids(r, true)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	review, err := h.reviews.Get(r.Context(), productID, id)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newReviewResponse(*review, h.images.URL))
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	productID, _, err := h.ids(r, false)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	var req reviewRequest
	if err := helpers.DecodeAndValidate(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	review, err := h.reviews.Create(r.Context(), productID, services.ReviewInput{ReviewerName: req.ReviewerName, Remark: req.Remark})
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusCreated, newReviewResponse(*review, h.images.URL))
}

func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID, id, err := h.ids(r, true)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	var req reviewRequest
	if err := helpers.DecodeAndValidate(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	review, err := h.reviews.Update(r.Context(), productID, id, services.ReviewInput{ReviewerName: req.ReviewerName, Remark: req.Remark})
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newReviewResponse(*review, h.images.URL))
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID, id, err := h.ids(r, true)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	if err := h.reviews.Delete(r.Context(), productID, id); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
