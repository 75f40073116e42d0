package handlers

import (
	"errors"
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

// multipartMemory bounds the form parsing buffer; larger parts spill to temp files.
const multipartMemory = 1 << 20

type ProductImageHandler struct {
	images *services.ProductImageService
	render *render.Render
	logger *zap.Logger
}

func NewProductImageHandler(images *services.ProductImageService, rnd *render.Render, logger *zap.Logger) *ProductImageHandler {
	return &ProductImageHandler{images: images, render: rnd, logger: logger}
}

func (h *ProductImageHandler) List(w http.ResponseWriter, r *http.Request) {
	productID, err := helpers.PathUint(r, "product_id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	images, err := h.images.List(r.Context(), productID)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	resp := make([]imageResponse, 0, len(images))
	for _, img := range images {
		resp = append(resp, newImageResponse(img, h.images.URL))
	}
	h.render.JSON(w, http.StatusOK, resp)
}

func (h *ProductImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, err := helpers.PathUint(r, "product_id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	id, err := helpers.PathUint(r, "id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	image, err := h.images.Get(r.Context(), productID, id)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newImageResponse(*image, h.images.URL))
}

// Upload expects a multipart form with the file in the "image" field.
func (h *ProductImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	productID, err := helpers.PathUint(r, "product_id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		helpers.WriteError(h.render, h.logger, w, r,
			services.NewValidationError("image", "The submitted data was not a file. Check the encoding type on the form.", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			err = services.NewValidationError("image", "No file was submitted.", err)
		}
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	defer file.Close()

	image, err := h.images.Upload(r.Context(), productID, services.ImageUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	})
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusCreated, newImageResponse(*image, h.images.URL))
}

func (h *ProductImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID, err := helpers.PathUint(r, "product_id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	id, err := helpers.PathUint(r, "id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	if err := h.images.Delete(r.Context(), productID, id); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
