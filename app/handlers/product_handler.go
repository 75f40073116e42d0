package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/configs"
	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

type ProductHandler struct {
	products *services.ProductService
	images   *services.ProductImageService
	paging   configs.CatalogConfig
	render   *render.Render
	validate *validator.Validate
	logger   *zap.Logger
}

func NewProductHandler(
	products *services.ProductService,
	images *services.ProductImageService,
	paging configs.CatalogConfig,
	rnd *render.Render,
	validate *validator.Validate,
	logger *zap.Logger,
) *ProductHandler {
	return &ProductHandler{
		products: products,
		images:   images,
		paging:   paging,
		render:   rnd,
		validate: validate,
		logger:   logger,
	}
}

type productRequest struct {
	Title        string           `json:"title" validate:"required,max=200"`
	Slug         string           `json:"slug" validate:"max=255"`
	Description  string           `json:"description"`
	Price        *decimal.Decimal `json:"price" validate:"required"`
	CategoryID   uint             `json:"category_id" validate:"required"`
	PromotionIDs []uint           `json:"promotion_ids"`
}

func (req productRequest) input() services.ProductInput {
	return services.ProductInput{
		Title:        req.Title,
		Slug:         req.Slug,
		Description:  req.Description,
		Price:        *req.Price,
		CategoryID:   req.CategoryID,
		PromotionIDs: req.PromotionIDs,
	}
}

// parseProductFilter reads category_id, price__gt, price__lt, search and ordering.
func parseProductFilter(r *http.Request) (repositories.ProductFilter, error) {
	var filter repositories.ProductFilter
	q := r.URL.Query()
	fields := map[string]string{}

	if raw := q.Get("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			fields["category_id"] = "Enter a number."
		} else {
			categoryID := uint(id)
			filter.CategoryID = &categoryID
		}
	}
	for name, dst := range map[string]**decimal.Decimal{"price__gt": &filter.PriceGT, "price__lt": &filter.PriceLT} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			fields[name] = "Enter a number."
			continue
		}
		*dst = &value
	}
	if len(fields) > 0 {
		return filter, &services.ValidationError{Fields: fields}
	}

	filter.Search = strings.TrimSpace(q.Get("search"))
	filter.Ordering = q.Get("ordering")
	return filter, nil
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	params, err := helpers.ParsePageParams(r, h.paging.PageSize, h.paging.MaxPageSize)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	filter.Limit = params.Size
	filter.Offset = params.Offset()

	result, err := h.products.List(r.Context(), filter)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}

	items := make([]productResponse, 0, len(result.Products))
	for _, p := range result.Products {
		items = append(items, newProductResponse(p, h.images.URL))
	}
	page, err := helpers.NewPage(r, params, result.Count, items)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, page)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathUint(r, "id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newProductResponse(*product, h.images.URL))
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := helpers.DecodeAndValidate(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	product, err := h.products.Create(r.Context(), req.input())
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusCreated, newProductResponse(*product, h.images.URL))
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathUint(r, "id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	var req productRequest
	if err := helpers.DecodeAndValidate(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	product, err := h.products.Update(r.Context(), id, req.input())
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newProductResponse(*product, h.images.URL))
}

// Delete is routed without the staff guard; the service rejects the protected product first
// and then checks privileges.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathUint(r, "id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	if err := h.products.Delete(r.Context(), helpers.CallerFromContext(r.Context()), id); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
