package handlers

import (
	"net/http"
	"time"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

type CustomerHandler struct {
	customers *services.CustomerService
	render    *render.Render
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewCustomerHandler(customers *services.CustomerService, rnd *render.Render, validate *validator.Validate, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{customers: customers, render: rnd, validate: validate, logger: logger}
}

type customerRequest struct {
	UserID     uint    `json:"user_id"`
	Mobile     string  `json:"mobile" validate:"max=30"`
	BirthDate  *string `json:"birth_date"`
	Membership string  `json:"membership" validate:"omitempty,oneof=G S B"`
}

func (req customerRequest) input() (services.CustomerInput, error) {
	in := services.CustomerInput{UserID: req.UserID, Mobile: req.Mobile, Membership: req.Membership}
	if req.BirthDate != nil && *req.BirthDate != "" {
		date, err := time.Parse(dateLayout, *req.BirthDate)
		if err != nil {
			return in, services.NewValidationError("birth_date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.", err)
		}
		in.BirthDate = &date
	}
	return in, nil
}

type addressRequest struct {
	ContactType string `json:"contact_type" validate:"required,oneof=res work"`
	Street      string `json:"street" validate:"required,max=200"`
	City        string `json:"city" validate:"required,max=70"`
	State       string `json:"state" validate:"required,max=20"`
}

func (h *CustomerHandler) decodeCustomer(r *http.Request) (services.CustomerInput, error) {
	var req customerRequest
	if err := helpers.DecodeAndValidate(r, h.validate, &req); err != nil {
		return services.CustomerInput{}, err
	}
	return req.input()
}

func (h *CustomerHandler) Me(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customers.Me(r.Context(), helpers.CallerFromContext(r.Context()))
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newCustomerResponse(*customer))
}

// UpdateMe ignores user_id; a customer cannot move their profile to another user.
func (h *CustomerHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	in, err := h.decodeCustomer(r)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	customer, err := h.customers.UpdateMe(r.Context(), helpers.CallerFromContext(r.Context()), in)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newCustomerResponse(*customer))
}

func (h *CustomerHandler) Addresses(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.customers.Addresses(r.Context(), helpers.CallerFromContext(r.Context()))
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	resp := make([]addressResponse, 0, len(addresses))
	for _, a := range addresses {
		resp = append(resp, newAddressResponse(a))
	}
	h.render.JSON(w, http.StatusOK, resp)
}

func (h *CustomerHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if err := helpers.DecodeAndValidate(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	address, err := h.customers.AddAddress(r.Context(), helpers.CallerFromContext(r.Context()), services.AddressInput{
		ContactType: req.ContactType,
		Street:      req.Street,
		City:        req.City,
		State:       req.State,
	})
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusCreated, newAddressResponse(*address))
}

func (h *CustomerHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathUint(r, "id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	if err := h.customers.DeleteAddress(r.Context(), helpers.CallerFromContext(r.Context()), id); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, customerList(customers))
}

func customerList(customers []models.Customer) []customerResponse {
	resp := make([]customerResponse, 0, len(customers))
	for _, c := range customers {
		resp = append(resp, newCustomerResponse(c))
	}
	return resp
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathUint(r, "id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	customer, err := h.customers.Get(r.Context(), id)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newCustomerResponse(*customer))
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := h.decodeCustomer(r)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	customer, err := h.customers.Create(r.Context(), in)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusCreated, newCustomerResponse(*customer))
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathUint(r, "id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	in, err := h.decodeCustomer(r)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	customer, err := h.customers.Update(r.Context(), id, in)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newCustomerResponse(*customer))
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathUint(r, "id")
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	if err := h.customers.Delete(r.Context(), id); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
