package handlers

import (
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/sessions"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth     *services.AuthService
	store    sessions.SessionStore
	render   *render.Render
	validate *validator.Validate
	logger   *zap.Logger
}

func NewAuthHandler(auth *services.AuthService, store sessions.SessionStore, rnd *render.Render, validate *validator.Validate, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, store: store, render: rnd, validate: validate, logger: logger}
}

type registerRequest struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Access string `json:"access"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := helpers.DecodeAndValidate(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}

	user, err := h.auth.Register(r.Context(), services.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusCreated, newUserResponse(*user))
}

// Login issues a bearer token and also signs the user into the cookie session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := helpers.DecodeAndValidate(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	if err := h.store.SetUserID(w, r, user.ID); err != nil {
		h.logger.Error("AuthHandler.Login: failed to save session", zap.Uint("user_id", user.ID), zap.Error(err))
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, tokenResponse{Access: token})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearSession(w, r); err != nil {
		h.logger.Warn("AuthHandler.Logout: failed to clear session", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.CurrentUser(r.Context(), helpers.CallerFromContext(r.Context()))
	if err != nil {
		helpers.WriteError(h.render, h.logger, w, r, err)
		return
	}
	h.render.JSON(w, http.StatusOK, newUserResponse(*user))
}

func (h *AuthHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	h.render.JSON(w, http.StatusOK, map[string]string{"csrf_token": csrf.Token(r)})
}
