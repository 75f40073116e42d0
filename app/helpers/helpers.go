package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

type contextKey string

const (
	ContextKeyCaller contextKey = "caller"
)

func WithCaller(ctx context.Context, caller services.Caller) context.Context {
	return context.WithValue(ctx, ContextKeyCaller, caller)
}

// CallerFromContext returns the anonymous caller when none was stored.
func CallerFromContext(ctx context.Context) services.Caller {
	caller, _ := ctx.Value(ContextKeyCaller).(services.Caller)
	return caller
}

// NewValidator reports fields by their json names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	errorMessages := make(map[string]string)
	for _, err := range errs {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errorMessages[field] = "This field is required."
		case "email":
			errorMessages[field] = "Enter a valid email address."
		case "numeric", "number":
			errorMessages[field] = "A valid number is required."
		case "min", "gte":
			errorMessages[field] = fmt.Sprintf("Ensure this field is at least %s.", err.Param())
		case "max", "lte":
			errorMessages[field] = fmt.Sprintf("Ensure this field is no more than %s.", err.Param())
		case "oneof":
			errorMessages[field] = fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(err.Value()))
		default:
			errorMessages[field] = fmt.Sprintf("Failed on the %q rule.", err.Tag())
		}
	}
	return errorMessages
}

// DecodeAndValidate reads a JSON body into dst and runs the struct tags. Every failure comes
// back as a *services.ValidationError.
func DecodeAndValidate(r *http.Request, validate *validator.Validate, dst interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return services.NewValidationError("detail", "Request body is empty.", err)
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return services.NewValidationError(typeErr.Field, fmt.Sprintf("Expected a %s.", typeErr.Type.Kind()), err)
		}
		return services.NewValidationError("detail", "JSON parse error.", err)
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &services.ValidationError{Fields: FormatValidationErrors(verrs), Err: err}
		}
		return err
	}
	return nil
}

// PathUint reads a numeric mux path variable. A malformed id is reported as not found.
func PathUint(r *http.Request, name string) (uint, error) {
	value, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil || value == 0 {
		return 0, fmt.Errorf("%s %q: %w", name, mux.Vars(r)[name], services.ErrNotFound)
	}
	return uint(value), nil
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type validationResponse struct {
	Errors map[string]string `json:"errors"`
}

// WriteError maps service errors onto status codes. Unknown errors are logged and hidden.
func WriteError(rnd *render.Render, logger *zap.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		rnd.JSON(w, http.StatusBadRequest, validationResponse{Errors: verr.Fields})
	case errors.Is(err, services.ErrNotFound):
		rnd.JSON(w, http.StatusNotFound, errorResponse{Detail: "Not found."})
	case errors.Is(err, services.ErrInvalidCredentials):
		rnd.JSON(w, http.StatusUnauthorized, errorResponse{Detail: services.ErrInvalidCredentials.Error()})
	case errors.Is(err, services.ErrUnauthenticated):
		rnd.JSON(w, http.StatusUnauthorized, errorResponse{Detail: "Authentication credentials were not provided."})
	case errors.Is(err, services.ErrForbidden):
		rnd.JSON(w, http.StatusForbidden, errorResponse{Detail: "You do not have permission to perform this action."})
	default:
		logger.Error("request failed",
			zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		rnd.JSON(w, http.StatusInternalServerError, errorResponse{Detail: "A server error occurred."})
	}
}
