package helpers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

type itemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"min=1,max=32767"`
}

func TestDecodeAndValidate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"empty body", "", "detail"},
		{"bad json", "{", "detail"},
		{"wrong type", `{"product_id":"x","quantity":1}`, "product_id"},
		{"missing product", `{"quantity":1}`, "product_id"},
		{"quantity too small", `{"product_id":1,"quantity":0}`, "quantity"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dst itemRequest
			err := DecodeAndValidate(req, v, &dst)
			var verr *services.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":3,"quantity":2}`))
	var dst itemRequest
	require.NoError(t, DecodeAndValidate(req, v, &dst))
	assert.Equal(t, uint(3), dst.ProductID)
}

func TestWriteError(t *testing.T) {
	rnd := render.New()

	tests := []struct {
		err    error
		status int
		body   string
	}{
		{services.NewValidationError("cart_id", "bad", nil), http.StatusBadRequest, `{"errors":{"cart_id":"bad"}}`},
		{fmt.Errorf("order: %w", services.ErrNotFound), http.StatusNotFound, `{"detail":"Not found."}`},
		{services.ErrUnauthenticated, http.StatusUnauthorized, ""},
		{services.ErrInvalidCredentials, http.StatusUnauthorized, ""},
		{services.ErrForbidden, http.StatusForbidden, ""},
		{errors.New("db down"), http.StatusInternalServerError, `{"detail":"A server error occurred."}`},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		WriteError(rnd, zap.NewNop(), rec, httptest.NewRequest(http.MethodGet, "/x", nil), tc.err)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		if tc.body != "" {
			assert.JSONEq(t, tc.body, rec.Body.String())
		}
	}
}

func TestCallerContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, CallerFromContext(req.Context()).IsAuthenticated())

	ctx := WithCaller(req.Context(), services.Caller{UserID: 5, IsStaff: true})
	assert.Equal(t, services.Caller{UserID: 5, IsStaff: true}, CallerFromContext(ctx))
}

func TestPathUint(t *testing.T) {
	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "12", "bad": "x"})
	id, err := PathUint(req, "id")
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)

	_, err = PathUint(req, "bad")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestPagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://shop.test/products?page=2&page_size=2&search=a", nil)
	params, err := ParsePageParams(req, 10, 100)
	require.NoError(t, err)
	assert.Equal(t, PageParams{Page: 2, Size: 2}, params)
	assert.Equal(t, 2, params.Offset())

	page, err := NewPage(req, params, 5, []int{3, 4})
	require.NoError(t, err)
	require.NotNil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://shop.test/products?page=3&page_size=2&search=a", *page.Next)
	assert.Equal(t, "http://shop.test/products?page_size=2&search=a", *page.Previous)

	last, err := NewPage(req, PageParams{Page: 3, Size: 2}, 5, []int{5})
	require.NoError(t, err)
	assert.Nil(t, last.Next)

	_, err = NewPage(req, PageParams{Page: 4, Size: 2}, 5, nil)
	assert.ErrorIs(t, err, services.ErrNotFound)

	capped, err := ParsePageParams(httptest.NewRequest(http.MethodGet, "/?page_size=500", nil), 10, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, capped.Size)

	_, err = ParsePageParams(httptest.NewRequest(http.MethodGet, "/?page=0", nil), 10, 100)
	var verr *services.ValidationError
	assert.True(t, errors.As(err, &verr))

	huge := fmt.Sprintf("/?page=%d&page_size=2", math.MaxInt/2+1)
	_, err = ParsePageParams(httptest.NewRequest(http.MethodGet, huge, nil), 10, 100)
	assert.ErrorIs(t, err, services.ErrNotFound)

	edge, err := ParsePageParams(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/?page=%d&page_size=2", math.MaxInt/2), nil), 10, 100)
	require.NoError(t, err)
	assert.Positive(t, edge.Offset())
}
