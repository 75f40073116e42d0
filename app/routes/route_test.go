package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Rakhulsr/go-storefront/app/configs"
	"github.com/Rakhulsr/go-storefront/app/db/testdb"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/utils/sessions"
	"github.com/gorilla/securecookie"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubGateway struct {
	status string
}

func (g *stubGateway) CreateTransaction(req *snap.Request) (*snap.Response, error) {
	return &snap.Response{Token: "snap-" + req.TransactionDetails.OrderID, RedirectURL: "https://pay.example/" + req.TransactionDetails.OrderID}, nil
}

func (g *stubGateway) CheckTransaction(orderCode string) (*coreapi.TransactionStatusResponse, error) {
	return &coreapi.TransactionStatusResponse{StatusCode: "200", OrderID: orderCode, TransactionStatus: g.status, FraudStatus: "accept"}, nil
}

type apiTest struct {
	t       *testing.T
	db      *gorm.DB
	handler http.Handler
	gateway *stubGateway
}

func newAPITest(t *testing.T) *apiTest {
	t.Helper()
	db := testdb.New(t)
	cfg := &configs.Config{
		App:     configs.AppConfig{Env: "test", URL: "http://storefront.test"},
		Auth:    configs.AuthConfig{JWTSecret: "route-secret", JWTTTL: time.Hour},
		Catalog: configs.CatalogConfig{ProductMinPrice: decimal.NewFromInt(5000), PageSize: 2, MaxPageSize: 10},
		Media:   configs.MediaConfig{Root: t.TempDir(), URL: "/media/", MaxUploadKB: 500},
	}
	gateway := &stubGateway{status: "settlement"}
	router, err := NewRouter(Dependencies{
		Config:   cfg,
		DB:       db,
		Logger:   zap.NewNop(),
		Sessions: sessions.NewCookieSessionStore(false, securecookie.GenerateRandomKey(32)),
		Gateway:  gateway,
	})
	require.NoError(t, err)
	return &apiTest{t: t, db: db, handler: router, gateway: gateway}
}

func (a *apiTest) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

// user registers and logs in through the API and returns a bearer token.
func (a *apiTest) user(username string, staff bool) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/auth/users", map[string]string{
		"username": username, "email": username + "@example.com", "password": "s3cret-pass",
	}, "")
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	if staff {
		require.NoError(a.t, a.db.Model(&models.User{}).Where("username = ?", username).Update("is_staff", true).Error)
	}

	rec = a.do(http.MethodPost, "/auth/jwt/create", map[string]string{"username": username, "password": "s3cret-pass"}, "")
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var token struct {
		Access string `json:"access"`
	}
	decode(a.t, rec, &token)
	require.NotEmpty(a.t, token.Access)
	return token.Access
}

func (a *apiTest) product(title, price string) models.Product {
	a.t.Helper()
	var category models.Category
	require.NoError(a.t, a.db.FirstOrCreate(&category, models.Category{Title: "General"}).Error)
	p := models.Product{Title: title, Slug: title, Price: decimal.RequireFromString(price), CategoryID: category.ID}
	require.NoError(a.t, a.db.Omit("Category").Create(&p).Error)
	return p
}

func TestCheckoutFlow(t *testing.T) {
	a := newAPITest(t)
	token := a.user("buyer", false)
	productA := a.product("alpha", "10.00")
	productB := a.product("beta", "5.00")

	rec := a.do(http.MethodPost, "/carts", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var cart struct {
		ID         string `json:"id"`
		GrandTotal string `json:"grand_total"`
		Items      []struct {
			ID       uint   `json:"id"`
			Quantity int    `json:"quantity"`
			SubTotal string `json:"sub_total"`
		} `json:"items"`
	}
	decode(t, rec, &cart)
	require.Len(t, cart.ID, 36)

	itemsPath := "/carts/" + cart.ID + "/items"
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, itemsPath, map[string]interface{}{"product_id": productA.ID, "quantity": 1}, "").Code)
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, itemsPath, map[string]interface{}{"product_id": productA.ID, "quantity": 1}, "").Code)
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, itemsPath, map[string]interface{}{"product_id": productB.ID, "quantity": 1}, "").Code)

	rec = a.do(http.MethodGet, "/carts/"+cart.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &cart)
	assert.Equal(t, "25.00", cart.GrandTotal)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "20.00", cart.Items[0].SubTotal)

	rec = a.do(http.MethodPost, "/orders", map[string]string{"cart_id": cart.ID}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodPost, "/orders", map[string]string{"cart_id": cart.ID}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order struct {
		ID            uint   `json:"id"`
		Code          string `json:"code"`
		Total         string `json:"total"`
		PaymentStatus string `json:"payment_status"`
		Items         []struct {
			Price    string `json:"price"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
	}
	decode(t, rec, &order)
	assert.Equal(t, "25.00", order.Total)
	assert.Equal(t, models.StatusPending, order.PaymentStatus)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "10.00", order.Items[0].Price)
	assert.Equal(t, 2, order.Items[0].Quantity)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/carts/"+cart.ID, nil, "").Code)

	rec = a.do(http.MethodPost, "/orders", map[string]string{"cart_id": cart.ID}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cart_id")

	rec = a.do(http.MethodGet, "/orders", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []map[string]interface{}
	decode(t, rec, &orders)
	assert.Len(t, orders, 1)

	t.Run("other customers cannot see the order", func(t *testing.T) {
		other := a.user("stranger", false)
		assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), nil, other).Code)
		assert.Equal(t, http.StatusForbidden,
			a.do(http.MethodPatch, fmt.Sprintf("/orders/%d", order.ID), map[string]string{"delivery_status": "completed"}, other).Code)
	})

	t.Run("staff update statuses", func(t *testing.T) {
		staff := a.user("clerk", true)
		rec := a.do(http.MethodPatch, fmt.Sprintf("/orders/%d", order.ID), map[string]string{"delivery_status": "shipped"}, staff)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = a.do(http.MethodPatch, fmt.Sprintf("/orders/%d", order.ID), map[string]string{"delivery_status": "completed"}, staff)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"delivery_status":"completed"`)

		assert.Equal(t, http.StatusBadRequest, a.do(http.MethodDelete, fmt.Sprintf("/orders/%d", order.ID), nil, staff).Code)
	})

	t.Run("payment", func(t *testing.T) {
		rec := a.do(http.MethodPost, fmt.Sprintf("/orders/%d/payment", order.ID), nil, token)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), "snap-"+order.Code)

		rec = a.do(http.MethodPost, "/payments/notification", map[string]string{
			"order_id": order.Code, "transaction_status": "settlement", "fraud_status": "accept",
		}, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var stored models.Order
		require.NoError(t, a.db.First(&stored, order.ID).Error)
		assert.Equal(t, models.StatusCompleted, stored.PaymentStatus)
		assert.NotEmpty(t, stored.PaymentToken)

		rec = a.do(http.MethodPost, fmt.Sprintf("/orders/%d/payment", order.ID), nil, token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCatalogPermissions(t *testing.T) {
	a := newAPITest(t)
	a.product("gift-card", "5000.00")
	customer := a.user("shopper", false)
	staff := a.user("manager", true)

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/categories", map[string]string{"title": "Tools"}, "").Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/categories", map[string]string{"title": "Tools"}, customer).Code)

	rec := a.do(http.MethodPost, "/categories", map[string]string{"title": "Tools"}, staff)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var category struct {
		ID uint `json:"id"`
	}
	decode(t, rec, &category)

	body := map[string]interface{}{"title": "Hammer", "price": "7500.50", "category_id": category.ID, "description": "Claw hammer"}
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/products", body, customer).Code)

	rec = a.do(http.MethodPost, "/products", body, staff)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var product struct {
		ID         uint   `json:"id"`
		Slug       string `json:"slug"`
		Price      string `json:"price"`
		ProductTax string `json:"product_tax"`
	}
	decode(t, rec, &product)
	assert.Equal(t, "hammer", product.Slug)
	assert.Equal(t, "7500.50", product.Price)
	assert.Equal(t, "3375.23", product.ProductTax)

	body["price"] = "100"
	rec = a.do(http.MethodPost, "/products", body, staff)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "price")

	rec = a.do(http.MethodGet, "/categories", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"product_count":1`)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodDelete, fmt.Sprintf("/categories/%d", category.ID), nil, staff).Code)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodDelete, fmt.Sprintf("/products/%d", product.ID), nil, customer).Code)
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, fmt.Sprintf("/products/%d", product.ID), nil, staff).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, fmt.Sprintf("/products/%d", product.ID), nil, "").Code)
}

func TestProtectedProductCannotBeDeleted(t *testing.T) {
	a := newAPITest(t)
	protected := a.product("gift-card", "5000.00")
	require.Equal(t, models.ProtectedProductID, protected.ID)
	staff := a.user("owner", true)

	for _, token := range []string{"", staff} {
		rec := a.do(http.MethodDelete, "/products/1", nil, token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/products/1", nil, "").Code)
}

func TestProductListPagination(t *testing.T) {
	a := newAPITest(t)
	a.product("cheap", "5000.00")
	a.product("middle", "6000.00")
	a.product("pricey", "9000.00")

	rec := a.do(http.MethodGet, "/products?ordering=-price", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Count    int64   `json:"count"`
		Next     *string `json:"next"`
		Previous *string `json:"previous"`
		Results  []struct {
			Title string `json:"title"`
		} `json:"results"`
	}
	decode(t, rec, &page)
	assert.Equal(t, int64(3), page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "pricey", page.Results[0].Title)
	require.NotNil(t, page.Next)
	assert.Contains(t, *page.Next, "page=2")
	assert.Contains(t, *page.Next, "ordering=-price")
	assert.Nil(t, page.Previous)

	rec = a.do(http.MethodGet, "/products?price__gt=5500&price__lt=9000", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &page)
	assert.Equal(t, int64(1), page.Count)
	assert.Equal(t, "middle", page.Results[0].Title)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/products?page=9", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/products?page=4611686018427387905", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/products?price__gt=abc", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/products?ordering=title", nil, "").Code)
}

func pngUpload(t *testing.T, path, filename, token string) *http.Request {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var data bytes.Buffer
	require.NoError(t, png.Encode(&data, img))

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(data.Bytes())
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestProductImageUpload(t *testing.T) {
	a := newAPITest(t)
	staff := a.user("photographer", true)
	product := a.product("lamp", "5500.00")
	path := fmt.Sprintf("/products/%d/images", product.ID)

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, pngUpload(t, path, "lamp.gif", staff))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, pngUpload(t, path, "lamp.PNG", staff))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var uploaded struct {
		ID    uint   `json:"id"`
		Image string `json:"image"`
	}
	decode(t, rec, &uploaded)
	assert.Regexp(t, `^/media/store/images/[0-9a-f-]{36}\.png$`, uploaded.Image)

	rec = a.do(http.MethodGet, uploaded.Image, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = a.do(http.MethodGet, fmt.Sprintf("/products/%d", product.ID), nil, "")
	assert.Contains(t, rec.Body.String(), uploaded.Image)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, fmt.Sprintf("%s/%d", path, uploaded.ID), nil, staff).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, uploaded.Image, nil, "").Code)
}

func TestReviewsAndCustomerProfile(t *testing.T) {
	a := newAPITest(t)
	product := a.product("kettle", "6500.00")
	reviews := fmt.Sprintf("/products/%d/reviews", product.ID)

	rec := a.do(http.MethodPost, reviews, map[string]string{"reviewer_name": "Ana", "remark": "Boils fast"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"title":"kettle"`)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/products/999/reviews", nil, "").Code)

	token := a.user("profiled", false)
	rec = a.do(http.MethodGet, "/customers/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"membership":"S"`)

	rec = a.do(http.MethodPut, "/customers/me", map[string]string{"mobile": "0812", "birth_date": "1990-05-01", "membership": "G"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"birth_date":"1990-05-01"`)

	rec = a.do(http.MethodPost, "/customers/me/addresses", map[string]string{"contact_type": "res", "street": "Jl. Merdeka 1", "city": "Bandung", "state": "Jabar"}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/customers", nil, token).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/customers/me", nil, "").Code)
}

func TestHealthzAndUnknownRoutes(t *testing.T) {
	a := newAPITest(t)

	rec := a.do(http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/nowhere", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/orders", nil, "not-a-token").Code)
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	a := newAPITest(t)

	rec := a.do(http.MethodPost, "/auth/users", map[string]string{
		"username": "longpass", "email": "longpass@example.com", "password": strings.Repeat("a", 100),
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, rec, &body)
	assert.Contains(t, body.Errors, "password")

	rec = a.do(http.MethodPost, "/auth/users", map[string]string{
		"username": "multibyte", "email": "multibyte@example.com", "password": strings.Repeat("é", 40),
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	body.Errors = nil
	decode(t, rec, &body)
	assert.Contains(t, body.Errors, "password")
}
