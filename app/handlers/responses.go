package handlers

import (
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/calc"
	"github.com/Rakhulsr/go-storefront/app/utils/format"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type detailResponse struct {
	Detail string `json:"detail"`
}

type categoryResponse struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	ProductCount int64  `json:"product_count"`
}

func newCategoryResponse(c services.CategoryWithCount) categoryResponse {
	return categoryResponse{ID: c.ID, Title: c.Title, ProductCount: c.ProductCount}
}

type promotionResponse struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func newPromotionResponse(p models.Promotion) promotionResponse {
	return promotionResponse{ID: p.ID, Title: p.Title}
}

type imageResponse struct {
	ID        uint   `json:"id"`
	ProductID uint   `json:"product_id"`
	Image     string `json:"image"`
}

type imageURLFunc func(models.ProductImage) string

func newImageResponse(img models.ProductImage, url imageURLFunc) imageResponse {
	return imageResponse{ID: img.ID, ProductID: img.ProductID, Image: url(img)}
}

type productResponse struct {
	ID           uint            `json:"id"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description"`
	Price        string          `json:"price"`
	ProductTax   string          `json:"product_tax"`
	PriceDisplay string          `json:"price_display"`
	CategoryID   uint            `json:"category_id"`
	Promotions   []uint          `json:"promotions"`
	Images       []imageResponse `json:"images"`
	WhenUploaded time.Time       `json:"when_uploaded"`
	LastUpdated  time.Time       `json:"last_updated"`
}

func newProductResponse(p models.Product, url imageURLFunc) productResponse {
	resp := productResponse{
		ID:           p.ID,
		Title:        p.Title,
		Slug:         p.Slug,
		Description:  p.Description,
		Price:        format.Amount(p.Price),
		ProductTax:   format.Amount(calc.CalculateTax(p.Price)),
		PriceDisplay: format.Money(p.Price),
		CategoryID:   p.CategoryID,
		Promotions:   make([]uint, 0, len(p.Promotions)),
		Images:       make([]imageResponse, 0, len(p.Images)),
		WhenUploaded: p.WhenUploaded,
		LastUpdated:  p.LastUpdated,
	}
	for _, promo := range p.Promotions {
		resp.Promotions = append(resp.Promotions, promo.ID)
	}
	for _, img := range p.Images {
		resp.Images = append(resp.Images, newImageResponse(img, url))
	}
	return resp
}

type reviewResponse struct {
	ID           uint             `json:"id"`
	Product      *productResponse `json:"product,omitempty"`
	ReviewerName string           `json:"reviewer_name"`
	Remark       string           `json:"remark"`
	PostedAt     string           `json:"posted_at"`
}

func newReviewResponse(r models.Review, url imageURLFunc) reviewResponse {
	resp := reviewResponse{
		ID:           r.ID,
		ReviewerName: r.ReviewerName,
		Remark:       r.Remark,
		PostedAt:     r.PostedAt.Format(dateLayout),
	}
	if r.Product.ID != 0 {
		product := newProductResponse(r.Product, url)
		resp.Product = &product
	}
	return resp
}

type simpleCategory struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

type simpleProduct struct {
	ID       uint            `json:"id"`
	Title    string          `json:"title"`
	Price    string          `json:"price"`
	Category *simpleCategory `json:"category,omitempty"`
}

func newSimpleProduct(p models.Product) simpleProduct {
	resp := simpleProduct{ID: p.ID, Title: p.Title, Price: format.Amount(p.Price)}
	if p.Category.ID != 0 {
		resp.Category = &simpleCategory{ID: p.Category.ID, Title: p.Category.Title}
	}
	return resp
}

type cartItemResponse struct {
	ID       uint          `json:"id"`
	Product  simpleProduct `json:"product"`
	Quantity int           `json:"quantity"`
	SubTotal string        `json:"sub_total"`
}

func newCartItemResponse(item models.CartItem) cartItemResponse {
	return cartItemResponse{
		ID:       item.ID,
		Product:  newSimpleProduct(item.Product),
		Quantity: item.Quantity,
		SubTotal: format.Amount(calc.CalculateSubTotal(item.Product.Price, item.Quantity)),
	}
}

type cartResponse struct {
	ID                string             `json:"id"`
	Items             []cartItemResponse `json:"items"`
	GrandTotal        string             `json:"grand_total"`
	GrandTotalDisplay string             `json:"grand_total_display"`
	PlacedAt          time.Time          `json:"placed_at"`
}

// newCartResponse prices every line at the product's current price.
func newCartResponse(cart models.Cart) cartResponse {
	resp := cartResponse{
		ID:       cart.ID,
		Items:    make([]cartItemResponse, 0, len(cart.Items)),
		PlacedAt: cart.PlacedAt,
	}
	subTotals := make([]decimal.Decimal, 0, len(cart.Items))
	for _, item := range cart.Items {
		resp.Items = append(resp.Items, newCartItemResponse(item))
		subTotals = append(subTotals, calc.CalculateSubTotal(item.Product.Price, item.Quantity))
	}
	total := calc.CalculateGrandTotal(subTotals...)
	resp.GrandTotal = format.Amount(total)
	resp.GrandTotalDisplay = format.Money(total)
	return resp
}

type orderItemResponse struct {
	ID       uint          `json:"id"`
	Product  simpleProduct `json:"product"`
	Price    string        `json:"price"`
	Quantity int           `json:"quantity"`
}

type orderResponse struct {
	ID             uint                `json:"id"`
	Code           string              `json:"code"`
	Customer       uint                `json:"customer"`
	PlacedAt       time.Time           `json:"placed_at"`
	PaymentStatus  string              `json:"payment_status"`
	DeliveryStatus string              `json:"delivery_status"`
	PaymentURL     string              `json:"payment_url,omitempty"`
	Items          []orderItemResponse `json:"items"`
	Total          string              `json:"total"`
	TotalDisplay   string              `json:"total_display"`
}

func newOrderResponse(order models.Order) orderResponse {
	resp := orderResponse{
		ID:             order.ID,
		Code:           order.Code,
		Customer:       order.CustomerID,
		PlacedAt:       order.PlacedAt,
		PaymentStatus:  order.PaymentStatus,
		DeliveryStatus: order.DeliveryStatus,
		PaymentURL:     order.PaymentURL,
		Items:          make([]orderItemResponse, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:       item.ID,
			Product:  newSimpleProduct(item.Product),
			Price:    format.Amount(item.Price),
			Quantity: item.Quantity,
		})
	}
	total := services.OrderTotal(&order)
	resp.Total = format.Amount(total)
	resp.TotalDisplay = format.Money(total)
	return resp
}

type customerResponse struct {
	ID         uint    `json:"id"`
	UserID     uint    `json:"user_id"`
	Mobile     string  `json:"mobile"`
	BirthDate  *string `json:"birth_date"`
	Membership string  `json:"membership"`
}

func newCustomerResponse(c models.Customer) customerResponse {
	resp := customerResponse{ID: c.ID, UserID: c.UserID, Mobile: c.Mobile, Membership: c.Membership}
	if c.BirthDate != nil {
		date := c.BirthDate.Format(dateLayout)
		resp.BirthDate = &date
	}
	return resp
}

type addressResponse struct {
	ID          uint   `json:"id"`
	ContactType string `json:"contact_type"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
}

func newAddressResponse(a models.Address) addressResponse {
	return addressResponse{ID: a.ID, ContactType: a.ContactType, Street: a.Street, City: a.City, State: a.State}
}

type userResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"is_staff"`
}

func newUserResponse(u models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsStaff:   u.IsStaff,
	}
}
