package services

import (
	"context"
	"testing"
	"time"

	"github.com/Rakhulsr/go-storefront/app/db/testdb"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db *gorm.DB

	auth       *AuthService
	categories *CategoryService
	promotions *PromotionService
	products   *ProductService
	reviews    *ReviewService
	carts      *CartService
	orders     *OrderService
	customers  *CustomerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)
	logger := zap.NewNop()

	userRepo := repositories.NewUserRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	statsRepo, err := repositories.NewCategoryStatsRepository(db)
	require.NoError(t, err)
	promotionRepo := repositories.NewPromotionRepository(db)
	productRepo := repositories.NewProductRepository(db)
	cartRepo := repositories.NewCartRepository(db)
	cartItemRepo := repositories.NewCartItemRepository(db)

	return &fixture{
		db:         db,
		auth:       NewAuthService(db, userRepo, customerRepo, []byte("test-secret"), time.Hour, logger),
		categories: NewCategoryService(categoryRepo, statsRepo, logger),
		promotions: NewPromotionService(promotionRepo),
		products:   NewProductService(productRepo, categoryRepo, promotionRepo, decimal.NewFromInt(5000), logger),
		reviews:    NewReviewService(repositories.NewReviewRepository(db), productRepo),
		carts:      NewCartService(cartRepo, cartItemRepo, productRepo, logger),
		orders: NewOrderService(db, cartRepo, cartItemRepo, customerRepo,
			repositories.NewOrderRepository(db), repositories.NewOrderItemRepository(db), nil, logger),
		customers: NewCustomerService(db, customerRepo, repositories.NewAddressRepository(db), userRepo, logger),
	}
}

func (f *fixture) register(t *testing.T, username string, staff bool) Caller {
	t.Helper()
	user, err := f.auth.Register(context.Background(), RegisterInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "s3cret-pass",
		FirstName: "Test",
		LastName:  username,
	})
	require.NoError(t, err)
	if staff {
		require.NoError(t, f.db.Model(user).Update("is_staff", true).Error)
	}
	return Caller{UserID: user.ID, IsStaff: staff}
}

func (f *fixture) category(t *testing.T, title string) models.Category {
	t.Helper()
	c := models.Category{Title: title}
	require.NoError(t, f.db.Create(&c).Error)
	return c
}

// product inserts directly so tests can use prices below the catalog minimum.
func (f *fixture) product(t *testing.T, categoryID uint, title, price string) models.Product {
	t.Helper()
	p := models.Product{
		Title:       title,
		Slug:        title,
		Description: title + " description",
		Price:       decimal.RequireFromString(price),
		CategoryID:  categoryID,
	}
	require.NoError(t, f.db.Omit("Category").Create(&p).Error)
	return p
}

func (f *fixture) cartWith(t *testing.T, lines map[uint]int) string {
	t.Helper()
	ctx := context.Background()
	cart, err := f.carts.CreateCart(ctx)
	require.NoError(t, err)
	for productID, qty := range lines {
		_, err := f.carts.AddItem(ctx, cart.ID, productID, qty)
		require.NoError(t, err)
	}
	return cart.ID
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
