package repositories

import (
	"context"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductFilter struct {
	CategoryID *uint
	PriceGT    *decimal.Decimal
	PriceLT    *decimal.Decimal
	Search     string
	Ordering   string
	Limit      int
	Offset     int
}

// productOrderings whitelists the ordering query values.
var productOrderings = map[string]string{
	"price":          "products.price ASC, products.id ASC",
	"-price":         "products.price DESC, products.id ASC",
	"when_uploaded":  "products.when_uploaded ASC, products.id ASC",
	"-when_uploaded": "products.when_uploaded DESC, products.id DESC",
}

func IsValidProductOrdering(ordering string) bool {
	_, ok := productOrderings[ordering]
	return ordering == "" || ok
}

type ProductRepository interface {
	GetPaginated(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db}
}

func (p *productRepository) filtered(ctx context.Context, filter ProductFilter) *gorm.DB {
	query := p.db.WithContext(ctx).Model(&models.Product{})

	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	}
	if filter.PriceGT != nil {
		query = query.Where("products.price > ?", *filter.PriceGT)
	}
	if filter.PriceLT != nil {
		query = query.Where("products.price < ?", *filter.PriceLT)
	}
	if keyword := strings.TrimSpace(filter.Search); keyword != "" {
		searchKeyword := "%" + strings.ToLower(keyword) + "%"
		query = query.Where("LOWER(products.title) LIKE ? OR LOWER(products.description) LIKE ?", searchKeyword, searchKeyword)
	}
	return query
}

func (p *productRepository) GetPaginated(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	if err := p.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := productOrderings[filter.Ordering]
	if !ok {
		order = "products.id ASC"
	}

	query := p.filtered(ctx, filter).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Promotions").
		Order(order)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	if err := query.Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (p *productRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := p.db.WithContext(ctx).
		Model(&models.Product{}).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Promotions").
		Where("id = ?", id).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (p *productRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (p *productRepository) Create(ctx context.Context, product *models.Product) error {
	return p.db.WithContext(ctx).Omit("Category", "Images", "Reviews").Create(product).Error
}

// Update saves the scalar columns and replaces the promotion set.
func (p *productRepository) Update(ctx context.Context, product *models.Product) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(product).
			Select("Title", "Slug", "Description", "Price", "CategoryID").
			Updates(product).Error
		if err != nil {
			return err
		}
		return tx.Model(product).Association("Promotions").Replace(product.Promotions)
	})
}

// Delete soft-deletes the product and drops the cart lines still pointing at it. Order items
// keep their reference.
func (p *productRepository) Delete(ctx context.Context, id uint) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Product{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
